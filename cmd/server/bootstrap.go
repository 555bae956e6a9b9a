package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clubsphere/clubsphere/internal/api"
	"github.com/clubsphere/clubsphere/internal/app"
	"github.com/clubsphere/clubsphere/internal/auditlog"
	iauth "github.com/clubsphere/clubsphere/internal/auth"
	"github.com/clubsphere/clubsphere/internal/database"
	"github.com/clubsphere/clubsphere/internal/services"
	"github.com/clubsphere/clubsphere/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Mongo      *mongo.Client
	AuditSvc   *services.AuditService
	Dispatcher *auditlog.Dispatcher
	Router     *gin.Engine
}

// bootstrapRuntime initialises the databases, the audit pipeline and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			if err := stack.Shutdown(context.Background()); err != nil {
				log.Warn("partial bootstrap cleanup failed", zap.Error(err))
			}
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	store, err := stack.openAuditStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	stack.AuditSvc, err = services.NewAuditService(store)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}
	stack.Dispatcher = auditlog.NewDispatcher(stack.AuditSvc, cfg.Audit.WriteTimeout)

	stack.Router, err = api.NewRouter(stack.DB, jwtSvc, cfg, stack.AuditSvc, stack.Dispatcher)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func (s *runtimeStack) openAuditStore(ctx context.Context, cfg *app.Config, log *zap.Logger) (services.AuditStore, error) {
	if cfg.Audit.Store != app.AuditStoreMongo {
		log.Info("audit store selected", zap.String("store", app.AuditStoreSQL))
		return services.NewGormAuditStore(s.DB)
	}

	client, db, err := database.OpenMongo(ctx, cfg.MongoSettings())
	if err != nil {
		return nil, fmt.Errorf("open mongo: %w", err)
	}
	s.Mongo = client

	log.Info("audit store selected", zap.String("store", app.AuditStoreMongo), zap.String("database", db.Name()))
	return services.NewMongoAuditStore(db)
}

// Shutdown waits for in-flight audit writes, then releases database connections.
func (s *runtimeStack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var err error
	if s.Dispatcher != nil {
		if drainErr := s.Dispatcher.Drain(ctx); drainErr != nil {
			err = multierr.Append(err, fmt.Errorf("drain audit writes: %w", drainErr))
		}
	}
	if s.Mongo != nil {
		if closeErr := s.Mongo.Disconnect(ctx); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("disconnect mongo: %w", closeErr))
		}
	}
	if s.DB != nil {
		err = multierr.Append(err, closeDatabase(s.DB))
	}
	return err
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.DatabaseSettings()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	seed := database.AdminSeed{Name: cfg.Auth.Admin.Name, Email: cfg.Auth.Admin.Email}
	if err := database.AutoMigrateAndSeed(db, seed); err != nil {
		return nil, multierr.Append(fmt.Errorf("auto-migrate database: %w", err), closeDatabase(db))
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func closeDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("obtain sql db: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
