package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig contains document database connection options.
type MongoConfig struct {
	URI            string
	Hosts          []string
	Database       string
	AppName        string
	IsDirect       bool
	AuthMechanism  string
	AuthSource     string
	Username       string
	Password       string
	ConnectTimeout time.Duration
}

func (cfg MongoConfig) clientOptions() (*options.ClientOptions, error) {
	opts := options.Client()
	switch {
	case strings.TrimSpace(cfg.URI) != "":
		opts.ApplyURI(strings.TrimSpace(cfg.URI))
	case len(cfg.Hosts) > 0:
		opts.SetHosts(cfg.Hosts).SetDirect(cfg.IsDirect)
	default:
		return nil, errors.New("mongo configuration requires a uri or hosts")
	}

	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			AuthMechanism: cfg.AuthMechanism,
			AuthSource:    cfg.AuthSource,
			Username:      cfg.Username,
			Password:      cfg.Password,
		})
	}
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	opts.SetConnectTimeout(timeout)
	return opts, nil
}

// OpenMongo connects to MongoDB and verifies the connection with a ping, since Connect performs
// no I/O on its own.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*mongo.Client, *mongo.Database, error) {
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, nil, errors.New("mongo configuration requires a database name")
	}

	opts, err := cfg.clientOptions()
	if err != nil {
		return nil, nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, *opts.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create mongo client: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}
