package testutil

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clubsphere/clubsphere/internal/database"
	"github.com/clubsphere/clubsphere/internal/models"
)

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	autoMigrate bool
	admin       *database.AdminSeed
}

// WithAutoMigrate enables automatic schema migration after opening the test database.
func WithAutoMigrate() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
	}
}

// WithSeedAdmin ensures migrations are applied and an admin user with email exists.
func WithSeedAdmin(email string) TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
		cfg.admin = &database.AdminSeed{Name: "Test Admin", Email: email}
	}
}

// MustOpenTestDB opens a private in-memory SQLite database for tests, applying optional
// migrations and seed data. The returned connection is automatically closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	db, err := database.Open(database.Config{
		Driver: "sqlite",
		DSN:    "file:" + name + "?mode=memory&cache=shared&_foreign_keys=1",
	})
	require.NoError(t, err)

	if cfg.admin != nil {
		require.NoError(t, database.AutoMigrateAndSeed(db, *cfg.admin))
	} else if cfg.autoMigrate {
		require.NoError(t, database.AutoMigrate(db))
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// MustFindUser loads the user with email.
func MustFindUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, db.Where("email = ?", email).First(&user).Error)
	return &user
}
