package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrResourceNotFound is returned when a club resource does not exist.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrResourceConflict is returned when a write violates a uniqueness constraint.
	ErrResourceConflict = errors.New("resource already exists")
	// ErrCollectionNotRegistered is returned by the registry for unknown collection names.
	ErrCollectionNotRegistered = errors.New("collection not registered")
	// ErrInvalidPatch is returned when an update payload cannot be applied.
	ErrInvalidPatch = errors.New("invalid update payload")
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") || strings.Contains(lower, "duplicate")
}
