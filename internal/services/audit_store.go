package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/clubsphere/clubsphere/internal/models"
)

// ErrAuditActorRequired is returned when an entry without an actor reaches a store.
var ErrAuditActorRequired = errors.New("audit store: actor id is required")

// AuditQuery holds the filters shared by every audit read. Provided fields combine with AND; the
// date range is inclusive; Keywords is a case-insensitive substring matched against any of the
// searchable text fields, including the joined user and staff.
type AuditQuery struct {
	UserID    string
	StaffID   string
	Action    string
	Module    string
	Role      string
	StartDate *time.Time
	EndDate   *time.Time
	Keywords  string
}

func (q AuditQuery) normalised() AuditQuery {
	q.UserID = strings.TrimSpace(q.UserID)
	q.StaffID = strings.TrimSpace(q.StaffID)
	q.Action = strings.ToUpper(strings.TrimSpace(q.Action))
	q.Module = strings.TrimSpace(q.Module)
	q.Role = strings.TrimSpace(q.Role)
	q.Keywords = strings.TrimSpace(q.Keywords)
	return q
}

// AuditStore persists audit entries. Entries are append-only: there is no update or delete.
// Reads return entries newest first (created_at, then id, descending) with User and Staff
// attached when the references resolve.
type AuditStore interface {
	Append(ctx context.Context, entry *models.AuditLog) error
	QueryPage(ctx context.Context, query AuditQuery, page, pageSize int) ([]models.AuditLog, error)
	Count(ctx context.Context, query AuditQuery) (int64, error)
	QueryAll(ctx context.Context, query AuditQuery) ([]models.AuditLog, error)
}

func validateEntry(entry *models.AuditLog) error {
	if entry == nil {
		return errors.New("audit store: entry is required")
	}
	if strings.TrimSpace(entry.ActorID) == "" {
		return ErrAuditActorRequired
	}
	return nil
}
