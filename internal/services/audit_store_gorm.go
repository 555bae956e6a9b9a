package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/clubsphere/clubsphere/internal/models"
)

// keywordColumns are searched when AuditQuery.Keywords is set. users and staff are LEFT JOINed.
var keywordColumns = []string{
	"audit_logs.description",
	"audit_logs.meta_user_email",
	"audit_logs.meta_user_role",
	"audit_logs.meta_login_type",
	"audit_logs.meta_attempted_email",
	"audit_logs.meta_error_message",
	"audit_logs.ip_address",
	"audit_logs.user_agent",
	"staff.name",
	"staff.email",
	"staff.designation",
	"users.name",
	"users.email",
}

// GormAuditStore keeps audit entries in the relational database.
type GormAuditStore struct {
	db *gorm.DB
}

// NewGormAuditStore constructs a GormAuditStore using the provided database handle.
func NewGormAuditStore(db *gorm.DB) (*GormAuditStore, error) {
	if db == nil {
		return nil, errors.New("audit store: db is required")
	}
	return &GormAuditStore{db: db}, nil
}

// Append inserts entry. Entries without an actor are rejected.
func (s *GormAuditStore) Append(ctx context.Context, entry *models.AuditLog) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	// sqlite compares created_at as text, so every row is stored in UTC.
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	if err := s.db.WithContext(ensureContext(ctx)).Create(entry).Error; err != nil {
		return fmt.Errorf("audit store: append: %w", err)
	}
	return nil
}

// QueryPage returns one page of matching entries.
func (s *GormAuditStore) QueryPage(ctx context.Context, query AuditQuery, page, pageSize int) ([]models.AuditLog, error) {
	ctx = ensureContext(ctx)
	page, pageSize = ClampPage(page, pageSize, DefaultAuditPageSize, MaxAuditPageSize)

	var logs []models.AuditLog
	if err := s.filtered(ctx, query).
		Select("audit_logs.*").
		Order("audit_logs.created_at DESC").
		Order("audit_logs.id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("audit store: query page: %w", err)
	}

	if err := s.attachActors(ctx, logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Count returns the number of matching entries.
func (s *GormAuditStore) Count(ctx context.Context, query AuditQuery) (int64, error) {
	var total int64
	if err := s.filtered(ensureContext(ctx), query).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("audit store: count: %w", err)
	}
	return total, nil
}

// QueryAll returns every matching entry.
func (s *GormAuditStore) QueryAll(ctx context.Context, query AuditQuery) ([]models.AuditLog, error) {
	ctx = ensureContext(ctx)

	var logs []models.AuditLog
	if err := s.filtered(ctx, query).
		Select("audit_logs.*").
		Order("audit_logs.created_at DESC").
		Order("audit_logs.id DESC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("audit store: query all: %w", err)
	}

	if err := s.attachActors(ctx, logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *GormAuditStore) filtered(ctx context.Context, query AuditQuery) *gorm.DB {
	query = query.normalised()
	tx := s.db.WithContext(ctx).Model(&models.AuditLog{})

	if query.UserID != "" {
		tx = tx.Where("audit_logs.actor_id = ?", query.UserID)
	}
	if query.StaffID != "" {
		tx = tx.Where("audit_logs.staff_actor_id = ?", query.StaffID)
	}
	if query.Action != "" {
		tx = tx.Where("audit_logs.action = ?", query.Action)
	}
	if query.Module != "" {
		tx = tx.Where("audit_logs.module = ?", query.Module)
	}
	if query.Role != "" {
		tx = tx.Where("audit_logs.meta_user_role = ?", query.Role)
	}
	if query.StartDate != nil {
		tx = tx.Where("audit_logs.created_at >= ?", query.StartDate.UTC())
	}
	if query.EndDate != nil {
		tx = tx.Where("audit_logs.created_at <= ?", query.EndDate.UTC())
	}
	if query.Keywords != "" {
		pattern := "%" + escapeLike(strings.ToLower(query.Keywords)) + "%"
		clauses := make([]string, len(keywordColumns))
		args := make([]any, len(keywordColumns))
		for i, column := range keywordColumns {
			clauses[i] = "LOWER(" + column + ") LIKE ? ESCAPE '!'"
			args[i] = pattern
		}
		tx = tx.
			Joins("LEFT JOIN users ON users.id = audit_logs.actor_id").
			Joins("LEFT JOIN staff ON staff.id = audit_logs.staff_actor_id").
			Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	return tx
}

// attachActors resolves User and Staff for logs with one IN query per relation.
func (s *GormAuditStore) attachActors(ctx context.Context, logs []models.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}

	actorIDs := make([]string, 0, len(logs))
	staffIDs := make([]string, 0, len(logs))
	for _, log := range logs {
		actorIDs = append(actorIDs, log.ActorID)
		if log.StaffActorID != nil {
			staffIDs = append(staffIDs, *log.StaffActorID)
		}
	}

	users := make(map[string]*models.User)
	if ids := normaliseIDs(actorIDs); len(ids) > 0 {
		var found []models.User
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
			return fmt.Errorf("audit store: load users: %w", err)
		}
		for i := range found {
			users[found[i].ID] = &found[i]
		}
	}

	staff := make(map[string]*models.Staff)
	if ids := normaliseIDs(staffIDs); len(ids) > 0 {
		var found []models.Staff
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
			return fmt.Errorf("audit store: load staff: %w", err)
		}
		for i := range found {
			staff[found[i].ID] = &found[i]
		}
	}

	for i := range logs {
		logs[i].User = users[logs[i].ActorID]
		if logs[i].StaffActorID != nil {
			logs[i].Staff = staff[*logs[i].StaffActorID]
		}
	}
	return nil
}

func escapeLike(value string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(value)
}
