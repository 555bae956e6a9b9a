package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubsphere/clubsphere/internal/auditctx"
	"github.com/clubsphere/clubsphere/internal/auditlog"
	"github.com/clubsphere/clubsphere/internal/models"
)

const (
	DefaultAuditPageSize = 20
	MaxAuditPageSize     = 200
)

// ErrInvalidDateRange is returned when a search ends before it starts.
var ErrInvalidDateRange = errors.New("audit service: start date must not be after end date")

// SearchCriteria combines audit filters with pagination.
type SearchCriteria struct {
	AuditQuery
	Page     int
	PageSize int
}

// AuditPage is one page of audit entries.
type AuditPage struct {
	Logs     []models.AuditLog
	Total    int64
	Page     int
	PageSize int
}

// AuditStats summarises the audit trail.
type AuditStats struct {
	Total    int64 `json:"total"`
	Today    int64 `json:"today"`
	LastWeek int64 `json:"last_week"`
}

// AuditEntry captures an audit event raised by service code rather than the HTTP middleware.
type AuditEntry struct {
	Action    string
	Module    string
	Detail    string
	IPAddress string
	UserAgent string
	Extra     map[string]any
}

// AuditService records and retrieves audit entries through an AuditStore.
type AuditService struct {
	store AuditStore
	now   func() time.Time
}

// NewAuditService constructs an AuditService backed by store.
func NewAuditService(store AuditStore) (*AuditService, error) {
	if store == nil {
		return nil, errors.New("audit service: store is required")
	}
	return &AuditService{store: store, now: time.Now}, nil
}

// Append persists a fully built entry. It satisfies the dispatcher's recorder contract.
func (s *AuditService) Append(ctx context.Context, entry *models.AuditLog) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	if strings.TrimSpace(entry.Action) == "" {
		return errors.New("audit service: action is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	return s.store.Append(ensureContext(ctx), entry)
}

// Log records a service-level event attributed to the identity carried by ctx. Without an
// identity nothing is written.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	ctx = ensureContext(ctx)

	identity, ok := auditctx.FromContext(ctx)
	if !ok || strings.TrimSpace(identity.UserID) == "" {
		return nil
	}

	now := s.now()
	log := &models.AuditLog{
		ActorID:     strings.TrimSpace(identity.UserID),
		Action:      strings.TrimSpace(entry.Action),
		Module:      strings.TrimSpace(entry.Module),
		Description: strings.TrimSpace(entry.Detail),
		IPAddress:   strings.TrimSpace(entry.IPAddress),
		UserAgent:   strings.TrimSpace(entry.UserAgent),
		CreatedAt:   now,
		Metadata: models.AuditMetadata{
			UserRole:  identity.PrimaryRole(),
			UserEmail: identity.Email,
			LoginType: identity.LoginType,
			Timestamp: now.UTC().Format(auditlog.TimestampLayout),
			Extra:     entry.Extra,
		},
	}
	if staffID := strings.TrimSpace(identity.StaffID); staffID != "" {
		log.StaffActorID = &staffID
	}
	return s.Append(ctx, log)
}

// List returns a page of the unfiltered audit trail.
func (s *AuditService) List(ctx context.Context, page, pageSize int) (AuditPage, error) {
	return s.Search(ctx, SearchCriteria{Page: page, PageSize: pageSize})
}

// Search returns one page of entries matching criteria, newest first, with the total match count.
func (s *AuditService) Search(ctx context.Context, criteria SearchCriteria) (AuditPage, error) {
	ctx = ensureContext(ctx)

	if err := validateRange(criteria.AuditQuery); err != nil {
		return AuditPage{}, err
	}
	page, pageSize := ClampPage(criteria.Page, criteria.PageSize, DefaultAuditPageSize, MaxAuditPageSize)

	total, err := s.store.Count(ctx, criteria.AuditQuery)
	if err != nil {
		return AuditPage{}, fmt.Errorf("audit service: count logs: %w", err)
	}

	logs, err := s.store.QueryPage(ctx, criteria.AuditQuery, page, pageSize)
	if err != nil {
		return AuditPage{}, fmt.Errorf("audit service: list logs: %w", err)
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	return AuditPage{Logs: logs, Total: total, Page: page, PageSize: pageSize}, nil
}

// Export returns every entry matching query without pagination, newest first.
func (s *AuditService) Export(ctx context.Context, query AuditQuery) ([]models.AuditLog, error) {
	ctx = ensureContext(ctx)

	if err := validateRange(query); err != nil {
		return nil, err
	}
	logs, err := s.store.QueryAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("audit service: export logs: %w", err)
	}
	return logs, nil
}

// Count returns the number of entries matching query.
func (s *AuditService) Count(ctx context.Context, query AuditQuery) (int64, error) {
	if err := validateRange(query); err != nil {
		return 0, err
	}
	return s.store.Count(ensureContext(ctx), query)
}

// Stats counts all entries, those since local midnight and those from the last seven days.
func (s *AuditService) Stats(ctx context.Context) (AuditStats, error) {
	ctx = ensureContext(ctx)

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	var stats AuditStats
	var err error
	if stats.Total, err = s.store.Count(ctx, AuditQuery{}); err != nil {
		return AuditStats{}, fmt.Errorf("audit service: count total: %w", err)
	}
	if stats.Today, err = s.store.Count(ctx, AuditQuery{StartDate: &midnight}); err != nil {
		return AuditStats{}, fmt.Errorf("audit service: count today: %w", err)
	}
	if stats.LastWeek, err = s.store.Count(ctx, AuditQuery{StartDate: &weekAgo}); err != nil {
		return AuditStats{}, fmt.Errorf("audit service: count last week: %w", err)
	}
	return stats, nil
}

func validateRange(query AuditQuery) error {
	if query.StartDate != nil && query.EndDate != nil && query.StartDate.After(*query.EndDate) {
		return ErrInvalidDateRange
	}
	return nil
}
