package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	appValidator "github.com/clubsphere/clubsphere/pkg/validator"
)

const (
	DefaultResourcePageSize = 25
	MaxResourcePageSize     = 100
)

// Identifiable is implemented by every club resource model.
type Identifiable interface {
	GetID() string
}

// ResourceService provides CRUD for one club resource type. PT is the pointer type of T.
type ResourceService[T any, PT interface {
	*T
	Identifiable
}] struct {
	db   *gorm.DB
	name string
}

// NewResourceService constructs a ResourceService for the collection name.
func NewResourceService[T any, PT interface {
	*T
	Identifiable
}](db *gorm.DB, name string) (*ResourceService[T, PT], error) {
	if db == nil {
		return nil, errors.New("resource service: db is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("resource service: name is required")
	}
	return &ResourceService[T, PT]{db: db, name: name}, nil
}

// Name returns the collection this service manages.
func (s *ResourceService[T, PT]) Name() string {
	return s.name
}

// List returns a page of records ordered by creation time descending.
func (s *ResourceService[T, PT]) List(ctx context.Context, page, pageSize int) ([]T, int64, error) {
	ctx = ensureContext(ctx)
	page, pageSize = ClampPage(page, pageSize, DefaultResourcePageSize, MaxResourcePageSize)

	var (
		records []T
		total   int64
	)
	query := s.db.WithContext(ctx).Model(new(T))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%s service: count: %w", s.name, err)
	}
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("%s service: list: %w", s.name, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, total, nil
}

// Get loads a record by id.
func (s *ResourceService[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	ctx = ensureContext(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrResourceNotFound
	}

	record := new(T)
	if err := s.db.WithContext(ctx).First(record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("%s service: get: %w", s.name, err)
	}
	return record, nil
}

// Create validates and inserts record.
func (s *ResourceService[T, PT]) Create(ctx context.Context, record *T) error {
	ctx = ensureContext(ctx)

	if err := appValidator.ValidateStruct(record); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrResourceConflict
		}
		return fmt.Errorf("%s service: create: %w", s.name, err)
	}
	return nil
}

// Update applies a JSON patch over the stored record and saves it. The id cannot be changed.
func (s *ResourceService[T, PT]) Update(ctx context.Context, id string, patch []byte) (*T, error) {
	ctx = ensureContext(ctx)

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	originalID := PT(record).GetID()

	if len(patch) > 0 {
		if err := json.Unmarshal(patch, record); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
		}
	}
	if PT(record).GetID() != originalID {
		return nil, fmt.Errorf("%w: id is immutable", ErrInvalidPatch)
	}
	if err := appValidator.ValidateStruct(record); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrResourceConflict
		}
		return nil, fmt.Errorf("%s service: update: %w", s.name, err)
	}
	return record, nil
}

// Delete removes a record by id.
func (s *ResourceService[T, PT]) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(new(T), "id = ?", strings.TrimSpace(id))
	if result.Error != nil {
		return fmt.Errorf("%s service: delete: %w", s.name, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrResourceNotFound
	}
	return nil
}

// Snapshot returns the record as a generic document, or nil when it does not exist.
func (s *ResourceService[T, PT]) Snapshot(ctx context.Context, id string) (map[string]any, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return nil, nil
		}
		return nil, err
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%s service: encode snapshot: %w", s.name, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, fmt.Errorf("%s service: decode snapshot: %w", s.name, err)
	}
	return doc, nil
}
