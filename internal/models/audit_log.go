package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions derived from the HTTP method. Unrecognised methods are stored verbatim.
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
	AuditActionRead   = "READ"

	// AuditActionExport is raised by the export endpoint itself, next to the READ the middleware records.
	AuditActionExport = "EXPORT"
)

// AuditLog is one append-only audit entry. It has no UpdatedAt on purpose: rows are never modified.
type AuditLog struct {
	ID           string        `gorm:"primaryKey;type:uuid" json:"id" bson:"_id"`
	ActorID      string        `gorm:"type:uuid;index;not null" json:"actor_id" bson:"actor_id"`
	StaffActorID *string       `gorm:"type:uuid;index" json:"staff_actor_id" bson:"staff_actor_id"`
	Action       string        `gorm:"index;not null" json:"action" bson:"action"`
	Module       string        `gorm:"index" json:"module" bson:"module"`
	Description  string        `json:"description" bson:"description"`
	Metadata     AuditMetadata `gorm:"embedded;embeddedPrefix:meta_" json:"metadata" bson:"metadata"`
	IPAddress    string        `json:"ip" bson:"ip"`
	UserAgent    string        `json:"user_agent" bson:"user_agent"`
	CreatedAt    time.Time     `gorm:"index" json:"created_at" bson:"created_at"`

	// Populated on read only.
	User  *User  `gorm:"-" json:"user" bson:"user,omitempty"`
	Staff *Staff `gorm:"-" json:"staff" bson:"staff,omitempty"`
}

// AuditMetadata carries the well-known request attributes of an entry plus a free-form Extra map.
// RequestBody, OriginalData and UpdatedData are only set for UPDATE actions.
type AuditMetadata struct {
	Method         string            `json:"method" bson:"method"`
	Path           string            `json:"path" bson:"path"`
	Params         datatypes.JSONMap `json:"params,omitempty" bson:"params,omitempty"`
	Query          datatypes.JSONMap `json:"query,omitempty" bson:"query,omitempty"`
	StatusCode     int               `json:"status_code" bson:"status_code"`
	UserRole       string            `gorm:"index" json:"user_role" bson:"user_role"`
	UserEmail      string            `json:"user_email" bson:"user_email"`
	LoginType      string            `json:"login_type,omitempty" bson:"login_type,omitempty"`
	AttemptedEmail string            `json:"attempted_email,omitempty" bson:"attempted_email,omitempty"`
	ErrorMessage   string            `json:"error_message,omitempty" bson:"error_message,omitempty"`
	Timestamp      string            `json:"timestamp" bson:"timestamp"`
	RequestBody    datatypes.JSONMap `json:"request_body,omitempty" bson:"request_body,omitempty"`
	OriginalData   datatypes.JSONMap `json:"original_data,omitempty" bson:"original_data,omitempty"`
	UpdatedData    datatypes.JSONMap `json:"updated_data,omitempty" bson:"updated_data,omitempty"`
	Extra          datatypes.JSONMap `json:"extra,omitempty" bson:"extra,omitempty"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// BeforeUpdate rejects any attempt to modify a stored audit entry.
func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

// BeforeDelete rejects deletion through the ORM; retention tooling works outside this package.
func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}
