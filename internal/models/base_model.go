package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides shared fields for club resources.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id" bson:"_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// BeforeCreate ensures UUID identifiers are generated automatically.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// GetID satisfies the resource contract used by generic CRUD services.
func (m *BaseModel) GetID() string {
	return m.ID
}
