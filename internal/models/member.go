package models

import "time"

// Member is a club membership record.
type Member struct {
	BaseModel

	UserID         *string    `gorm:"type:uuid;index" json:"user_id"`
	Name           string     `gorm:"not null" json:"name" validate:"required,notblank,max=128"`
	Email          string     `gorm:"index" json:"email" validate:"omitempty,email"`
	Phone          string     `json:"phone" validate:"omitempty,phone"`
	MembershipType string     `gorm:"index" json:"membership_type" validate:"omitempty,oneof=individual family corporate junior"`
	Status         string     `gorm:"index;default:active" json:"status" validate:"omitempty,oneof=active suspended expired"`
	ValidUntil     *time.Time `json:"valid_until"`
}
