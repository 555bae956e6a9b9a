package models

import "time"

// Booking reserves an activity slot, event seat, or hall for a member.
type Booking struct {
	BaseModel

	MemberID  string    `gorm:"type:uuid;index;not null" json:"member_id" validate:"required"`
	Kind      string    `gorm:"index;not null" json:"kind" validate:"required,oneof=activity event hall"`
	Reference string    `json:"reference" validate:"required,max=128"`
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	EndsAt    time.Time `json:"ends_at"`
	Status    string    `gorm:"index;default:pending" json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	Amount    float64   `json:"amount" validate:"gte=0"`
}
