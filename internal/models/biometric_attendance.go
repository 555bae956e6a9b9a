package models

import "time"

// BiometricAttendance is a check-in/out punch captured by a biometric device.
type BiometricAttendance struct {
	BaseModel

	MemberID   string    `gorm:"type:uuid;index;not null" json:"member_id" validate:"required"`
	DeviceID   string    `gorm:"index" json:"device_id" validate:"required"`
	Direction  string    `json:"direction" validate:"required,oneof=in out"`
	RecordedAt time.Time `gorm:"index" json:"recorded_at" validate:"required"`
}

func (BiometricAttendance) TableName() string {
	return "biometric_attendance"
}
