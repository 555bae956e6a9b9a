package models

// Staff is a club employee. Staff act through their linked User identity.
type Staff struct {
	BaseModel `bson:",inline"`

	UserID      *string `gorm:"type:uuid;index" json:"user_id" bson:"user_id"`
	Name        string  `gorm:"not null" json:"name" bson:"name" validate:"required,notblank,max=128"`
	Email       string  `gorm:"index" json:"email" bson:"email" validate:"omitempty,email"`
	Phone       string  `json:"phone" bson:"phone" validate:"omitempty,phone"`
	Designation string  `json:"designation" bson:"designation"`
}

func (Staff) TableName() string {
	return "staff"
}
