package models

// User is an authenticated portal identity (member self-service or admin). Credentials live with
// the token issuer, never in this table.
type User struct {
	BaseModel `bson:",inline"`

	Name     string `gorm:"not null" json:"name" bson:"name" validate:"required,notblank,max=128"`
	Email    string `gorm:"uniqueIndex;not null" json:"email" bson:"email" validate:"required,email"`
	Role     string `gorm:"index;default:member" json:"role" bson:"role" validate:"omitempty,oneof=admin staff member"`
	IsActive bool   `gorm:"default:true" json:"is_active" bson:"is_active"`
}
