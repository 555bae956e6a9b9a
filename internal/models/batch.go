package models

// Batch is master data describing a recurring coached activity group.
type Batch struct {
	BaseModel

	Name     string `gorm:"uniqueIndex;not null" json:"name" validate:"required,notblank,max=64"`
	Activity string `gorm:"index" json:"activity" validate:"required"`
	Coach    string `json:"coach"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	Schedule string `json:"schedule"`
}
