package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/clubsphere/clubsphere/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Staff{},
		&models.Member{},
		&models.Booking{},
		&models.Batch{},
		&models.BiometricAttendance{},
		&models.AuditLog{},
	)
}

// AdminSeed describes the administrator account ensured at start-up. An empty email skips seeding.
type AdminSeed struct {
	Name  string
	Email string
}

// SeedAdmin ensures an active admin user exists for seed.Email and returns it. It returns nil
// when no email is configured.
func SeedAdmin(db *gorm.DB, seed AdminSeed) (*models.User, error) {
	if db == nil {
		return nil, errors.New("nil database handle")
	}

	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" {
		return nil, nil
	}
	name := strings.TrimSpace(seed.Name)
	if name == "" {
		name = "Administrator"
	}

	admin := models.User{
		Name:     name,
		Email:    email,
		Role:     "admin",
		IsActive: true,
	}
	var user models.User
	if err := db.Where(models.User{Email: email}).Attrs(admin).FirstOrCreate(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
