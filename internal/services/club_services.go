package services

import (
	"gorm.io/gorm"

	"github.com/clubsphere/clubsphere/internal/models"
)

// Collection names of the club resources.
const (
	CollectionMembers             = "members"
	CollectionBookings            = "bookings"
	CollectionStaff               = "staff"
	CollectionUsers               = "users"
	CollectionBatch               = "batch"
	CollectionBiometricAttendance = "biometric_attendance"
)

// ClubServices bundles the CRUD services for every club resource together with the registry
// they are registered in.
type ClubServices struct {
	Members    *ResourceService[models.Member, *models.Member]
	Bookings   *ResourceService[models.Booking, *models.Booking]
	Staff      *ResourceService[models.Staff, *models.Staff]
	Users      *ResourceService[models.User, *models.User]
	Batches    *ResourceService[models.Batch, *models.Batch]
	Attendance *ResourceService[models.BiometricAttendance, *models.BiometricAttendance]

	Registry *ResourceRegistry
}

// NewClubServices builds the resource services on db and registers their finders.
func NewClubServices(db *gorm.DB) (*ClubServices, error) {
	var (
		svc ClubServices
		err error
	)
	if svc.Members, err = NewResourceService[models.Member](db, CollectionMembers); err != nil {
		return nil, err
	}
	if svc.Bookings, err = NewResourceService[models.Booking](db, CollectionBookings); err != nil {
		return nil, err
	}
	if svc.Staff, err = NewResourceService[models.Staff](db, CollectionStaff); err != nil {
		return nil, err
	}
	if svc.Users, err = NewResourceService[models.User](db, CollectionUsers); err != nil {
		return nil, err
	}
	if svc.Batches, err = NewResourceService[models.Batch](db, CollectionBatch); err != nil {
		return nil, err
	}
	if svc.Attendance, err = NewResourceService[models.BiometricAttendance](db, CollectionBiometricAttendance); err != nil {
		return nil, err
	}

	svc.Registry = NewResourceRegistry()
	for name, finder := range map[string]FinderFunc{
		CollectionMembers:             svc.Members.Snapshot,
		CollectionBookings:            svc.Bookings.Snapshot,
		CollectionStaff:               svc.Staff.Snapshot,
		CollectionUsers:               svc.Users.Snapshot,
		CollectionBatch:               svc.Batches.Snapshot,
		CollectionBiometricAttendance: svc.Attendance.Snapshot,
	} {
		if err := svc.Registry.Register(name, finder); err != nil {
			return nil, err
		}
	}
	return &svc, nil
}
