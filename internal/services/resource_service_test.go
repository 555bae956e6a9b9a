package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clubsphere/clubsphere/internal/database/testutil"
	"github.com/clubsphere/clubsphere/internal/models"
	appValidator "github.com/clubsphere/clubsphere/pkg/validator"
)

func newClubServices(t *testing.T) *ClubServices {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewClubServices(db)
	require.NoError(t, err)
	return svc
}

func TestResourceServiceCRUD(t *testing.T) {
	svc := newClubServices(t)
	ctx := context.Background()

	member := &models.Member{Name: "Meera", Email: "meera@club.test", MembershipType: "family"}
	require.NoError(t, svc.Members.Create(ctx, member))
	require.NotEmpty(t, member.ID)

	loaded, err := svc.Members.Get(ctx, member.ID)
	require.NoError(t, err)
	require.Equal(t, "Meera", loaded.Name)

	updated, err := svc.Members.Update(ctx, member.ID, []byte(`{"name":"Meera S","status":"suspended"}`))
	require.NoError(t, err)
	require.Equal(t, "Meera S", updated.Name)
	require.Equal(t, "suspended", updated.Status)
	require.Equal(t, "family", updated.MembershipType)

	records, total, err := svc.Members.List(ctx, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, records, 1)

	require.NoError(t, svc.Members.Delete(ctx, member.ID))
	_, err = svc.Members.Get(ctx, member.ID)
	require.ErrorIs(t, err, ErrResourceNotFound)
	require.ErrorIs(t, svc.Members.Delete(ctx, member.ID), ErrResourceNotFound)
}

func TestResourceServiceValidation(t *testing.T) {
	svc := newClubServices(t)
	ctx := context.Background()

	err := svc.Bookings.Create(ctx, &models.Booking{Kind: "spa"})
	var validationErr appValidator.ValidationErrors
	require.True(t, errors.As(err, &validationErr))

	booking := &models.Booking{MemberID: "m-1", Kind: "hall", Reference: "Banquet", StartsAt: time.Now()}
	require.NoError(t, svc.Bookings.Create(ctx, booking))

	_, err = svc.Bookings.Update(ctx, booking.ID, []byte(`{"status":"maybe"}`))
	require.True(t, errors.As(err, &validationErr))

	_, err = svc.Bookings.Update(ctx, booking.ID, []byte(`{"id":"other"}`))
	require.ErrorIs(t, err, ErrInvalidPatch)

	_, err = svc.Bookings.Update(ctx, booking.ID, []byte(`not json`))
	require.ErrorIs(t, err, ErrInvalidPatch)
}

func TestResourceServiceConflict(t *testing.T) {
	svc := newClubServices(t)
	ctx := context.Background()

	require.NoError(t, svc.Batches.Create(ctx, &models.Batch{Name: "U12 Swim", Activity: "swimming"}))
	err := svc.Batches.Create(ctx, &models.Batch{Name: "U12 Swim", Activity: "swimming"})
	require.ErrorIs(t, err, ErrResourceConflict)
}

func TestResourceRegistrySnapshots(t *testing.T) {
	svc := newClubServices(t)
	ctx := context.Background()

	require.Equal(t, []string{
		CollectionBatch, CollectionBiometricAttendance, CollectionBookings,
		CollectionMembers, CollectionStaff, CollectionUsers,
	}, svc.Registry.Collections())

	punch := &models.BiometricAttendance{MemberID: "m-1", DeviceID: "gate-2", Direction: "in", RecordedAt: time.Now()}
	require.NoError(t, svc.Attendance.Create(ctx, punch))

	doc, err := svc.Registry.Find(ctx, CollectionBiometricAttendance, punch.ID)
	require.NoError(t, err)
	require.Equal(t, punch.ID, doc["id"])
	require.Equal(t, "gate-2", doc["device_id"])

	doc, err = svc.Registry.Find(ctx, CollectionMembers, "missing")
	require.NoError(t, err)
	require.Nil(t, doc)

	_, err = svc.Registry.Find(ctx, "trophies", "1")
	require.ErrorIs(t, err, ErrCollectionNotRegistered)
}

func TestResourceRegistryRegister(t *testing.T) {
	registry := NewResourceRegistry()
	finder := func(context.Context, string) (map[string]any, error) { return nil, nil }

	require.NoError(t, registry.Register("events", finder))
	require.Error(t, registry.Register("events", finder))
	require.Error(t, registry.Register(" ", finder))
	require.Error(t, registry.Register("halls", nil))
}

func TestUserSnapshotUsesJSONNames(t *testing.T) {
	svc := newClubServices(t)
	ctx := context.Background()

	user := &models.User{Name: "Kiran", Email: "kiran@club.test", Role: "member", IsActive: true}
	require.NoError(t, svc.Users.Create(ctx, user))

	doc, err := svc.Registry.Find(ctx, CollectionUsers, user.ID)
	require.NoError(t, err)
	require.Equal(t, "kiran@club.test", doc["email"])
	require.Equal(t, true, doc["is_active"])
	require.NotContains(t, doc, "password")
	require.NotContains(t, doc, "Email")
}
