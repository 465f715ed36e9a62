package models

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
)

func TestDistanceKm(t *testing.T) {
	saigon := Location{Latitude: 10.7769, Longitude: 106.7009}
	hanoi := Location{Latitude: 21.0278, Longitude: 105.8342}

	assert.Zero(t, DistanceKm(saigon, saigon))
	assert.InDelta(t, 1140, DistanceKm(saigon, hanoi), 10)
	assert.InDelta(t, DistanceKm(saigon, hanoi), DistanceKm(hanoi, saigon), 1e-9)
	assert.InDelta(t, math.Pi*earthRadiusKm, DistanceKm(Location{}, Location{Longitude: 180}), 1e-6)
}

func TestLocationValidate(t *testing.T) {
	require.NoError(t, Location{Latitude: -90, Longitude: 180}.Validate())
	for _, bad := range []Location{{Latitude: 90.1}, {Longitude: -180.5}, {Latitude: math.NaN()}} {
		assert.True(t, dErrors.HasCode(bad.Validate(), dErrors.CodeValidation), "%+v", bad)
	}
}

func TestUpdateProfileRequest(t *testing.T) {
	now := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	current := domain.BloodTypeID(uuid.New())
	other := uuid.NewString()

	t.Run("applies trimmed fields", func(t *testing.T) {
		phone, addr := " 0901 ", "  1 Main St "
		req := &UpdateProfileRequest{ProfileFields{Phone: &phone, Address: &addr, BloodTypeID: &other}}
		require.NoError(t, req.Validate())

		u := &User{FullName: "Kim"}
		require.NoError(t, req.ApplyTo(u, now))
		assert.Equal(t, "0901", u.Phone)
		assert.Equal(t, "1 Main St", u.Address)
		assert.Equal(t, "Kim", u.FullName)
		assert.Equal(t, other, u.BloodTypeID.String())
		assert.Equal(t, now, u.UpdatedAt)
	})

	t.Run("confirmed type is locked", func(t *testing.T) {
		req := &UpdateProfileRequest{ProfileFields{BloodTypeID: &other}}
		require.NoError(t, req.Validate())
		u := &User{BloodTypeID: &current, LastDonationDate: &now}
		assert.True(t, dErrors.HasCode(req.ApplyTo(u, now), dErrors.CodeInvalidState))
		assert.Equal(t, current, *u.BloodTypeID)

		same := current.String()
		req = &UpdateProfileRequest{ProfileFields{BloodTypeID: &same}}
		require.NoError(t, req.Validate())
		assert.NoError(t, req.ApplyTo(u, now))
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		blank := "  "
		req := &UpdateProfileRequest{ProfileFields{FullName: &blank}}
		assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeValidation))
	})
}

func TestAdminRequests(t *testing.T) {
	now := time.Now()

	t.Run("create defaults to a ready donor", func(t *testing.T) {
		req := &AdminCreateUserRequest{RegisterRequest: RegisterRequest{Email: "A@Example.org", Password: "password123"}}
		require.NoError(t, req.Validate())
		u := req.NewUser(domain.UserID(uuid.New()), "hash", now)
		assert.Equal(t, domain.RoleDonor, u.Role)
		assert.True(t, u.ReadyToDonate)
		assert.Equal(t, StatusActive, u.Status)
	})

	t.Run("staff are not ready unless asked", func(t *testing.T) {
		req := &AdminCreateUserRequest{RegisterRequest: RegisterRequest{Email: "s@example.org", Password: "password123"}, Role: "staff"}
		require.NoError(t, req.Validate())
		assert.False(t, req.NewUser(domain.UserID(uuid.New()), "hash", now).ReadyToDonate)
	})

	t.Run("suspending clears readiness", func(t *testing.T) {
		status := "suspended"
		req := &AdminUpdateUserRequest{Status: &status}
		require.NoError(t, req.Validate())
		u := &User{Status: StatusActive, ReadyToDonate: true}
		req.ApplyTo(u, now)
		assert.Equal(t, StatusSuspended, u.Status)
		assert.False(t, u.ReadyToDonate)
	})

	t.Run("unknown status", func(t *testing.T) {
		status := "gone"
		assert.True(t, dErrors.HasCode((&AdminUpdateUserRequest{Status: &status}).Validate(), dErrors.CodeValidation))
	})
}

func TestNearbyRequest(t *testing.T) {
	for _, radius := range []float64{0, -1, 500.5} {
		req := &NearbyDonorsRequest{Latitude: 10, Longitude: 106, RadiusKm: radius}
		assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeValidation), "radius %v", radius)
	}

	bt := domain.BloodTypeID(uuid.New())
	raw := bt.String()
	req := &NearbyDonorsRequest{Latitude: 10.7769, Longitude: 106.7009, RadiusKm: 5, BloodTypeID: &raw}
	require.NoError(t, req.Validate())
	filter := req.Filter()

	donor := &User{Role: domain.RoleDonor, Status: StatusActive, ReadyToDonate: true, BloodTypeID: &bt,
		Location: &Location{Latitude: 10.78, Longitude: 106.70}}
	d, ok := filter.Matches(donor)
	assert.True(t, ok)
	assert.Less(t, d, 1.0)

	donor.Status = StatusSuspended
	_, ok = filter.Matches(donor)
	assert.False(t, ok)

	donor.Status = StatusActive
	donor.Location = nil
	_, ok = filter.Matches(donor)
	assert.False(t, ok)
}

func TestListFilterNormalize(t *testing.T) {
	f := ListFilter{Limit: 1000, Offset: -3}
	f.Normalize()
	assert.Equal(t, MaxListLimit, f.Limit)
	assert.Zero(t, f.Offset)

	f = ListFilter{}
	f.Normalize()
	assert.Equal(t, DefaultListLimit, f.Limit)
}
