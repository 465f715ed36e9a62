package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
)

func TestRegisterRequestValidate(t *testing.T) {
	t.Run("normalizes and derives name", func(t *testing.T) {
		req := &RegisterRequest{Email: "  Jane.Doe@Example.org ", Password: "correct horse"}
		require.NoError(t, req.Validate())
		assert.Equal(t, "jane.doe@example.org", req.Email)
		assert.Equal(t, "Jane Doe", req.FullName)
	})

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "nope", Password: "long enough"}},
		{"short password", RegisterRequest{Email: "a@b.co", Password: "short"}},
		{"long password", RegisterRequest{Email: "a@b.co", Password: strings.Repeat("x", 73)}},
		{"long name", RegisterRequest{Email: "a@b.co", Password: "long enough", FullName: strings.Repeat("n", 129)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}

func TestDonationCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	u := NewDonor(domain.UserID(uuid.New()), "d@x.org", "D", "", "hash", now)
	assert.True(t, u.ReadyToDonate)

	u.ApplyDonation(day, now)
	assert.False(t, u.ReadyToDonate)
	assert.Equal(t, day, *u.LastDonationDate)

	assert.False(t, u.DueForReadiness(day.AddDate(0, 0, -1)))
	assert.True(t, u.DueForReadiness(day))

	u.ApplyReadinessRestored(now)
	assert.False(t, u.DueForReadiness(day.AddDate(1, 0, 0)), "ready donors are never due")
}

func TestSetRoleRequest(t *testing.T) {
	req := &SetRoleRequest{Role: "admin"}
	require.NoError(t, req.Validate())
	assert.Equal(t, domain.RoleAdmin, req.Parsed())

	assert.Error(t, (&SetRoleRequest{Role: "root"}).Validate())
}
