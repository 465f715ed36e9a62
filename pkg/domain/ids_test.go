package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bloodlink/pkg/domain-errors"
)

func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseRequestID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseProcessID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		parsed, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), parsed)
	})
}

func TestParseID_HostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE blood_requests;--", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAppointmentID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errUser := ParseUserID(input)
			_, errType := ParseBloodTypeID(input)
			_, errRequest := ParseRequestID(input)
			_, errProcess := ParseProcessID(input)
			_, errAppointment := ParseAppointmentID(input)

			require.Error(t, errUser)
			require.Error(t, errType)
			require.Error(t, errRequest)
			require.Error(t, errProcess)
			require.Error(t, errAppointment)
		})
	}

	_, err := ParseBloodTypeID(validUUID)
	require.NoError(t, err)
}

func TestIDsSerializeAsPlainUUIDs(t *testing.T) {
	raw := uuid.New()
	body, err := json.Marshal(struct {
		ID ProcessID `json:"id"`
	}{ID: ProcessID(raw)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+raw.String()+`"}`, string(body))

	var decoded struct {
		ID ProcessID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, ProcessID(raw), decoded.ID)
}

func TestActorPermissions(t *testing.T) {
	donor := Actor{UserID: UserID(uuid.New()), Role: RoleDonor}
	staff := Actor{UserID: UserID(uuid.New()), Role: RoleStaff}
	admin := Actor{UserID: UserID(uuid.New()), Role: RoleAdmin}

	assert.True(t, dErrors.HasCode(Actor{}.RequireStaff(), dErrors.CodeUnauthorized))
	assert.True(t, dErrors.HasCode(donor.RequireStaff(), dErrors.CodeForbidden))
	assert.NoError(t, staff.RequireStaff())
	assert.NoError(t, admin.RequireStaff())
	assert.True(t, dErrors.HasCode(staff.RequireAdmin(), dErrors.CodeForbidden))
	assert.NoError(t, admin.RequireAdmin())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" staff ")
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, r)

	_, err = ParseRole("nurse")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
