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

func TestNormalizeGroup(t *testing.T) {
	for raw, want := range map[string]string{"ab+": "AB+", " o- ": "O-", "A +": "A+"} {
		got, err := NormalizeGroup(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := NormalizeGroup("C+")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestNewBloodType(t *testing.T) {
	now := time.Now()
	bt, err := NewBloodType(domain.BloodTypeID(uuid.New()), "b-", " rare ", now)
	require.NoError(t, err)
	assert.Equal(t, "B-", bt.Group)
	assert.Equal(t, "rare", bt.Description)
}

func TestCompatibility(t *testing.T) {
	oNeg := domain.BloodTypeID(uuid.New())
	aPos := domain.BloodTypeID(uuid.New())
	bPos := domain.BloodTypeID(uuid.New())

	t.Run("no rules allows every donor", func(t *testing.T) {
		c := CompatibilityFromRules(aPos, nil)
		assert.Equal(t, 0, c.RuleCount)
		assert.True(t, c.Allows(bPos))
	})

	t.Run("rules narrow donors", func(t *testing.T) {
		c := CompatibilityFromRules(aPos, []*CompatibilityRule{
			{DonorTypeID: oNeg, RecipientTypeID: aPos, Compatible: true},
			{DonorTypeID: bPos, RecipientTypeID: aPos, Compatible: false},
			{DonorTypeID: aPos, RecipientTypeID: oNeg, Compatible: true},
		})
		assert.Equal(t, 2, c.RuleCount)
		assert.Equal(t, []domain.BloodTypeID{oNeg}, c.DonorTypeIDs)
		assert.True(t, c.Allows(oNeg))
		assert.False(t, c.Allows(bPos))
	})
}

func TestSetRuleRequestValidate(t *testing.T) {
	yes := true
	donor, recipient := uuid.New(), uuid.New()
	req := &SetRuleRequest{DonorTypeID: donor.String(), RecipientTypeID: recipient.String(), Compatible: &yes}
	require.NoError(t, req.Validate())
	assert.Equal(t, domain.BloodTypeID(donor), req.Donor())
	assert.Equal(t, domain.BloodTypeID(recipient), req.Recipient())

	missing := &SetRuleRequest{DonorTypeID: donor.String(), RecipientTypeID: recipient.String()}
	assert.True(t, dErrors.HasCode(missing.Validate(), dErrors.CodeValidation))

	bad := &SetRuleRequest{DonorTypeID: "nope", RecipientTypeID: recipient.String(), Compatible: &yes}
	assert.True(t, dErrors.HasCode(bad.Validate(), dErrors.CodeInvalidInput))
}

func TestUpdateBloodTypeRequestValidate(t *testing.T) {
	desc := "  universal donor  "
	req := &UpdateBloodTypeRequest{Description: &desc}
	require.NoError(t, req.Validate())
	assert.Equal(t, "universal donor", *req.Description)

	assert.True(t, dErrors.HasCode((&UpdateBloodTypeRequest{}).Validate(), dErrors.CodeValidation))

	long := strings.Repeat("x", 256)
	assert.True(t, dErrors.HasCode((&UpdateBloodTypeRequest{Description: &long}).Validate(), dErrors.CodeValidation))
}
