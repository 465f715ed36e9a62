package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bloodlink/pkg/domain-errors"
)

func TestNormalize(t *testing.T) {
	got, err := Normalize("  Jane.Doe@Example.ORG ")
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.org", got)

	for _, bad := range []string{"", "no-at-sign", "Jane <jane@example.org>", "a@"} {
		_, err := Normalize(bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), bad)
	}
}

func TestDeriveName(t *testing.T) {
	assert.Equal(t, "Jane Doe", DeriveName("jane.doe@example.org"))
	assert.Equal(t, "Sam", DeriveName("sam@example.org"))
	assert.Equal(t, "Donor", DeriveName("...@example.org"))
}
