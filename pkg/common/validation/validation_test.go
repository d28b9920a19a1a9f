package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zerrors "github.com/rdkcentral/zilker-sdk-sub009/pkg/common/errors"
)

func TestValidatePositive(t *testing.T) {
	assert.NoError(t, ValidatePositive("m", "f", 1))
	require.ErrorIs(t, ValidatePositive("m", "f", 0), zerrors.ErrInvalidConfiguration)
	require.ErrorIs(t, ValidatePositive("m", "f", -3), zerrors.ErrInvalidConfiguration)
}

func TestValidateNonNegative(t *testing.T) {
	assert.NoError(t, ValidateNonNegative("m", "f", 0))
	assert.NoError(t, ValidateNonNegative("m", "f", 7))
	require.ErrorIs(t, ValidateNonNegative("m", "f", -1), zerrors.ErrInvalidConfiguration)
}

func TestValidatePositiveDuration(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration("m", "f", time.Second))
	require.ErrorIs(t, ValidatePositiveDuration("m", "f", 0), zerrors.ErrInvalidConfiguration)
	require.ErrorIs(t, ValidatePositiveDuration("m", "f", -time.Second), zerrors.ErrInvalidConfiguration)
}

func TestValidateNotNil(t *testing.T) {
	assert.NoError(t, ValidateNotNil("m", "f", struct{}{}))
	require.ErrorIs(t, ValidateNotNil("m", "f", nil), zerrors.ErrInvalidConfiguration)
}

func TestValidateNotEmpty(t *testing.T) {
	assert.NoError(t, ValidateNotEmpty("m", "f", "x"))
	require.ErrorIs(t, ValidateNotEmpty("m", "f", ""), zerrors.ErrInvalidConfiguration)
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange("m", "lo", "hi", 1, 2))
	assert.NoError(t, ValidateRange("m", "lo", "hi", 2, 2))
	require.ErrorIs(t, ValidateRange("m", "lo", "hi", 3, 2), zerrors.ErrInvalidConfiguration)
}
