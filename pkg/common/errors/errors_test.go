package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorWrapsInvalidConfiguration(t *testing.T) {
	err := NewValidationError("timer", "delay", -1, "cannot be negative")
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	assert.Contains(t, err.Error(), "timer")
	assert.Contains(t, err.Error(), "delay")
	assert.Contains(t, err.Error(), "cannot be negative")
}

func TestValidationErrorHint(t *testing.T) {
	err := NewValidationError("pool", "maxThreads", 0, "must be positive").
		WithHint("use at least 1")
	assert.Contains(t, err.Error(), "use at least 1")
}

func TestRetryableClassification(t *testing.T) {
	assert.True(t, IsRetryable(ErrTimeout))
	assert.True(t, IsRetryable(ErrCapacityExceeded))
	assert.False(t, IsRetryable(ErrClosed))
	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(nil))
}
