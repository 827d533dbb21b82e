package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := WithRetry(func() (string, error) {
		calls++
		return "ok", nil
	}, 2, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecoversAfterTwoFailures(t *testing.T) {
	calls := 0
	result, err := WithRetry(func() (string, error) {
		calls++
		if calls <= 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}, 2, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestWithRetryExhaustsAttemptsAndReturnsLastError(t *testing.T) {
	calls := 0
	lastErr := errors.New("final failure")
	_, err := WithRetry(func() (string, error) {
		calls++
		if calls == 3 {
			return "", lastErr
		}
		return "", errors.New("earlier failure")
	}, 2, time.Millisecond)

	// initial attempt + 2 retries
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, lastErr)
}

func TestWithRetryZeroRetriesMeansSingleAttempt(t *testing.T) {
	calls := 0
	_, err := WithRetry(func() (string, error) {
		calls++
		return "", errors.New("nope")
	}, 0, time.Millisecond)

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
