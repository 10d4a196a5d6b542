package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitService_Allow(t *testing.T) {
	limiter := NewRateLimitService(RateLimitConfig{
		RateScopeDelayReport: {Max: 2, Window: time.Hour},
	})

	require.NoError(t, limiter.Allow(RateScopeDelayReport, "10.0.0.1"))
	assert.Equal(t, 1, limiter.Remaining(RateScopeDelayReport, "10.0.0.1"))
	require.NoError(t, limiter.Allow(RateScopeDelayReport, "10.0.0.1"))

	err := limiter.Allow(RateScopeDelayReport, "10.0.0.1")
	require.Error(t, err)
	rlErr, ok := err.(*RateLimitError)
	require.True(t, ok)
	assert.Equal(t, RateScopeDelayReport, rlErr.Scope)
	assert.True(t, rlErr.RetryAfter.After(time.Now()))
	assert.Equal(t, 0, limiter.Remaining(RateScopeDelayReport, "10.0.0.1"))

	// other clients are counted separately
	assert.NoError(t, limiter.Allow(RateScopeDelayReport, "10.0.0.2"))

	limiter.Reset(RateScopeDelayReport, "10.0.0.1")
	assert.NoError(t, limiter.Allow(RateScopeDelayReport, "10.0.0.1"))
}

func TestRateLimitService_WindowExpires(t *testing.T) {
	limiter := NewRateLimitService(RateLimitConfig{
		RateScopeAuth: {Max: 1, Window: 50 * time.Millisecond},
	})

	require.NoError(t, limiter.Allow(RateScopeAuth, "user"))
	require.Error(t, limiter.Allow(RateScopeAuth, "user"))

	time.Sleep(80 * time.Millisecond)
	assert.NoError(t, limiter.Allow(RateScopeAuth, "user"))
}

func TestRateLimitService_Unlimited(t *testing.T) {
	limiter := NewRateLimitService(RateLimitConfig{
		RateScopeAuth: {Max: 0, Window: time.Minute},
	})

	for i := 0; i < 50; i++ {
		require.NoError(t, limiter.Allow(RateScopeAuth, "user"))
		require.NoError(t, limiter.Allow(RateScopeDelayReport, "user"))
	}
	assert.Equal(t, -1, limiter.Remaining(RateScopeDelayReport, "user"))
	assert.NoError(t, limiter.Allow(RateScopeAuth, ""))
}
