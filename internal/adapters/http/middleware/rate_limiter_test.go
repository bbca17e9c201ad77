package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsBurstThenDenies(t *testing.T) {
	limiter := NewRateLimiter(3, 0)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.AllowRequest(), "request %d should pass", i+1)
	}
	assert.False(t, limiter.AllowRequest())
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	limiter := NewRateLimiter(2, 2)

	assert.True(t, limiter.AllowRequest())
	assert.True(t, limiter.AllowRequest())
	assert.False(t, limiter.AllowRequest())

	// pretend a second has passed instead of sleeping
	limiter.LastUpdate = time.Now().Add(-time.Second)
	assert.True(t, limiter.AllowRequest())
}

func TestRateLimiterCapsAtCapacity(t *testing.T) {
	limiter := NewRateLimiter(3, 1000)
	limiter.CurrentTokens = 0
	limiter.LastUpdate = time.Now().Add(-time.Hour)

	require.True(t, limiter.AllowRequest())
	assert.InDelta(t, 2.0, limiter.CurrentTokens, 0.01)
}

func TestIPRateLimiterIsolatesKeys(t *testing.T) {
	limiter := NewIPRateLimiter(1, 0)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "203.0.113.8")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiterKeyNames(t *testing.T) {
	limiter := NewRedisRateLimiter(nil, 5, 0.5, time.Hour)

	assert.Equal(t, "rate_limit:203.0.113.7:tokens", limiter.TokensKey("203.0.113.7"))
	assert.Equal(t, "rate_limit:203.0.113.7:last", limiter.LastKey("203.0.113.7"))
}
