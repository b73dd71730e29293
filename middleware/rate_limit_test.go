package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	limiter := NewRateLimiter()

	for i := 0; i < 5; i++ {
		result := limiter.Allow("test:user1", 5, time.Minute)
		assert.True(t, result.Success, "request %d should pass", i+1)
		assert.Equal(t, 5-i-1, result.Remaining)
	}

	result := limiter.Allow("test:user1", 5, time.Minute)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Remaining)
	assert.Greater(t, result.ResetIn, time.Duration(0))
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter()

	for i := 0; i < 3; i++ {
		limiter.Allow("progress:alice", 3, time.Minute)
	}
	assert.False(t, limiter.Allow("progress:alice", 3, time.Minute).Success)

	// A different user, and the same user under a different purpose, are
	// unaffected.
	assert.True(t, limiter.Allow("progress:bob", 3, time.Minute).Success)
	assert.True(t, limiter.Allow("delete:alice", 3, time.Minute).Success)
}

func TestRateLimiterWindowExpires(t *testing.T) {
	limiter := NewRateLimiter()

	assert.True(t, limiter.Allow("k", 1, 10*time.Millisecond).Success)
	assert.False(t, limiter.Allow("k", 1, 10*time.Millisecond).Success)

	time.Sleep(15 * time.Millisecond)
	assert.True(t, limiter.Allow("k", 1, 10*time.Millisecond).Success)
}

func TestProgressAndDeleteLimits(t *testing.T) {
	limiter := NewRateLimiter()

	for i := 0; i < 60; i++ {
		assert.True(t, limiter.AllowProgress("kid1").Success)
	}
	assert.False(t, limiter.AllowProgress("kid1").Success)

	for i := 0; i < 10; i++ {
		assert.True(t, limiter.AllowDelete("kid1").Success)
	}
	assert.False(t, limiter.AllowDelete("kid1").Success)
}
