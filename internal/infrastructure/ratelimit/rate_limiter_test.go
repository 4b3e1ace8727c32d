package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketExhaustion(t *testing.T) {
	bucket := NewTokenBucket(3, 1, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := bucket.Allow()
		assert.True(t, allowed)
	}

	allowed, wait := bucket.Allow()
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))
}

func TestRateLimiterIsolatesUsersAndActions(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 10; i++ {
		allowed, _ := rl.Allow("u1", "open_conversation")
		assert.True(t, allowed)
	}
	allowed, _ := rl.Allow("u1", "open_conversation")
	assert.False(t, allowed)

	// Another user and another action are untouched.
	allowed, _ = rl.Allow("u2", "open_conversation")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("u1", "send_message")
	assert.True(t, allowed)
}
