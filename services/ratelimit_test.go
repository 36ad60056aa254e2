package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdateLimiterBurst(t *testing.T) {
	l := NewUpdateLimiter(time.Hour, 2)

	assert.True(t, l.Allow(1, 10))
	assert.True(t, l.Allow(1, 10))
	assert.False(t, l.Allow(1, 10))
}

func TestUpdateLimiterKeysAreIndependent(t *testing.T) {
	l := NewUpdateLimiter(time.Hour, 1)

	assert.True(t, l.Allow(1, 10))
	assert.False(t, l.Allow(1, 10))

	// Same actor on a different fixture, and a different actor on the same
	// fixture, each get their own bucket.
	assert.True(t, l.Allow(1, 11))
	assert.True(t, l.Allow(2, 10))
}

func TestUpdateLimiterRefills(t *testing.T) {
	l := NewUpdateLimiter(10*time.Millisecond, 1)

	assert.True(t, l.Allow(1, 10))
	assert.False(t, l.Allow(1, 10))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, l.Allow(1, 10))
}
