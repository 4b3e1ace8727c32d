package typing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypingSetAndClear(t *testing.T) {
	c := NewCoordinator(6 * time.Second)

	c.Set("t1", "u1")
	assert.Equal(t, []string{"u1"}, c.ActiveTypers("t1"))

	c.Clear("t1", "u1")
	assert.Empty(t, c.ActiveTypers("t1"))
}

func TestTypingExpiresLazily(t *testing.T) {
	c := NewCoordinator(6 * time.Second)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("t1", "u1")

	// Just before the deadline the signal is still live.
	c.now = func() time.Time { return base.Add(5 * time.Second) }
	assert.Equal(t, []string{"u1"}, c.ActiveTypers("t1"))

	// Past the deadline it vanishes without any stop event.
	c.now = func() time.Time { return base.Add(7 * time.Second) }
	assert.Empty(t, c.ActiveTypers("t1"))
}

func TestTypingRefreshExtendsDeadline(t *testing.T) {
	c := NewCoordinator(6 * time.Second)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("t1", "u1")

	c.now = func() time.Time { return base.Add(4 * time.Second) }
	c.Set("t1", "u1") // keystroke refresh

	c.now = func() time.Time { return base.Add(8 * time.Second) }
	assert.Equal(t, []string{"u1"}, c.ActiveTypers("t1"))
}

func TestTypingPerThreadIsolation(t *testing.T) {
	c := NewCoordinator(6 * time.Second)

	c.Set("t1", "u1")
	c.Set("t2", "u2")

	assert.Equal(t, []string{"u1"}, c.ActiveTypers("t1"))
	assert.Equal(t, []string{"u2"}, c.ActiveTypers("t2"))
}

func TestSweepDropsExpiredThreads(t *testing.T) {
	c := NewCoordinator(6 * time.Second)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("t1", "u1")
	c.Set("t2", "u2")

	c.now = func() time.Time { return base.Add(time.Minute) }
	c.sweep()

	assert.Empty(t, c.byThread)
}

func TestTypingIgnoresEmptyIDs(t *testing.T) {
	c := NewCoordinator(6 * time.Second)

	c.Set("", "u1")
	c.Set("t1", "")
	assert.Empty(t, c.byThread)
}
