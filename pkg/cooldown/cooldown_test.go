package cooldown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowPerKey(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := New(time.Minute)
	c.now = func() time.Time { return now }

	ok, _ := c.Allow("u1")
	assert.True(t, ok)

	ok, left := c.Allow("u1")
	assert.False(t, ok)
	assert.InDelta(t, time.Minute.Seconds(), left.Seconds(), 0.01)

	ok, _ = c.Allow("u2")
	assert.True(t, ok, "other keys are not affected")

	now = now.Add(30 * time.Second)
	ok, left = c.Allow("u1")
	assert.False(t, ok)
	assert.InDelta(t, 30, left.Seconds(), 0.01)

	now = now.Add(31 * time.Second)
	ok, _ = c.Allow("u1")
	assert.True(t, ok)
}

func TestZeroIntervalDisables(t *testing.T) {
	c := New(0)
	for i := 0; i < 3; i++ {
		ok, _ := c.Allow("u1")
		assert.True(t, ok)
	}
}
