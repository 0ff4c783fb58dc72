package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockStrictlyIncreases(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.FixedZone("X", 3600))
	c := NewClock(func() time.Time { return fixed })

	first := c.Now()
	second := c.Now()
	third := c.Now()

	assert.Equal(t, time.UTC, first.Location())
	assert.Equal(t, fixed.UTC().Truncate(time.Millisecond), first)
	assert.Equal(t, first.Add(time.Millisecond), second)
	assert.Equal(t, second.Add(time.Millisecond), third)
}

func TestClockFollowsWallTime(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	current := base
	c := NewClock(func() time.Time { return current })

	assert.Equal(t, base, c.Now())
	current = base.Add(time.Second)
	assert.Equal(t, base.Add(time.Second), c.Now())
}
