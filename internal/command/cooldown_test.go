package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests move through the cooldown window deterministically.
type fakeClock struct {
	at time.Time
}

func (f *fakeClock) now() time.Time          { return f.at }
func (f *fakeClock) advance(d time.Duration) { f.at = f.at.Add(d) }

func newTestCooldowns() (*Cooldowns, *fakeClock) {
	clock := &fakeClock{at: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCooldowns()
	c.now = clock.now
	return c, clock
}

func TestCooldownWindow(t *testing.T) {
	c, clock := newTestCooldowns()

	assert.False(t, c.Active("ping", "user1", 3))
	assert.Zero(t, c.Remaining("ping", "user1", 3))

	c.Mark("ping", "user1")
	assert.True(t, c.Active("ping", "user1", 3))
	assert.Equal(t, 3*time.Second, c.Remaining("ping", "user1", 3))

	clock.advance(2 * time.Second)
	assert.True(t, c.Active("ping", "user1", 3))
	assert.Equal(t, time.Second, c.Remaining("ping", "user1", 3))

	clock.advance(time.Second)
	assert.False(t, c.Active("ping", "user1", 3))
	assert.Zero(t, c.Remaining("ping", "user1", 3))
}

func TestCooldownIsPerCommandAndUser(t *testing.T) {
	c, _ := newTestCooldowns()
	c.Mark("ping", "user1")

	assert.True(t, c.Active("ping", "user1", 3))
	assert.False(t, c.Active("ping", "user2", 3))
	assert.False(t, c.Active("help", "user1", 3))
}

func TestCooldownMarkOverwrites(t *testing.T) {
	c, clock := newTestCooldowns()

	c.Mark("ping", "user1")
	clock.advance(2 * time.Second)
	c.Mark("ping", "user1")

	clock.advance(2 * time.Second)
	assert.True(t, c.Active("ping", "user1", 3))
	assert.Equal(t, 1, c.Len())
}

func TestCooldownSweep(t *testing.T) {
	c, clock := newTestCooldowns()

	c.Mark("ping", "old")
	clock.advance(DefaultRetention + time.Minute)
	c.Mark("ping", "fresh")

	removed := c.Sweep(DefaultRetention)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Active("ping", "fresh", 3))
	assert.False(t, c.Active("ping", "old", 3))
}
