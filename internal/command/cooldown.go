package command

import (
	"sync"
	"time"
)

// DefaultRetention is how long cooldown entries are kept before Sweep drops
// them, independent of any per-command cooldown length.
const DefaultRetention = 24 * time.Hour

// Cooldowns tracks the last invocation time per (command, user) pair. It owns
// no timers; Sweep is driven by an external scheduler or an owner command.
type Cooldowns struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

// NewCooldowns returns an empty tracker.
func NewCooldowns() *Cooldowns {
	return &Cooldowns{last: make(map[string]time.Time), now: time.Now}
}

func cooldownKey(command, user string) string {
	return command + "|" + user
}

// Active reports whether the user is still inside the cooldown window for the
// command.
func (c *Cooldowns) Active(command, user string, seconds int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	at, ok := c.last[cooldownKey(command, user)]
	if !ok {
		return false
	}
	return c.now().Sub(at) < time.Duration(seconds)*time.Second
}

// Mark records now as the last invocation for the pair, overwriting any prior
// entry. Called right before the handler runs, so the cooldown clock starts at
// invocation time rather than completion time.
func (c *Cooldowns) Mark(command, user string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[cooldownKey(command, user)] = c.now()
}

// Remaining returns how long the user still has to wait, or zero.
func (c *Cooldowns) Remaining(command, user string, seconds int) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	at, ok := c.last[cooldownKey(command, user)]
	if !ok {
		return 0
	}
	left := time.Duration(seconds)*time.Second - c.now().Sub(at)
	if left < 0 {
		return 0
	}
	return left
}

// Sweep drops every entry older than retention and returns how many were
// removed.
func (c *Cooldowns) Sweep(retention time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, at := range c.last {
		if now.Sub(at) > retention {
			delete(c.last, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked entries.
func (c *Cooldowns) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.last)
}
