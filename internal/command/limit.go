package command

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimits enforces a command's per-minute invocation limit per user,
// on top of the fixed cooldown window.
type RateLimits struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimits returns an empty limiter set.
func NewRateLimits() *RateLimits {
	return &RateLimits{limiters: make(map[string]*rate.Limiter)}
}

// Allow reports whether the user may invoke the command now under its
// per-minute limit. A limit of zero or less means unlimited.
func (r *RateLimits) Allow(command, user string, perMinute int) bool {
	if perMinute <= 0 {
		return true
	}

	r.mu.Lock()
	key := command + "|" + user
	lim, ok := r.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
		r.limiters[key] = lim
	}
	r.mu.Unlock()

	return lim.Allow()
}
