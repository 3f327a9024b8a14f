// Package cooldown throttles actions per key (usually a user id) so each key
// may act at most once per interval.
package cooldown

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	lim  *rate.Limiter
	last time.Time
}

type Cooldown struct {
	mu      sync.Mutex
	every   time.Duration
	entries map[string]*entry
	now     func() time.Time
}

func New(every time.Duration) *Cooldown {
	return &Cooldown{
		every:   every,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow consumes the key's token. When the key is still cooling down it
// returns false and the time left.
func (c *Cooldown) Allow(key string) (bool, time.Duration) {
	if c.every <= 0 {
		return true, 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(rate.Every(c.every), 1)}
		c.entries[key] = e
	}

	r := e.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	e.last = now
	c.prune(now)
	return true, 0
}

// prune drops keys whose limiter has fully refilled.
func (c *Cooldown) prune(now time.Time) {
	for k, e := range c.entries {
		if now.Sub(e.last) > c.every {
			delete(c.entries, k)
		}
	}
}
