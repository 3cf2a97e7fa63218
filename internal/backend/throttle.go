package backend

import (
	"sort"
	"sync"
	"time"
)

// throttle coalesces bursts of marks per key. A key becomes due once it has
// been quiet for the full interval.
type throttle struct {
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]time.Time
}

func newThrottle(interval time.Duration) *throttle {
	if interval < 0 {
		interval = 0
	}
	return &throttle{interval: interval, now: time.Now, pending: make(map[string]time.Time)}
}

func (t *throttle) mark(key string) {
	t.mu.Lock()
	t.pending[key] = t.now()
	t.mu.Unlock()
}

// due removes and returns the keys that have settled, sorted.
func (t *throttle) due() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	var keys []string
	for key, last := range t.pending {
		if now.Sub(last) >= t.interval {
			keys = append(keys, key)
			delete(t.pending, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (t *throttle) waiting() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
