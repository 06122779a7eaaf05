package metrics

import "sync"

// Counter tracks named monotonic counts, e.g. turn outcomes.
type Counter struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewCounter constructs an empty counter set.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int64)}
}

// Inc bumps the named count by one. A nil Counter is a no-op.
func (c *Counter) Inc(name string) {
	if c == nil || name == "" {
		return
	}
	c.mu.Lock()
	c.counts[name]++
	c.mu.Unlock()
}

// Snapshot copies all counts.
func (c *Counter) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	if c == nil {
		return out
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}
