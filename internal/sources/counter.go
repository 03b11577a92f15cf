package sources

import "sync/atomic"

// Counter is an in-memory revision counter.
// Producers call Touch whenever they deliver new data.
type Counter struct {
	rev    atomic.Uint64
	closed atomic.Bool
}

// NewCounter returns a Counter at revision zero.
func NewCounter() *Counter {
	return &Counter{}
}

// Touch records a new update and returns the new revision.
func (c *Counter) Touch() uint64 {
	return c.rev.Add(1)
}

// Set forces the revision to v.
func (c *Counter) Set(v uint64) {
	c.rev.Store(v)
}

// Timestamp returns the current revision.
func (c *Counter) Timestamp() (uint64, error) {
	if c.closed.Load() {
		return 0, ErrSourceUnavailable
	}
	return c.rev.Load(), nil
}

// Stop marks the counter unavailable. Later reads fail with ErrSourceUnavailable.
func (c *Counter) Stop() error {
	c.closed.Store(true)
	return nil
}
