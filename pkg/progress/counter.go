// Package progress tracks completed items across concurrent workers. The
// counter is display-only: its intermediate values never feed back into
// control flow, so readers may observe any point of the monotonic sequence.
package progress

import "sync/atomic"

// Func receives the counter value after each increment.
type Func func(value, total uint64)

// Counter tracks a running count. All methods are safe for concurrent use
// and safe to call on a nil receiver, so a nil *Counter is a valid no-op
// implementation.
type Counter struct {
	value  atomic.Uint64
	total  atomic.Uint64
	report Func
}

// New creates a Counter that calls report after every Add. A nil report
// only counts.
func New(total uint64, report Func) *Counter {
	c := &Counter{report: report}
	c.total.Store(total)
	return c
}

// Add increments the counter by v.
func (c *Counter) Add(v uint64) {
	if c == nil {
		return
	}
	val := c.value.Add(v)
	if c.report != nil {
		c.report(val, c.total.Load())
	}
}

// Get returns the current value and the total.
func (c *Counter) Get() (value, total uint64) {
	if c == nil {
		return 0, 0
	}
	return c.value.Load(), c.total.Load()
}
