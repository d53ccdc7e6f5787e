package engine

import "sync/atomic"

// Sequencer hands out journal sequence numbers. Clock is the production
// implementation; testutil.DeterministicClock satisfies it for tests.
type Sequencer interface {
	Next() int64
}

// Clock is a monotonic logical clock for lifecycle event ordering.
//
// Every journal record is stamped with a strictly increasing seq from this
// clock. Wall-clock time is never used for ordering.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start. Used when appending
// to an existing journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
