// Package clock implements the monotonic logical time source the tick
// engine advances through. A Clock wraps an immutable, pre-computed
// schedule of timestamps; only Tick mutates a Clock's cursor, so cloning a
// Clock (cheap — it shares the schedule slice) and handing the clone to a
// read-only consumer is always safe.
package clock

import (
	"fmt"

	"uistd/pkg/types"
)

// Clock walks a fixed schedule of timestamps one step at a time.
type Clock struct {
	schedule  []int64
	cursor    int
	frequency types.Frequency
}

// New builds a Clock over the given schedule, which must be sorted
// ascending and non-empty. The cursor starts at the first entry.
func New(schedule []int64, frequency types.Frequency) (*Clock, error) {
	if len(schedule) == 0 {
		return nil, fmt.Errorf("clock: empty schedule")
	}
	cp := make([]int64, len(schedule))
	copy(cp, schedule)
	return &Clock{schedule: cp, cursor: 0, frequency: frequency}, nil
}

// Now returns the timestamp the clock currently sits at.
func (c *Clock) Now() int64 {
	return c.schedule[c.cursor]
}

// HasNext reports whether Tick can advance the clock further.
func (c *Clock) HasNext() bool {
	return c.cursor < len(c.schedule)-1
}

// Tick advances the cursor by one step. It is a no-op once the schedule is
// exhausted — callers should check HasNext first if they need to
// distinguish "advanced" from "already at the end".
func (c *Clock) Tick() bool {
	if !c.HasNext() {
		return false
	}
	c.cursor++
	return true
}

// Frequency returns the tag this clock was built with.
func (c *Clock) Frequency() types.Frequency {
	return c.frequency
}

// Peek returns the full remaining schedule, current timestamp included.
func (c *Clock) Peek() []int64 {
	out := make([]int64, len(c.schedule)-c.cursor)
	copy(out, c.schedule[c.cursor:])
	return out
}

// Clone returns an independent cursor over the same shared schedule. The
// underlying schedule slice is not copied.
func (c *Clock) Clone() *Clock {
	return &Clock{schedule: c.schedule, cursor: c.cursor, frequency: c.frequency}
}
