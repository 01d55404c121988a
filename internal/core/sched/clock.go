package sched

import "math"

// Clock is the simulation clock, counted in fixed ticks. There is no wall
// time anywhere below it: pausing the loop pauses every duration uniformly.
type Clock struct {
	tick      int64
	perSecond int64
}

// NewClock creates a clock running at the given ticks-per-second rate
// (5 at the default 200ms tick).
func NewClock(ticksPerSecond int64) *Clock {
	if ticksPerSecond <= 0 {
		ticksPerSecond = 5
	}
	return &Clock{perSecond: ticksPerSecond}
}

func (c *Clock) Tick() int64 { return c.tick }

func (c *Clock) Advance() { c.tick++ }

// Seconds returns the simulation time in seconds.
func (c *Clock) Seconds() float64 {
	return float64(c.tick) / float64(c.perSecond)
}

// TicksFor converts a duration in simulation seconds to whole ticks,
// rounding up so any positive delay lands strictly in the future.
func (c *Clock) TicksFor(seconds float64) int64 {
	if seconds <= 0 {
		return 0
	}
	return int64(math.Ceil(seconds * float64(c.perSecond)))
}

func (c *Clock) TicksPerSecond() int64 { return c.perSecond }

// Reset rewinds the clock to zero. Battle-boundary path.
func (c *Clock) Reset() { c.tick = 0 }
