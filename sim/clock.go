// Package sim provides a deterministic stand-in for the hardware the soft-PWM
// engine runs on: a settable microsecond clock, timer channels that fire only
// when the clock is advanced, and a GPIO register file that records edges.
package sim

// Clock is a manually advanced 64-bit microsecond clock
type Clock struct {
	now uint64
}

// NewClock creates a clock reading start
func NewClock(start uint64) *Clock {
	return &Clock{now: start}
}

// Micros implements core.Clock
func (c *Clock) Micros() uint64 {
	return c.now
}

// Set moves the clock to t. Timers are not fired; use TimerDriver.AdvanceTo
// for that. Setting the clock alone models a task that was delayed.
func (c *Clock) Set(t uint64) {
	c.now = t
}

// Add moves the clock forward by d without firing timers
func (c *Clock) Add(d uint64) {
	c.now += d
}
