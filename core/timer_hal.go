package core

// Timer status flags
const (
	TimerFlagActive  = 1 << 0 // timer is running
	TimerFlagHandler = 1 << 1 // an expiry callback is installed
)

// TimerStatus is the status block reported by a timer device
type TimerStatus struct {
	Flags    uint32
	Timeout  uint32 // programmed interval, µs
	TimeLeft uint32 // µs until expiry
}

// TimerCallback is invoked by the device when the timer expires. On entry
// *next holds the interval that just elapsed; the callback may replace it.
// Returning true re-arms the timer with *next, false leaves it stopped.
type TimerCallback func(next *uint32) bool

// TimerDevice is one opened hardware timer channel
type TimerDevice interface {
	SetTimeout(us uint32) error
	SetCallback(cb TimerCallback) error
	Start() error
	Stop() error
	Status() (TimerStatus, error)

	// Counter reads the raw hardware down-counter in base clock ticks
	Counter() uint32

	Close() error
}

// TimerDriver opens timer channels by device path
type TimerDriver interface {
	OpenTimer(path string) (TimerDevice, error)

	// BaseClockHz returns the counter input clock frequency
	BaseClockHz() uint32
}
