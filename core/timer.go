package core

// TimerFreq is the system time base: the counter advances once per microsecond
const TimerFreq = 1000000

// GetTime returns the low 32 bits of the system microsecond counter
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// Clock is a monotonic microsecond time source
type Clock interface {
	Micros() uint64
}

// ClockFunc adapts a plain function to Clock
type ClockFunc func() uint64

// Micros implements Clock
func (f ClockFunc) Micros() uint64 {
	return f()
}

// WideClock extends a free-running 32-bit counter to 64 bits.
// It must be sampled at least once per counter period (about 71 minutes at
// 1MHz), otherwise a whole wrap is lost.
type WideClock struct {
	read func() uint32
	last uint32
	high uint64
}

// NewWideClock widens the counter returned by read
func NewWideClock(read func() uint32) *WideClock {
	return &WideClock{read: read}
}

// Micros returns the widened counter value
func (c *WideClock) Micros() uint64 {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	now := c.read()
	if now < c.last {
		c.high += 1 << 32
	}
	c.last = now
	return c.high | uint64(now)
}

// SystemClock is the 64-bit view of the system microsecond counter
var SystemClock = NewWideClock(GetTime)

// TicksToMicros converts counter ticks at hz to microseconds
func TicksToMicros(ticks, hz uint32) uint32 {
	if hz == 0 {
		return 0
	}
	return uint32(uint64(ticks) * TimerFreq / uint64(hz))
}

// MicrosToTicks converts microseconds to counter ticks at hz
func MicrosToTicks(us, hz uint32) uint32 {
	return uint32(uint64(us) * uint64(hz) / TimerFreq)
}
