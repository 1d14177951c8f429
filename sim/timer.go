package sim

import (
	"errors"

	"simpwm/core"
)

var (
	ErrNoDevice     = errors.New("no such device")
	ErrDeviceBusy   = errors.New("device busy")
	ErrDeviceClosed = errors.New("device closed")
	ErrBadTimeout   = errors.New("invalid timeout")
)

// DefaultBaseClockHz is the simulated timer counter clock
const DefaultBaseClockHz = 156000000

// TimerDriver simulates the timer character devices. Armed channels fire
// only from Advance/AdvanceTo/RunNext, in deadline order.
type TimerDriver struct {
	clock   *Clock
	baseHz  uint32
	paths   []string
	devices map[string]*TimerDevice
	queue   wakeList

	// FailOpen injects an open failure per device path
	FailOpen map[string]error

	// FailStart, when set, makes every Start fail
	FailStart error

	// FailStartOnce clears FailStart after the first failure it causes
	FailStartOnce bool

	// BaseClockQueries counts BaseClockHz calls
	BaseClockQueries int
}

// NewTimerDriver creates a driver over paths (core.DefaultTimerPaths when empty)
func NewTimerDriver(clock *Clock, paths ...string) *TimerDriver {
	if len(paths) == 0 {
		paths = core.DefaultTimerPaths
	}
	return &TimerDriver{
		clock:    clock,
		baseHz:   DefaultBaseClockHz,
		paths:    paths,
		devices:  make(map[string]*TimerDevice),
		FailOpen: make(map[string]error),
	}
}

var _ core.TimerDriver = (*TimerDriver)(nil)

// OpenTimer implements core.TimerDriver
func (d *TimerDriver) OpenTimer(path string) (core.TimerDevice, error) {
	if err := d.FailOpen[path]; err != nil {
		return nil, err
	}
	known := false
	for _, p := range d.paths {
		if p == path {
			known = true
			break
		}
	}
	if !known {
		return nil, ErrNoDevice
	}

	dev, ok := d.devices[path]
	if ok && dev.open {
		return nil, ErrDeviceBusy
	}
	if !ok {
		dev = &TimerDevice{drv: d, path: path}
		d.devices[path] = dev
	}
	dev.open = true
	return dev, nil
}

// BaseClockHz implements core.TimerDriver
func (d *TimerDriver) BaseClockHz() uint32 {
	d.BaseClockQueries++
	return d.baseHz
}

// SetBaseClockHz changes the simulated counter clock
func (d *TimerDriver) SetBaseClockHz(hz uint32) {
	d.baseHz = hz
}

// Device returns the device opened at path, or nil
func (d *TimerDriver) Device(path string) *TimerDevice {
	return d.devices[path]
}

// NextDeadline returns the earliest armed deadline
func (d *TimerDriver) NextDeadline() (uint64, bool) {
	if d.queue.head == nil {
		return 0, false
	}
	return d.queue.head.deadline, true
}

// AdvanceTo moves the clock to t, firing every timer due on the way at its
// exact deadline. Returns the number of expiries.
func (d *TimerDriver) AdvanceTo(t uint64) int {
	fired := 0
	for {
		dev := d.queue.due(t)
		if dev == nil {
			break
		}
		if dev.deadline > d.clock.now {
			d.clock.now = dev.deadline
		}
		d.fire(dev)
		fired++
	}
	if t > d.clock.now {
		d.clock.now = t
	}
	return fired
}

// Advance moves the clock forward by us, firing due timers
func (d *TimerDriver) Advance(us uint64) int {
	return d.AdvanceTo(d.clock.now + us)
}

// RunNext jumps to the earliest deadline and fires it
func (d *TimerDriver) RunNext() bool {
	deadline, ok := d.NextDeadline()
	if !ok {
		return false
	}
	d.AdvanceTo(deadline)
	return true
}

func (d *TimerDriver) fire(dev *TimerDevice) {
	dev.active = false
	dev.Fires++
	if dev.cb == nil {
		return
	}

	gen := dev.armGen
	next := dev.timeout
	again := dev.cb(&next)

	// Re-armed or stopped from inside the callback
	if dev.armGen != gen {
		return
	}
	if again && next > 0 {
		dev.timeout = next
		dev.arm()
	}
}

// TimerDevice is one simulated timer channel
type TimerDevice struct {
	drv      *TimerDriver
	path     string
	open     bool
	timeout  uint32
	cb       core.TimerCallback
	active   bool
	deadline uint64
	armGen   uint32
	next     *TimerDevice

	// Starts counts explicit Start calls
	Starts int

	// Fires counts expiries
	Fires int

	// Requests lists every interval the channel was armed with, from Start
	// and from callback re-arms, oldest first
	Requests []uint32
}

var _ core.TimerDevice = (*TimerDevice)(nil)

func (t *TimerDevice) arm() {
	t.active = true
	t.deadline = t.drv.clock.now + uint64(t.timeout)
	t.armGen++
	t.Requests = append(t.Requests, t.timeout)
	t.drv.queue.insert(t)
}

func (t *TimerDevice) disarm() {
	if t.active {
		t.drv.queue.remove(t)
		t.active = false
	}
	t.armGen++
}

// SetTimeout implements core.TimerDevice
func (t *TimerDevice) SetTimeout(us uint32) error {
	if !t.open {
		return ErrDeviceClosed
	}
	if us == 0 {
		return ErrBadTimeout
	}
	t.timeout = us
	return nil
}

// SetCallback implements core.TimerDevice
func (t *TimerDevice) SetCallback(cb core.TimerCallback) error {
	if !t.open {
		return ErrDeviceClosed
	}
	t.cb = cb
	return nil
}

// Start implements core.TimerDevice
func (t *TimerDevice) Start() error {
	if !t.open {
		return ErrDeviceClosed
	}
	if err := t.drv.FailStart; err != nil {
		if t.drv.FailStartOnce {
			t.drv.FailStart = nil
		}
		return err
	}
	if t.timeout == 0 {
		return ErrBadTimeout
	}
	t.disarm()
	t.Starts++
	t.arm()
	return nil
}

// Stop implements core.TimerDevice
func (t *TimerDevice) Stop() error {
	if !t.open {
		return ErrDeviceClosed
	}
	t.disarm()
	return nil
}

// Status implements core.TimerDevice
func (t *TimerDevice) Status() (core.TimerStatus, error) {
	if !t.open {
		return core.TimerStatus{}, ErrDeviceClosed
	}
	st := core.TimerStatus{Timeout: t.timeout}
	if t.cb != nil {
		st.Flags |= core.TimerFlagHandler
	}
	if t.active {
		st.Flags |= core.TimerFlagActive
		st.TimeLeft = uint32(t.deadline - t.drv.clock.now)
	}
	return st, nil
}

// Counter implements core.TimerDevice: ticks remaining at the base clock
func (t *TimerDevice) Counter() uint32 {
	if !t.active {
		return 0
	}
	return core.MicrosToTicks(uint32(t.deadline-t.drv.clock.now), t.drv.baseHz)
}

// Close implements core.TimerDevice
func (t *TimerDevice) Close() error {
	if !t.open {
		return ErrDeviceClosed
	}
	t.disarm()
	t.open = false
	t.cb = nil
	return nil
}

// Active reports whether the channel is armed
func (t *TimerDevice) Active() bool {
	return t.active
}

// Open reports whether the device is held open
func (t *TimerDevice) Open() bool {
	return t.open
}

// Deadline returns the absolute expiry of an armed channel
func (t *TimerDevice) Deadline() uint64 {
	return t.deadline
}

// LastRequest returns the interval the channel was most recently armed with
func (t *TimerDevice) LastRequest() (uint32, bool) {
	if len(t.Requests) == 0 {
		return 0, false
	}
	return t.Requests[len(t.Requests)-1], true
}
