//go:build tinygo

package main

import (
	"errors"
	"time"

	"simpwm/core"
)

var (
	errNoTimer     = errors.New("ENODEV")
	errTimerBusy   = errors.New("EBUSY")
	errTimerClosed = errors.New("EBADF")
	errTimeout     = errors.New("EINVAL")
)

// timerDriver backs the timer channels with runtime timers. Expiries run on
// the scheduler, one at a time.
type timerDriver struct {
	devices map[string]*timerDevice
}

func newTimerDriver(paths ...string) *timerDriver {
	d := &timerDriver{devices: make(map[string]*timerDevice, len(paths))}
	for _, path := range paths {
		d.devices[path] = &timerDevice{path: path}
	}
	return d
}

func (d *timerDriver) OpenTimer(path string) (core.TimerDevice, error) {
	dev, ok := d.devices[path]
	if !ok {
		return nil, errNoTimer
	}
	if dev.open {
		return nil, errTimerBusy
	}
	dev.open = true
	return dev, nil
}

// BaseClockHz reports microsecond ticks
func (d *timerDriver) BaseClockHz() uint32 {
	return core.TimerFreq
}

type timerDevice struct {
	path     string
	open     bool
	timeout  uint32
	cb       core.TimerCallback
	t        *time.Timer
	active   bool
	deadline time.Time
	gen      uint32
}

func (t *timerDevice) arm() {
	t.gen++
	gen := t.gen
	t.active = true
	d := time.Duration(t.timeout) * time.Microsecond
	t.deadline = time.Now().Add(d)
	t.t = time.AfterFunc(d, func() { t.fire(gen) })
}

func (t *timerDevice) disarm() {
	t.gen++
	t.active = false
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
}

func (t *timerDevice) fire(gen uint32) {
	if gen != t.gen || !t.active {
		return
	}
	t.active = false
	if t.cb == nil {
		return
	}
	next := t.timeout
	if t.cb(&next) && gen == t.gen && next > 0 {
		t.timeout = next
		t.arm()
	}
}

func (t *timerDevice) SetTimeout(us uint32) error {
	if !t.open {
		return errTimerClosed
	}
	if us == 0 {
		return errTimeout
	}
	t.timeout = us
	return nil
}

func (t *timerDevice) SetCallback(cb core.TimerCallback) error {
	if !t.open {
		return errTimerClosed
	}
	t.cb = cb
	return nil
}

func (t *timerDevice) Start() error {
	if !t.open {
		return errTimerClosed
	}
	t.disarm()
	t.arm()
	return nil
}

func (t *timerDevice) Stop() error {
	if !t.open {
		return errTimerClosed
	}
	t.disarm()
	return nil
}

func (t *timerDevice) Status() (core.TimerStatus, error) {
	if !t.open {
		return core.TimerStatus{}, errTimerClosed
	}
	st := core.TimerStatus{Timeout: t.timeout}
	if t.cb != nil {
		st.Flags |= core.TimerFlagHandler
	}
	if t.active {
		st.Flags |= core.TimerFlagActive
		if left := time.Until(t.deadline); left > 0 {
			st.TimeLeft = uint32(left / time.Microsecond)
		}
	}
	return st, nil
}

func (t *timerDevice) Counter() uint32 {
	if !t.active {
		return 0
	}
	left := time.Until(t.deadline)
	if left <= 0 {
		return 0
	}
	return uint32(left / time.Microsecond)
}

func (t *timerDevice) Close() error {
	if !t.open {
		return errTimerClosed
	}
	t.disarm()
	t.open = false
	t.cb = nil
	return nil
}
