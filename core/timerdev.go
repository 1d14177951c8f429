package core

// DefaultTimerPaths lists the hardware timer devices; the index is the
// channel number.
var DefaultTimerPaths = []string{"/dev/timer0", "/dev/timer1"}

// TimerState is the lifecycle state of an opened timer
type TimerState uint8

const (
	TimerIdle TimerState = iota
	TimerArmed
	TimerFiring
	TimerClosed
)

func (s TimerState) String() string {
	switch s {
	case TimerIdle:
		return "idle"
	case TimerArmed:
		return "armed"
	case TimerFiring:
		return "firing"
	case TimerClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ExpiryHandler is called when an armed timer expires. It returns the next
// interval in microseconds and true to re-arm, or false to go idle.
type ExpiryHandler interface {
	OnExpire() (next uint32, again bool)
}

// ExpiryFunc adapts a function to ExpiryHandler
type ExpiryFunc func() (uint32, bool)

// OnExpire implements ExpiryHandler
func (f ExpiryFunc) OnExpire() (uint32, bool) {
	return f()
}

// driverError ties a driver failure to the failing operation. It matches
// both ErrTimerDriver and the driver's own error under errors.Is.
type driverError struct {
	op  string
	err error
}

func (e *driverError) Error() string {
	return "timer " + e.op + ": " + e.err.Error()
}

func (e *driverError) Unwrap() []error {
	return []error{ErrTimerDriver, e.err}
}

// TimerPool owns a fixed set of hardware timer channels. Each channel is
// bound to at most one Timer at a time.
type TimerPool struct {
	drv    TimerDriver
	paths  []string
	owners []*Timer
	baseHz uint32
	log    *Logger
}

// NewTimerPool creates a pool over paths (DefaultTimerPaths when empty)
func NewTimerPool(drv TimerDriver, log *Logger, paths ...string) *TimerPool {
	if len(paths) == 0 {
		paths = DefaultTimerPaths
	}
	return &TimerPool{
		drv:    drv,
		paths:  paths,
		owners: make([]*Timer, len(paths)),
		log:    log,
	}
}

func (p *TimerPool) channelOf(path string) (int, bool) {
	for i, candidate := range p.paths {
		if candidate == path {
			return i, true
		}
	}
	return 0, false
}

// Open claims the channel behind path. It fails with ErrTimerBusy if the
// channel is already bound, or with a driver error if the device cannot be
// opened.
func (p *TimerPool) Open(path string) (*Timer, error) {
	ch, ok := p.channelOf(path)
	if !ok {
		p.log.Println("timer open: unknown device " + path)
		return nil, ErrUnknownTimer
	}
	if p.owners[ch] != nil {
		p.log.Println("timer open: " + path + " already in use")
		return nil, ErrTimerBusy
	}

	dev, err := p.drv.OpenTimer(path)
	if err != nil {
		p.log.Println("timer open: " + path + " failed: " + err.Error())
		return nil, &driverError{op: "open", err: err}
	}

	t := &Timer{pool: p, ch: ch, path: path, dev: dev}
	p.owners[ch] = t
	return t, nil
}

// InUse reports whether the channel behind path is bound
func (p *TimerPool) InUse(path string) bool {
	ch, ok := p.channelOf(path)
	return ok && p.owners[ch] != nil
}

// baseClock returns the counter clock, queried once and cached
func (p *TimerPool) baseClock() uint32 {
	if p.baseHz == 0 {
		p.baseHz = p.drv.BaseClockHz()
	}
	return p.baseHz
}

func (p *TimerPool) release(t *Timer) {
	if p.owners[t.ch] == t {
		p.owners[t.ch] = nil
	}
}

// Timer is an exclusively owned hardware timer channel driven as a
// re-arming one-shot: each expiry asks the handler for the next interval.
type Timer struct {
	pool      *TimerPool
	ch        int
	path      string
	dev       TimerDevice
	state     TimerState
	gen       uint32
	handler   ExpiryHandler
	installed bool
}

// Path returns the device path the timer was opened with
func (t *Timer) Path() string {
	return t.path
}

// Channel returns the hardware channel index
func (t *Timer) Channel() int {
	return t.ch
}

// State returns the current lifecycle state
func (t *Timer) State() TimerState {
	return t.state
}

func (t *Timer) fail(op string, err error) error {
	t.pool.log.Println("timer " + t.path + " " + op + " failed: " + err.Error())
	return &driverError{op: op, err: err}
}

// Start arms the timer to expire after timeoutUS and installs h as the
// expiry handler. An armed timer is stopped and re-armed.
func (t *Timer) Start(timeoutUS uint32, h ExpiryHandler) error {
	if t.state == TimerClosed {
		return ErrTimerClosed
	}
	if timeoutUS == 0 {
		return ErrInvalidTimeout
	}
	if t.state == TimerArmed {
		if err := t.dev.Stop(); err != nil {
			return t.fail("stop", err)
		}
		t.state = TimerIdle
	}

	if err := t.dev.SetTimeout(timeoutUS); err != nil {
		return t.fail("set timeout", err)
	}
	if !t.installed {
		if err := t.dev.SetCallback(t.expire); err != nil {
			return t.fail("set handler", err)
		}
		t.installed = true
	}

	t.handler = h
	t.gen++
	t.state = TimerArmed
	if err := t.dev.Start(); err != nil {
		t.state = TimerIdle
		return t.fail("start", err)
	}
	return nil
}

// expire is the device callback
func (t *Timer) expire(next *uint32) bool {
	if t.state != TimerArmed || t.handler == nil {
		return false
	}
	gen := t.gen
	t.state = TimerFiring

	interval, again := t.handler.OnExpire()

	// Stopped or restarted from inside the handler
	if t.gen != gen {
		return false
	}
	if !again {
		t.state = TimerIdle
		return false
	}
	if interval == 0 {
		interval = 1
	}
	*next = interval
	t.state = TimerArmed
	return true
}

// Stop stops the timer if it is running; it is a no-op otherwise
func (t *Timer) Stop() error {
	switch t.state {
	case TimerClosed:
		return ErrTimerClosed
	case TimerIdle:
		return nil
	}
	t.gen++
	t.state = TimerIdle
	if err := t.dev.Stop(); err != nil {
		return t.fail("stop", err)
	}
	return nil
}

// Close stops the timer and returns the channel to the pool
func (t *Timer) Close() error {
	if t.state == TimerClosed {
		return nil
	}
	stopErr := t.Stop()
	closeErr := t.dev.Close()
	t.pool.release(t)
	t.state = TimerClosed
	t.handler = nil
	if stopErr != nil {
		return stopErr
	}
	if closeErr != nil {
		return t.fail("close", closeErr)
	}
	return nil
}

func (t *Timer) status() (TimerStatus, error) {
	if t.state == TimerClosed {
		return TimerStatus{}, ErrTimerClosed
	}
	st, err := t.dev.Status()
	if err != nil {
		return TimerStatus{}, t.fail("status", err)
	}
	return st, nil
}

// IsRunning reports the device's active flag
func (t *Timer) IsRunning() (bool, error) {
	st, err := t.status()
	if err != nil {
		return false, err
	}
	return st.Flags&TimerFlagActive != 0, nil
}

// Timeout returns the programmed interval in microseconds
func (t *Timer) Timeout() (uint32, error) {
	st, err := t.status()
	if err != nil {
		return 0, err
	}
	return st.Timeout, nil
}

// TimeLeft reads the raw hardware counter and converts it to microseconds
// using the base clock. This bypasses the driver's status block and is used
// for precision probing.
func (t *Timer) TimeLeft() (uint32, error) {
	if t.state == TimerClosed {
		return 0, ErrTimerClosed
	}
	return TicksToMicros(t.dev.Counter(), t.pool.baseClock()), nil
}

// Elapsed returns how long the current interval has been running
func (t *Timer) Elapsed() (uint32, error) {
	st, err := t.status()
	if err != nil {
		return 0, err
	}
	if st.TimeLeft > st.Timeout {
		return 0, nil
	}
	return st.Timeout - st.TimeLeft, nil
}
