package core

// Software PWM engine.
//
// GPIO-only pins get PWM-like output by toggling their output register bit
// from a single shared one-shot timer. The timer is always armed for the
// earliest pending toggle across every running channel; each expiry flips
// all channels whose deadline has passed and schedules their opposite phase.

const (
	// DutyMax is full scale for duty values
	DutyMax = 255

	// MaxSoftPWMChannels bounds the slot table
	MaxSoftPWMChannels = 25

	// DefaultSoftPWMTimer is the timer channel claimed for soft PWM
	DefaultSoftPWMTimer = "/dev/timer1"

	// MaxTracePin is the highest pin a slot may use; timing events carry
	// the pin in one byte.
	MaxTracePin Pin = 0xFF

	// minPhaseMicros keeps every on/off phase strictly positive so the timer
	// is never armed for zero and the catch-up loop always advances.
	minPhaseMicros = 1
)

// SlotState is a snapshot of one soft-PWM channel
type SlotState struct {
	Pin         Pin
	Address     uintptr
	Duty        uint8
	Running     bool
	Frequency   uint32
	OnDuration  uint32 // µs
	OffDuration uint32 // µs
	NextExpire  uint64 // absolute µs, meaningful only while Running
}

type slot struct {
	pin        Pin
	addr       uintptr
	resolved   bool
	duty       uint8
	running    bool
	freq       uint32
	onDur      uint32
	offDur     uint32
	nextExpire uint64
}

// EngineOptions configures a soft-PWM engine
type EngineOptions struct {
	// Pins is the fixed slot list, at most MaxSoftPWMChannels entries
	Pins []Pin

	// Registers gives raw access to pin output registers
	Registers GPIORegisters

	// Timers supplies the shared timer channel
	Timers *TimerPool

	// TimerPath selects the channel (DefaultSoftPWMTimer when empty)
	TimerPath string

	// Clock is the engine time base (SystemClock when nil)
	Clock Clock

	// Log receives failure and diagnostic messages (may be nil)
	Log *Logger

	// OnEvent, when set, observes every timing event as it is recorded.
	// It runs inside the engine's critical section and must not call back
	// into the engine.
	OnEvent func(TimingEvent)
}

// Engine multiplexes up to MaxSoftPWMChannels soft-PWM channels onto one
// hardware timer. Write, Stop and the timer expiry all run inside the
// engine's critical section.
type Engine struct {
	slots     []slot
	index     map[Pin]int
	regs      GPIORegisters
	timers    *TimerPool
	timerPath string
	timer     *Timer
	clock     Clock
	resolved  bool
	cs        CriticalSection
	ring      TimingRing
	log       *Logger
	onEvent   func(TimingEvent)
}

// NewEngine builds an engine with every slot stopped. Extra pins beyond
// MaxSoftPWMChannels and duplicates are ignored.
func NewEngine(opts EngineOptions) *Engine {
	e := &Engine{
		index:     make(map[Pin]int, len(opts.Pins)),
		regs:      opts.Registers,
		timers:    opts.Timers,
		timerPath: opts.TimerPath,
		clock:     opts.Clock,
		log:       opts.Log,
		onEvent:   opts.OnEvent,
	}
	if e.timerPath == "" {
		e.timerPath = DefaultSoftPWMTimer
	}
	if e.clock == nil {
		e.clock = SystemClock
	}
	for _, pin := range opts.Pins {
		if pin > MaxTracePin {
			e.log.Println("soft pwm: pin " + Utoa(uint32(pin)) + " out of range, ignoring")
			continue
		}
		if len(e.slots) == MaxSoftPWMChannels {
			e.log.Println("soft pwm: slot table full, ignoring pin " + Utoa(uint32(pin)))
			break
		}
		if _, dup := e.index[pin]; dup {
			continue
		}
		e.index[pin] = len(e.slots)
		e.slots = append(e.slots, slot{pin: pin})
	}
	return e
}

// Pins lists the pins that have a slot, in table order
func (e *Engine) Pins() []Pin {
	pins := make([]Pin, len(e.slots))
	for i := range e.slots {
		pins[i] = e.slots[i].pin
	}
	return pins
}

// Has reports whether pin has a soft-PWM slot
func (e *Engine) Has(pin Pin) bool {
	_, ok := e.index[pin]
	return ok
}

// DutyFor converts a pulse width and frequency to a duty value:
// 255 * pulseWidth * frequency / 1e6, truncated. Anything at or past full
// scale is reported as DutyMax.
func DutyFor(pulseWidthMicros, frequencyHz uint32) uint64 {
	// pw*f fits in 64 bits; 255*pw*f may not
	product := uint64(pulseWidthMicros) * uint64(frequencyHz)
	if product >= TimerFreq {
		return DutyMax
	}
	return DutyMax * product / TimerFreq
}

// PhaseDurations returns the on and off times for duty at frequencyHz:
// duty * 1e6 / freq / 255 and (255-duty) * 1e6 / freq / 255, truncated
// and floored at 1µs.
func PhaseDurations(duty uint8, frequencyHz uint32) (on, off uint32) {
	on = phaseMicros(uint64(duty), frequencyHz)
	off = phaseMicros(uint64(DutyMax-uint32(duty)), frequencyHz)
	return on, off
}

func phaseMicros(share uint64, frequencyHz uint32) uint32 {
	us := share * TimerFreq / uint64(frequencyHz) / DutyMax
	return uint32(Clamp(us, minPhaseMicros, uint64(^uint32(0))))
}

func (e *Engine) record(eventType uint8, pin Pin, clock uint64, v1, v2 uint32) {
	evt := e.ring.Record(eventType, uint8(pin), clock, v1, v2)
	if e.onEvent != nil {
		e.onEvent(evt)
	}
}

// lookup maps pin to its slot. Caller holds the critical section.
func (e *Engine) lookup(pin Pin) (*slot, error) {
	idx, ok := e.index[pin]
	if !ok {
		return nil, ErrInvalidPin
	}
	e.resolveLocked()
	s := &e.slots[idx]
	if !s.resolved {
		return nil, ErrInvalidPin
	}
	return s, nil
}

// resolveLocked caches every slot's register address on first use
func (e *Engine) resolveLocked() {
	if e.resolved {
		return
	}
	e.resolved = true
	for i := range e.slots {
		s := &e.slots[i]
		addr, ok := e.regs.RegisterAddress(s.pin)
		if !ok {
			e.log.Println("soft pwm: no register for pin " + Utoa(uint32(s.pin)))
			continue
		}
		s.addr = addr
		s.resolved = true
	}
}

func (e *Engine) setLevelLocked(s *slot, high bool) {
	v := e.regs.Read32(s.addr)
	if high {
		v |= GPIOOutputBit
	} else {
		v &^= GPIOOutputBit
	}
	e.regs.Write32(s.addr, v)
}

// Write programs pin for pulseWidthMicros HIGH per period at frequencyHz.
//
// A duty that truncates to 0 drives the pin steady LOW, and one of 255 or
// more drives it steady HIGH; both stop the channel. Rewriting a running
// channel with the same duty and frequency has no effect.
func (e *Engine) Write(pin Pin, pulseWidthMicros, frequencyHz uint32) error {
	if _, ok := e.index[pin]; !ok {
		e.log.Println("soft pwm: invalid pin " + Utoa(uint32(pin)))
		return ErrInvalidPin
	}
	if frequencyHz == 0 {
		e.log.Println("soft pwm: zero frequency on pin " + Utoa(uint32(pin)))
		return ErrInvalidFrequency
	}
	value := DutyFor(pulseWidthMicros, frequencyHz)

	e.cs.Enter()
	defer e.cs.Exit()

	s, err := e.lookup(pin)
	if err != nil {
		e.log.Println("soft pwm: invalid pin " + Utoa(uint32(pin)))
		return err
	}
	now := e.clock.Micros()

	if value == 0 || value >= DutyMax {
		high := value >= DutyMax
		s.running = false
		e.setLevelLocked(s, high)
		var level uint32
		if high {
			level = 1
		}
		e.record(EvtSteady, pin, now, level, 0)
		return nil
	}

	duty := uint8(value)
	// Same duty at a new frequency still reprograms the channel
	if s.running && s.duty == duty && s.freq == frequencyHz {
		return nil
	}

	if e.timer == nil {
		t, err := e.timers.Open(e.timerPath)
		if err != nil {
			e.log.Println("soft pwm: timer unavailable for pin " + Utoa(uint32(pin)) + ": " + err.Error())
			return err
		}
		e.timer = t
	}

	prev := *s
	level := e.regs.Read32(s.addr)
	e.setLevelLocked(s, true)

	s.duty = duty
	s.freq = frequencyHz
	s.onDur, s.offDur = PhaseDurations(duty, frequencyHz)
	s.nextExpire = now + uint64(s.onDur)
	s.running = true
	e.record(EvtWrite, pin, now, uint32(duty), frequencyHz)

	if err := e.rescheduleLocked(); err != nil {
		*s = prev
		e.regs.Write32(s.addr, level)
		e.log.Println("soft pwm: write on pin " + Utoa(uint32(pin)) + " failed: " + err.Error())
		// Other channels may still be running on the stopped timer
		if rerr := e.rescheduleLocked(); rerr != nil {
			e.log.Println("soft pwm: re-arm failed: " + rerr.Error())
			e.stopAllLocked(now)
		}
		return err
	}
	return nil
}

// Stop halts the channel on pin. The output keeps its current level; a
// timer expiry already in flight skips the channel.
func (e *Engine) Stop(pin Pin) error {
	if _, ok := e.index[pin]; !ok {
		return ErrInvalidPin
	}

	e.cs.Enter()
	defer e.cs.Exit()

	s := &e.slots[e.index[pin]]
	if s.running {
		s.running = false
		e.record(EvtStop, pin, e.clock.Micros(), 0, 0)
	}
	return nil
}

// Close stops every channel and releases the shared timer. A later Write
// claims the timer again.
func (e *Engine) Close() error {
	e.cs.Enter()
	defer e.cs.Exit()

	for i := range e.slots {
		e.slots[i].running = false
	}
	if e.timer == nil {
		return nil
	}
	err := e.timer.Close()
	e.timer = nil
	return err
}

// stopAllLocked halts every running channel after the shared timer could not
// be armed, leaving outputs at their current level.
func (e *Engine) stopAllLocked(now uint64) {
	for i := range e.slots {
		s := &e.slots[i]
		if !s.running {
			continue
		}
		s.running = false
		e.log.Println("soft pwm: pin " + Utoa(uint32(s.pin)) + " stopped, no timer")
		e.record(EvtStop, s.pin, now, 0, 0)
	}
}

// nearestLocked returns the earliest deadline over running channels
func (e *Engine) nearestLocked() (uint64, bool) {
	var min uint64
	found := false
	for i := range e.slots {
		s := &e.slots[i]
		if !s.running {
			continue
		}
		if !found || s.nextExpire < min {
			min = s.nextExpire
			found = true
		}
	}
	return min, found
}

// rescheduleLocked re-arms the shared timer for the earliest deadline.
// Deadlines that already passed are serviced synchronously first, so the
// timer is only ever armed with a positive interval.
func (e *Engine) rescheduleLocked() error {
	if err := e.timer.Stop(); err != nil {
		return err
	}

	now := e.clock.Micros()
	next, ok := e.nearestLocked()
	for ok && next <= now {
		e.record(EvtCatchUp, 0, now, uint32(now-next), 0)
		e.fireLocked(now)
		now = e.clock.Micros()
		next, ok = e.nearestLocked()
	}
	if !ok {
		e.record(EvtIdle, 0, now, 0, 0)
		return nil
	}

	interval := uint32(Clamp(next-now, 1, uint64(^uint32(0))))
	e.record(EvtReschedule, 0, now, interval, 0)
	return e.timer.Start(interval, ExpiryFunc(e.onTimer))
}

// fireLocked toggles every running channel whose deadline is at or before
// now and schedules its opposite phase. Returns how many were toggled.
func (e *Engine) fireLocked(now uint64) uint32 {
	var toggled uint32
	for i := range e.slots {
		s := &e.slots[i]
		if !s.running || s.nextExpire > now {
			continue
		}

		v := e.regs.Read32(s.addr)
		var phase, level uint32
		if v&GPIOOutputBit != 0 {
			v &^= GPIOOutputBit
			phase = s.offDur
		} else {
			v |= GPIOOutputBit
			phase = s.onDur
			level = 1
		}
		e.regs.Write32(s.addr, v)
		s.nextExpire = now + uint64(phase)
		toggled++
		e.record(EvtToggle, s.pin, now, level, phase)
	}
	return toggled
}

// onTimer is the shared timer's expiry handler
func (e *Engine) onTimer() (uint32, bool) {
	e.cs.Enter()
	defer e.cs.Exit()

	now := e.clock.Micros()
	toggled := e.fireLocked(now)

	next, ok := e.nearestLocked()
	if !ok {
		e.record(EvtFire, 0, now, toggled, 0)
		e.record(EvtIdle, 0, now, 0, 0)
		return 0, false
	}
	var interval uint32 = 1
	if next > now {
		interval = uint32(Clamp(next-now, 1, uint64(^uint32(0))))
	}
	e.record(EvtFire, 0, now, toggled, interval)
	return interval, true
}

// Snapshot returns a copy of pin's channel state
func (e *Engine) Snapshot(pin Pin) (SlotState, error) {
	idx, ok := e.index[pin]
	if !ok {
		return SlotState{}, ErrInvalidPin
	}

	e.cs.Enter()
	defer e.cs.Exit()

	s := &e.slots[idx]
	return SlotState{
		Pin:         s.pin,
		Address:     s.addr,
		Duty:        s.duty,
		Running:     s.running,
		Frequency:   s.freq,
		OnDuration:  s.onDur,
		OffDuration: s.offDur,
		NextExpire:  s.nextExpire,
	}, nil
}

// Running returns how many channels are currently toggling
func (e *Engine) Running() int {
	e.cs.Enter()
	defer e.cs.Exit()

	n := 0
	for i := range e.slots {
		if e.slots[i].running {
			n++
		}
	}
	return n
}

// Timer returns the shared timer, or nil before the first Write
func (e *Engine) Timer() *Timer {
	return e.timer
}

// Events returns the timing ring, oldest first
func (e *Engine) Events() []TimingEvent {
	e.cs.Enter()
	defer e.cs.Exit()
	return e.ring.Events()
}

// DumpTiming writes the timing ring through the engine logger
func (e *Engine) DumpTiming() {
	e.cs.Enter()
	defer e.cs.Exit()
	e.ring.Dump(e.log)
}
