package core

// CriticalSection is a scoped global-interrupt lock.
//
// It holds exactly one saved interrupt state, so it must not be re-entered.
// A second Enter before the matching Exit panics with ErrNestedCritical
// instead of overwriting the saved state.
type CriticalSection struct {
	held  bool
	state State
}

// Enter disables interrupts and records the previous state
func (c *CriticalSection) Enter() {
	state := disableInterrupts()
	if c.held {
		restoreInterrupts(state)
		panic(ErrNestedCritical)
	}
	c.held = true
	c.state = state
}

// Exit restores the state saved by Enter. Exit without Enter is a no-op.
func (c *CriticalSection) Exit() {
	if !c.held {
		return
	}
	state := c.state
	c.held = false
	restoreInterrupts(state)
}

// Do runs fn with interrupts disabled. The saved state is restored on every
// exit path, including a panic inside fn.
func (c *CriticalSection) Do(fn func()) {
	c.Enter()
	defer c.Exit()
	fn()
}

// Held reports whether the section is currently entered
func (c *CriticalSection) Held() bool {
	return c.held
}

// DeviceIRQCount is the number of external device interrupt lines that
// DeviceIRQMask saves and restores.
const DeviceIRQCount = 12

// IRQController enables and disables individual interrupt lines
type IRQController interface {
	IRQEnabled(irq int) bool
	EnableIRQ(irq int)
	DisableIRQ(irq int)
}

// IRQState records which device lines were enabled when Save ran.
// Bit i corresponds to line base+i.
type IRQState uint16

// DeviceIRQMask silences the external device interrupt lines without taking
// the global interrupt lock, e.g. for the duration of a bus transaction.
type DeviceIRQMask struct {
	ctrl IRQController
	base int
}

// NewDeviceIRQMask covers lines [base, base+DeviceIRQCount)
func NewDeviceIRQMask(ctrl IRQController, base int) *DeviceIRQMask {
	return &DeviceIRQMask{ctrl: ctrl, base: base}
}

// Save disables every enabled device line and returns which ones were on
func (m *DeviceIRQMask) Save() IRQState {
	var saved IRQState
	for i := 0; i < DeviceIRQCount; i++ {
		irq := m.base + i
		if m.ctrl.IRQEnabled(irq) {
			saved |= 1 << i
			m.ctrl.DisableIRQ(irq)
		}
	}
	return saved
}

// Restore re-enables the lines recorded by Save. Lines that were disabled
// before Save stay disabled.
func (m *DeviceIRQMask) Restore(saved IRQState) {
	for i := 0; i < DeviceIRQCount; i++ {
		if saved&(1<<i) != 0 {
			m.ctrl.EnableIRQ(m.base + i)
		}
	}
}
