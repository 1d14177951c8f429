package sim

import "simpwm/core"

// Edge is one recorded output transition
type Edge struct {
	Pin  core.Pin
	Time uint64
	High bool
}

// Registers is a GPIO register file with one 32-bit register per pin at
// base+4*pin. It implements both core.GPIORegisters and core.GPIODriver and
// records every change of a pin's output bit.
type Registers struct {
	clock  *Clock
	base   uintptr
	regs   map[uintptr]uint32
	byAddr map[uintptr]core.Pin
	inputs map[core.Pin]bool
	edges  []Edge

	// Writes counts register writes
	Writes int
}

// NewRegisters creates registers for pins. Outputs start disabled and LOW.
func NewRegisters(clock *Clock, base uintptr, pins ...core.Pin) *Registers {
	r := &Registers{
		clock:  clock,
		base:   base,
		regs:   make(map[uintptr]uint32, len(pins)),
		byAddr: make(map[uintptr]core.Pin, len(pins)),
		inputs: make(map[core.Pin]bool),
	}
	for _, pin := range pins {
		addr := r.addressOf(pin)
		r.regs[addr] = core.GPIOOutputEnable
		r.byAddr[addr] = pin
	}
	return r
}

var (
	_ core.GPIORegisters = (*Registers)(nil)
	_ core.GPIODriver    = (*Registers)(nil)
)

func (r *Registers) addressOf(pin core.Pin) uintptr {
	return r.base + 4*uintptr(pin)
}

// RegisterAddress implements core.GPIORegisters
func (r *Registers) RegisterAddress(pin core.Pin) (uintptr, bool) {
	addr := r.addressOf(pin)
	_, ok := r.regs[addr]
	return addr, ok
}

// Read32 implements core.GPIORegisters
func (r *Registers) Read32(addr uintptr) uint32 {
	return r.regs[addr]
}

// Write32 implements core.GPIORegisters
func (r *Registers) Write32(addr uintptr, value uint32) {
	pin, ok := r.byAddr[addr]
	if !ok {
		return
	}
	old := r.regs[addr]
	r.regs[addr] = value
	r.Writes++
	if (old^value)&core.GPIOOutputBit != 0 {
		r.edges = append(r.edges, Edge{
			Pin:  pin,
			Time: r.clock.Micros(),
			High: value&core.GPIOOutputBit != 0,
		})
	}
}

// Level returns the output bit of pin
func (r *Registers) Level(pin core.Pin) bool {
	return r.regs[r.addressOf(pin)]&core.GPIOOutputBit != 0
}

// Edges returns every recorded transition, oldest first
func (r *Registers) Edges() []Edge {
	return append([]Edge(nil), r.edges...)
}

// EdgesFor returns the transitions of one pin
func (r *Registers) EdgesFor(pin core.Pin) []Edge {
	var out []Edge
	for _, e := range r.edges {
		if e.Pin == pin {
			out = append(out, e)
		}
	}
	return out
}

// ClearEdges forgets recorded transitions
func (r *Registers) ClearEdges() {
	r.edges = r.edges[:0]
}

// SetInput drives the external level seen by an input pin
func (r *Registers) SetInput(pin core.Pin, high bool) {
	r.inputs[pin] = high
}

func (r *Registers) configure(pin core.Pin, output bool) error {
	addr, ok := r.RegisterAddress(pin)
	if !ok {
		return core.ErrInvalidPin
	}
	v := r.regs[addr]
	if output {
		v &^= core.GPIOOutputEnable
	} else {
		v |= core.GPIOOutputEnable
	}
	r.Write32(addr, v)
	return nil
}

// ConfigureOutput implements core.GPIODriver
func (r *Registers) ConfigureOutput(pin core.Pin) error {
	return r.configure(pin, true)
}

// ConfigureInput implements core.GPIODriver
func (r *Registers) ConfigureInput(pin core.Pin) error {
	return r.configure(pin, false)
}

// ConfigureInputPullUp implements core.GPIODriver
func (r *Registers) ConfigureInputPullUp(pin core.Pin) error {
	if _, set := r.inputs[pin]; !set {
		r.inputs[pin] = true
	}
	return r.configure(pin, false)
}

// ConfigureInputPullDown implements core.GPIODriver
func (r *Registers) ConfigureInputPullDown(pin core.Pin) error {
	if _, set := r.inputs[pin]; !set {
		r.inputs[pin] = false
	}
	return r.configure(pin, false)
}

// SetPin implements core.GPIODriver
func (r *Registers) SetPin(pin core.Pin, value bool) error {
	addr, ok := r.RegisterAddress(pin)
	if !ok {
		return core.ErrInvalidPin
	}
	v := r.regs[addr]
	if value {
		v |= core.GPIOOutputBit
	} else {
		v &^= core.GPIOOutputBit
	}
	r.Write32(addr, v)
	return nil
}

// GetPin implements core.GPIODriver. Output pins read back their output
// bit; input pins read the level set by SetInput.
func (r *Registers) GetPin(pin core.Pin) (bool, error) {
	addr, ok := r.RegisterAddress(pin)
	if !ok {
		return false, core.ErrInvalidPin
	}
	v := r.regs[addr]
	if v&core.GPIOOutputEnable == 0 {
		return v&core.GPIOOutputBit != 0, nil
	}
	return r.inputs[pin], nil
}

// IRQController is a simulated interrupt controller
type IRQController struct {
	enabled map[int]bool
}

// NewIRQController creates a controller with every line disabled
func NewIRQController() *IRQController {
	return &IRQController{enabled: make(map[int]bool)}
}

var _ core.IRQController = (*IRQController)(nil)

// IRQEnabled implements core.IRQController
func (c *IRQController) IRQEnabled(irq int) bool {
	return c.enabled[irq]
}

// EnableIRQ implements core.IRQController
func (c *IRQController) EnableIRQ(irq int) {
	c.enabled[irq] = true
}

// DisableIRQ implements core.IRQController
func (c *IRQController) DisableIRQ(irq int) {
	c.enabled[irq] = false
}
