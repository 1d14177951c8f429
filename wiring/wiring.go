// Package wiring provides the Arduino-style pin API on top of the GPIO and
// PWM drivers and the soft-PWM engine.
package wiring

import "simpwm/core"

// Mode is a pin mode
type Mode uint8

const (
	Input Mode = iota
	Output
	InputPullUp
	InputPullDown
)

// DefaultAnalogFrequency is the analogWrite carrier frequency
const DefaultAnalogFrequency = 490

// Options wires the pin API to its drivers
type Options struct {
	// Engine drives GPIO-only pins (may be nil)
	Engine *core.Engine

	// GPIO handles digital I/O
	GPIO core.GPIODriver

	// PWM handles HardwarePWMPins (may be nil)
	PWM core.PWMDriver

	// HardwarePWMPins are the pins routed to PWM
	HardwarePWMPins []core.Pin

	// Frequency is the analogWrite frequency (DefaultAnalogFrequency when 0)
	Frequency uint32

	Log *core.Logger
}

// Pins dispatches Arduino pin calls to the right driver
type Pins struct {
	engine    *core.Engine
	gpio      core.GPIODriver
	pwm       core.PWMDriver
	hw        map[core.Pin]bool
	hwActive  map[core.Pin]bool
	outputs   map[core.Pin]bool
	frequency uint32
	log       *core.Logger
}

// New creates the pin API
func New(opts Options) *Pins {
	p := &Pins{
		engine:    opts.Engine,
		gpio:      opts.GPIO,
		pwm:       opts.PWM,
		hw:        make(map[core.Pin]bool, len(opts.HardwarePWMPins)),
		hwActive:  make(map[core.Pin]bool),
		outputs:   make(map[core.Pin]bool),
		frequency: opts.Frequency,
		log:       opts.Log,
	}
	if p.frequency == 0 {
		p.frequency = DefaultAnalogFrequency
	}
	for _, pin := range opts.HardwarePWMPins {
		p.hw[pin] = true
	}
	return p
}

// Frequency returns the analogWrite frequency
func (p *Pins) Frequency() uint32 {
	return p.frequency
}
