package sim

import "simpwm/core"

// PWMMaxValue is the simulated PWM peripheral's full-scale duty
const PWMMaxValue = 65535

// PWM simulates the hardware PWM peripherals
type PWM struct {
	pins    map[core.Pin]bool
	enabled map[core.Pin]bool
	duty    map[core.Pin]core.PWMValue
	freq    map[core.Pin]uint32

	// FailConfigure, when set, makes ConfigureHardwarePWM fail
	FailConfigure error
}

// NewPWM creates a peripheral for pins
func NewPWM(pins ...core.Pin) *PWM {
	p := &PWM{
		pins:    make(map[core.Pin]bool, len(pins)),
		enabled: make(map[core.Pin]bool),
		duty:    make(map[core.Pin]core.PWMValue),
		freq:    make(map[core.Pin]uint32),
	}
	for _, pin := range pins {
		p.pins[pin] = true
	}
	return p
}

var _ core.PWMDriver = (*PWM)(nil)

// ConfigureHardwarePWM implements core.PWMDriver
func (p *PWM) ConfigureHardwarePWM(pin core.Pin, frequencyHz uint32) (uint32, error) {
	if p.FailConfigure != nil {
		return 0, p.FailConfigure
	}
	if !p.pins[pin] {
		return 0, core.ErrInvalidPin
	}
	if frequencyHz == 0 {
		return 0, core.ErrInvalidFrequency
	}
	p.enabled[pin] = true
	p.freq[pin] = frequencyHz
	p.duty[pin] = 0
	return frequencyHz, nil
}

// SetDutyCycle implements core.PWMDriver
func (p *PWM) SetDutyCycle(pin core.Pin, value core.PWMValue) error {
	if !p.enabled[pin] {
		return core.ErrInvalidPin
	}
	if value > PWMMaxValue {
		value = PWMMaxValue
	}
	p.duty[pin] = value
	return nil
}

// GetMaxValue implements core.PWMDriver
func (p *PWM) GetMaxValue() uint32 {
	return PWMMaxValue
}

// DisablePWM implements core.PWMDriver
func (p *PWM) DisablePWM(pin core.Pin) error {
	if !p.pins[pin] {
		return core.ErrInvalidPin
	}
	delete(p.enabled, pin)
	return nil
}

// Enabled reports whether pin is outputting PWM
func (p *PWM) Enabled(pin core.Pin) bool {
	return p.enabled[pin]
}

// Duty returns the last duty written to pin
func (p *PWM) Duty(pin core.Pin) core.PWMValue {
	return p.duty[pin]
}

// Frequency returns the frequency pin was configured with
func (p *PWM) Frequency(pin core.Pin) uint32 {
	return p.freq[pin]
}
