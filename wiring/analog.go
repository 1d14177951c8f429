package wiring

import "simpwm/core"

// PulseWidthFor returns the pulse width (µs) that the soft-PWM engine maps
// back to value at frequencyHz. Rounding up keeps the round trip exact for
// frequencies up to 1e6/255 Hz.
func PulseWidthFor(value uint8, frequencyHz uint32) uint32 {
	return uint32(core.CeilDiv(uint64(value)*core.TimerFreq, uint64(core.DutyMax)*uint64(frequencyHz)))
}

// AnalogWrite outputs a PWM duty of value/255 on pin. Hardware PWM pins use
// the PWM peripheral; every other pin is handed to the soft-PWM engine.
func (p *Pins) AnalogWrite(pin core.Pin, value uint8) error {
	if p.hw[pin] {
		return p.hardwareWrite(pin, value)
	}
	if p.engine == nil || !p.engine.Has(pin) {
		p.log.Println("analogWrite: invalid pin " + core.Utoa(uint32(pin)))
		return core.ErrInvalidPin
	}

	if !p.outputs[pin] && p.gpio != nil {
		if err := p.gpio.ConfigureOutput(pin); err != nil {
			return err
		}
		p.outputs[pin] = true
	}
	return p.engine.Write(pin, PulseWidthFor(value, p.frequency), p.frequency)
}

func (p *Pins) hardwareWrite(pin core.Pin, value uint8) error {
	if p.pwm == nil {
		return core.ErrNoDriver
	}
	if !p.hwActive[pin] {
		if _, err := p.pwm.ConfigureHardwarePWM(pin, p.frequency); err != nil {
			p.log.Println("analogWrite: pwm pin " + core.Utoa(uint32(pin)) + " config failed: " + err.Error())
			return err
		}
		p.hwActive[pin] = true
	}
	duty := uint64(value) * uint64(p.pwm.GetMaxValue()) / core.PWMMax
	return p.pwm.SetDutyCycle(pin, core.PWMValue(duty))
}

// AnalogStop stops PWM output on pin, leaving the output at its last level
func (p *Pins) AnalogStop(pin core.Pin) error {
	if p.hw[pin] {
		if !p.hwActive[pin] {
			return nil
		}
		return p.releasePWM(pin)
	}
	if p.engine == nil || !p.engine.Has(pin) {
		return core.ErrInvalidPin
	}
	return p.engine.Stop(pin)
}
