package wiring

import "simpwm/core"

// releasePWM stops whatever PWM output currently owns pin
func (p *Pins) releasePWM(pin core.Pin) error {
	if p.engine != nil && p.engine.Has(pin) {
		return p.engine.Stop(pin)
	}
	if p.hwActive[pin] {
		delete(p.hwActive, pin)
		return p.pwm.DisablePWM(pin)
	}
	return nil
}

// PinMode configures pin direction and pull
func (p *Pins) PinMode(pin core.Pin, mode Mode) error {
	if p.gpio == nil {
		return core.ErrNoDriver
	}
	if err := p.releasePWM(pin); err != nil {
		return err
	}

	var err error
	switch mode {
	case Output:
		err = p.gpio.ConfigureOutput(pin)
	case InputPullUp:
		err = p.gpio.ConfigureInputPullUp(pin)
	case InputPullDown:
		err = p.gpio.ConfigureInputPullDown(pin)
	default:
		err = p.gpio.ConfigureInput(pin)
	}
	if err != nil {
		p.log.Println("pinMode: pin " + core.Utoa(uint32(pin)) + " failed: " + err.Error())
		return err
	}
	if mode == Output {
		p.outputs[pin] = true
	} else {
		delete(p.outputs, pin)
	}
	return nil
}

// DigitalWrite drives pin HIGH or LOW. Any PWM output on the pin stops first.
func (p *Pins) DigitalWrite(pin core.Pin, high bool) error {
	if p.gpio == nil {
		return core.ErrNoDriver
	}
	if err := p.releasePWM(pin); err != nil {
		return err
	}
	if err := p.gpio.SetPin(pin, high); err != nil {
		p.log.Println("digitalWrite: pin " + core.Utoa(uint32(pin)) + " failed: " + err.Error())
		return err
	}
	return nil
}

// DigitalRead samples pin. Any PWM output on the pin stops first.
func (p *Pins) DigitalRead(pin core.Pin) (bool, error) {
	if p.gpio == nil {
		return false, core.ErrNoDriver
	}
	if err := p.releasePWM(pin); err != nil {
		return false, err
	}
	high, err := p.gpio.GetPin(pin)
	if err != nil {
		p.log.Println("digitalRead: pin " + core.Utoa(uint32(pin)) + " failed: " + err.Error())
		return false, err
	}
	return high, nil
}
