// Package board holds the pin table of the Spresense main board.
package board

import "simpwm/core"

// NumDigitalPins is the number of D-pins (D00-D28)
const NumDigitalPins = 29

// GPIO register block: one 32-bit register per pin
const GPIORegBase uintptr = 0x04102000

// ExtDeviceIRQBase is the first of the core.DeviceIRQCount external device
// interrupt lines.
const ExtDeviceIRQBase = 96

// Pins with a PWM peripheral behind them (PWM0-PWM3)
var HardwarePWMPins = []core.Pin{6, 5, 9, 3}

// IsHardwarePWM reports whether pin is driven by a PWM peripheral
func IsHardwarePWM(pin core.Pin) bool {
	for _, p := range HardwarePWMPins {
		if p == pin {
			return true
		}
	}
	return false
}

// SoftPWMPins returns the GPIO-only pins, in pin order. There are exactly
// core.MaxSoftPWMChannels of them.
func SoftPWMPins() []core.Pin {
	pins := make([]core.Pin, 0, NumDigitalPins-len(HardwarePWMPins))
	for i := 0; i < NumDigitalPins; i++ {
		pin := core.Pin(i)
		if !IsHardwarePWM(pin) {
			pins = append(pins, pin)
		}
	}
	return pins
}

// AllPins returns D00-D28
func AllPins() []core.Pin {
	pins := make([]core.Pin, NumDigitalPins)
	for i := range pins {
		pins[i] = core.Pin(i)
	}
	return pins
}

// RegisterAddress returns the GPIO register of a D-pin
func RegisterAddress(pin core.Pin) (uintptr, bool) {
	if pin >= NumDigitalPins {
		return 0, false
	}
	return GPIORegBase + 4*uintptr(pin), true
}

// PWMDevicePath returns the character device of a hardware PWM pin
func PWMDevicePath(pin core.Pin) (string, bool) {
	for i, p := range HardwarePWMPins {
		if p == pin {
			return "/dev/pwm" + string(rune('0'+i)), true
		}
	}
	return "", false
}
