package board

import (
	"testing"

	"simpwm/core"
)

func TestSoftPWMPinsFillTable(t *testing.T) {
	pins := SoftPWMPins()
	if len(pins) != core.MaxSoftPWMChannels {
		t.Fatalf("Expected %d soft PWM pins, got %d", core.MaxSoftPWMChannels, len(pins))
	}
	for _, p := range pins {
		if IsHardwarePWM(p) {
			t.Errorf("Pin %d is a hardware PWM pin", p)
		}
	}
}

func TestRegisterAddress(t *testing.T) {
	addr, ok := RegisterAddress(2)
	if !ok || addr != GPIORegBase+8 {
		t.Errorf("RegisterAddress(2) = 0x%X, %v", addr, ok)
	}
	if _, ok := RegisterAddress(NumDigitalPins); ok {
		t.Errorf("RegisterAddress(%d) should fail", NumDigitalPins)
	}
}

func TestPWMDevicePath(t *testing.T) {
	testCases := []struct {
		pin  core.Pin
		path string
		ok   bool
	}{
		{6, "/dev/pwm0", true},
		{5, "/dev/pwm1", true},
		{9, "/dev/pwm2", true},
		{3, "/dev/pwm3", true},
		{4, "", false},
	}
	for _, tc := range testCases {
		path, ok := PWMDevicePath(tc.pin)
		if path != tc.path || ok != tc.ok {
			t.Errorf("PWMDevicePath(%d) = %q, %v; expected %q, %v", tc.pin, path, ok, tc.path, tc.ok)
		}
	}
}
