package core

// Pin identifies a logical board pin
type Pin uint32

// GPIODriver is the abstract GPIO interface used by the wiring layer.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid or already in use
	ConfigureOutput(pin Pin) error

	// ConfigureInput configures a pin as a floating digital input
	ConfigureInput(pin Pin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin Pin) error

	// ConfigureInputPullDown configures a pin as a digital input with pull-down resistor
	ConfigureInputPullDown(pin Pin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin Pin, value bool) error

	// GetPin reads the current pin state
	GetPin(pin Pin) (bool, error)
}

// GPIO register layout: one 32-bit register per pin, output value at a fixed
// bit. Toggling is a read-modify-write of that register.
const (
	GPIOInputShift   = 0
	GPIOInputBit     = 1 << GPIOInputShift
	GPIOOutputShift  = 8
	GPIOOutputBit    = 1 << GPIOOutputShift
	GPIOOutputEnable = 1 << 16 // active-low: set means output driver disabled
)

// GPIORegisters gives the soft-PWM engine raw access to per-pin output
// registers, bypassing the GPIODriver for speed inside the timer interrupt.
type GPIORegisters interface {
	// RegisterAddress resolves the register controlling pin's output bit
	RegisterAddress(pin Pin) (uintptr, bool)

	// Read32 reads the register at addr
	Read32(addr uintptr) uint32

	// Write32 writes the register at addr
	Write32(addr uintptr, value uint32)
}
