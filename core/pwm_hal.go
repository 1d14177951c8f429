package core

// PWMValue is the duty cycle value (0 to GetMaxValue())
type PWMValue uint32

// PWMMax is the Arduino analogWrite full-scale value
const PWMMax = 255

// PWMDriver is the abstract hardware PWM interface used for the pins that
// have a real PWM peripheral behind them.
type PWMDriver interface {
	// ConfigureHardwarePWM configures a pin for hardware PWM output at
	// frequencyHz. Returns the frequency actually programmed.
	ConfigureHardwarePWM(pin Pin, frequencyHz uint32) (uint32, error)

	// SetDutyCycle sets the PWM duty cycle for a pin
	// value: 0 (fully off) to GetMaxValue() (fully on)
	SetDutyCycle(pin Pin, value PWMValue) error

	// GetMaxValue returns the maximum duty value (e.g. 65535 for 16-bit)
	GetMaxValue() uint32

	// DisablePWM disables PWM on a pin and returns it to GPIO mode
	DisablePWM(pin Pin) error
}
