// Package serial streams engine trace frames to a serial port, typically a
// logic-analyzer bridge or a second board capturing timing.
package serial

import (
	"io"
)

// Port represents a serial port. Tests substitute an in-memory
// io.ReadWriteCloser through NewTraceSink.
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultBaud is the trace link speed
const DefaultBaud = 115200

// DefaultConfig returns the trace link defaults for device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100,
	}
}
