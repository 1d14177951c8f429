package serial

import (
	"errors"
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// NativePort is an OS serial device opened through tarm/serial. Read, Write,
// Flush and Close come from the embedded port.
type NativePort struct {
	*serial.Port
	device string
}

// Open opens cfg.Device. A zero baud rate selects DefaultBaud; cfg itself is
// not modified.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("serial: nil config")
	}
	baud := cfg.Baud
	if baud <= 0 {
		baud = DefaultBaud
	}

	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s at %d baud: %w", cfg.Device, baud, err)
	}
	return &NativePort{Port: p, device: cfg.Device}, nil
}

// Device returns the path the port was opened with
func (p *NativePort) Device() string {
	return p.device
}
