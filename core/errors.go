package core

import "errors"

var (
	// Pin/engine
	ErrInvalidPin       = errors.New("invalid_pin")
	ErrInvalidFrequency = errors.New("invalid_frequency")

	// Timer resource
	ErrUnknownTimer   = errors.New("unknown_timer")
	ErrTimerBusy      = errors.New("timer_busy")
	ErrTimerClosed    = errors.New("timer_closed")
	ErrInvalidTimeout = errors.New("invalid_timeout")
	ErrTimerDriver    = errors.New("timer_driver")

	// Interrupts
	ErrNestedCritical = errors.New("nested_critical_section")

	// HAL wiring
	ErrNoDriver  = errors.New("no_driver")
	ErrSPILength = errors.New("spi_length_mismatch")
)
