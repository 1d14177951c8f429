//go:build tinygo

package core

import (
	"runtime/volatile"
	"unsafe"
)

// MMIORegisters accesses GPIO registers through memory-mapped I/O.
// Address maps a pin to its register; boards supply the table.
type MMIORegisters struct {
	Address func(pin Pin) (uintptr, bool)
}

// RegisterAddress implements GPIORegisters
func (m MMIORegisters) RegisterAddress(pin Pin) (uintptr, bool) {
	if m.Address == nil {
		return 0, false
	}
	return m.Address(pin)
}

// Read32 implements GPIORegisters
func (m MMIORegisters) Read32(addr uintptr) uint32 {
	return (*volatile.Register32)(unsafe.Pointer(addr)).Get()
}

// Write32 implements GPIORegisters
func (m MMIORegisters) Write32(addr uintptr, value uint32) {
	(*volatile.Register32)(unsafe.Pointer(addr)).Set(value)
}

func (m MMIORegisters) modify(pin Pin, set, clear uint32) error {
	addr, ok := m.RegisterAddress(pin)
	if !ok {
		return ErrInvalidPin
	}
	m.Write32(addr, m.Read32(addr)&^clear|set)
	return nil
}

// ConfigureOutput implements GPIODriver
func (m MMIORegisters) ConfigureOutput(pin Pin) error {
	return m.modify(pin, 0, GPIOOutputEnable)
}

// ConfigureInput implements GPIODriver
func (m MMIORegisters) ConfigureInput(pin Pin) error {
	return m.modify(pin, GPIOOutputEnable, 0)
}

// ConfigureInputPullUp implements GPIODriver. Pull resistors live in the
// pin-mux block, which this register file does not reach; the pin is left
// floating.
func (m MMIORegisters) ConfigureInputPullUp(pin Pin) error {
	return m.ConfigureInput(pin)
}

// ConfigureInputPullDown implements GPIODriver, see ConfigureInputPullUp
func (m MMIORegisters) ConfigureInputPullDown(pin Pin) error {
	return m.ConfigureInput(pin)
}

// SetPin implements GPIODriver
func (m MMIORegisters) SetPin(pin Pin, value bool) error {
	if value {
		return m.modify(pin, GPIOOutputBit, 0)
	}
	return m.modify(pin, 0, GPIOOutputBit)
}

// GetPin implements GPIODriver
func (m MMIORegisters) GetPin(pin Pin) (bool, error) {
	addr, ok := m.RegisterAddress(pin)
	if !ok {
		return false, ErrInvalidPin
	}
	v := m.Read32(addr)
	if v&GPIOOutputEnable == 0 {
		return v&GPIOOutputBit != 0, nil
	}
	return v&GPIOInputBit != 0, nil
}
