//go:build tinygo

package main

import (
	"runtime/volatile"
	"unsafe"
)

// Cortex-M NVIC enable registers: writing 1 to a bit of ISER enables that
// line, writing 1 to ICER disables it. Reading either returns the enables.
const (
	nvicISER = 0xE000E100
	nvicICER = 0xE000E180
)

// deviceIRQBase is the NVIC line of the first external device interrupt
const deviceIRQBase = 112

// nvic implements core.IRQController over the NVIC registers
type nvic struct{}

func nvicReg(base uintptr, irq int) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(base + uintptr(irq>>5)*4))
}

func (nvic) IRQEnabled(irq int) bool {
	return nvicReg(nvicISER, irq).Get()&(1<<(irq&31)) != 0
}

func (nvic) EnableIRQ(irq int) {
	nvicReg(nvicISER, irq).Set(1 << (irq & 31))
}

func (nvic) DisableIRQ(irq int) {
	nvicReg(nvicICER, irq).Set(1 << (irq & 31))
}
