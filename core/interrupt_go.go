//go:build !tinygo

package core

// State is the saved interrupt-enable state on regular Go
type State uintptr

// Host builds have no interrupt controller. The simulator drives timers
// synchronously from a single goroutine, so the enable flag only exists to
// make save/restore observable in tests.
var hostInterruptsEnabled = true

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() State {
	var prev State
	if hostInterruptsEnabled {
		prev = 1
	}
	hostInterruptsEnabled = false
	return prev
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state State) {
	hostInterruptsEnabled = state != 0
}

// InterruptsEnabled reports whether the emulated global interrupt flag is set
func InterruptsEnabled() bool {
	return hostInterruptsEnabled
}
