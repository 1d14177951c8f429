//go:build tinygo

package main

import (
	"time"

	"simpwm/core"
)

var boot = time.Now()

// hardwareMicros reads the free-running 32-bit microsecond counter
func hardwareMicros() uint32 {
	return uint32(time.Since(boot) / time.Microsecond)
}

// engineClock is the 64-bit view used by the soft PWM engine
var engineClock = core.NewWideClock(hardwareMicros)

// UpdateSystemTime refreshes core.GetTime. Called from the main loop often
// enough that the wide clock never misses a counter wrap.
func UpdateSystemTime() {
	core.SetTime(hardwareMicros())
	engineClock.Micros()
}
