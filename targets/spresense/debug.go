//go:build tinygo

package main

import (
	"machine"
)

var (
	debugUART    machine.Serialer
	debugEnabled bool
)

// InitDebug routes debug output to the board console UART
func InitDebug() {
	debugUART = machine.Serial
	if err := machine.Serial.Configure(machine.UARTConfig{BaudRate: 115200}); err != nil {
		debugEnabled = false
		return
	}
	debugEnabled = true

	DebugPrintln("=== Spresense soft PWM ===")
}

// DebugPrintln writes a string to the debug UART with newline
func DebugPrintln(s string) {
	if !debugEnabled || debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}

// traceWriter sends framed timing events out of the console UART
type traceWriter struct{}

func (traceWriter) Write(p []byte) (int, error) {
	if debugUART == nil {
		return 0, nil
	}
	return debugUART.Write(p)
}
