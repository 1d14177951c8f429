//go:build tinygo

package main

import (
	"time"

	"simpwm/board"
	"simpwm/core"
	"simpwm/protocol"
	"simpwm/wiring"
)

// Pins ramped by the demo loop
var demoPins = []core.Pin{2, 4, 7}

// The ramp values are mirrored to a 74HC595 chain on the Arduino SPI header
const (
	mirrorCS  core.Pin = 10
	mirrorSDO core.Pin = 11
	mirrorSDI core.Pin = 12
	mirrorSCK core.Pin = 13
)

// The console UART carries either trace frames or debug text
const tracing = true

var (
	tracer     = protocol.NewTraceEncoder()
	loopErrors uint32
)

func traceEvent(evt core.TimingEvent) {
	if !tracing {
		return
	}
	traceWriter{}.Write(tracer.Encode(protocol.TraceRecord{
		Type:   evt.EventType,
		Pin:    evt.Pin,
		Clock:  evt.Clock,
		Value1: evt.Value1,
		Value2: evt.Value2,
	}))
}

func main() {
	InitDebug()
	core.SetDebugWriter(DebugPrintln)
	core.SetDebugEnabled(!tracing)
	UpdateSystemTime()

	regs := core.MMIORegisters{Address: board.RegisterAddress}
	log := core.NewLogger("[SIMPWM]", nil)

	engine := core.NewEngine(core.EngineOptions{
		Pins:      board.SoftPWMPins(),
		Registers: regs,
		Timers:    core.NewTimerPool(newTimerDriver(core.DefaultTimerPaths...), core.NewLogger("[TIMER]", nil), core.DefaultTimerPaths...),
		Clock:     engineClock,
		Log:       log,
		OnEvent:   traceEvent,
	})
	pins := wiring.New(wiring.Options{
		Engine:          engine,
		GPIO:            regs,
		HardwarePWMPins: board.HardwarePWMPins,
		Log:             log,
	})

	for _, pin := range demoPins {
		if err := pins.PinMode(pin, wiring.Output); err != nil {
			log.Println("pinMode failed: " + err.Error())
		}
	}

	soft := &core.SoftSPI{GPIO: regs, SCK: mirrorSCK, SDO: mirrorSDO, SDI: mirrorSDI}
	if err := soft.Configure(); err != nil {
		log.Println("mirror spi: " + err.Error())
	}
	if err := pins.PinMode(mirrorCS, wiring.Output); err != nil {
		log.Println("mirror cs: " + err.Error())
	}
	pins.DigitalWrite(mirrorCS, true)
	mirror := &core.MaskedSPI{Bus: soft, Mask: core.NewDeviceIRQMask(nvic{}, deviceIRQBase)}
	latch := make([]byte, len(demoPins))

	var value uint8
	for {
		// Recover from panics in the main loop to keep the outputs running
		func() {
			defer func() {
				if r := recover(); r != nil {
					loopErrors++
					engine.DumpTiming()
				}
			}()

			UpdateSystemTime()
			for i, pin := range demoPins {
				// Spread the pins across the duty range
				v := value + uint8(i*85)
				if err := pins.AnalogWrite(pin, v); err != nil {
					log.Println("analogWrite failed: " + err.Error())
				}
				latch[i] = v
			}
			pins.DigitalWrite(mirrorCS, false)
			if err := mirror.Tx(latch, nil); err != nil {
				log.Println("mirror spi: " + err.Error())
			}
			pins.DigitalWrite(mirrorCS, true)
			value++
		}()

		time.Sleep(20 * time.Millisecond)
	}
}
