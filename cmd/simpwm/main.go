package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"simpwm/board"
	"simpwm/config"
	"simpwm/core"
	"simpwm/host/console"
	"simpwm/host/serial"
	"simpwm/sim"
	"simpwm/wiring"
)

var (
	configPath  = flag.String("config", "", "Board config file (.json, .yaml)")
	traceDevice = flag.String("trace-device", "", "Serial device for timing trace frames")
	baud        = flag.Int("baud", 0, "Trace baud rate (config default when 0)")
	script      = flag.String("script", "", "Run commands from file instead of stdin")
	verbose     = flag.Bool("verbose", false, "Enable debug output")
)

// openPort opens the trace serial port
var openPort = serial.Open

func main() {
	flag.Parse()
	os.Exit(execute(os.Stdin, os.Stdout, os.Stderr))
}

// execute runs one simulator session and returns the process exit code.
// Every resource it opens is released before it returns.
func execute(stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	core.SetDebugWriter(func(s string) { fmt.Fprintln(stderr, s) })
	core.SetDebugEnabled(cfg.Debug || *verbose)

	var sink *serial.TraceSink
	if cfg.Trace.Device != "" {
		port, err := openPort(&serial.Config{
			Device:      cfg.Trace.Device,
			Baud:        cfg.Trace.Baud,
			ReadTimeout: 100,
		})
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer port.Close()
		sink = serial.NewTraceSink(port)
	}

	s := newSession(cfg, sink)
	s.out = stdout
	defer s.close()

	in := stdin
	interactive := true
	if *script != "" {
		f, err := os.Open(*script)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
		interactive = false
	}

	if interactive {
		fmt.Fprintln(stdout, "simpwm - soft PWM simulator")
		fmt.Fprintf(stdout, "%d soft PWM pins, timer %s, %d Hz analog\n",
			len(cfg.SoftPWMPins), cfg.TimerDevice, cfg.AnalogFrequency)
		fmt.Fprintln(stdout, "Enter commands (type 'help' for available commands, 'quit' to exit):")
	}

	code := 0
	if err := s.run(in, interactive); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		code = 1
	}
	if sink != nil && sink.Err() != nil {
		fmt.Fprintf(stderr, "Trace: %v (%d frames sent)\n", sink.Err(), sink.Frames())
	}
	return code
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return nil, err
		}
	}
	if *traceDevice != "" {
		cfg.Trace.Device = *traceDevice
	}
	if *baud > 0 {
		cfg.Trace.Baud = *baud
	}
	return cfg, nil
}

// session is one simulated board
type session struct {
	clock  *sim.Clock
	timers *sim.TimerDriver
	regs   *sim.Registers
	pwm    *sim.PWM
	engine *core.Engine
	pins   *wiring.Pins
	cmds   *console.Registry
	out    io.Writer
	closed bool
}

func newSession(cfg *config.Config, sink *serial.TraceSink) *session {
	clock := sim.NewClock(0)
	timers := sim.NewTimerDriver(clock, cfg.TimerDevices...)
	timers.SetBaseClockHz(cfg.BaseClockHz)
	regs := sim.NewRegisters(clock, board.GPIORegBase, board.AllPins()...)
	pwm := sim.NewPWM(cfg.HardwarePins()...)

	log := core.NewLogger("[SIMPWM]", nil)
	opts := core.EngineOptions{
		Pins:      cfg.SoftPins(),
		Registers: regs,
		Timers:    core.NewTimerPool(timers, core.NewLogger("[TIMER]", nil), cfg.TimerDevices...),
		TimerPath: cfg.TimerDevice,
		Clock:     clock,
		Log:       log,
	}
	if sink != nil {
		opts.OnEvent = sink.Record
	}
	engine := core.NewEngine(opts)

	s := &session{
		clock:  clock,
		timers: timers,
		regs:   regs,
		pwm:    pwm,
		engine: engine,
		pins: wiring.New(wiring.Options{
			Engine:          engine,
			GPIO:            regs,
			PWM:             pwm,
			HardwarePWMPins: cfg.HardwarePins(),
			Frequency:       cfg.AnalogFrequency,
			Log:             log,
		}),
		cmds: console.NewRegistry(),
		out:  os.Stdout,
	}
	s.register()
	return s
}

func (s *session) close() {
	if s.closed {
		return
	}
	s.closed = true
	s.engine.DumpTiming()
	if err := s.engine.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: engine close: %v\n", err)
	}
}

// run executes lines from in until EOF or quit. Interactive sessions report
// command errors and carry on; scripts stop at the first one.
func (s *session) run(in io.Reader, interactive bool) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for {
		if interactive {
			fmt.Fprint(s.out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if !interactive && line != "" && !strings.HasPrefix(line, "#") {
			fmt.Fprintf(s.out, "> %s\n", line)
		}

		err := s.cmds.Dispatch(line)
		switch {
		case err == nil:
		case errors.Is(err, console.ErrQuit):
			return nil
		case interactive:
			fmt.Fprintf(s.out, "Error: %v\n", err)
		default:
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}
