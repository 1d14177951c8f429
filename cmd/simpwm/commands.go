package main

import (
	"fmt"
	"strconv"

	"simpwm/core"
	"simpwm/host/console"
	"simpwm/wiring"
)

func (s *session) register() {
	r := s.cmds
	r.Register("write", "write <pin> <pulse_us> <freq_hz>", "Program soft PWM by pulse width", s.cmdWrite)
	r.Register("stop", "stop <pin>", "Stop soft PWM, output holds its level", s.cmdStop)
	r.Register("analog", "analog <pin> <0-255>", "analogWrite (hardware or soft PWM)", s.cmdAnalog)
	r.Register("digital", "digital <pin> [0|1]", "digitalRead, or digitalWrite with a level", s.cmdDigital)
	r.Register("mode", "mode <pin> <in|out|pullup|pulldown>", "pinMode", s.cmdMode)
	r.Register("advance", "advance <us>", "Advance the clock, firing timers", s.cmdAdvance)
	r.Register("status", "status [pin]", "Show running channels or one pin", s.cmdStatus)
	r.Register("timer", "timer", "Show the shared timer", s.cmdTimer)
	r.Register("dump", "dump", "Print the timing ring", s.cmdDump)
	r.Register("edges", "edges [pin]", "Print recorded output edges", s.cmdEdges)
	r.Register("help", "help", "Show this help message", s.cmdHelp)
	r.Register("quit", "quit", "Exit the program", func([]string) error { return console.ErrQuit })
	r.Alias("exit", "quit")
	r.Alias("q", "quit")
	r.Alias("?", "help")
}

func parseUint(arg string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(arg, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", console.ErrUsage, arg, err)
	}
	return v, nil
}

func parsePin(arg string) (core.Pin, error) {
	v, err := parseUint(arg, 32)
	return core.Pin(v), err
}

func wantArgs(args []string, min, max int) error {
	if len(args) < min || len(args) > max {
		return console.ErrUsage
	}
	return nil
}

func (s *session) cmdWrite(args []string) error {
	if err := wantArgs(args, 3, 3); err != nil {
		return err
	}
	pin, err := parsePin(args[0])
	if err != nil {
		return err
	}
	pw, err := parseUint(args[1], 32)
	if err != nil {
		return err
	}
	freq, err := parseUint(args[2], 32)
	if err != nil {
		return err
	}
	if err := s.engine.Write(pin, uint32(pw), uint32(freq)); err != nil {
		return err
	}
	return s.printSlot(pin)
}

func (s *session) cmdStop(args []string) error {
	if err := wantArgs(args, 1, 1); err != nil {
		return err
	}
	pin, err := parsePin(args[0])
	if err != nil {
		return err
	}
	return s.pins.AnalogStop(pin)
}

func (s *session) cmdAnalog(args []string) error {
	if err := wantArgs(args, 2, 2); err != nil {
		return err
	}
	pin, err := parsePin(args[0])
	if err != nil {
		return err
	}
	value, err := parseUint(args[1], 8)
	if err != nil {
		return err
	}
	return s.pins.AnalogWrite(pin, uint8(value))
}

func (s *session) cmdDigital(args []string) error {
	if err := wantArgs(args, 1, 2); err != nil {
		return err
	}
	pin, err := parsePin(args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		high, err := s.pins.DigitalRead(pin)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "pin %d = %d\n", pin, boolToInt(high))
		return nil
	}
	level, err := parseUint(args[1], 1)
	if err != nil {
		return err
	}
	return s.pins.DigitalWrite(pin, level == 1)
}

func (s *session) cmdMode(args []string) error {
	if err := wantArgs(args, 2, 2); err != nil {
		return err
	}
	pin, err := parsePin(args[0])
	if err != nil {
		return err
	}
	var mode wiring.Mode
	switch args[1] {
	case "in", "input":
		mode = wiring.Input
	case "out", "output":
		mode = wiring.Output
	case "pullup":
		mode = wiring.InputPullUp
	case "pulldown":
		mode = wiring.InputPullDown
	default:
		return fmt.Errorf("%w: mode %q", console.ErrUsage, args[1])
	}
	return s.pins.PinMode(pin, mode)
}

func (s *session) cmdAdvance(args []string) error {
	if err := wantArgs(args, 1, 1); err != nil {
		return err
	}
	us, err := parseUint(args[0], 64)
	if err != nil {
		return err
	}
	fired := s.timers.Advance(us)
	fmt.Fprintf(s.out, "clock=%d fired=%d\n", s.clock.Micros(), fired)
	return nil
}

func (s *session) cmdStatus(args []string) error {
	if err := wantArgs(args, 0, 1); err != nil {
		return err
	}
	if len(args) == 1 {
		pin, err := parsePin(args[0])
		if err != nil {
			return err
		}
		if s.pwm.Enabled(pin) {
			fmt.Fprintf(s.out, "pin %d hardware pwm duty=%d/%d freq=%d\n",
				pin, s.pwm.Duty(pin), s.pwm.GetMaxValue(), s.pwm.Frequency(pin))
			return nil
		}
		return s.printSlot(pin)
	}

	fmt.Fprintf(s.out, "clock=%d running=%d\n", s.clock.Micros(), s.engine.Running())
	for _, pin := range s.engine.Pins() {
		st, err := s.engine.Snapshot(pin)
		if err != nil {
			return err
		}
		if st.Running {
			s.printState(st)
		}
	}
	return nil
}

func (s *session) printSlot(pin core.Pin) error {
	st, err := s.engine.Snapshot(pin)
	if err != nil {
		return err
	}
	s.printState(st)
	return nil
}

func (s *session) printState(st core.SlotState) {
	fmt.Fprintf(s.out, "pin %d running=%t duty=%d freq=%d on=%d off=%d next=%d level=%d\n",
		st.Pin, st.Running, st.Duty, st.Frequency, st.OnDuration, st.OffDuration,
		st.NextExpire, boolToInt(s.regs.Level(st.Pin)))
}

func (s *session) cmdTimer(args []string) error {
	t := s.engine.Timer()
	if t == nil {
		fmt.Fprintln(s.out, "timer not opened")
		return nil
	}
	running, err := t.IsRunning()
	if err != nil {
		return err
	}
	timeout, err := t.Timeout()
	if err != nil {
		return err
	}
	left, err := t.TimeLeft()
	if err != nil {
		return err
	}
	elapsed, err := t.Elapsed()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s ch=%d state=%s running=%t timeout=%d left=%d elapsed=%d\n",
		t.Path(), t.Channel(), t.State(), running, timeout, left, elapsed)
	return nil
}

func (s *session) cmdDump(args []string) error {
	for _, evt := range s.engine.Events() {
		fmt.Fprintln(s.out, core.FormatEvent(evt))
	}
	return nil
}

func (s *session) cmdEdges(args []string) error {
	if err := wantArgs(args, 0, 1); err != nil {
		return err
	}
	edges := s.regs.Edges()
	if len(args) == 1 {
		pin, err := parsePin(args[0])
		if err != nil {
			return err
		}
		edges = s.regs.EdgesFor(pin)
	}
	for _, e := range edges {
		fmt.Fprintf(s.out, "%10d pin %2d %d\n", e.Time, e.Pin, boolToInt(e.High))
	}
	return nil
}

func (s *session) cmdHelp(args []string) error {
	fmt.Fprintln(s.out, "\nAvailable commands:")
	fmt.Fprint(s.out, s.cmds.Help())
	fmt.Fprintln(s.out)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
