package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"simpwm/config"
	"simpwm/host/console"
	"simpwm/host/serial"
)

func newTestSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	s := newSession(config.DefaultConfig(), nil)
	var out bytes.Buffer
	s.out = &out
	t.Cleanup(s.close)
	return s, &out
}

func TestSessionScript(t *testing.T) {
	s, out := newTestSession(t)

	script := `
# 500 us high at 490 Hz on D04
write 4 500 490
advance 496
status 4
quit
write 4 0 490
`
	if err := s.run(strings.NewReader(script), false); err != nil {
		t.Fatalf("run failed: %v\n%s", err, out.String())
	}

	got := out.String()
	if !strings.Contains(got, "pin 4 running=true duty=62 freq=490 on=496 off=1544 next=496 level=1") {
		t.Errorf("write did not report the expected slot:\n%s", got)
	}
	if !strings.Contains(got, "clock=496 fired=1") {
		t.Errorf("advance did not fire once:\n%s", got)
	}
	if !strings.Contains(got, "next=2040 level=0") {
		t.Errorf("expected LOW phase after first expiry:\n%s", got)
	}
	if strings.Contains(got, "write 4 0 490") {
		t.Errorf("commands after quit were executed:\n%s", got)
	}
}

func TestSessionScriptStopsOnError(t *testing.T) {
	s, _ := newTestSession(t)

	err := s.run(strings.NewReader("advance 10\nwrite 3 1000 490\n"), false)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected error on line 2, got %v", err)
	}
}

func TestSessionInteractiveContinues(t *testing.T) {
	s, out := newTestSession(t)

	if err := s.run(strings.NewReader("bogus\nanalog 6 128\nstatus 6\n"), true); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "unknown command") {
		t.Errorf("expected unknown command error:\n%s", got)
	}
	if !strings.Contains(got, "pin 6 hardware pwm duty=32896/65535 freq=490") {
		t.Errorf("expected hardware PWM status:\n%s", got)
	}
}

func TestSessionUsageErrors(t *testing.T) {
	s, _ := newTestSession(t)

	for _, line := range []string{"write 4 1000", "advance x", "digital 4 2", "mode 4 sideways"} {
		if err := s.cmds.Dispatch(line); !errors.Is(err, console.ErrUsage) {
			t.Errorf("Dispatch(%q) = %v, want ErrUsage", line, err)
		}
	}
}

type fakePort struct {
	bytes.Buffer
	closed bool
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func (p *fakePort) Flush() error {
	return nil
}

func TestExecuteScriptErrorClosesTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte("write 4 500 490\nwrite 3 1000 490\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	port := &fakePort{}
	savedOpen, savedScript, savedDevice := openPort, *script, *traceDevice
	t.Cleanup(func() {
		openPort, *script, *traceDevice = savedOpen, savedScript, savedDevice
	})
	openPort = func(cfg *serial.Config) (serial.Port, error) {
		if cfg.Device != "/dev/ttyTRACE" {
			t.Errorf("opened %q", cfg.Device)
		}
		return port, nil
	}
	*script = path
	*traceDevice = "/dev/ttyTRACE"

	var stdout, stderr bytes.Buffer
	if code := execute(strings.NewReader(""), &stdout, &stderr); code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "line 2") {
		t.Errorf("missing line number in error output:\n%s", stderr.String())
	}
	if !port.closed {
		t.Error("trace port left open")
	}
	if port.Len() == 0 {
		t.Error("no trace frames written")
	}
}

func TestExecuteCleanRun(t *testing.T) {
	savedScript := *script
	t.Cleanup(func() { *script = savedScript })
	*script = ""

	var stdout, stderr bytes.Buffer
	if code := execute(strings.NewReader("write 4 500 490\nquit\n"), &stdout, &stderr); code != 0 {
		t.Errorf("exit code %d, stderr:\n%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "simpwm - soft PWM simulator") {
		t.Errorf("missing banner:\n%s", stdout.String())
	}
}
