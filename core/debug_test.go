package core

import (
	"strings"
	"testing"
)

func TestLoggerPrefixAndFallback(t *testing.T) {
	var got []string
	l := NewLogger("[SIMPWM]", func(s string) { got = append(got, s) })
	l.Println("hello")
	if len(got) != 1 || got[0] != "[SIMPWM] hello" {
		t.Errorf("unexpected output %q", got)
	}

	var global []string
	SetDebugWriter(func(s string) { global = append(global, s) })
	defer SetDebugWriter(func(string) {})

	fallback := NewLogger("", nil)
	fallback.Println("muted")
	if len(global) != 0 {
		t.Error("debug output written while disabled")
	}

	SetDebugEnabled(true)
	defer SetDebugEnabled(false)
	fallback.Println("shown")
	if len(global) != 1 || global[0] != "shown" {
		t.Errorf("unexpected global output %q", global)
	}

	var nilLogger *Logger
	nilLogger.Println("ignored")
}

func TestTimingRingWraps(t *testing.T) {
	var r TimingRing
	for i := 0; i < TimingRingSize+5; i++ {
		r.Record(EvtToggle, uint8(i), uint64(i), 0, 0)
	}

	if r.Total() != TimingRingSize+5 {
		t.Errorf("Total = %d", r.Total())
	}
	events := r.Events()
	if len(events) != TimingRingSize {
		t.Fatalf("expected %d events, got %d", TimingRingSize, len(events))
	}
	if events[0].Clock != 5 || events[len(events)-1].Clock != TimingRingSize+4 {
		t.Errorf("ring order wrong: first %d last %d", events[0].Clock, events[len(events)-1].Clock)
	}

	r.Clear()
	if r.Total() != 0 || len(r.Events()) != 0 {
		t.Error("Clear left events behind")
	}
}

func TestTimingRingDump(t *testing.T) {
	var r TimingRing
	r.Record(EvtWrite, 4, 0, 62, 490)
	r.Record(EvtCatchUp, 0, 5000, 4504, 0)

	var lines []string
	r.Dump(NewLogger("", func(s string) { lines = append(lines, s) }))

	out := strings.Join(lines, "\n")
	for _, want := range []string{
		"Total events recorded: 2",
		"WRITE pin=4 clock=0 v1=62 v2=490",
		"CATCH_UP! pin=0 clock=5000 v1=4504 v2=0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestEventName(t *testing.T) {
	for evt := uint8(EvtWrite); evt <= EvtIdle; evt++ {
		if EventName(evt) == "UNKNOWN" {
			t.Errorf("event %d has no name", evt)
		}
	}
	if EventName(0) != "UNKNOWN" {
		t.Error("event 0 should be unknown")
	}
}

func TestMathHelpers(t *testing.T) {
	if Clamp(5, 1, 3) != 3 || Clamp(0, 1, 3) != 1 || Clamp(2, 1, 3) != 2 {
		t.Error("Clamp")
	}
	if CeilDiv[uint32](10, 3) != 4 || CeilDiv[uint32](9, 3) != 3 || CeilDiv[uint32](1, 0) != 0 {
		t.Error("CeilDiv")
	}
	if utoa64(1<<40) != "1099511627776" || itoa(-12) != "-12" || Utoa(^uint32(0)) != "4294967295" {
		t.Error("integer formatting")
	}
}
