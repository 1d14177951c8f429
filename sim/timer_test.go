package sim

import (
	"errors"
	"testing"

	"simpwm/core"
)

func TestWakeListOrder(t *testing.T) {
	var l wakeList
	a := &TimerDevice{deadline: 30}
	b := &TimerDevice{deadline: 10}
	c := &TimerDevice{deadline: 20}
	d := &TimerDevice{deadline: 20}

	for _, dev := range []*TimerDevice{a, b, c, d} {
		l.insert(dev)
	}
	l.remove(a)

	want := []*TimerDevice{b, c, d}
	for i, w := range want {
		got := l.due(100)
		if got != w {
			t.Fatalf("pop %d: got deadline %d, want %d", i, got.deadline, w.deadline)
		}
	}
	if l.due(100) != nil {
		t.Error("list should be empty")
	}
}

func TestWakeListDue(t *testing.T) {
	var l wakeList
	l.insert(&TimerDevice{deadline: 50})
	if l.due(49) != nil {
		t.Error("device popped before its deadline")
	}
	if l.due(50) == nil {
		t.Error("device not due at its deadline")
	}
}

func TestTimerDriverOpen(t *testing.T) {
	d := NewTimerDriver(NewClock(0))

	dev, err := d.OpenTimer("/dev/timer0")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.OpenTimer("/dev/timer0"); !errors.Is(err, ErrDeviceBusy) {
		t.Errorf("expected ErrDeviceBusy, got %v", err)
	}
	if _, err := d.OpenTimer("/dev/timer5"); !errors.Is(err, ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}

	if err := dev.Close(); err != nil {
		t.Fatal(err)
	}
	if err := dev.Start(); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("Start on closed device: %v", err)
	}
	if _, err := d.OpenTimer("/dev/timer0"); err != nil {
		t.Errorf("reopen: %v", err)
	}
}

func TestTimerDriverFiresInOrder(t *testing.T) {
	clock := NewClock(0)
	d := NewTimerDriver(clock)

	var order []string
	var times []uint64
	arm := func(path string, us uint32) {
		dev, err := d.OpenTimer(path)
		if err != nil {
			t.Fatal(err)
		}
		dev.SetTimeout(us)
		dev.SetCallback(func(next *uint32) bool {
			order = append(order, path)
			times = append(times, clock.Micros())
			return false
		})
		if err := dev.Start(); err != nil {
			t.Fatal(err)
		}
	}
	arm("/dev/timer1", 300)
	arm("/dev/timer0", 100)

	if deadline, ok := d.NextDeadline(); !ok || deadline != 100 {
		t.Fatalf("NextDeadline = %d, %t", deadline, ok)
	}
	if fired := d.AdvanceTo(1000); fired != 2 {
		t.Fatalf("expected 2 expiries, got %d", fired)
	}
	if order[0] != "/dev/timer0" || order[1] != "/dev/timer1" {
		t.Errorf("fired out of order: %v", order)
	}
	if times[0] != 100 || times[1] != 300 || clock.Micros() != 1000 {
		t.Errorf("expiries at %v, clock %d", times, clock.Micros())
	}
	if d.RunNext() {
		t.Error("RunNext with nothing armed")
	}
}

func TestTimerDeviceRearm(t *testing.T) {
	clock := NewClock(0)
	d := NewTimerDriver(clock)
	dev, _ := d.OpenTimer("/dev/timer0")

	count := 0
	dev.SetTimeout(100)
	dev.SetCallback(func(next *uint32) bool {
		count++
		if *next != 100 && count == 1 {
			t.Errorf("callback saw interval %d, want 100", *next)
		}
		*next = 50
		return count < 3
	})
	dev.Start()

	d.Advance(1000)
	td := dev.(*TimerDevice)
	if count != 3 || td.Fires != 3 {
		t.Errorf("count=%d fires=%d", count, td.Fires)
	}
	want := []uint32{100, 50, 50}
	if len(td.Requests) != len(want) {
		t.Fatalf("requests %v, want %v", td.Requests, want)
	}
	for i := range want {
		if td.Requests[i] != want[i] {
			t.Errorf("requests %v, want %v", td.Requests, want)
			break
		}
	}
}

func TestTimerDeviceStatus(t *testing.T) {
	clock := NewClock(0)
	d := NewTimerDriver(clock)
	dev, _ := d.OpenTimer("/dev/timer1")

	if err := dev.SetTimeout(0); !errors.Is(err, ErrBadTimeout) {
		t.Errorf("SetTimeout(0): %v", err)
	}
	dev.SetTimeout(400)
	dev.SetCallback(func(*uint32) bool { return false })
	dev.Start()
	d.Advance(100)

	st, err := dev.Status()
	if err != nil {
		t.Fatal(err)
	}
	if st.Flags != core.TimerFlagActive|core.TimerFlagHandler || st.Timeout != 400 || st.TimeLeft != 300 {
		t.Errorf("unexpected status %+v", st)
	}
	if got := dev.Counter(); got != core.MicrosToTicks(300, DefaultBaseClockHz) {
		t.Errorf("Counter = %d", got)
	}

	dev.Stop()
	if st, _ := dev.Status(); st.Flags&core.TimerFlagActive != 0 {
		t.Error("stopped device reports active")
	}
	if dev.Counter() != 0 {
		t.Error("stopped device counter not zero")
	}
}
