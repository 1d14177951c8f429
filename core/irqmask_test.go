package core_test

import (
	"errors"
	"testing"

	"simpwm/core"
	"simpwm/sim"
)

const irqBase = 96

func TestDeviceIRQMaskSaveRestore(t *testing.T) {
	ctrl := sim.NewIRQController()
	enabled := []int{0, 3, 11}
	for _, i := range enabled {
		ctrl.EnableIRQ(irqBase + i)
	}
	// Outside the covered range
	ctrl.EnableIRQ(irqBase + core.DeviceIRQCount)

	mask := core.NewDeviceIRQMask(ctrl, irqBase)
	saved := mask.Save()

	if saved != core.IRQState(1<<0|1<<3|1<<11) {
		t.Errorf("saved state = %012b", saved)
	}
	for i := 0; i < core.DeviceIRQCount; i++ {
		if ctrl.IRQEnabled(irqBase + i) {
			t.Errorf("line %d still enabled after Save", i)
		}
	}
	if !ctrl.IRQEnabled(irqBase + core.DeviceIRQCount) {
		t.Error("Save touched a line outside its range")
	}

	mask.Restore(saved)
	for i := 0; i < core.DeviceIRQCount; i++ {
		want := i == 0 || i == 3 || i == 11
		if ctrl.IRQEnabled(irqBase+i) != want {
			t.Errorf("line %d: enabled=%t, want %t", i, !want, want)
		}
	}
}

// recordingSPI checks the IRQ mask from inside each transaction
type recordingSPI struct {
	ctrl      *sim.IRQController
	line      int
	maskedOK  bool
	err       error
	lastWrite []byte
}

func (s *recordingSPI) Tx(w, r []byte) error {
	s.maskedOK = !s.ctrl.IRQEnabled(s.line)
	s.lastWrite = append([]byte(nil), w...)
	copy(r, w)
	return s.err
}

func (s *recordingSPI) Transfer(b byte) (byte, error) {
	s.maskedOK = !s.ctrl.IRQEnabled(s.line)
	return ^b, s.err
}

func TestMaskedSPI(t *testing.T) {
	ctrl := sim.NewIRQController()
	ctrl.EnableIRQ(irqBase + 2)
	bus := &recordingSPI{ctrl: ctrl, line: irqBase + 2}
	spi := &core.MaskedSPI{Bus: bus, Mask: core.NewDeviceIRQMask(ctrl, irqBase)}

	r := make([]byte, 2)
	if err := spi.Tx([]byte{0xA5, 0x5A}, r); err != nil {
		t.Fatal(err)
	}
	if !bus.maskedOK {
		t.Error("device IRQ enabled during Tx")
	}
	if r[0] != 0xA5 || r[1] != 0x5A {
		t.Errorf("unexpected read %x", r)
	}
	if !ctrl.IRQEnabled(irqBase + 2) {
		t.Error("IRQ not restored after Tx")
	}

	got, err := spi.Transfer(0x0F)
	if err != nil || got != 0xF0 || !bus.maskedOK {
		t.Errorf("Transfer = %x, %v masked=%t", got, err, bus.maskedOK)
	}

	bus.err = errors.New("bus fault")
	if err := spi.Tx([]byte{1}, nil); !errors.Is(err, bus.err) {
		t.Errorf("expected bus fault, got %v", err)
	}
	if !ctrl.IRQEnabled(irqBase + 2) {
		t.Error("IRQ not restored after failed Tx")
	}
}
