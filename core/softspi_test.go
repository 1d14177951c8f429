package core_test

import (
	"bytes"
	"errors"
	"testing"

	"simpwm/core"
	"simpwm/sim"
)

const (
	spiSCK core.Pin = 13
	spiSDO core.Pin = 11
	spiSDI core.Pin = 12
)

// spiPeer is a device on the simulated bus. It answers each bit with its
// complement and latches SDO on every rising clock edge.
type spiPeer struct {
	*sim.Registers
	ctrl     *sim.IRQController
	line     int
	got      []byte
	cur      byte
	bits     int
	unmasked int
}

func newSPIPeer() *spiPeer {
	return &spiPeer{Registers: sim.NewRegisters(sim.NewClock(0), 0x1000, spiSCK, spiSDO, spiSDI)}
}

func (p *spiPeer) SetPin(pin core.Pin, high bool) error {
	if err := p.Registers.SetPin(pin, high); err != nil {
		return err
	}
	switch {
	case pin == spiSDO:
		p.SetInput(spiSDI, !high)
	case pin == spiSCK && high:
		if p.ctrl != nil && p.ctrl.IRQEnabled(p.line) {
			p.unmasked++
		}
		p.cur <<= 1
		if p.Level(spiSDO) {
			p.cur |= 1
		}
		if p.bits++; p.bits == 8 {
			p.got = append(p.got, p.cur)
			p.cur, p.bits = 0, 0
		}
	}
	return nil
}

func newSoftSPI(t *testing.T, peer *spiPeer) *core.SoftSPI {
	t.Helper()
	spi := &core.SoftSPI{GPIO: peer, SCK: spiSCK, SDO: spiSDO, SDI: spiSDI}
	if err := spi.Configure(); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return spi
}

func TestSoftSPITransfer(t *testing.T) {
	peer := newSPIPeer()
	spi := newSoftSPI(t, peer)

	got, err := spi.Transfer(0xA5)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x5A {
		t.Errorf("Transfer(0xA5) read %#02x, want 0x5a", got)
	}
	if !bytes.Equal(peer.got, []byte{0xA5}) {
		t.Errorf("peer latched % X", peer.got)
	}
	if peer.Level(spiSCK) {
		t.Error("clock not parked low")
	}
}

func TestSoftSPITx(t *testing.T) {
	peer := newSPIPeer()
	spi := newSoftSPI(t, peer)

	r := make([]byte, 3)
	if err := spi.Tx([]byte{0x00, 0xFF, 0x3C}, r); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(r, []byte{0xFF, 0x00, 0xC3}) {
		t.Errorf("read % X", r)
	}

	// Read only: zeros go out
	peer.got = nil
	r = make([]byte, 2)
	if err := spi.Tx(nil, r); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(peer.got, []byte{0, 0}) || !bytes.Equal(r, []byte{0xFF, 0xFF}) {
		t.Errorf("read-only Tx: sent % X, read % X", peer.got, r)
	}

	if err := spi.Tx([]byte{1, 2}, make([]byte, 1)); !errors.Is(err, core.ErrSPILength) {
		t.Errorf("expected ErrSPILength, got %v", err)
	}
}

func TestSoftSPIBadPin(t *testing.T) {
	peer := newSPIPeer()
	spi := &core.SoftSPI{GPIO: peer, SCK: spiSCK, SDO: 40, SDI: spiSDI}
	if err := spi.Configure(); !errors.Is(err, core.ErrInvalidPin) {
		t.Errorf("expected ErrInvalidPin, got %v", err)
	}
	if _, err := spi.Transfer(1); !errors.Is(err, core.ErrInvalidPin) {
		t.Errorf("expected ErrInvalidPin, got %v", err)
	}
}

func TestMaskedSoftSPI(t *testing.T) {
	ctrl := sim.NewIRQController()
	ctrl.EnableIRQ(irqBase + 5)
	peer := newSPIPeer()
	peer.ctrl, peer.line = ctrl, irqBase+5

	bus := &core.MaskedSPI{Bus: newSoftSPI(t, peer), Mask: core.NewDeviceIRQMask(ctrl, irqBase)}
	if err := bus.Tx([]byte{0x12, 0x34}, nil); err != nil {
		t.Fatal(err)
	}
	if peer.unmasked != 0 {
		t.Errorf("%d clock edges with the device IRQ enabled", peer.unmasked)
	}
	if !bytes.Equal(peer.got, []byte{0x12, 0x34}) {
		t.Errorf("peer latched % X", peer.got)
	}
	if !ctrl.IRQEnabled(irqBase + 5) {
		t.Error("device IRQ not restored")
	}
}
