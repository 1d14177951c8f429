package core

import "tinygo.org/x/drivers"

// MaskedSPI wraps an SPI bus so that the external device interrupt lines are
// masked for the duration of every transaction.
type MaskedSPI struct {
	Bus  drivers.SPI
	Mask *DeviceIRQMask
}

var _ drivers.SPI = (*MaskedSPI)(nil)

// Tx performs a full-duplex transfer with device IRQs masked
func (s *MaskedSPI) Tx(w, r []byte) error {
	saved := s.Mask.Save()
	defer s.Mask.Restore(saved)
	return s.Bus.Tx(w, r)
}

// Transfer exchanges a single byte with device IRQs masked
func (s *MaskedSPI) Transfer(b byte) (byte, error) {
	saved := s.Mask.Save()
	defer s.Mask.Restore(saved)
	return s.Bus.Transfer(b)
}
