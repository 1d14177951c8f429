package core

import "tinygo.org/x/drivers"

// SoftSPI is a mode 0, MSB-first SPI master bit-banged over GPIO pins.
// The clock runs as fast as the GPIO driver can toggle it.
type SoftSPI struct {
	GPIO GPIODriver
	SCK  Pin
	SDO  Pin
	SDI  Pin
}

var _ drivers.SPI = (*SoftSPI)(nil)

// Configure sets the pin directions and parks the clock low
func (s *SoftSPI) Configure() error {
	if err := s.GPIO.ConfigureOutput(s.SCK); err != nil {
		return err
	}
	if err := s.GPIO.ConfigureOutput(s.SDO); err != nil {
		return err
	}
	if err := s.GPIO.ConfigureInput(s.SDI); err != nil {
		return err
	}
	return s.GPIO.SetPin(s.SCK, false)
}

// Transfer shifts one byte out on SDO while sampling SDI on each rising edge
func (s *SoftSPI) Transfer(b byte) (byte, error) {
	var in byte
	for bit := 7; bit >= 0; bit-- {
		if err := s.GPIO.SetPin(s.SDO, b&(1<<bit) != 0); err != nil {
			return 0, err
		}
		if err := s.GPIO.SetPin(s.SCK, true); err != nil {
			return 0, err
		}
		high, err := s.GPIO.GetPin(s.SDI)
		if err != nil {
			return 0, err
		}
		if high {
			in |= 1 << bit
		}
		if err := s.GPIO.SetPin(s.SCK, false); err != nil {
			return 0, err
		}
	}
	return in, nil
}

// Tx writes w and reads into r. Either may be nil; when both are set they
// must be the same length. Bytes sent while only reading are zero.
func (s *SoftSPI) Tx(w, r []byte) error {
	if w != nil && r != nil && len(w) != len(r) {
		return ErrSPILength
	}
	n := max(len(w), len(r))
	for i := 0; i < n; i++ {
		var out byte
		if i < len(w) {
			out = w[i]
		}
		in, err := s.Transfer(out)
		if err != nil {
			return err
		}
		if i < len(r) {
			r[i] = in
		}
	}
	return nil
}
