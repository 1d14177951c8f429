package protocol

import "errors"

var (
	ErrInvalidVLQ     = errors.New("invalid VLQ encoding")
	ErrBufferTooSmall = errors.New("buffer too small for VLQ")
)

// vlqMaxLen is the longest encoding of a 32-bit value
const vlqMaxLen = 5

// EncodeVLQInt appends v to dst, most significant 7-bit group first.
// Values in [-32, 96) take one byte.
func EncodeVLQInt(dst []byte, v int32) []byte {
	for shift := 28; shift > 0; shift -= 7 {
		// a group is needed once v leaves the range the lower groups can carry
		if v < int32(-1)<<(shift-2) || v >= int32(3)<<(shift-2) {
			dst = append(dst, byte(v>>shift)&0x7F|0x80)
		}
	}
	return append(dst, byte(v)&0x7F)
}

// EncodeVLQUint appends v to dst
func EncodeVLQUint(dst []byte, v uint32) []byte {
	return EncodeVLQInt(dst, int32(v))
}

// DecodeVLQInt reads one value from the front of data and reports how many
// bytes it used.
func DecodeVLQInt(data []byte) (int32, int, error) {
	if len(data) == 0 {
		return 0, 0, ErrBufferTooSmall
	}
	c := data[0]
	v := uint32(c & 0x7F)
	if c&0x60 == 0x60 {
		v |= ^uint32(0x1F)
	}
	n := 1
	for c&0x80 != 0 {
		if n == vlqMaxLen {
			return 0, n, ErrInvalidVLQ
		}
		if n == len(data) {
			return 0, n, ErrBufferTooSmall
		}
		c = data[n]
		n++
		v = v<<7 | uint32(c&0x7F)
	}
	return int32(v), n, nil
}

// DecodeVLQUint is DecodeVLQInt for unsigned fields
func DecodeVLQUint(data []byte) (uint32, int, error) {
	v, n, err := DecodeVLQInt(data)
	return uint32(v), n, err
}
