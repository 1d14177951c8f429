package protocol

// FrameBuffer assembles one frame in fixed storage. Bytes past MessageMax
// are dropped and reported by Overflow.
type FrameBuffer struct {
	buf      [MessageMax]byte
	n        int
	overflow bool
}

// Reset empties the buffer
func (b *FrameBuffer) Reset() {
	b.n = 0
	b.overflow = false
}

// Append adds raw bytes
func (b *FrameBuffer) Append(p ...byte) {
	c := copy(b.buf[b.n:], p)
	b.n += c
	if c < len(p) {
		b.overflow = true
	}
}

// AppendVLQ adds v in VLQ form
func (b *FrameBuffer) AppendVLQ(v uint32) {
	var tmp [vlqMaxLen]byte
	b.Append(EncodeVLQUint(tmp[:0], v)...)
}

// Len returns the bytes written so far
func (b *FrameBuffer) Len() int {
	return b.n
}

func (b *FrameBuffer) Overflow() bool {
	return b.overflow
}

// Bytes aliases the internal storage until the next Reset
func (b *FrameBuffer) Bytes() []byte {
	return b.buf[:b.n]
}

// Seal writes the length byte for a frame that will end with the trailer,
// then appends the CRC and sync byte.
func (b *FrameBuffer) Seal() {
	b.buf[MessagePositionLen] = byte(b.n + MessageTrailerSize)
	crc := CRC16(b.buf[:b.n])
	b.Append(byte(crc>>8), byte(crc), MessageValueSync)
}
