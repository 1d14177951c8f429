package protocol

import "errors"

var (
	ErrFrameLength = errors.New("bad frame length")
	ErrFrameSync   = errors.New("missing sync byte")
	ErrFrameSeq    = errors.New("bad sequence byte")
	ErrFrameCRC    = errors.New("crc mismatch")
	ErrFramePad    = errors.New("trailing payload bytes")
)

// TraceRecord is the wire form of one engine timing event.
type TraceRecord struct {
	Type   uint8
	Pin    uint8
	Clock  uint64
	Value1 uint32
	Value2 uint32
	Seq    uint8 // filled by DecodeTraceFrame
}

// TraceEncoder builds frames with a rolling 4-bit sequence number.
// It is not safe for concurrent use.
type TraceEncoder struct {
	seq uint8
	buf FrameBuffer
}

// NewTraceEncoder returns an encoder starting at sequence 0.
func NewTraceEncoder() *TraceEncoder {
	return &TraceEncoder{}
}

// Seq returns the sequence number the next frame will carry.
func (e *TraceEncoder) Seq() uint8 {
	return e.seq
}

// Encode frames rec. The returned slice is a fresh copy.
func (e *TraceEncoder) Encode(rec TraceRecord) []byte {
	b := &e.buf
	b.Reset()
	b.Append(0, MessageDest|(e.seq&MessageSeqMask))
	b.AppendVLQ(uint32(rec.Type))
	b.AppendVLQ(uint32(rec.Pin))
	b.AppendVLQ(uint32(rec.Clock))
	b.AppendVLQ(uint32(rec.Clock >> 32))
	b.AppendVLQ(rec.Value1)
	b.AppendVLQ(rec.Value2)
	b.Seal()

	e.seq = (e.seq + 1) & MessageSeqMask
	return append([]byte(nil), b.Bytes()...)
}

// DecodeTraceFrame validates and decodes a single complete frame.
func DecodeTraceFrame(frame []byte) (TraceRecord, error) {
	var rec TraceRecord

	n := len(frame)
	if n < MessageLengthMin || n > MessageMax || int(frame[MessagePositionLen]) != n {
		return rec, ErrFrameLength
	}
	if frame[n-MessageTrailerSync] != MessageValueSync {
		return rec, ErrFrameSync
	}
	seq := frame[MessagePositionSeq]
	if seq&^MessageSeqMask != MessageDest {
		return rec, ErrFrameSeq
	}
	crc := uint16(frame[n-MessageTrailerCRC])<<8 | uint16(frame[n-MessageTrailerCRC+1])
	if CRC16(frame[:n-MessageTrailerCRC]) != crc {
		return rec, ErrFrameCRC
	}

	payload := frame[MessageHeaderSize : n-MessageTrailerSize]
	var fields [6]uint32
	for i := range fields {
		v, used, err := DecodeVLQUint(payload)
		if err != nil {
			return rec, err
		}
		fields[i] = v
		payload = payload[used:]
	}
	if len(payload) != 0 {
		return rec, ErrFramePad
	}

	rec.Type = uint8(fields[0])
	rec.Pin = uint8(fields[1])
	rec.Clock = uint64(fields[3])<<32 | uint64(fields[2])
	rec.Value1 = fields[4]
	rec.Value2 = fields[5]
	rec.Seq = seq & MessageSeqMask
	return rec, nil
}
