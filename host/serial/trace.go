package serial

import (
	"fmt"
	"io"

	"simpwm/core"
	"simpwm/protocol"
)

// TraceSink frames timing events and writes them to w. The first write
// error is kept and later events are dropped.
type TraceSink struct {
	w      io.Writer
	enc    *protocol.TraceEncoder
	frames int
	err    error
}

// NewTraceSink creates a sink writing to w
func NewTraceSink(w io.Writer) *TraceSink {
	return &TraceSink{w: w, enc: protocol.NewTraceEncoder()}
}

// Record encodes and writes one event. Its signature matches
// core.EngineOptions.OnEvent.
func (s *TraceSink) Record(evt core.TimingEvent) {
	if s.err != nil {
		return
	}
	frame := s.enc.Encode(protocol.TraceRecord{
		Type:   evt.EventType,
		Pin:    evt.Pin,
		Clock:  evt.Clock,
		Value1: evt.Value1,
		Value2: evt.Value2,
	})
	if _, err := s.w.Write(frame); err != nil {
		s.err = fmt.Errorf("trace write: %w", err)
		return
	}
	s.frames++
}

// Frames returns how many frames were written
func (s *TraceSink) Frames() int {
	return s.frames
}

// Err returns the first write error
func (s *TraceSink) Err() error {
	return s.err
}

// TraceReader splits a byte stream into frames using the length byte
type TraceReader struct {
	r   io.Reader
	buf [protocol.MessageMax]byte
}

// NewTraceReader creates a reader over r
func NewTraceReader(r io.Reader) *TraceReader {
	return &TraceReader{r: r}
}

// Next reads and decodes one frame. It returns io.EOF at a clean end of
// stream.
func (t *TraceReader) Next() (protocol.TraceRecord, error) {
	if _, err := io.ReadFull(t.r, t.buf[:1]); err != nil {
		return protocol.TraceRecord{}, err
	}
	n := int(t.buf[0])
	if n < protocol.MessageLengthMin || n > protocol.MessageMax {
		return protocol.TraceRecord{}, protocol.ErrFrameLength
	}
	if _, err := io.ReadFull(t.r, t.buf[1:n]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return protocol.TraceRecord{}, err
	}
	return protocol.DecodeTraceFrame(t.buf[:n])
}

// EventFromRecord converts a decoded frame back to the engine's event form
func EventFromRecord(rec protocol.TraceRecord) core.TimingEvent {
	return core.TimingEvent{
		EventType: rec.Type,
		Pin:       rec.Pin,
		Clock:     rec.Clock,
		Value1:    rec.Value1,
		Value2:    rec.Value2,
	}
}
