package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a timing-critical event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	Pin       uint8  // Pin the event concerns (0 for engine-wide events)
	Clock     uint64 // Engine clock at event (µs)
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtWrite      = 1 // channel (re)armed: v1=duty v2=frequency
	EvtStop       = 2 // channel stopped
	EvtSteady     = 3 // pin forced to a steady level: v1=level
	EvtReschedule = 4 // shared timer armed: v1=interval
	EvtFire       = 5 // timer fired: v1=toggled channels v2=next interval
	EvtToggle     = 6 // output flipped: v1=new level v2=phase duration
	EvtCatchUp    = 7 // deadline already passed while rescheduling: v1=lateness
	EvtIdle       = 8 // no running channel, timer left idle
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// Logger prefixes messages for one component. A Logger without its own
// writer goes through DebugPrintln and obeys SetDebugEnabled.
type Logger struct {
	prefix string
	w      DebugWriter
}

// NewLogger creates a logger. w may be nil to use the global debug writer.
func NewLogger(prefix string, w DebugWriter) *Logger {
	return &Logger{prefix: prefix, w: w}
}

// Println writes one message
func (l *Logger) Println(msg string) {
	if l == nil {
		return
	}
	if l.prefix != "" {
		msg = l.prefix + " " + msg
	}
	if l.w != nil {
		l.w(msg)
		return
	}
	DebugPrintln(msg)
}

// TimingRing keeps the most recent TimingRingSize events.
// Recording is non-blocking and allocation-free.
type TimingRing struct {
	events [TimingRingSize]TimingEvent
	head   uint8
	total  uint32
}

// Record captures a timing event in the ring buffer
func (r *TimingRing) Record(eventType, pin uint8, clock uint64, value1, value2 uint32) TimingEvent {
	evt := TimingEvent{
		EventType: eventType,
		Pin:       pin,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	r.events[r.head] = evt
	r.head = (r.head + 1) % TimingRingSize
	r.total++
	return evt
}

// Total returns how many events were recorded since the last Clear
func (r *TimingRing) Total() uint32 {
	return r.total
}

// Events returns the buffered events, oldest first
func (r *TimingRing) Events() []TimingEvent {
	out := make([]TimingEvent, 0, TimingRingSize)
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := r.events[(r.head+i)%TimingRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// Clear clears the ring
func (r *TimingRing) Clear() {
	*r = TimingRing{}
}

// EventName returns the dump label of an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtWrite:
		return "WRITE"
	case EvtStop:
		return "STOP"
	case EvtSteady:
		return "STEADY"
	case EvtReschedule:
		return "RESCHED"
	case EvtFire:
		return "FIRE"
	case EvtToggle:
		return "TOGGLE"
	case EvtCatchUp:
		return "CATCH_UP!"
	case EvtIdle:
		return "IDLE"
	default:
		return "UNKNOWN"
	}
}

// FormatEvent renders one event on a single line
func FormatEvent(evt TimingEvent) string {
	return EventName(evt.EventType) +
		" pin=" + itoa(int(evt.Pin)) +
		" clock=" + utoa64(evt.Clock) +
		" v1=" + Utoa(evt.Value1) +
		" v2=" + Utoa(evt.Value2)
}

// Dump outputs the ring buffer, oldest first (call on shutdown/error)
func (r *TimingRing) Dump(l *Logger) {
	l.Println("[TIMING] === Timing Ring Dump ===")
	l.Println("[TIMING] Total events recorded: " + Utoa(r.total))
	for _, evt := range r.Events() {
		l.Println("[TIMING] " + FormatEvent(evt))
	}
	l.Println("[TIMING] === End Dump ===")
}
