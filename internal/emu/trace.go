package emu

import "strconv"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures a masking or delivery step for post-mortem analysis
type Event struct {
	Type uint8  // Event type code
	Line uint8  // Interrupt line, when relevant
	Reg  uint64 // Status register after the step
}

// Event type codes
const (
	EvtDisable = 1 // ReadDisable executed
	EvtRestore = 2 // Restore executed
	EvtRaise   = 3 // Line raised
	EvtDefer   = 4 // Line raised while masked, left pending
	EvtDeliver = 5 // Handler entered
	EvtWrite   = 6 // Status register written by other code
)

const (
	TraceRingSize = 32 // Keep last 32 events
)

type traceRing struct {
	events [TraceRingSize]Event
	head   uint8 // Next write position
	writer DebugWriter
}

// SetDebugWriter sets where DumpTrace sends its lines
func (c *Core) SetDebugWriter(w DebugWriter) {
	c.trace.writer = w
}

func (c *Core) record(eventType, line uint8) {
	idx := c.trace.head
	c.trace.events[idx] = Event{Type: eventType, Line: line, Reg: c.reg}
	c.trace.head = (idx + 1) % TraceRingSize
}

// Trace returns the recorded events, oldest first.
func (c *Core) Trace() []Event {
	out := make([]Event, 0, TraceRingSize)
	start := c.trace.head
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := c.trace.events[(start+i)%TraceRingSize]
		if evt.Type == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// ClearTrace clears the event ring
func (c *Core) ClearTrace() {
	c.trace.events = [TraceRingSize]Event{}
	c.trace.head = 0
}

// DumpTrace outputs the event ring through the debug writer
func (c *Core) DumpTrace() {
	w := c.trace.writer
	if w == nil {
		return
	}

	w("[TRACE] === " + c.arch.String() + " core ===")
	for _, evt := range c.Trace() {
		w("[TRACE] " + eventName(evt.Type) +
			" line=" + strconv.Itoa(int(evt.Line)) +
			" reg=0x" + strconv.FormatUint(evt.Reg, 16))
	}
	w("[TRACE] === End Dump ===")
}

func eventName(t uint8) string {
	switch t {
	case EvtDisable:
		return "DISABLE"
	case EvtRestore:
		return "RESTORE"
	case EvtRaise:
		return "RAISE"
	case EvtDefer:
		return "DEFER"
	case EvtDeliver:
		return "DELIVER"
	case EvtWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}
