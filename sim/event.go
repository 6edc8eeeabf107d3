package sim

import "fmt"

// Time is a point on the simulation's virtual clock. It is unrelated to
// wall-clock time; the scenario decides what one unit means.
type Time float64

// EventKind tells a resumed process why it was woken up.
type EventKind int

const (
	// EventStart is the first resumption of a freshly spawned process.
	EventStart EventKind = iota
	// EventTimeout fires when a requested delay has elapsed.
	EventTimeout
	// EventResourceReady delivers a pool item to an acquiring process.
	EventResourceReady
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "Start"
	case EventTimeout:
		return "Timeout"
	case EventResourceReady:
		return "ResourceReady"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a scheduled resumption of one process.
// Events are ordered by (due time, sequence ID); the sequence ID is assigned
// when the event is scheduled, so equal-time events fire in scheduling order.
//
// The event names its target process but does not own it.
type Event struct {
	due    Time
	seq    uint64
	kind   EventKind
	target *Process
	value  any

	// index is the position in the EventQueue, -1 once popped or removed.
	index int
	// onCancel runs when the event is removed before firing, e.g. to hand a
	// granted pool item back.
	onCancel func()
}

// Timestamp returns the virtual time at which the event fires.
func (e *Event) Timestamp() Time {
	return e.due
}

// Seq returns the tie-breaking sequence ID.
func (e *Event) Seq() uint64 {
	return e.seq
}

// Kind returns the event kind.
func (e *Event) Kind() EventKind {
	return e.kind
}

// Target returns the process the event resumes.
func (e *Event) Target() *Process {
	return e.target
}

// Pending reports whether the event is still queued.
func (e *Event) Pending() bool {
	return e.index >= 0
}

func (e *Event) String() string {
	return fmt.Sprintf("%s(%s @ %.3f #%d)", e.kind, e.target.Name(), float64(e.due), e.seq)
}
