package sim

import "container/heap"

// EventQueue is a priority queue of pending events with deterministic ordering.
// Order by: due time → sequence ID.
type EventQueue struct {
	events []*Event
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{
		events: make([]*Event, 0),
	}
	heap.Init(q)
	return q
}

// Len implements heap.Interface
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Less implements heap.Interface
func (q *EventQueue) Less(i, j int) bool {
	ei, ej := q.events[i], q.events[j]
	if ei.due != ej.due {
		return ei.due < ej.due
	}
	return ei.seq < ej.seq
}

// Swap implements heap.Interface
func (q *EventQueue) Swap(i, j int) {
	q.events[i], q.events[j] = q.events[j], q.events[i]
	q.events[i].index = i
	q.events[j].index = j
}

// Push implements heap.Interface
func (q *EventQueue) Push(x interface{}) {
	e := x.(*Event)
	e.index = len(q.events)
	q.events = append(q.events, e)
}

// Pop implements heap.Interface
func (q *EventQueue) Pop() interface{} {
	old := q.events
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	q.events = old[0 : n-1]
	return item
}

// Schedule adds an event to the queue
func (q *EventQueue) Schedule(e *Event) {
	heap.Push(q, e)
}

// PopNext removes and returns the earliest event, or nil when empty.
func (q *EventQueue) PopNext() *Event {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(*Event)
}

// Peek returns the earliest event without removing it
func (q *EventQueue) Peek() *Event {
	if q.Len() == 0 {
		return nil
	}
	return q.events[0]
}

// Remove takes a still-queued event out of the queue. It returns false if
// the event was already popped or removed.
func (q *EventQueue) Remove(e *Event) bool {
	if e.index < 0 || e.index >= len(q.events) || q.events[e.index] != e {
		return false
	}
	heap.Remove(q, e.index)
	return true
}
