package sim

import "container/heap"

// EventQueue is a priority queue of simulation events with deterministic
// ordering: timestamp, then kind priority, then insertion sequence.
type EventQueue struct {
	events eventHeap
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	eq := &EventQueue{events: make(eventHeap, 0)}
	heap.Init(&eq.events)
	return eq
}

// Push adds an event to the queue.
func (eq *EventQueue) Push(e Event) {
	heap.Push(&eq.events, e)
}

// Pop removes and returns the earliest event, or nil if the queue is empty.
func (eq *EventQueue) Pop() Event {
	if eq.Len() == 0 {
		return nil
	}
	return heap.Pop(&eq.events).(Event)
}

// Peek returns the earliest event without removing it.
func (eq *EventQueue) Peek() Event {
	if eq.Len() == 0 {
		return nil
	}
	return eq.events[0]
}

// Len returns the number of queued events.
func (eq *EventQueue) Len() int { return eq.events.Len() }

type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	ei, ej := h[i], h[j]
	if ei.Timestamp() != ej.Timestamp() {
		return ei.Timestamp() < ej.Timestamp()
	}
	if ei.Kind() != ej.Kind() {
		return ei.Kind() < ej.Kind()
	}
	return ei.Seq() < ej.Seq()
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
