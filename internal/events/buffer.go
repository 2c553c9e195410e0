package events

import "sync"

// RingBuffer keeps the most recent events in arrival order.
type RingBuffer struct {
	mu     sync.RWMutex
	events []Event
	next   int
	full   bool
}

func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = 1
	}
	return &RingBuffer{events: make([]Event, size)}
}

func (rb *RingBuffer) Add(e Event) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.events[rb.next] = e
	rb.next = (rb.next + 1) % len(rb.events)
	if rb.next == 0 {
		rb.full = true
	}
}

// Snapshot returns the buffered events, oldest first.
func (rb *RingBuffer) Snapshot() []Event {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if !rb.full {
		return append([]Event{}, rb.events[:rb.next]...)
	}

	out := make([]Event, 0, len(rb.events))
	out = append(out, rb.events[rb.next:]...)
	out = append(out, rb.events[:rb.next]...)
	return out
}

// Len returns the number of buffered events.
func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	if rb.full {
		return len(rb.events)
	}
	return rb.next
}

func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	clear(rb.events)
	rb.next = 0
	rb.full = false
}
