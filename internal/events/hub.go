// Package events is the service's operational event stream. Events land in
// a ring buffer, fan out to live subscribers, go to every registered Sink
// and are written to the logger.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Event struct {
	ID        string                 `json:"id"`
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Time parses the event timestamp.
func (e Event) Time() time.Time {
	ts, _ := time.Parse(time.RFC3339Nano, e.Timestamp)
	return ts
}

// Sink persists or forwards events. Append is called synchronously from Emit.
type Sink interface {
	Name() string
	Append(e Event) error
}

// Subscriber receives events as they are emitted.
type Subscriber chan Event

const subscriberBuffer = 64

// Hub owns one event stream.
type Hub struct {
	buffer *RingBuffer
	total  atomic.Uint64

	subMu       sync.RWMutex
	subscribers map[Subscriber]struct{}

	sinkMu     sync.RWMutex
	sinks      []Sink
	sinkFailed map[string]bool
}

// NewHub returns a Hub retaining the last size events.
func NewHub(size int) *Hub {
	return &Hub{
		buffer:      NewRingBuffer(size),
		subscribers: make(map[Subscriber]struct{}),
		sinkFailed:  make(map[string]bool),
	}
}

var defaultHub = NewHub(256)

// Default returns the process-wide hub used by the package-level functions.
func Default() *Hub {
	return defaultHub
}

// Emit records an event. Unknown names are rejected.
func (h *Hub) Emit(level, name, msg string, fields map[string]interface{}) (Event, error) {
	if err := Validate(name); err != nil {
		return Event{}, err
	}

	e := Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Fields:    fields,
	}

	h.buffer.Add(e)
	h.total.Add(1)
	h.broadcast(e)
	h.appendToSinks(e)
	logEvent(e)

	return e, nil
}

func (h *Hub) appendToSinks(e Event) {
	h.sinkMu.RLock()
	sinks := append([]Sink(nil), h.sinks...)
	h.sinkMu.RUnlock()

	for _, s := range sinks {
		err := s.Append(e)

		h.sinkMu.Lock()
		alreadyFailed := h.sinkFailed[s.Name()]
		h.sinkFailed[s.Name()] = err != nil
		h.sinkMu.Unlock()

		// Report a failing sink once per outage. The report goes straight to
		// the buffer so a sink that keeps failing cannot recurse through Emit.
		if err != nil && !alreadyFailed {
			report := Event{
				ID:        uuid.NewString(),
				Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
				Level:     "error",
				Name:      SystemError,
				Message:   "event sink append failed",
				Fields: map[string]interface{}{
					"sink":  s.Name(),
					"error": err.Error(),
				},
			}
			h.buffer.Add(report)
			h.broadcast(report)
			logEvent(report)
		}
	}
}

// AddSink registers s to receive every subsequent event.
func (h *Hub) AddSink(s Sink) {
	h.sinkMu.Lock()
	defer h.sinkMu.Unlock()
	h.sinks = append(h.sinks, s)
}

// RemoveSink unregisters the sink with the given name.
func (h *Hub) RemoveSink(name string) {
	h.sinkMu.Lock()
	defer h.sinkMu.Unlock()
	kept := h.sinks[:0]
	for _, s := range h.sinks {
		if s.Name() != name {
			kept = append(kept, s)
		}
	}
	h.sinks = kept
	delete(h.sinkFailed, name)
}

// SinkHealthy reports whether the named sink accepted its last event.
func (h *Hub) SinkHealthy(name string) bool {
	h.sinkMu.RLock()
	defer h.sinkMu.RUnlock()
	return !h.sinkFailed[name]
}

// Subscribe adds a subscriber. Its channel is buffered so a slow reader
// never blocks Emit.
func (h *Hub) Subscribe() Subscriber {
	ch := make(Subscriber, subscriberBuffer)
	h.subMu.Lock()
	h.subscribers[ch] = struct{}{}
	h.subMu.Unlock()
	return ch
}

// Unsubscribe removes sub and closes its channel. Unknown subscribers are
// ignored.
func (h *Hub) Unsubscribe(sub Subscriber) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	close(sub)
}

// CloseAllSubscribers closes and removes every subscriber.
func (h *Hub) CloseAllSubscribers() {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	for sub := range h.subscribers {
		close(sub)
	}
	h.subscribers = make(map[Subscriber]struct{})
}

// broadcast drops the event for any subscriber whose buffer is full.
func (h *Hub) broadcast(e Event) {
	h.subMu.RLock()
	defer h.subMu.RUnlock()

	for sub := range h.subscribers {
		select {
		case sub <- e:
		default:
		}
	}
}

// SubscriberCount returns the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.subMu.RLock()
	defer h.subMu.RUnlock()
	return len(h.subscribers)
}

// Snapshot returns the buffered events, oldest first.
func (h *Hub) Snapshot() []Event {
	return h.buffer.Snapshot()
}

// RecentEvents returns the last n buffered events, or all of them when n is
// not positive or exceeds the buffer.
func (h *Hub) RecentEvents(n int) []Event {
	all := h.buffer.Snapshot()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// TotalCount returns the number of events emitted since the hub was created.
func (h *Hub) TotalCount() uint64 {
	return h.total.Load()
}

// Clear empties the buffer. Used for testing.
func (h *Hub) Clear() {
	h.buffer.Clear()
}

func logEvent(e Event) {
	level, err := zerolog.ParseLevel(e.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	ev := log.WithLevel(level).Str("event", e.Name).Str("event_id", e.ID)
	if len(e.Fields) > 0 {
		ev = ev.Fields(e.Fields)
	}
	ev.Msg(e.Message)
}

// Emit records an event on the default hub.
func Emit(level, name, msg string, fields map[string]interface{}) (Event, error) {
	return defaultHub.Emit(level, name, msg, fields)
}

func Subscribe() Subscriber { return defaultHub.Subscribe() }
func Unsubscribe(sub Subscriber) { defaultHub.Unsubscribe(sub) }
func CloseAllSubscribers() { defaultHub.CloseAllSubscribers() }
func SubscriberCount() int { return defaultHub.SubscriberCount() }
func Snapshot() []Event { return defaultHub.Snapshot() }
func RecentEvents(n int) []Event { return defaultHub.RecentEvents(n) }
func TotalCount() uint64 { return defaultHub.TotalCount() }
func AddSink(s Sink) { defaultHub.AddSink(s) }
func Clear() { defaultHub.Clear() }
