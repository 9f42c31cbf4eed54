package stopwatch

import (
	"fmt"
	"time"
)

// Event is a lifecycle transition observers can subscribe to.
type Event string

const (
	EventStart Event = "start" // Timer started
	EventStop  Event = "stop"  // Timer stopped
	EventSplit Event = "split" // Lap recorded
)

// Events returns every known event kind in dispatch-table order.
func Events() []Event {
	return []Event{EventStart, EventStop, EventSplit}
}

// Valid reports whether e is one of the known event kinds.
func (e Event) Valid() bool {
	switch e {
	case EventStart, EventStop, EventSplit:
		return true
	default:
		return false
	}
}

// ParseEvent converts a name into an Event.
func ParseEvent(name string) (Event, error) {
	e := Event(name)
	if !e.Valid() {
		return "", fmt.Errorf("%w %s", ErrUnknownEvent, name)
	}
	return e, nil
}

// Payload is handed to every handler of an event.
// At holds the start or stop timestamp; for splits Lap is the new lap and
// At is its stop time.
type Payload struct {
	Event Event
	At    time.Time
	Lap   *Timer
}

// Handler receives event payloads synchronously.
type Handler func(Payload)

// hooks maps each event kind to its handlers in registration order.
type hooks map[Event][]Handler

func newHooks() hooks {
	h := make(hooks, 3)
	for _, e := range Events() {
		h[e] = nil
	}
	return h
}

func (h hooks) add(e Event, fn Handler) error {
	if !e.Valid() {
		return fmt.Errorf("%w %s", ErrUnknownEvent, e)
	}
	if fn == nil {
		return fmt.Errorf("%w for %s", ErrNilHandler, e)
	}
	h[e] = append(h[e], fn)
	return nil
}

func (h hooks) emit(p Payload) {
	for _, fn := range h[p.Event] {
		fn(p)
	}
}
