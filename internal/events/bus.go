package events

import (
	"time"

	"github.com/rs/zerolog"
)

// Event is a published event with its envelope
type Event struct {
	Type      EventType
	RunID     string
	Timestamp time.Time
	Data      EventData
}

// Handler receives published events
type Handler func(Event)

// Bus delivers events to subscribers synchronously, in subscription order.
// A run is single-threaded, so the bus does no locking.
type Bus struct {
	handlers map[EventType][]Handler
	all      []Handler
	now      func() time.Time
	log      zerolog.Logger
}

// NewBus creates an empty bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		now:      time.Now,
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for one event type
func (b *Bus) Subscribe(eventType EventType, h Handler) {
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// SubscribeAll registers a handler for every event type
func (b *Bus) SubscribeAll(h Handler) {
	b.all = append(b.all, h)
}

// Publish delivers data to every matching handler. A nil bus drops events.
func (b *Bus) Publish(runID string, data EventData) {
	if b == nil || data == nil {
		return
	}

	e := Event{
		Type:      data.EventType(),
		RunID:     runID,
		Timestamp: b.now(),
		Data:      data,
	}

	for _, h := range b.handlers[e.Type] {
		h(e)
	}
	for _, h := range b.all {
		h(e)
	}
}

// LogHandler returns a handler that writes every event at debug level
func LogHandler(log zerolog.Logger) Handler {
	return func(e Event) {
		log.Debug().
			Str("event", string(e.Type)).
			Str("run_id", e.RunID).
			Interface("data", e.Data).
			Msg("Simulation event")
	}
}
