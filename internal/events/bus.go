// Package events carries radio and stream notifications between subsystems.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(FrequencyChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case StreamStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case StreamXRunEvent:
		event.Publish(b.dispatcher, e)
	case StreamFaultEvent:
		event.Publish(b.dispatcher, e)
	case FrequencyChangedEvent:
		event.Publish(b.dispatcher, e)
	case SoundCardEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler type determines which events it receives.
// Returns an unsubscribe function; unknown handler types get a no-op.
// Usage: unsub := bus.Subscribe(func(e StreamXRunEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(StreamStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StreamXRunEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StreamFaultEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FrequencyChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SoundCardEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
