// Package event is the application event bus: typed events, listeners that
// declare the event type they handle, and a multicaster that routes each
// published event to the matching listeners.
//
//	m := event.NewMulticaster(event.WithLogger(logger))
//	m.Subscribe(event.On(func(e *event.ContextRefreshed) error {
//	    logger.Info("ready", zap.String("event", e.EventID()))
//	    return nil
//	}))
//	m.Publish(event.NewContextRefreshed(app))
package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is anything published on the bus.
type Event interface {
	EventID() string
	OccurredAt() time.Time
}

// Base gives an event a unique id and a timestamp. Embed it:
//
//	type OrderPlaced struct {
//	    event.Base
//	    OrderID string
//	}
//
//	m.Publish(&OrderPlaced{Base: event.NewBase(), OrderID: "42"})
type Base struct {
	id string
	at time.Time
}

// NewBase stamps a new event.
func NewBase() Base {
	return Base{id: uuid.NewString(), at: time.Now()}
}

func (b Base) EventID() string      { return b.id }
func (b Base) OccurredAt() time.Time { return b.at }

// ── Context events ────────────────────────────────────────────────────────────

// ContextEvent is published by the application itself; Source is the
// publishing application.
type ContextEvent interface {
	Event
	Source() any
}

type contextEvent struct {
	Base
	source any
}

func (e contextEvent) Source() any { return e.source }

// ContextRefreshed is published once start-up has completed.
type ContextRefreshed struct {
	contextEvent
}

func NewContextRefreshed(source any) *ContextRefreshed {
	return &ContextRefreshed{contextEvent{Base: NewBase(), source: source}}
}

// ContextClosed is published when a running application begins to close,
// before any singleton is destroyed.
type ContextClosed struct {
	contextEvent
}

func NewContextClosed(source any) *ContextClosed {
	return &ContextClosed{contextEvent{Base: NewBase(), source: source}}
}

// Publisher publishes events.
type Publisher interface {
	Publish(ev Event)
}
