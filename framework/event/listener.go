package event

import "reflect"

// Listener handles one declared event type. EventType is read once, when the
// listener is subscribed.
//
// An event matches when its runtime type equals EventType, or when EventType
// is an interface the event implements. A nil EventType matches every event.
type Listener interface {
	EventType() reflect.Type
	OnEvent(ev Event) error
}

// On adapts a typed function into a Listener for E.
//
//	event.On(func(e *event.ContextClosed) error { return flush() })
//	event.On(func(e event.ContextEvent) error { ... }) // every context event
func On[E Event](fn func(E) error) Listener {
	return &funcListener[E]{fn: fn}
}

type funcListener[E Event] struct {
	fn func(E) error
}

func (l *funcListener[E]) EventType() reflect.Type { return TypeOf[E]() }

func (l *funcListener[E]) OnEvent(ev Event) error {
	typed, ok := ev.(E)
	if !ok {
		return nil
	}
	return l.fn(typed)
}

// TypeOf returns the reflect.Type of E, interfaces included.
func TypeOf[E any]() reflect.Type {
	return reflect.TypeOf((*E)(nil)).Elem()
}

// Matches reports whether an event of type actual is delivered to a listener
// declaring declared.
func Matches(declared, actual reflect.Type) bool {
	if declared == nil {
		return true
	}
	if declared == actual {
		return true
	}
	return declared.Kind() == reflect.Interface && actual != nil && actual.Implements(declared)
}
