package event

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// ErrorHandler receives every error and panic raised by a listener. It never
// affects the publisher or the other listeners.
type ErrorHandler func(ev Event, l Listener, err error)

// Multicaster routes published events to subscribed listeners, in
// subscription order.
type Multicaster struct {
	mu        sync.RWMutex
	listeners []subscription

	executor     Executor
	errorHandler ErrorHandler
	logger       *zap.Logger
}

type subscription struct {
	listener  Listener
	eventType reflect.Type
}

// MulticasterOption configures a Multicaster.
type MulticasterOption func(m *Multicaster)

// WithExecutor makes delivery asynchronous through ex.
func WithExecutor(ex Executor) MulticasterOption {
	return func(m *Multicaster) { m.executor = ex }
}

// WithErrorHandler replaces the default handler, which logs at error level.
func WithErrorHandler(h ErrorHandler) MulticasterOption {
	return func(m *Multicaster) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

func WithLogger(l *zap.Logger) MulticasterOption {
	return func(m *Multicaster) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMulticaster returns a synchronous multicaster unless WithExecutor is given.
func NewMulticaster(opts ...MulticasterOption) *Multicaster {
	m := &Multicaster{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	if m.errorHandler == nil {
		m.errorHandler = m.logError
	}
	return m
}

// Subscribe adds l. Subscribing the same listener twice keeps one entry.
func (m *Multicaster) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(l) >= 0 {
		return
	}
	m.listeners = append(m.listeners, subscription{listener: l, eventType: l.EventType()})
}

// Unsubscribe removes l and reports whether it was subscribed.
func (m *Multicaster) Unsubscribe(l Listener) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(l)
	if i < 0 {
		return false
	}
	m.listeners = slices.Delete(m.listeners, i, i+1)
	return true
}

// Listeners returns the subscribed listeners in order.
func (m *Multicaster) Listeners() []Listener {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Listener, len(m.listeners))
	for i, s := range m.listeners {
		out[i] = s.listener
	}
	return out
}

// Publish delivers ev to every matching listener. With an executor each
// delivery is handed to it; otherwise listeners run here, one after another.
func (m *Multicaster) Publish(ev Event) {
	if ev == nil {
		return
	}
	actual := reflect.TypeOf(ev)

	m.mu.RLock()
	var matched []Listener
	for _, s := range m.listeners {
		if Matches(s.eventType, actual) {
			matched = append(matched, s.listener)
		}
	}
	m.mu.RUnlock()

	m.logger.Debug("publishing event",
		zap.Stringer("type", actual),
		zap.String("id", ev.EventID()),
		zap.Int("listeners", len(matched)),
	)

	for _, l := range matched {
		if m.executor != nil {
			m.executor.Execute(func() { m.invoke(l, ev) })
		} else {
			m.invoke(l, ev)
		}
	}
}

// Wait blocks until the executor has finished every delivery, when it can
// tell.
func (m *Multicaster) Wait() {
	if d, ok := m.executor.(Drainer); ok {
		d.Wait()
	}
}

func (m *Multicaster) invoke(l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			m.errorHandler(ev, l, fmt.Errorf("listener panicked: %v", r))
		}
	}()
	if err := l.OnEvent(ev); err != nil {
		m.errorHandler(ev, l, err)
	}
}

func (m *Multicaster) logError(ev Event, l Listener, err error) {
	m.logger.Error("event listener failed",
		zap.String("listener", fmt.Sprintf("%T", l)),
		zap.Stringer("event", reflect.TypeOf(ev)),
		zap.String("id", ev.EventID()),
		zap.Error(err),
	)
}

func (m *Multicaster) indexOf(l Listener) int {
	return slices.IndexFunc(m.listeners, func(s subscription) bool {
		return sameListener(s.listener, l)
	})
}

func sameListener(a, b Listener) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.ValueOf(a).Comparable() && a == b
}
