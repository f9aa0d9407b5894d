// Package app is the demo application wired by main: a small garage of
// components showing definitions from YAML, by-name autowiring, tag
// injection, lifecycle callbacks and application events.
package app

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	beans "github.com/km-arc/go-beans/framework/app"
	"github.com/km-arc/go-beans/framework/event"
)

// ── Components ────────────────────────────────────────────────────────────────

// Engine is started and stopped through the init and destroy methods named
// in its definition.
type Engine struct {
	Cylinders int

	mu      sync.Mutex
	running bool
}

func (e *Engine) Start() error {
	if e.Cylinders <= 0 {
		return fmt.Errorf("engine: %d cylinders", e.Cylinders)
	}
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	return nil
}

func (e *Engine) Stop() error {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	return nil
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Car gets Engine by name and its greeting from a ${key} placeholder. Once
// initialized it announces itself with CarReady.
type Car struct {
	Brand    string
	Engine   *Engine
	Greeting string `value:"Welcome to ${APP_NAME}"`

	publisher event.Publisher
}

func (c *Car) SetEventPublisher(p event.Publisher) { c.publisher = p }

func (c *Car) Initialize() error {
	if c.Engine == nil {
		return errors.New("car: no engine")
	}
	if c.publisher != nil {
		c.publisher.Publish(&CarReady{Base: event.NewBase(), Brand: c.Brand})
	}
	return nil
}

// ── Events ────────────────────────────────────────────────────────────────────

// CarReady is published by a Car once it is initialized.
type CarReady struct {
	event.Base
	Brand string
}

// ── Listeners ─────────────────────────────────────────────────────────────────

// Logbook records every application context event.
type Logbook struct {
	mu      sync.Mutex
	entries []string
	logger  *zap.Logger
}

func (l *Logbook) SetApplication(a *beans.Application) {
	l.logger = a.Logger().Named("logbook")
}

func (l *Logbook) EventType() reflect.Type { return event.TypeOf[event.ContextEvent]() }

func (l *Logbook) OnEvent(ev event.Event) error {
	entry := fmt.Sprintf("%T", ev)
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	if l.logger != nil {
		l.logger.Info("context event", zap.String("event", entry), zap.String("id", ev.EventID()))
	}
	return nil
}

// Entries returns the recorded event types in delivery order.
func (l *Logbook) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// Dashboard keeps the brands of every car that reported ready.
type Dashboard struct {
	mu     sync.Mutex
	brands []string
}

func (d *Dashboard) EventType() reflect.Type { return event.TypeOf[*CarReady]() }

func (d *Dashboard) OnEvent(ev event.Event) error {
	ready := ev.(*CarReady)
	d.mu.Lock()
	d.brands = append(d.brands, ready.Brand)
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) Brands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.brands...)
}

var (
	_ beans.PublisherAware   = (*Car)(nil)
	_ beans.ApplicationAware = (*Logbook)(nil)
	_ event.Listener         = (*Logbook)(nil)
	_ event.Listener         = (*Dashboard)(nil)
)
