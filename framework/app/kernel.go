package app

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/event"
)

// MulticasterName is the singleton name the event multicaster is registered
// under during Start.
const MulticasterName = "eventMulticaster"

// Application is the top-level application context.
// It embeds the IoC Container so user code can call app.Resolve(),
// app.Register() directly, and drives the container through start-up and
// shutdown:
//
//	application := app.New(
//	    app.WithSources(providers.NewProviderRegistry(&GarageProvider{})),
//	    app.WithLogger(logger),
//	)
//	if err := application.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer application.Close()
type Application struct {
	*container.Container

	sources       []DefinitionSource
	containerExts []container.ContainerExtension
	componentExts []container.ComponentExtension
	executor      event.Executor
	errorHandler  event.ErrorHandler
	logger        *zap.Logger

	lifecycle   sync.Mutex // serializes Start and Close
	state       atomic.Int32
	multicaster atomic.Pointer[event.Multicaster]
}

// Option configures an Application.
type Option func(a *Application)

// WithSources appends definition sources, loaded in order.
func WithSources(sources ...DefinitionSource) Option {
	return func(a *Application) { a.sources = append(a.sources, sources...) }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Application) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithExecutor makes event delivery asynchronous.
func WithExecutor(ex event.Executor) Option {
	return func(a *Application) { a.executor = ex }
}

func WithErrorHandler(h event.ErrorHandler) Option {
	return func(a *Application) { a.errorHandler = h }
}

// WithContainerExtension adds an extension that runs before any container
// extension found among the definitions.
func WithContainerExtension(ext container.ContainerExtension) Option {
	return func(a *Application) { a.containerExts = append(a.containerExts, ext) }
}

// WithComponentExtension adds an extension ahead of those found among the
// definitions; it also frames their construction.
func WithComponentExtension(ext container.ComponentExtension) Option {
	return func(a *Application) { a.componentExts = append(a.componentExts, ext) }
}

// New creates an application. Nothing is loaded or built until Start.
func New(opts ...Option) *Application {
	a := &Application{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	a.Container = container.New(container.WithLogger(a.logger))
	for _, ext := range a.componentExts {
		a.Container.AddExtension(ext)
	}
	return a
}

// State returns the current lifecycle state.
func (a *Application) State() State { return State(a.state.Load()) }

// Multicaster returns the event multicaster, nil before Start has reached
// StateEventsReady.
func (a *Application) Multicaster() *event.Multicaster { return a.multicaster.Load() }

// ── Start-up ──────────────────────────────────────────────────────────────────

// Start loads every definition source, applies the extensions, wires the
// event multicaster and listeners, builds every eager singleton and publishes
// event.ContextRefreshed.
//
// On failure every singleton built so far is destroyed, the application
// moves to StateFailed and the returned error is a *StartError.
func (a *Application) Start() error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if s := a.State(); s != StateUninitialized {
		return fmt.Errorf("%w: cannot start from %s", ErrInvalidState, s)
	}

	if err := a.start(); err != nil {
		teardown := a.Container.DestroySingletons()
		a.setState(StateFailed)
		a.logger.Error("application start failed", zap.Error(err))
		return &StartError{Cause: err, Teardown: teardown}
	}
	a.setState(StateRunning)
	return nil
}

func (a *Application) start() error {
	for _, src := range a.sources {
		if err := src.LoadDefinitions(a.Container); err != nil {
			return fmt.Errorf("loading definitions: %w", err)
		}
	}
	a.setState(StateDefinitionsLoaded)

	a.Container.AddExtension(&awareExtension{app: a})

	if err := a.invokeContainerExtensions(); err != nil {
		return err
	}
	a.setState(StateExtensionsApplied)

	if err := a.registerComponentExtensions(); err != nil {
		return err
	}
	a.setState(StatePostProcessorsRegistered)

	a.initMulticaster()
	if err := a.registerListeners(); err != nil {
		return err
	}
	a.setState(StateEventsReady)

	if err := a.Container.PreInstantiateSingletons(); err != nil {
		return err
	}
	a.setState(StateSingletonsInstantiated)

	a.Multicaster().Publish(event.NewContextRefreshed(a))
	return nil
}

func (a *Application) invokeContainerExtensions() error {
	for _, ext := range a.containerExts {
		if err := ext.PostProcessContainer(a.Container); err != nil {
			return fmt.Errorf("container extension %T: %w", ext, err)
		}
	}
	for _, name := range a.Container.NamesForType(container.TypeOf[container.ContainerExtension]()) {
		ext, err := container.Resolve[container.ContainerExtension](a.Container, name)
		if err != nil {
			return err
		}
		if err := ext.PostProcessContainer(a.Container); err != nil {
			return fmt.Errorf("container extension %s: %w", name, err)
		}
	}
	return nil
}

func (a *Application) registerComponentExtensions() error {
	for _, name := range a.Container.NamesForType(container.TypeOf[container.ComponentExtension]()) {
		ext, err := container.Resolve[container.ComponentExtension](a.Container, name)
		if err != nil {
			return err
		}
		a.Container.AddExtension(ext)
	}
	return nil
}

func (a *Application) initMulticaster() {
	opts := []event.MulticasterOption{event.WithLogger(a.logger)}
	if a.executor != nil {
		opts = append(opts, event.WithExecutor(a.executor))
	}
	if a.errorHandler != nil {
		opts = append(opts, event.WithErrorHandler(a.errorHandler))
	}
	m := event.NewMulticaster(opts...)
	a.Container.RegisterSingleton(MulticasterName, m)
	a.multicaster.Store(m)
}

func (a *Application) registerListeners() error {
	m := a.Multicaster()
	for _, name := range a.Container.NamesForType(event.TypeOf[event.Listener]()) {
		l, err := container.Resolve[event.Listener](a.Container, name)
		if err != nil {
			return err
		}
		m.Subscribe(l)
	}
	return nil
}

// ── Events ────────────────────────────────────────────────────────────────────

// Publish sends ev to the matching listeners. Events published before the
// multicaster exists are dropped with a warning.
func (a *Application) Publish(ev event.Event) {
	m := a.Multicaster()
	if m == nil {
		a.logger.Warn("event dropped", zap.Error(ErrNotStarted), zap.Stringer("state", a.State()))
		return
	}
	m.Publish(ev)
}

// ── Shutdown ──────────────────────────────────────────────────────────────────

// Close publishes event.ContextClosed if the application is running, waits
// for asynchronous deliveries, then destroys every singleton. Close is
// idempotent; errors from finalizers are joined into the returned error.
func (a *Application) Close() error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if a.State() == StateClosed {
		return nil
	}

	running := a.State() == StateRunning
	a.setState(StateClosing)

	if m := a.Multicaster(); m != nil {
		if running {
			m.Publish(event.NewContextClosed(a))
		}
		m.Wait()
	}

	err := a.Container.DestroySingletons()
	a.setState(StateClosed)
	return err
}

func (a *Application) setState(s State) {
	a.state.Store(int32(s))
	a.logger.Info("application state changed", zap.Stringer("state", s))
}
