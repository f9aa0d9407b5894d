package app

import (
	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/event"
)

// ApplicationAware components receive the owning application before they
// are initialized.
type ApplicationAware interface {
	SetApplication(a *Application)
}

// PublisherAware components receive the application's event publisher
// before they are initialized.
type PublisherAware interface {
	SetEventPublisher(p event.Publisher)
}

// DefinitionSource contributes definitions to the registry at start-up.
type DefinitionSource interface {
	LoadDefinitions(reg container.Registry) error
}

// SourceFunc adapts a function into a DefinitionSource.
type SourceFunc func(reg container.Registry) error

func (f SourceFunc) LoadDefinitions(reg container.Registry) error { return f(reg) }

// awareExtension hands the application to aware components.
type awareExtension struct {
	app *Application
}

func (e *awareExtension) BeforeInitialization(instance any, _ string) (any, error) {
	if aware, ok := instance.(ApplicationAware); ok {
		aware.SetApplication(e.app)
	}
	if aware, ok := instance.(PublisherAware); ok {
		aware.SetEventPublisher(e.app)
	}
	return instance, nil
}

func (e *awareExtension) AfterInitialization(instance any, _ string) (any, error) {
	return instance, nil
}
