package providers

import (
	"fmt"
	"reflect"

	"github.com/km-arc/go-beans/framework/container"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider contributes definitions programmatically.
//
//	type GarageProvider struct{}
//
//	func (p *GarageProvider) Register(reg container.Registry) error {
//	    reg.Register("engine", container.NewDefinition(container.TypeOf[*Engine]()))
//	    reg.Register("car", container.NewDefinition(container.TypeOf[*Car](),
//	        container.WithAutowire(container.AutowireByName),
//	        container.WithReference("Engine", "engine"),
//	    ))
//	    return nil
//	}
type ServiceProvider interface {
	// Register adds definitions. Do NOT resolve components here; nothing is
	// constructed until every source has been loaded.
	Register(reg container.Registry) error
}

// ProviderFunc adapts a function into a ServiceProvider.
type ProviderFunc func(reg container.Registry) error

func (f ProviderFunc) Register(reg container.Registry) error { return f(reg) }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry collects providers and loads them, in order, as one
// definition source.
//
//	reg := providers.NewProviderRegistry()
//	reg.Add(&providers.AnnotationProvider{})
//	reg.Add(&GarageProvider{})
//	application := app.New(app.WithSources(reg))
type ProviderRegistry struct {
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	loaded     bool
}

// NewProviderRegistry creates a registry holding ps.
func NewProviderRegistry(ps ...ServiceProvider) *ProviderRegistry {
	r := &ProviderRegistry{registered: make(map[ServiceProvider]bool)}
	for _, p := range ps {
		r.Add(p)
	}
	return r
}

// Add appends a provider. Adding the same provider instance twice is a no-op.
func (r *ProviderRegistry) Add(provider ServiceProvider) {
	if isComparable(provider) {
		if r.registered[provider] {
			return
		}
		r.registered[provider] = true
	}
	r.providers = append(r.providers, provider)
}

// LoadDefinitions runs every provider against reg, stopping at the first error.
func (r *ProviderRegistry) LoadDefinitions(reg container.Registry) error {
	for _, p := range r.providers {
		if err := p.Register(reg); err != nil {
			return fmt.Errorf("provider %T: %w", p, err)
		}
	}
	r.loaded = true
	return nil
}

// Loaded returns true once LoadDefinitions has succeeded.
func (r *ProviderRegistry) Loaded() bool { return r.loaded }

// Providers returns the providers in order.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	out := make([]ServiceProvider, len(r.providers))
	copy(out, r.providers)
	return out
}

func isComparable(p ServiceProvider) bool {
	return p != nil && reflect.ValueOf(p).Comparable()
}
