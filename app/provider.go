package app

import (
	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/introspect"
	"github.com/km-arc/go-beans/framework/source"
)

// Types returns the aliases definition files may use for the demo types.
//
//	engine            → *Engine
//	car               → *Car
//	introspectServer  → *introspect.Server
func Types() *source.TypeRegistry {
	types := source.NewTypeRegistry()
	_ = source.Add[*Engine](types, "")
	_ = source.Add[*Car](types, "")
	_ = source.Add[*introspect.Server](types, "introspectServer")
	return types
}

// Provider registers the demo listeners. Cars and engines come from YAML.
//
// Bound components:
//   - "logbook"    → *Logbook
//   - "dashboard"  → *Dashboard
type Provider struct{}

func (p *Provider) Register(reg container.Registry) error {
	reg.Register("logbook", container.NewDefinition(container.TypeOf[*Logbook]()))
	reg.Register("dashboard", container.NewDefinition(container.TypeOf[*Dashboard]()))
	return nil
}
