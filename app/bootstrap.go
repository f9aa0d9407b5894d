package app

import (
	"strings"

	"go.uber.org/zap"

	beans "github.com/km-arc/go-beans/framework/app"
	"github.com/km-arc/go-beans/framework/config"
	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/event"
	"github.com/km-arc/go-beans/framework/introspect"
	"github.com/km-arc/go-beans/framework/providers"
	"github.com/km-arc/go-beans/framework/source"
)

// IntrospectServerName is the component serving the introspection endpoints.
const IntrospectServerName = "introspectServer"

// New builds the garage application described by cfg. Nothing is
// constructed until Start.
//
//	cfg := config.Load()
//	application := app.New(cfg, logger)
//	if err := application.Start(); err != nil { ... }
func New(cfg *config.Config, logger *zap.Logger) *beans.Application {
	opts := []beans.Option{
		beans.WithLogger(logger),
		beans.WithSources(Providers(cfg), source.NewYAMLSource(Types(), cfg.Definitions...)),
	}
	if cfg.Events.Workers > 0 {
		opts = append(opts, beans.WithExecutor(event.NewPoolExecutor(cfg.Events.Workers)))
	}
	return beans.New(opts...)
}

// Providers returns the framework providers plus the demo ones, in load
// order.
func Providers(cfg *config.Config) *providers.ProviderRegistry {
	reg := providers.NewProviderRegistry(
		&providers.ConfigProvider{Config: cfg},
		&providers.AnnotationProvider{},
		&providers.PlaceholderProvider{
			Location:       strings.Join(cfg.Placeholders, ","),
			UseEnvironment: true,
		},
		&providers.MetricsProvider{},
		&Provider{},
	)
	if cfg.Introspect.Addr != "" {
		reg.Add(&IntrospectProvider{Addr: cfg.Introspect.Addr})
	}
	return reg
}

// IntrospectProvider registers the introspection server listening on Addr.
//
// Bound components:
//   - "introspectServer"  → *introspect.Server
type IntrospectProvider struct {
	Addr string
}

func (p *IntrospectProvider) Register(reg container.Registry) error {
	reg.Register(IntrospectServerName, container.NewDefinition(container.TypeOf[*introspect.Server](),
		container.WithProperty("Addr", p.Addr),
	))
	return nil
}
