package providers

import (
	"github.com/km-arc/go-beans/framework/config"
	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/inject"
	"github.com/km-arc/go-beans/framework/metrics"
)

// Names of the infrastructure components registered by the built-in providers.
const (
	ConfigName                = "config"
	AutowiredExtensionName    = "internalAutowiredExtension"
	PlaceholderConfigurerName = "placeholderConfigurer"
	MetricsCollectorName      = "metricsCollector"
)

// ── ConfigProvider ────────────────────────────────────────────────────────────

// ConfigProvider binds the loaded configuration as "config", so components
// can reference it by name.
//
// Bound components:
//   - "config"  → *config.Config
type ConfigProvider struct {
	Config *config.Config
}

func (p *ConfigProvider) Register(reg container.Registry) error {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load()
	}
	reg.Register(ConfigName, container.NewDefinition(container.TypeOf[*config.Config](),
		container.WithConstructor(func() (any, error) { return cfg, nil }),
	))
	return nil
}

// ── AnnotationProvider ────────────────────────────────────────────────────────

// AnnotationProvider turns on `value` and `inject` struct tag processing.
//
// Bound components:
//   - "internalAutowiredExtension"  → *inject.Autowired
type AnnotationProvider struct{}

func (p *AnnotationProvider) Register(reg container.Registry) error {
	reg.Register(AutowiredExtensionName, container.NewDefinition(container.TypeOf[*inject.Autowired]()))
	return nil
}

// ── PlaceholderProvider ───────────────────────────────────────────────────────

// PlaceholderProvider registers a PlaceholderConfigurer reading Location.
//
// Bound components:
//   - "placeholderConfigurer"  → *config.PlaceholderConfigurer
type PlaceholderProvider struct {
	Location       string // comma-separated .env files
	UseEnvironment bool
}

func (p *PlaceholderProvider) Register(reg container.Registry) error {
	reg.Register(PlaceholderConfigurerName, container.NewDefinition(container.TypeOf[*config.PlaceholderConfigurer](),
		container.WithProperty("Location", p.Location),
		container.WithProperty("UseEnvironment", p.UseEnvironment),
	))
	return nil
}

// ── MetricsProvider ───────────────────────────────────────────────────────────

// MetricsProvider registers the Prometheus collector. As a component
// extension it times every later construction; as a listener it counts
// published events.
//
// Bound components:
//   - "metricsCollector"  → *metrics.Collector
type MetricsProvider struct{}

func (p *MetricsProvider) Register(reg container.Registry) error {
	reg.Register(MetricsCollectorName, container.NewDefinition(container.TypeOf[*metrics.Collector](),
		container.WithConstructor(func() (any, error) { return metrics.NewCollector(), nil }),
	))
	return nil
}
