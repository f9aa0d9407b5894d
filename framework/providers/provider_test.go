package providers_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-beans/framework/config"
	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/inject"
	"github.com/km-arc/go-beans/framework/metrics"
	"github.com/km-arc/go-beans/framework/providers"
)

// ── stub providers ────────────────────────────────────────────────────────────

type Engine struct{}

type countingProvider struct {
	calls int
}

func (p *countingProvider) Register(reg container.Registry) error {
	p.calls++
	reg.Register("engine", container.NewDefinition(container.TypeOf[*Engine]()))
	return nil
}

// multiProvider registers several names.
type multiProvider struct{}

func (p multiProvider) Register(reg container.Registry) error {
	reg.Register("alpha", container.NewDefinition(container.TypeOf[*Engine]()))
	reg.Register("beta", container.NewDefinition(container.TypeOf[*Engine](), container.Lazy()))
	return nil
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestRegistry_LoadDefinitions(t *testing.T) {
	c := container.New()
	reg := providers.NewProviderRegistry(&countingProvider{}, multiProvider{})

	require.False(t, reg.Loaded())
	require.NoError(t, reg.LoadDefinitions(c))
	assert.True(t, reg.Loaded())
	assert.Equal(t, []string{"alpha", "beta", "engine"}, c.SortedNames())
}

func TestRegistry_DuplicateAdd_Ignored(t *testing.T) {
	p := &countingProvider{}
	reg := providers.NewProviderRegistry()
	reg.Add(p)
	reg.Add(p)
	reg.Add(multiProvider{})
	reg.Add(multiProvider{})

	require.Len(t, reg.Providers(), 2)
	require.NoError(t, reg.LoadDefinitions(container.New()))
	assert.Equal(t, 1, p.calls)
}

func TestRegistry_FuncProvidersAreNeverDeduplicated(t *testing.T) {
	fn := providers.ProviderFunc(func(container.Registry) error { return nil })
	reg := providers.NewProviderRegistry(fn, fn)
	assert.Len(t, reg.Providers(), 2)
}

func TestRegistry_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	after := &countingProvider{}
	reg := providers.NewProviderRegistry(
		providers.ProviderFunc(func(container.Registry) error { return boom }),
		after,
	)

	err := reg.LoadDefinitions(container.New())
	assert.ErrorIs(t, err, boom)
	assert.False(t, reg.Loaded())
	assert.Equal(t, 0, after.calls)
}

// ── Built-in providers ────────────────────────────────────────────────────────

func TestConfigProvider(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Name: "garage"}}
	c := container.New()
	require.NoError(t, (&providers.ConfigProvider{Config: cfg}).Register(c))

	got, err := container.Resolve[*config.Config](c, providers.ConfigName)
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}

func TestAnnotationProvider(t *testing.T) {
	c := container.New()
	require.NoError(t, (&providers.AnnotationProvider{}).Register(c))

	ext, err := c.Resolve(providers.AutowiredExtensionName)
	require.NoError(t, err)
	assert.IsType(t, &inject.Autowired{}, ext)
	assert.Implements(t, (*container.InstantiationAwareExtension)(nil), ext)
}

func TestPlaceholderProvider(t *testing.T) {
	c := container.New()
	p := &providers.PlaceholderProvider{Location: "a.env, b.env", UseEnvironment: true}
	require.NoError(t, p.Register(c))

	configurer, err := container.Resolve[*config.PlaceholderConfigurer](c, providers.PlaceholderConfigurerName)
	require.NoError(t, err)
	assert.Equal(t, "a.env, b.env", configurer.Location)
	assert.True(t, configurer.UseEnvironment)
}

func TestMetricsProvider(t *testing.T) {
	c := container.New()
	require.NoError(t, (&providers.MetricsProvider{}).Register(c))

	col, err := container.Resolve[*metrics.Collector](c, providers.MetricsCollectorName)
	require.NoError(t, err)
	assert.NotNil(t, col.Constructed)
}
