package app_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-beans/app"
	beans "github.com/km-arc/go-beans/framework/app"
	"github.com/km-arc/go-beans/framework/config"
	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/introspect"
	"github.com/km-arc/go-beans/framework/metrics"
	"github.com/km-arc/go-beans/framework/providers"
)

func testConfig() *config.Config {
	return &config.Config{
		App:          config.AppConfig{Name: "garage", Env: "testing"},
		Definitions:  []string{"testdata/beans.yaml"},
		Placeholders: []string{"testdata/garage.env"},
	}
}

func start(t *testing.T, cfg *config.Config) *beans.Application {
	t.Helper()
	a := app.New(cfg, nil)
	require.NoError(t, a.Start())
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestGarage_Wiring(t *testing.T) {
	a := start(t, testConfig())

	car := container.MustResolve[*app.Car](a.Container, "car")
	engine := container.MustResolve[*app.Engine](a.Container, "engine")

	assert.Equal(t, "porsche", car.Brand)
	assert.Same(t, engine, car.Engine)
	assert.Equal(t, 8, engine.Cylinders)
	assert.True(t, engine.Running())
	assert.Equal(t, "Welcome to Test Garage", car.Greeting)

	cfg := container.MustResolve[*config.Config](a.Container, providers.ConfigName)
	assert.Equal(t, "garage", cfg.App.Name)
}

func TestGarage_PrototypeCars(t *testing.T) {
	a := start(t, testConfig())

	first := container.MustResolve[*app.Car](a.Container, "rental")
	second := container.MustResolve[*app.Car](a.Container, "rental")

	assert.NotSame(t, first, second)
	assert.Same(t, first.Engine, second.Engine)
	assert.False(t, a.ContainsSingleton("rental"))

	dashboard := container.MustResolve[*app.Dashboard](a.Container, "dashboard")
	assert.Equal(t, []string{"porsche", "rental", "rental"}, dashboard.Brands())
}

func TestGarage_Events(t *testing.T) {
	a := app.New(testConfig(), nil)
	require.NoError(t, a.Start())

	logbook := container.MustResolve[*app.Logbook](a.Container, "logbook")
	dashboard := container.MustResolve[*app.Dashboard](a.Container, "dashboard")
	engine := container.MustResolve[*app.Engine](a.Container, "engine")

	assert.Equal(t, []string{"*event.ContextRefreshed"}, logbook.Entries())
	assert.Equal(t, []string{"porsche"}, dashboard.Brands())

	require.NoError(t, a.Close())
	assert.Equal(t, []string{"*event.ContextRefreshed", "*event.ContextClosed"}, logbook.Entries())
	assert.False(t, engine.Running())
}

func TestGarage_PooledEvents(t *testing.T) {
	cfg := testConfig()
	cfg.Events.Workers = 2
	a := app.New(cfg, nil)
	require.NoError(t, a.Start())

	logbook := container.MustResolve[*app.Logbook](a.Container, "logbook")
	require.NoError(t, a.Close())

	assert.ElementsMatch(t, []string{"*event.ContextRefreshed", "*event.ContextClosed"}, logbook.Entries())
}

func TestGarage_Metrics(t *testing.T) {
	a := start(t, testConfig())

	collector := container.MustResolve[*metrics.Collector](a.Container, providers.MetricsCollectorName)
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Constructed.WithLabelValues("car")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Events.WithLabelValues("*app.CarReady")))
}

func TestGarage_IntrospectServer(t *testing.T) {
	cfg := testConfig()
	cfg.Introspect.Addr = "127.0.0.1:0"
	a := start(t, cfg)

	srv := container.MustResolve[*introspect.Server](a.Container, app.IntrospectServerName)
	assert.NotEmpty(t, srv.ListenAddr())
	assert.NotNil(t, srv.Collector)
}

func TestGarage_MissingDefinitions(t *testing.T) {
	cfg := testConfig()
	cfg.Definitions = []string{"testdata/missing.yaml"}
	a := app.New(cfg, nil)

	err := a.Start()
	var serr *beans.StartError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, beans.StateFailed, a.State())
}

func TestTypes(t *testing.T) {
	assert.Equal(t, []string{"car", "engine", "introspectServer"}, app.Types().Aliases())
}
