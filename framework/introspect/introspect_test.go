package introspect_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-beans/framework/app"
	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/introspect"
	"github.com/km-arc/go-beans/framework/providers"
)

type Engine struct {
	Cylinders int
}

type Car struct {
	Engine *Engine
}

func newApp(t *testing.T, extra ...providers.ServiceProvider) *app.Application {
	t.Helper()
	reg := providers.NewProviderRegistry(providers.ProviderFunc(func(reg container.Registry) error {
		reg.Register("engine", container.NewDefinition(container.TypeOf[*Engine](),
			container.WithProperty("Cylinders", 8),
		))
		reg.Register("car", container.NewDefinition(container.TypeOf[*Car](),
			container.WithAutowire(container.AutowireByName),
			container.WithReference("Engine", "engine"),
			container.Lazy(),
		))
		return nil
	}))
	for _, p := range extra {
		reg.Add(p)
	}
	a := app.New(app.WithSources(reg))
	require.NoError(t, a.Start())
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func get(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestHandler_Definitions(t *testing.T) {
	a := newApp(t)
	h := introspect.NewHandler(a, nil, nil)

	code, body := get(t, h, "/definitions")
	require.Equal(t, http.StatusOK, code)

	data := body["data"].([]any)
	require.Len(t, data, 2)
	car := data[0].(map[string]any)
	assert.Equal(t, "car", car["name"])
	assert.Equal(t, "*introspect_test.Car", car["type"])
	assert.Equal(t, "byName", car["autowire"])
	assert.Equal(t, true, car["lazy"])
	assert.Equal(t, false, car["cached"])
	assert.Nil(t, car["properties"])

	engine := data[1].(map[string]any)
	assert.Equal(t, true, engine["cached"])
}

func TestHandler_Definition(t *testing.T) {
	a := newApp(t)
	h := introspect.NewHandler(a, nil, nil)

	code, body := get(t, h, "/definitions/car")
	require.Equal(t, http.StatusOK, code)
	props := body["data"].(map[string]any)["properties"].([]any)
	require.Len(t, props, 1)
	assert.Equal(t, map[string]any{"name": "Engine", "ref": "engine"}, props[0])

	code, body = get(t, h, "/definitions/engine")
	require.Equal(t, http.StatusOK, code)
	props = body["data"].(map[string]any)["properties"].([]any)
	assert.Equal(t, map[string]any{"name": "Cylinders", "value": "8"}, props[0])
}

func TestHandler_DefinitionNotFound(t *testing.T) {
	h := introspect.NewHandler(newApp(t), nil, nil)

	code, body := get(t, h, "/definitions/truck")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, `No component named "truck".`, body["message"])
}

func TestHandler_SingletonsAndState(t *testing.T) {
	a := newApp(t)
	h := introspect.NewHandler(a, nil, nil)

	code, body := get(t, h, "/singletons")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"engine", "eventMulticaster"}, body["data"])

	code, body = get(t, h, "/state")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"state": "running"}, body["data"])
}

func TestServer_ServesWhileRunning(t *testing.T) {
	a := newApp(t,
		&providers.AnnotationProvider{},
		&providers.MetricsProvider{},
		providers.ProviderFunc(func(reg container.Registry) error {
			reg.Register("introspectServer", container.NewDefinition(container.TypeOf[*introspect.Server](),
				container.WithProperty("Addr", "127.0.0.1:0"),
			))
			return nil
		}),
	)

	srv, err := container.Resolve[*introspect.Server](a.Container, "introspectServer")
	require.NoError(t, err)
	require.NotNil(t, srv.Collector)
	base := fmt.Sprintf("http://%s", srv.ListenAddr())

	resp, err := http.Get(base + "/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mresp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	text, err := io.ReadAll(mresp.Body)
	mresp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(text), `gobeans_events_published_total{type="*event.ContextRefreshed"} 1`)

	require.NoError(t, a.Close())
	_, err = http.Get(base + "/state")
	assert.Error(t, err)
}

func TestServer_DisabledWithoutAddr(t *testing.T) {
	s := &introspect.Server{}
	require.NoError(t, s.Initialize())
	assert.Empty(t, s.ListenAddr())
	assert.NoError(t, s.Destroy())
}
