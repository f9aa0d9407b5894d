// Package metrics exposes container activity as Prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-beans/framework/event"
)

// Namespace prefixes every metric name.
const Namespace = "gobeans"

// Collector is a component extension that counts constructed components and
// times their initialization. It is also a catch-all event listener counting
// published events by type.
//
// Metrics live on the collector's own registry, never the global one.
type Collector struct {
	once     sync.Once
	registry *prometheus.Registry

	Constructed  *prometheus.CounterVec
	Failed       *prometheus.CounterVec
	InitDuration *prometheus.HistogramVec
	Events       *prometheus.CounterVec

	started sync.Map // component name → time.Time
}

// NewCollector builds a collector with its metrics registered.
func NewCollector() *Collector {
	c := &Collector{}
	c.setup()
	return c
}

func (c *Collector) setup() {
	c.once.Do(func() {
		c.registry = prometheus.NewRegistry()

		c.Constructed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "components_constructed_total",
				Help:      "Total number of components that completed initialization",
			},
			[]string{"component"},
		)

		c.Failed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "component_init_failures_total",
				Help:      "Total number of components that failed during initialization",
			},
			[]string{"component"},
		)

		c.InitDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "component_init_duration_seconds",
				Help:      "Time spent between the before and after initialization hooks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"component"},
		)

		c.Events = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "events_published_total",
				Help:      "Total number of events delivered to the metrics listener",
			},
			[]string{"type"},
		)

		c.registry.MustRegister(c.Constructed, c.Failed, c.InitDuration, c.Events)
	})
}

// Registry is the collector's Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	c.setup()
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry(), promhttp.HandlerOpts{})
}

// ── container.ComponentExtension ──────────────────────────────────────────────

func (c *Collector) BeforeInitialization(instance any, name string) (any, error) {
	c.started.Store(name, time.Now())
	return instance, nil
}

func (c *Collector) AfterInitialization(instance any, name string) (any, error) {
	c.setup()
	if v, ok := c.started.LoadAndDelete(name); ok {
		c.InitDuration.WithLabelValues(name).Observe(time.Since(v.(time.Time)).Seconds())
	}
	c.Constructed.WithLabelValues(name).Inc()
	return instance, nil
}

// InitializationFailed drops the pending timing and counts the failure.
func (c *Collector) InitializationFailed(_ any, name string, _ error) {
	c.setup()
	c.started.Delete(name)
	c.Failed.WithLabelValues(name).Inc()
}

// ── event.Listener ────────────────────────────────────────────────────────────

// EventType is nil: every published event is counted.
func (c *Collector) EventType() reflect.Type { return nil }

func (c *Collector) OnEvent(ev event.Event) error {
	c.setup()
	c.Events.WithLabelValues(fmt.Sprintf("%T", ev)).Inc()
	return nil
}
