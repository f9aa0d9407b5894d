// Package introspect serves a read-only JSON view of a running application:
// its definitions, cached singletons, lifecycle state and metrics.
//
//	GET /definitions          all definitions, sorted by name
//	GET /definitions/{name}   one definition with its properties
//	GET /singletons           cached singleton names
//	GET /state                lifecycle state
//	GET /metrics              Prometheus metrics, when a collector is present
package introspect

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-beans/framework/app"
	"github.com/km-arc/go-beans/framework/container"
)

// Target is what the endpoints read. *app.Application satisfies it.
type Target interface {
	SortedNames() []string
	Definition(name string) (*container.Definition, error)
	SingletonNames() []string
	ContainsSingleton(name string) bool
	State() app.State
}

// DefinitionView is the JSON shape of one definition.
type DefinitionView struct {
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Scope         string         `json:"scope"`
	Lazy          bool           `json:"lazy"`
	Autowire      string         `json:"autowire"`
	InitMethod    string         `json:"initMethod,omitempty"`
	DestroyMethod string         `json:"destroyMethod,omitempty"`
	Cached        bool           `json:"cached"`
	Properties    []PropertyView `json:"properties,omitempty"`
}

// PropertyView renders a property; Ref is set for references.
type PropertyView struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
	Ref   string `json:"ref,omitempty"`
}

// NewHandler builds the introspection routes for target. metrics may be nil.
func NewHandler(target Target, metrics http.Handler, logger *zap.Logger) http.Handler {
	h := &handlers{target: target}
	r := NewRouter(logger)

	r.Prefix("/definitions", func(r *Router) {
		r.Get("/", h.definitions)
		r.Get("/{name}", h.definition)
	})
	r.Get("/singletons", h.singletons)
	r.Get("/state", h.state)
	if metrics != nil {
		r.Mount("/metrics", metrics)
	}
	return r
}

type handlers struct {
	target Target
}

func (h *handlers) definitions(w http.ResponseWriter, _ *http.Request) {
	names := h.target.SortedNames()
	views := make([]DefinitionView, 0, len(names))
	for _, name := range names {
		def, err := h.target.Definition(name)
		if err != nil {
			continue
		}
		views = append(views, h.view(name, def, false))
	}
	NewResponse(w).Success(views)
}

func (h *handlers) definition(w http.ResponseWriter, r *http.Request) {
	res := NewResponse(w)
	name := Param(r, "name")
	def, err := h.target.Definition(name)
	if errors.Is(err, container.ErrNotFound) {
		res.NotFound(fmt.Sprintf("No component named %q.", name))
		return
	}
	if err != nil {
		res.ServerError(err.Error())
		return
	}
	res.Success(h.view(name, def, true))
}

func (h *handlers) singletons(w http.ResponseWriter, _ *http.Request) {
	NewResponse(w).Success(h.target.SingletonNames())
}

func (h *handlers) state(w http.ResponseWriter, _ *http.Request) {
	NewResponse(w).Success(map[string]any{"state": h.target.State().String()})
}

func (h *handlers) view(name string, def *container.Definition, withProperties bool) DefinitionView {
	v := DefinitionView{
		Name:          name,
		Scope:         string(def.Scope),
		Lazy:          def.Lazy,
		Autowire:      def.Autowire.String(),
		InitMethod:    def.InitMethod,
		DestroyMethod: def.DestroyMethod,
		Cached:        h.target.ContainsSingleton(name),
	}
	if def.Type != nil {
		v.Type = def.Type.String()
	}
	if v.Scope == "" {
		v.Scope = string(container.ScopeSingleton)
	}
	if withProperties && def.Properties != nil {
		for prop, value := range def.Properties.All() {
			pv := PropertyView{Name: prop}
			if ref, ok := value.(container.Reference); ok {
				pv.Ref = ref.Name
			} else {
				pv.Value = fmt.Sprint(value)
			}
			v.Properties = append(v.Properties, pv)
		}
	}
	return v
}
