// Package source loads definitions from declarative files.
//
// A YAML document lists components by the alias their Go type was registered
// under in a TypeRegistry:
//
//	components:
//	  - name: engine
//	    type: engine
//	    properties:
//	      - name: Cylinders
//	        value: 8
//	  - name: car
//	    type: car
//	    autowire: byName
//	    init: Start
//	    properties:
//	      - name: Engine
//	        ref: engine
package source

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/km-arc/go-beans/framework/container"
)

var (
	ErrUnknownType       = errors.New("unknown component type")
	ErrDuplicateName     = errors.New("duplicate component name")
	ErrInvalidDefinition = errors.New("invalid definition")
)

// TypeRegistry maps the aliases used in definition files to Go types.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]reflect.Type)}
}

// Register maps alias to t, which must be a pointer to a struct.
func (r *TypeRegistry) Register(alias string, t reflect.Type) error {
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("source: type %v for %q is not a pointer to struct", t, alias)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[alias] = t
	return nil
}

// Lookup returns the type registered under alias.
func (r *TypeRegistry) Lookup(alias string) (reflect.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, alias)
	}
	return t, nil
}

// Aliases returns every alias in lexical order.
func (r *TypeRegistry) Aliases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for alias := range r.types {
		out = append(out, alias)
	}
	slices.Sort(out)
	return out
}

// Add registers T under alias, or under DefaultName(T) when alias is empty.
//
//	source.Add[*app.Engine](types, "")      // "engine"
//	source.Add[*app.Car](types, "sportsCar")
func Add[T any](r *TypeRegistry, alias string) error {
	t := container.TypeOf[T]()
	if alias == "" {
		alias = DefaultName(t)
	}
	return r.Register(alias, t)
}

// DefaultName is the simple type name with its first letter lowered:
// *app.HTTPServer → "hTTPServer", *app.Engine → "engine".
func DefaultName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}
