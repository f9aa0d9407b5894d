package container

import (
	"iter"
	"sync"
)

// Registry stores definitions by name. It has no creation logic.
type Registry interface {
	// Register inserts or overwrites; the last registration for a name wins.
	Register(name string, def *Definition)
	Definition(name string) (*Definition, error)
	Contains(name string) bool
	// Names yields a snapshot of registered names in no particular order.
	Names() iter.Seq[string]
}

type definitionRegistry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

func newDefinitionRegistry() *definitionRegistry {
	return &definitionRegistry{definitions: make(map[string]*Definition)}
}

func (r *definitionRegistry) Register(name string, def *Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[name] = def
}

func (r *definitionRegistry) Definition(name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[name]
	if !ok {
		return nil, newError(ErrNotFound, name, "no definition registered", nil)
	}
	return def, nil
}

func (r *definitionRegistry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.definitions[name]
	return ok
}

func (r *definitionRegistry) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		r.mu.RLock()
		names := make([]string, 0, len(r.definitions))
		for name := range r.definitions {
			names = append(names, name)
		}
		r.mu.RUnlock()

		for _, name := range names {
			if !yield(name) {
				return
			}
		}
	}
}
