package container

import "sync"

// finalizer tears down one singleton at shutdown.
type finalizer interface {
	Destroy() error
}

// singletonCache holds fully constructed singletons and their finalizers.
type singletonCache struct {
	mu        sync.RWMutex
	instances map[string]any

	// finalizers keep registration order; a re-registered name keeps its slot
	finalizerNames []string
	finalizers     map[string]finalizer
}

func newSingletonCache() *singletonCache {
	return &singletonCache{
		instances:  make(map[string]any),
		finalizers: make(map[string]finalizer),
	}
}

func (s *singletonCache) get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[name]
	return inst, ok
}

func (s *singletonCache) put(name string, instance any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[name] = instance
}

func (s *singletonCache) names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.instances))
	for name := range s.instances {
		out = append(out, name)
	}
	return out
}

func (s *singletonCache) addFinalizer(name string, f finalizer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.finalizers[name]; !ok {
		s.finalizerNames = append(s.finalizerNames, name)
	}
	s.finalizers[name] = f
}

// drainFinalizers removes and returns every recorded finalizer in insertion order.
func (s *singletonCache) drainFinalizers() ([]string, []finalizer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := s.finalizerNames
	out := make([]finalizer, len(names))
	for i, name := range names {
		out[i] = s.finalizers[name]
	}
	s.finalizerNames = nil
	s.finalizers = make(map[string]finalizer)
	return names, out
}

func (s *singletonCache) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances = make(map[string]any)
}
