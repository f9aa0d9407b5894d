package container

import (
	"reflect"
	"sync"
)

// ── Extension contracts ───────────────────────────────────────────────────────

// ContainerExtension runs once per container lifetime, before any component is
// instantiated, with full write access to the registry. Definitions may be
// rewritten in place.
type ContainerExtension interface {
	PostProcessContainer(c *Container) error
}

// ComponentExtension frames the initialization of every component constructed
// after it has been added. Returning a nil instance keeps the current one.
type ComponentExtension interface {
	BeforeInitialization(instance any, name string) (any, error)
	AfterInitialization(instance any, name string) (any, error)
}

// InstantiationAwareExtension also takes part in property population.
//
// AfterInstantiation returning false skips population for the component.
// ProcessProperties may add assignments to the working copy and returns the
// set to continue with (nil keeps pvs).
type InstantiationAwareExtension interface {
	ComponentExtension
	AfterInstantiation(instance any, name string) (bool, error)
	ProcessProperties(pvs *PropertyValues, instance any, name string) (*PropertyValues, error)
}

// FailureAwareExtension is told when a component fails between the start of
// its initialization and the end of the after-initialization hooks, so state
// taken in BeforeInitialization can be released.
type FailureAwareExtension interface {
	ComponentExtension
	InitializationFailed(instance any, name string, err error)
}

// DependencyProcessor is an InstantiationAwareExtension that resolves other
// components while populating one. The container calls ProcessDependencies in
// place of ProcessProperties. Lookups made through deps share the in-flight
// resolution path, so a cycle fails with ErrCircularDependency.
type DependencyProcessor interface {
	InstantiationAwareExtension
	ProcessDependencies(pvs *PropertyValues, instance any, name string, deps Dependencies) (*PropertyValues, error)
}

// ── Pipeline ──────────────────────────────────────────────────────────────────

// extensionList is append-with-dedup-by-identity: re-adding an extension moves
// it to the end instead of duplicating it.
type extensionList[T any] struct {
	mu    sync.RWMutex
	items []T
}

func (l *extensionList[T]) add(ext T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cur := range l.items {
		if sameIdentity(cur, ext) {
			l.items = append(l.items[:i], l.items[i+1:]...)
			break
		}
	}
	l.items = append(l.items, ext)
}

// snapshot is what one construction pass iterates over.
func (l *extensionList[T]) snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *extensionList[T]) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func sameIdentity(a, b any) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.ValueOf(a).Comparable() && a == b
}
