package container

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the construction engine. It owns the definition registry, the
// singleton cache and the component extension pipeline.
//
// Resolution of one name is not guarded against concurrent callers: two
// goroutines asking for the same uncached singleton may both build it, and
// the last to finish owns the cache slot. Start-up is expected to complete
// from a single goroutine before concurrent reads begin.
type Container struct {
	registry   *definitionRegistry
	singletons *singletonCache
	extensions extensionList[ComponentExtension]

	resolversMu    sync.RWMutex
	valueResolvers []func(string) string

	logger *zap.Logger
}

// Option configures a Container.
type Option func(c *Container)

// WithLogger sets the logger used for construction and shutdown events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		registry:   newDefinitionRegistry(),
		singletons: newSingletonCache(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger { return c.logger }

// ── Registry ──────────────────────────────────────────────────────────────────

func (c *Container) Register(name string, def *Definition) {
	c.registry.Register(name, def)
	c.logger.Debug("definition registered", zap.String("component", name), zap.Stringer("type", typeName(def)))
}

func (c *Container) Definition(name string) (*Definition, error) { return c.registry.Definition(name) }
func (c *Container) Contains(name string) bool                  { return c.registry.Contains(name) }
func (c *Container) Names() iter.Seq[string]                    { return c.registry.Names() }

// SortedNames returns every registered name in lexical order.
func (c *Container) SortedNames() []string {
	return slices.Sorted(c.registry.Names())
}

// NamesForType lists, sorted, every definition whose type is assignable to t.
func (c *Container) NamesForType(t reflect.Type) []string {
	var out []string
	for name := range c.registry.Names() {
		def, err := c.registry.Definition(name)
		if err != nil || def.Type == nil {
			continue
		}
		if def.Type.AssignableTo(t) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// ── Singletons ────────────────────────────────────────────────────────────────

// Singleton returns the cached instance for name, if any.
func (c *Container) Singleton(name string) (any, bool) { return c.singletons.get(name) }

func (c *Container) ContainsSingleton(name string) bool {
	_, ok := c.singletons.get(name)
	return ok
}

// RegisterSingleton caches a pre-built instance under name.
func (c *Container) RegisterSingleton(name string, instance any) {
	c.singletons.put(name, instance)
}

// SingletonNames returns the cached names in lexical order.
func (c *Container) SingletonNames() []string {
	names := c.singletons.names()
	slices.Sort(names)
	return names
}

// ── Extensions & value resolvers ──────────────────────────────────────────────

// AddExtension appends ext to the component pipeline. Adding the same
// extension again moves it to the end.
func (c *Container) AddExtension(ext ComponentExtension) {
	c.extensions.add(ext)
}

// Extensions returns the component pipeline in order.
func (c *Container) Extensions() []ComponentExtension { return c.extensions.snapshot() }

// AddValueResolver appends a string resolver used by ResolveEmbeddedValue.
func (c *Container) AddValueResolver(fn func(string) string) {
	c.resolversMu.Lock()
	defer c.resolversMu.Unlock()
	c.valueResolvers = append(c.valueResolvers, fn)
}

// ResolveEmbeddedValue runs value through every registered resolver in order.
func (c *Container) ResolveEmbeddedValue(value string) string {
	c.resolversMu.RLock()
	resolvers := slices.Clone(c.valueResolvers)
	c.resolversMu.RUnlock()

	for _, fn := range resolvers {
		value = fn(value)
	}
	return value
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve returns the component called name, constructing it if it is not a
// cached singleton.
func (c *Container) Resolve(name string) (any, error) {
	return c.getComponent(name, nil)
}

// ResolveByType returns the only component whose definition type is
// assignable to t. Zero or several matches fail with *AmbiguousTypeError.
func (c *Container) ResolveByType(t reflect.Type) (any, error) {
	return c.resolveByType(t, nil)
}

func (c *Container) resolveByType(t reflect.Type, path []string) (any, error) {
	names := c.NamesForType(t)
	if len(names) != 1 {
		return nil, &AmbiguousTypeError{Type: t, Candidates: names}
	}
	return c.getComponent(names[0], path)
}

// Dependencies returns a resolver with an empty resolution path, for
// lookups made outside any construction.
func (c *Container) Dependencies() Dependencies {
	return Dependencies{c: c}
}

// Dependencies resolves components on behalf of the component being built.
type Dependencies struct {
	c    *Container
	path []string
}

func (d Dependencies) Resolve(name string) (any, error) {
	return d.c.getComponent(name, d.path)
}

func (d Dependencies) ResolveByType(t reflect.Type) (any, error) {
	return d.c.resolveByType(t, d.path)
}

// ComponentsOfType resolves every component assignable to t.
func (c *Container) ComponentsOfType(t reflect.Type) (map[string]any, error) {
	out := make(map[string]any)
	for _, name := range c.NamesForType(t) {
		inst, err := c.Resolve(name)
		if err != nil {
			return nil, err
		}
		out[name] = inst
	}
	return out, nil
}

// PreInstantiateSingletons builds every eager singleton, in name order.
func (c *Container) PreInstantiateSingletons() error {
	for _, name := range c.SortedNames() {
		def, err := c.registry.Definition(name)
		if err != nil {
			return err
		}
		if !def.IsSingleton() || def.Lazy {
			continue
		}
		if _, err := c.Resolve(name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) getComponent(name string, path []string) (any, error) {
	if inst, ok := c.singletons.get(name); ok {
		return inst, nil
	}

	def, err := c.registry.Definition(name)
	if err != nil {
		return nil, err
	}
	if slices.Contains(path, name) {
		chain := strings.Join(append(slices.Clone(path), name), " -> ")
		return nil, newError(ErrCircularDependency, name, chain, nil)
	}
	return c.createComponent(name, def, append(slices.Clip(path), name))
}

func (c *Container) createComponent(name string, def *Definition, path []string) (any, error) {
	start := time.Now()
	exts := c.extensions.snapshot()

	instance, err := c.instantiate(name, def)
	if err != nil {
		return nil, err
	}
	if err := c.populate(name, def, instance, exts, path); err != nil {
		return nil, err
	}
	instance, err = c.initialize(name, def, instance, exts)
	if err != nil {
		return nil, err
	}

	if needsFinalizer(instance, def) {
		c.singletons.addFinalizer(name, &disposableAdapter{instance: instance, name: name, destroyMethod: def.DestroyMethod})
	}
	if def.IsSingleton() {
		c.singletons.put(name, instance)
	}

	c.logger.Debug("component constructed",
		zap.String("component", name),
		zap.String("scope", string(def.Scope)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return instance, nil
}

// instantiate allocates the bare instance.
func (c *Container) instantiate(name string, def *Definition) (instance any, err error) {
	if def.New != nil {
		defer func() {
			if r := recover(); r != nil {
				instance, err = nil, newError(ErrInstantiation, name, "constructor panicked", panicError(r))
			}
		}()
		inst, err := def.New()
		if err != nil {
			return nil, newError(ErrInstantiation, name, "constructor failed", err)
		}
		if inst == nil {
			return nil, newError(ErrInstantiation, name, "constructor returned nil", nil)
		}
		if def.Type != nil && !reflect.TypeOf(inst).AssignableTo(def.Type) {
			return nil, newError(ErrInstantiation, name, fmt.Sprintf("constructor returned %T, want %v", inst, def.Type), nil)
		}
		return inst, nil
	}

	t := def.Type
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, newError(ErrInstantiation, name, fmt.Sprintf("type %v has no zero-argument constructor", t), nil)
	}
	return reflect.New(t.Elem()).Interface(), nil
}

// populate assigns properties. Population stops early when an extension's
// AfterInstantiation returns false.
func (c *Container) populate(name string, def *Definition, instance any, exts []ComponentExtension, path []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(ErrPropertyAssignment, name, "", panicError(r))
		}
	}()

	for _, ext := range exts {
		ia, ok := ext.(InstantiationAwareExtension)
		if !ok {
			continue
		}
		proceed, err := ia.AfterInstantiation(instance, name)
		if err != nil {
			return wrap(ErrPropertyAssignment, name, "after-instantiation hook", err)
		}
		if !proceed {
			return nil
		}
	}

	pvs := NewPropertyValues()
	if def.Properties != nil {
		pvs = def.Properties.Clone()
	}

	for _, ext := range exts {
		ia, ok := ext.(InstantiationAwareExtension)
		if !ok {
			continue
		}
		var (
			out  *PropertyValues
			perr error
		)
		if dp, ok := ext.(DependencyProcessor); ok {
			out, perr = dp.ProcessDependencies(pvs, instance, name, Dependencies{c: c, path: path})
		} else {
			out, perr = ia.ProcessProperties(pvs, instance, name)
		}
		if perr != nil {
			return wrap(ErrPropertyAssignment, name, "property processing", perr)
		}
		if out != nil {
			pvs = out
		}
	}

	if def.Autowire == AutowireByName {
		if err := c.autowireByName(name, pvs, path); err != nil {
			return err
		}
	}

	return applyPropertyValues(name, instance, pvs)
}

func (c *Container) autowireByName(name string, pvs *PropertyValues, path []string) error {
	type dependency struct{ property, component string }
	var deps []dependency
	for prop, value := range pvs.All() {
		ref, ok := asReference(value)
		if ok && c.registry.Contains(ref.Name) {
			deps = append(deps, dependency{property: prop, component: ref.Name})
		}
	}

	for _, dep := range deps {
		inst, err := c.getComponent(dep.component, path)
		if err != nil {
			return wrap(ErrPropertyAssignment, name, fmt.Sprintf("resolving %q for property %s", dep.component, dep.property), err)
		}
		pvs.Add(PropertyValue{Name: dep.property, Value: inst})
	}
	return nil
}

// applyPropertyValues writes every resolved value; references still pending
// at this point are dropped.
func applyPropertyValues(name string, instance any, pvs *PropertyValues) error {
	for prop, value := range pvs.All() {
		if _, pending := asReference(value); pending {
			continue
		}
		if err := SetField(instance, prop, value); err != nil {
			return newError(ErrPropertyAssignment, name, "", err)
		}
	}
	return nil
}

func asReference(v any) (Reference, bool) {
	switch ref := v.(type) {
	case Reference:
		return ref, true
	case *Reference:
		if ref != nil {
			return *ref, true
		}
	}
	return Reference{}, false
}

// initialize runs awareness, the extension frame and the init hooks.
func (c *Container) initialize(name string, def *Definition, instance any, exts []ComponentExtension) (out any, err error) {
	defer func() {
		if err == nil {
			return
		}
		for _, ext := range exts {
			if fa, ok := ext.(FailureAwareExtension); ok {
				fa.InitializationFailed(instance, name, err)
			}
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, newError(ErrInitialization, name, "", panicError(r))
		}
	}()

	if aware, ok := instance.(ContainerAware); ok {
		aware.SetContainer(c)
	}

	current := instance
	for _, ext := range exts {
		next, err := ext.BeforeInitialization(current, name)
		if err != nil {
			return nil, wrap(ErrInitialization, name, "before-initialization hook", err)
		}
		if next != nil {
			current = next
		}
	}

	if err := invokeInitMethods(current, def); err != nil {
		return nil, newError(ErrInitialization, name, "", err)
	}

	for _, ext := range exts {
		next, err := ext.AfterInitialization(current, name)
		if err != nil {
			return nil, wrap(ErrInitialization, name, "after-initialization hook", err)
		}
		if next != nil {
			current = next
		}
	}
	return current, nil
}

func invokeInitMethods(instance any, def *Definition) error {
	initializer, isInitializer := instance.(Initializer)
	if isInitializer {
		if err := initializer.Initialize(); err != nil {
			return err
		}
	}
	if def.InitMethod != "" && !(isInitializer && def.InitMethod == InitializeMethod) {
		return invokeMethod(instance, def.InitMethod)
	}
	return nil
}

// wrap keeps an error that already carries kind as is, otherwise wraps it.
func wrap(kind error, name, msg string, err error) error {
	var cerr *Error
	if errors.As(err, &cerr) && cerr.Kind == kind && cerr.Component == name {
		return err
	}
	return newError(kind, name, msg, err)
}

// ── Shutdown ──────────────────────────────────────────────────────────────────

// DestroySingletons runs every recorded finalizer once, in registration order,
// then clears the singleton cache. A failing finalizer does not stop the
// others; all failures are joined and each is tagged ErrShutdown.
func (c *Container) DestroySingletons() error {
	names, finalizers := c.singletons.drainFinalizers()

	var errs []error
	for i, f := range finalizers {
		if err := safeDestroy(f); err != nil {
			c.logger.Error("finalizer failed", zap.String("component", names[i]), zap.Error(err))
			errs = append(errs, newError(ErrShutdown, names[i], "finalizer failed", err))
		}
	}

	c.singletons.clear()
	c.logger.Debug("singletons destroyed", zap.Int("finalizers", len(finalizers)), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}

func safeDestroy(f finalizer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return f.Destroy()
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve resolves name and asserts it to T.
//
//	car, err := container.Resolve[*Car](c, "car")
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	inst, err := c.Resolve(name)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("container: [%s] resolved to %T, not %v", name, inst, TypeOf[T]())
	}
	return typed, nil
}

// ResolveByType resolves the single component assignable to T.
func ResolveByType[T any](c *Container) (T, error) {
	var zero T
	inst, err := c.ResolveByType(TypeOf[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("container: component of type %v resolved to %T", TypeOf[T](), inst)
	}
	return typed, nil
}

// MustResolve is Resolve that panics on error.
func MustResolve[T any](c *Container, name string) T {
	typed, err := Resolve[T](c, name)
	if err != nil {
		panic(err)
	}
	return typed
}

func typeName(def *Definition) fmt.Stringer {
	if def == nil || def.Type == nil {
		return stringer("<nil>")
	}
	return def.Type
}

type stringer string

func (s stringer) String() string { return string(s) }
