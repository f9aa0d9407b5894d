package container

import (
	"iter"
	"reflect"
)

// ── Scope & autowiring ────────────────────────────────────────────────────────

// Scope controls whether a constructed component is cached and shared.
type Scope string

const (
	ScopeSingleton Scope = "singleton"
	ScopePrototype Scope = "prototype"
)

// AutowireMode selects how Reference-valued properties are resolved.
type AutowireMode int

const (
	AutowireNo AutowireMode = iota
	AutowireByName
)

func (m AutowireMode) String() string {
	if m == AutowireByName {
		return "byName"
	}
	return "no"
}

// ── Property values ───────────────────────────────────────────────────────────

// Reference points at another component by name. It is only turned into a
// live instance on a private working copy during construction.
type Reference struct {
	Name string
}

// PropertyValue is one named assignment: a literal or a Reference.
type PropertyValue struct {
	Name  string
	Value any
}

// PropertyValues is an ordered set of assignments keyed by property name.
type PropertyValues struct {
	values []PropertyValue
}

// NewPropertyValues builds a set from pvs, later names replacing earlier ones.
func NewPropertyValues(pvs ...PropertyValue) *PropertyValues {
	p := &PropertyValues{}
	for _, pv := range pvs {
		p.Add(pv)
	}
	return p
}

// Add replaces the entry with the same name in place, or appends.
func (p *PropertyValues) Add(pv PropertyValue) {
	for i := range p.values {
		if p.values[i].Name == pv.Name {
			p.values[i] = pv
			return
		}
	}
	p.values = append(p.values, pv)
}

// Get returns the value for name.
func (p *PropertyValues) Get(name string) (any, bool) {
	for _, pv := range p.values {
		if pv.Name == name {
			return pv.Value, true
		}
	}
	return nil, false
}

func (p *PropertyValues) Len() int { return len(p.values) }

// All iterates over the assignments in insertion order.
func (p *PropertyValues) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, pv := range p.values {
			if !yield(pv.Name, pv.Value) {
				return
			}
		}
	}
}

// Clone returns a shallow copy; mutating the copy never touches p.
func (p *PropertyValues) Clone() *PropertyValues {
	out := &PropertyValues{values: make([]PropertyValue, len(p.values))}
	copy(out.values, p.values)
	return out
}

// ── Definition ────────────────────────────────────────────────────────────────

// Definition describes how to build one component.
//
//	def := container.NewDefinition(container.TypeOf[*Car](),
//	    container.WithProperty("Brand", "porsche"),
//	    container.WithReference("Engine", "engine"),
//	    container.WithAutowire(container.AutowireByName),
//	)
//	c.Register("car", def)
//
// Type must be a pointer to a struct unless New is set.
type Definition struct {
	Type          reflect.Type
	Scope         Scope
	Lazy          bool
	InitMethod    string
	DestroyMethod string
	Autowire      AutowireMode
	Properties    *PropertyValues

	// New replaces zero-value allocation when set.
	New func() (any, error)
}

// DefinitionOption configures a Definition in NewDefinition.
type DefinitionOption func(d *Definition)

// NewDefinition creates a singleton, eager, non-autowired definition for typ.
func NewDefinition(typ reflect.Type, opts ...DefinitionOption) *Definition {
	d := &Definition{
		Type:       typ,
		Scope:      ScopeSingleton,
		Autowire:   AutowireNo,
		Properties: NewPropertyValues(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func WithScope(s Scope) DefinitionOption { return func(d *Definition) { d.Scope = s } }

func Lazy() DefinitionOption { return func(d *Definition) { d.Lazy = true } }

func WithInitMethod(name string) DefinitionOption {
	return func(d *Definition) { d.InitMethod = name }
}

func WithDestroyMethod(name string) DefinitionOption {
	return func(d *Definition) { d.DestroyMethod = name }
}

func WithAutowire(m AutowireMode) DefinitionOption {
	return func(d *Definition) { d.Autowire = m }
}

// WithProperty adds a literal assignment.
func WithProperty(name string, value any) DefinitionOption {
	return func(d *Definition) { d.Properties.Add(PropertyValue{Name: name, Value: value}) }
}

// WithReference adds an assignment pointing at component ref.
func WithReference(name, ref string) DefinitionOption {
	return func(d *Definition) { d.Properties.Add(PropertyValue{Name: name, Value: Reference{Name: ref}}) }
}

// WithConstructor sets the zero-argument constructor.
func WithConstructor(fn func() (any, error)) DefinitionOption {
	return func(d *Definition) { d.New = fn }
}

func (d *Definition) IsSingleton() bool { return d.Scope != ScopePrototype }
func (d *Definition) IsPrototype() bool { return d.Scope == ScopePrototype }

// Equal reports whether both definitions target the same type.
func (d *Definition) Equal(other *Definition) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Type == other.Type
}

// TypeOf returns the reflect.Type of T, interfaces included.
//
//	container.TypeOf[*Car]()      // *Car
//	container.TypeOf[io.Closer]() // io.Closer
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
