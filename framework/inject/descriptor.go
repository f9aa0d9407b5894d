// Package inject adds marker-driven field injection on top of the container.
//
// A component type declares which fields receive configuration values and
// which receive other components, either with struct tags:
//
//	type Greeter struct {
//	    Greeting string        `value:"Hello ${user}"`
//	    Clock    *Clock        `inject:""`        // by type
//	    Store    Store         `inject:"redis"`   // by name
//	    Audit    *AuditLog     `inject:",optional"`
//	}
//
// or with an explicit descriptor for types it does not own:
//
//	inject.Register(reflect.TypeOf(Greeter{}), inject.NewDescriptor().
//	    Value("Greeting", "Hello ${user}").
//	    Inject("Clock", ""))
//
// Markers are applied by the Autowired extension during property population.
package inject

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Struct tag keys read by Describe.
const (
	ValueTag  = "value"
	InjectTag = "inject"
)

// Kind tells a value marker from a dependency marker.
type Kind int

const (
	KindValue Kind = iota
	KindDependency
)

func (k Kind) String() string {
	if k == KindDependency {
		return "dependency"
	}
	return "value"
}

// Field is one injection marker on a struct field.
type Field struct {
	Name  string
	Index []int
	Type  reflect.Type
	Kind  Kind

	// Expr is the placeholder expression of a value marker.
	Expr string
	// Qualifier names the component for a dependency marker; empty resolves
	// by field type.
	Qualifier string
	// Optional dependency markers are left untouched when nothing matches.
	Optional bool
}

// Descriptor lists the injection markers of one struct type.
type Descriptor struct {
	fields []Field
}

// NewDescriptor starts an explicit descriptor.
func NewDescriptor() *Descriptor {
	return &Descriptor{}
}

// Value marks field to receive the resolved placeholder expression expr.
func (d *Descriptor) Value(field, expr string) *Descriptor {
	d.fields = append(d.fields, Field{Name: field, Kind: KindValue, Expr: expr})
	return d
}

// Inject marks field to receive the component called qualifier, or the single
// component assignable to the field type when qualifier is empty.
func (d *Descriptor) Inject(field, qualifier string) *Descriptor {
	d.fields = append(d.fields, Field{Name: field, Kind: KindDependency, Qualifier: qualifier})
	return d
}

// Optional is Inject for a dependency that may be absent.
func (d *Descriptor) Optional(field, qualifier string) *Descriptor {
	d.fields = append(d.fields, Field{Name: field, Kind: KindDependency, Qualifier: qualifier, Optional: true})
	return d
}

// Fields returns the markers in declaration order.
func (d *Descriptor) Fields() []Field {
	if d == nil {
		return nil
	}
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Len is the number of markers.
func (d *Descriptor) Len() int {
	if d == nil {
		return 0
	}
	return len(d.fields)
}

// ── Descriptor cache ──────────────────────────────────────────────────────────

var descriptors sync.Map // reflect.Type → *Descriptor

// Register installs an explicit descriptor for t, replacing whatever Describe
// would derive from tags. Every named field must exist on t.
func Register(t reflect.Type, d *Descriptor) error {
	st, err := structType(t)
	if err != nil {
		return err
	}
	bound := &Descriptor{fields: make([]Field, 0, d.Len())}
	for _, f := range d.Fields() {
		sf, ok := lookupField(st, f.Name)
		if !ok {
			return fmt.Errorf("inject: %v has no field %q", st, f.Name)
		}
		f.Name, f.Index, f.Type = sf.Name, sf.Index, sf.Type
		bound.fields = append(bound.fields, f)
	}
	descriptors.Store(st, bound)
	return nil
}

// Describe returns the descriptor for t, building it from struct tags on first
// use. Pointer types describe their element.
func Describe(t reflect.Type) (*Descriptor, error) {
	st, err := structType(t)
	if err != nil {
		return nil, err
	}
	if d, ok := descriptors.Load(st); ok {
		return d.(*Descriptor), nil
	}
	d, err := parseTags(st)
	if err != nil {
		return nil, err
	}
	actual, _ := descriptors.LoadOrStore(st, d)
	return actual.(*Descriptor), nil
}

func parseTags(st reflect.Type) (*Descriptor, error) {
	d := &Descriptor{}
	for _, sf := range reflect.VisibleFields(st) {
		if sf.Anonymous {
			continue
		}
		expr, hasValue := sf.Tag.Lookup(ValueTag)
		tag, hasInject := sf.Tag.Lookup(InjectTag)
		switch {
		case hasValue && hasInject:
			return nil, fmt.Errorf("inject: %v.%s carries both %q and %q tags", st, sf.Name, ValueTag, InjectTag)
		case hasValue:
			d.fields = append(d.fields, Field{
				Name: sf.Name, Index: sf.Index, Type: sf.Type,
				Kind: KindValue, Expr: expr,
			})
		case hasInject:
			qualifier, opts, _ := strings.Cut(tag, ",")
			d.fields = append(d.fields, Field{
				Name: sf.Name, Index: sf.Index, Type: sf.Type,
				Kind:      KindDependency,
				Qualifier: strings.TrimSpace(qualifier),
				Optional:  strings.TrimSpace(opts) == "optional",
			})
		}
	}
	return d, nil
}

func structType(t reflect.Type) (reflect.Type, error) {
	if t == nil {
		return nil, fmt.Errorf("inject: nil type")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("inject: %v is not a struct type", t)
	}
	return t, nil
}

func lookupField(st reflect.Type, name string) (reflect.StructField, bool) {
	if sf, ok := st.FieldByName(name); ok {
		return sf, true
	}
	return st.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
}

// reset drops every cached descriptor.
func reset() {
	descriptors.Range(func(k, _ any) bool {
		descriptors.Delete(k)
		return true
	})
}
