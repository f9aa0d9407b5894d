package inject

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/km-arc/go-beans/framework/container"
)

// Autowired is the component extension that applies injection markers. It
// runs during property population, so marked fields are set before any
// initializer sees the instance.
//
//	c.AddExtension(inject.NewAutowired(c))
//
// Registered as a definition it receives its container through SetContainer.
type Autowired struct {
	c *container.Container
}

// NewAutowired returns an extension bound to c.
func NewAutowired(c *container.Container) *Autowired {
	return &Autowired{c: c}
}

var _ container.DependencyProcessor = (*Autowired)(nil)

func (a *Autowired) SetContainer(c *container.Container) { a.c = c }

func (a *Autowired) BeforeInitialization(instance any, _ string) (any, error) { return instance, nil }
func (a *Autowired) AfterInitialization(instance any, _ string) (any, error)  { return instance, nil }
func (a *Autowired) AfterInstantiation(any, string) (bool, error)             { return true, nil }

// ProcessProperties resolves markers outside any construction path.
func (a *Autowired) ProcessProperties(pvs *container.PropertyValues, instance any, name string) (*container.PropertyValues, error) {
	var deps container.Dependencies
	if a.c != nil {
		deps = a.c.Dependencies()
	}
	return a.ProcessDependencies(pvs, instance, name, deps)
}

// ProcessDependencies resolves every marker of instance's type through deps,
// writes it onto the instance and records it in pvs.
func (a *Autowired) ProcessDependencies(pvs *container.PropertyValues, instance any, name string, deps container.Dependencies) (*container.PropertyValues, error) {
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return pvs, nil
	}
	desc, err := Describe(v.Type())
	if err != nil {
		return nil, err
	}
	if desc.Len() == 0 {
		return pvs, nil
	}
	if a.c == nil {
		return nil, errors.New("inject: autowired extension has no container")
	}

	for _, f := range desc.Fields() {
		value, ok, err := a.resolve(f, deps)
		if err != nil {
			return nil, fmt.Errorf("inject %s.%s: %w", name, f.Name, err)
		}
		if !ok {
			continue
		}
		if err := assign(v.Elem(), f, value); err != nil {
			return nil, fmt.Errorf("inject %s.%s: %w", name, f.Name, err)
		}
		pvs.Add(container.PropertyValue{Name: f.Name, Value: value})
	}
	return pvs, nil
}

func (a *Autowired) resolve(f Field, deps container.Dependencies) (any, bool, error) {
	if f.Kind == KindValue {
		return a.c.ResolveEmbeddedValue(f.Expr), true, nil
	}

	var (
		inst any
		err  error
	)
	if f.Qualifier != "" {
		inst, err = deps.Resolve(f.Qualifier)
	} else {
		inst, err = deps.ResolveByType(f.Type)
	}
	if err != nil {
		if f.Optional && missing(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return inst, true, nil
}

// missing reports a lookup that matched nothing, as opposed to one that
// matched but failed to build.
func missing(err error) bool {
	var ambiguous *container.AmbiguousTypeError
	if errors.As(err, &ambiguous) {
		return ambiguous.Count() == 0
	}
	var cerr *container.Error
	if errors.As(err, &cerr) {
		return cerr.Kind == container.ErrNotFound
	}
	return false
}

func assign(sv reflect.Value, f Field, value any) error {
	field := sv.FieldByIndex(f.Index)
	if !field.CanSet() {
		field = reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
	}
	if value == nil {
		field.SetZero()
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return nil
	}
	// strings and numbers go through the container's conversion rules
	return container.SetField(sv.Addr().Interface(), f.Name, value)
}
