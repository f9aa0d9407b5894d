package container

import (
	"errors"
	"fmt"
	"reflect"
)

// Method names of the standard hooks. A definition whose InitMethod or
// DestroyMethod repeats one of these on a component implementing the hook
// does not run it twice.
const (
	InitializeMethod = "Initialize"
	DestroyMethod    = "Destroy"
)

// Initializer is implemented by components that finish setting themselves up
// after their properties have been assigned.
type Initializer interface {
	Initialize() error
}

// Disposer is implemented by singletons that release resources at shutdown.
type Disposer interface {
	Destroy() error
}

// ContainerAware components receive the owning container exactly once,
// before any initializer runs.
type ContainerAware interface {
	SetContainer(c *Container)
}

// disposableAdapter runs Destroy and/or the declared destroy method.
type disposableAdapter struct {
	instance      any
	name          string
	destroyMethod string
}

func (a *disposableAdapter) Destroy() error {
	disposer, isDisposer := a.instance.(Disposer)
	if isDisposer {
		if err := disposer.Destroy(); err != nil {
			return err
		}
	}
	if a.destroyMethod != "" && !(isDisposer && a.destroyMethod == DestroyMethod) {
		return invokeMethod(a.instance, a.destroyMethod)
	}
	return nil
}

func needsFinalizer(instance any, def *Definition) bool {
	if !def.IsSingleton() {
		return false
	}
	_, ok := instance.(Disposer)
	return ok || def.DestroyMethod != ""
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// invokeMethod calls a niladic method by name; it must return nothing or an error.
func invokeMethod(instance any, method string) (err error) {
	m := reflect.ValueOf(instance).MethodByName(method)
	if !m.IsValid() {
		return fmt.Errorf("no method named %q on %T", method, instance)
	}
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() > 1 || (mt.NumOut() == 1 && !mt.Out(0).Implements(errorType)) {
		return fmt.Errorf("method %q on %T must be func() or func() error", method, instance)
	}

	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()

	out := m.Call(nil)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return errors.New(fmt.Sprint("panic: ", r))
}
