package container

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrNotFound           = errors.New("component not found")
	ErrInstantiation      = errors.New("instantiation failed")
	ErrPropertyAssignment = errors.New("property assignment failed")
	ErrInitialization     = errors.New("initialization failed")
	ErrAmbiguousType      = errors.New("expected single matching component")
	ErrShutdown           = errors.New("shutdown failed")
	ErrCircularDependency = errors.New("circular dependency")
)

// Error is the failure type returned by container operations. Kind is one of
// the sentinel errors above; errors.Is matches both Kind and the cause.
type Error struct {
	Kind      error
	Component string
	Message   string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Component != "" {
		fmt.Fprintf(&b, " [%s]", e.Component)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, component, msg string, cause error) *Error {
	return &Error{Kind: kind, Component: component, Message: msg, Err: cause}
}

// AmbiguousTypeError reports a type-directed lookup that did not match
// exactly one definition.
type AmbiguousTypeError struct {
	Type       reflect.Type
	Candidates []string
}

func (e *AmbiguousTypeError) Error() string {
	return fmt.Sprintf("%s of type %v but found %d: %v", ErrAmbiguousType, e.Type, len(e.Candidates), e.Candidates)
}

// Count is the number of matching definitions.
func (e *AmbiguousTypeError) Count() int { return len(e.Candidates) }

func (e *AmbiguousTypeError) Is(target error) bool { return target == ErrAmbiguousType }
