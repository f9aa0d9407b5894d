package app

import (
	"errors"
	"fmt"
)

// State is a step of the application lifecycle.
type State int32

const (
	StateUninitialized State = iota
	StateDefinitionsLoaded
	StateExtensionsApplied
	StatePostProcessorsRegistered
	StateEventsReady
	StateSingletonsInstantiated
	StateRunning
	StateClosing
	StateClosed
	StateFailed
)

var stateNames = [...]string{
	StateUninitialized:            "uninitialized",
	StateDefinitionsLoaded:        "definitions-loaded",
	StateExtensionsApplied:        "extensions-applied",
	StatePostProcessorsRegistered: "post-processors-registered",
	StateEventsReady:              "events-ready",
	StateSingletonsInstantiated:   "singletons-instantiated",
	StateRunning:                  "running",
	StateClosing:                  "closing",
	StateClosed:                   "closed",
	StateFailed:                   "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int32(s))
	}
	return stateNames[s]
}

var (
	ErrInvalidState = errors.New("invalid application state")
	ErrNotStarted   = errors.New("application not started")
)

// StartError reports an aborted Start. Cause is the failure that stopped
// start-up; Teardown is whatever went wrong destroying the singletons built
// so far, if anything.
type StartError struct {
	Cause    error
	Teardown error
}

func (e *StartError) Error() string {
	if e.Teardown != nil {
		return fmt.Sprintf("start failed: %v (teardown: %v)", e.Cause, e.Teardown)
	}
	return fmt.Sprintf("start failed: %v", e.Cause)
}

func (e *StartError) Unwrap() error { return e.Cause }
