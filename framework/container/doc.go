// Package container is a definition-driven IoC container for Go.
//
// # Overview
//
// Components are described by a Definition: the concrete type, a scope
// (singleton or prototype), laziness, optional init and destroy method names,
// an autowire mode and a list of named property assignments. The container
// builds instances from definitions, resolves their dependencies and runs
// them through a fixed lifecycle:
//
//	instantiate → populate → initialize → ready → destroy
//
// # Definitions
//
//	c := container.New(container.WithLogger(logger))
//
//	c.Register("engine", container.NewDefinition(container.TypeOf[*Engine](),
//	    container.WithProperty("Cylinders", "8"),
//	))
//	c.Register("car", container.NewDefinition(container.TypeOf[*Car](),
//	    container.WithAutowire(container.AutowireByName),
//	    container.WithReference("Engine", "engine"),
//	    container.WithInitMethod("Start"),
//	    container.WithDestroyMethod("Stop"),
//	))
//
// # Resolving
//
//	// Untyped
//	raw, err := c.Resolve("car")
//
//	// Generic
//	car, err := container.Resolve[*Car](c, "car")
//
//	// By type: exactly one definition must match
//	engine, err := container.ResolveByType[*Engine](c)
//
// # Lifecycle hooks
//
// A component opts into hooks by implementing capability interfaces:
//
//   - ContainerAware: receives the container before any initializer runs
//   - Initializer: Initialize() error, run before the named init method
//   - Disposer: Destroy() error, run at shutdown for singletons
//
// # Extensions
//
// A ContainerExtension rewrites definitions once before construction starts.
// A ComponentExtension frames the initialization of every component and may
// substitute the instance; an InstantiationAwareExtension can also skip or
// feed property population.
//
//	c.AddExtension(&TimingExtension{})
//
// # Shutdown
//
//	if err := c.DestroySingletons(); err != nil {
//	    // errors.Is(err, container.ErrShutdown)
//	}
package container
