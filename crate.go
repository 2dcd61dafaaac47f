// Package crate is a small dependency-injection resolver for test scaffolding.
//
// Test code declares how each service type is satisfied, by an
// implementation type, a factory or a fixed instance, and the container
// resolves whole object graphs through constructor injection:
//
//	c := crate.New()
//	c.Declare(NewFoo, NewRepo[User])
//	crate.Register[Foo, *foo](c)
//	c.Register(crate.OpenOf[Repository[any]](), crate.OpenOf[*Repo[any]]())
//
//	foo, err := crate.Resolve[Foo](c)
//
// Constructors are plain functions returning T or (T, error). When a type
// has several, the one with the most parameters wins; concrete types with
// none are built from their zero value.
//
// The container is meant for test setup. It keeps no lifetimes, detects no
// cycles and caches nothing besides instance registrations.
package crate

// New creates a new container.
func New(opts ...Option) *Container {
	return newContainer(opts...)
}
