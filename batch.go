package crate

import "github.com/pkg/errors"

// Binding holds configuration for a service to be registered.
// Instance wins over Factory, which wins over Impl.
type Binding struct {
	Service  Type
	Impl     Type
	Factory  Factory
	Instance any
	Options  []RegisterOption
}

// Bind creates a type Binding for batch registration. Like Register, it
// panics if TImpl is not assignable to TService.
//
// Example:
//
//	c.Install(
//	    crate.Bind[UserStore, *memoryUserStore](),
//	    crate.Bind[Clock, *fixedClock](),
//	)
func Bind[TService, TImpl any](opts ...RegisterOption) Binding {
	service, impl := TypeOf[TService](), TypeOf[TImpl]()
	if !impl.rtype.AssignableTo(service.rtype) {
		panic(ErrIncompatibleImplementation(service, impl))
	}
	return Binding{
		Service: service,
		Impl:    impl,
		Options: opts,
	}
}

// BindOpen creates a Binding between two open templates.
func BindOpen(service, impl Type, opts ...RegisterOption) Binding {
	return Binding{
		Service: service,
		Impl:    impl,
		Options: opts,
	}
}

// BindFactory creates a factory Binding for batch registration.
func BindFactory[T any](factory func(*Container) (T, error)) Binding {
	if factory == nil {
		panic(ErrInvalidConstructor(factory, errors.New("factory cannot be nil")))
	}
	return Binding{
		Service: TypeOf[T](),
		Factory: func(c *Container) (any, error) {
			return factory(c)
		},
	}
}

// BindInstance creates an instance Binding. It panics with a NULL_INSTANCE
// error if instance is nil.
func BindInstance[T any](instance T) Binding {
	service := TypeOf[T]()
	if isNil(instance) {
		panic(ErrNullInstance(service))
	}
	return Binding{
		Service:  service,
		Instance: instance,
	}
}

// Install registers multiple bindings in order.
func (c *Container) Install(bindings ...Binding) *Container {
	for _, b := range bindings {
		c.install(b)
	}
	return c
}

func (c *Container) install(b Binding) {
	if b.Instance != nil {
		c.RegisterInstance(b.Service, b.Instance)
		return
	}
	if b.Factory != nil {
		c.RegisterFactory(b.Service, b.Factory)
		return
	}
	c.Register(b.Service, b.Impl, b.Options...)
}

// NewFixture creates a container for one test. configure registers the
// services the test cares about; afterwards every default binding whose
// service is still unregistered is installed.
//
// Example:
//
//	c := crate.NewFixture(func(c *crate.Container) {
//	    crate.Register[Clock, *frozenClock](c)
//	}, crate.Bind[Clock, *systemClock](), crate.Bind[UserStore, *memoryUserStore]())
func NewFixture(configure func(*Container), defaults ...Binding) *Container {
	c := New()
	if configure != nil {
		configure(c)
	}

	for _, b := range defaults {
		if !c.IsRegistered(b.Service) {
			c.install(b)
		}
	}
	return c
}
