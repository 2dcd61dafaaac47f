package crate

import (
	"fmt"

	"github.com/pkg/errors"
)

// Register maps TService to TImpl. Unlike the Type-based method, the
// assignability of TImpl to TService is checked immediately and a mismatch
// panics with an INCOMPATIBLE_IMPLEMENTATION error.
//
// Example:
//
//	crate.Register[UserStore, *memoryUserStore](c)
func Register[TService, TImpl any](c *Container, opts ...RegisterOption) *Container {
	service, impl := TypeOf[TService](), TypeOf[TImpl]()
	if !impl.rtype.AssignableTo(service.rtype) {
		panic(ErrIncompatibleImplementation(service, impl))
	}
	return c.Register(service, impl, opts...)
}

// RegisterFactory maps T to a typed factory called on every resolve.
//
// Example:
//
//	crate.RegisterFactory(c, func(c *crate.Container) (*Clock, error) {
//	    return &Clock{now: time.Now}, nil
//	})
func RegisterFactory[T any](c *Container, factory func(*Container) (T, error)) *Container {
	if factory == nil {
		panic(ErrInvalidConstructor(factory, errors.New("factory cannot be nil")))
	}
	return c.RegisterFactory(TypeOf[T](), func(c *Container) (any, error) {
		return factory(c)
	})
}

// RegisterInstance maps T to instance; every resolve returns that same value.
// It panics with a NULL_INSTANCE error if instance is nil.
func RegisterInstance[T any](c *Container, instance T) *Container {
	return c.RegisterInstance(TypeOf[T](), instance)
}

// IsRegistered checks if T can be looked up. An open-generic match whose
// closed implementation was never declared reports false.
func IsRegistered[T any](c *Container) bool {
	return c.IsRegistered(TypeOf[T]())
}

// Resolve with type safety.
func Resolve[T any](c *Container) (T, error) {
	var zero T
	service := TypeOf[T]()

	instance, err := c.Resolve(service)
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, nil
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, ErrTypeMismatch(service, instance)
	}

	return typed, nil
}

// Must resolves or panics - use only during test setup.
func Must[T any](c *Container) T {
	instance, err := Resolve[T](c)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", TypeOf[T](), err))
	}

	return instance
}
