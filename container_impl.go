package crate

import (
	"context"
	"reflect"

	"go.uber.org/zap"
)

// Container registers services and resolves object graphs through
// constructor injection.
//
// Registration and resolution may interleave freely. Nothing is cached:
// every Resolve rebuilds the graph from the registrations present at that
// moment, except instance and factory registrations which are reused as
// configured. There is no cycle detection; a registration cycle recurses
// until the goroutine stack is exhausted.
type Container struct {
	registry   *Registry
	middleware *middlewareChain
	logger     *zap.Logger
}

// newContainer creates a new container with the given options applied.
func newContainer(opts ...Option) *Container {
	c := &Container{
		registry:   NewRegistry(),
		middleware: newMiddlewareChain(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Register maps service to impl. Either side may be an open template
// obtained with OpenOf. Whether impl satisfies service is checked when the
// service is resolved.
func (c *Container) Register(service, impl Type, opts ...RegisterOption) *Container {
	c.registry.Register(service, impl, opts...)

	c.logger.Debug("service registered",
		zap.Stringer("service", service),
		zap.Stringer("implementation", impl),
	)
	return c
}

// RegisterFactory maps service to a factory invoked on every resolve.
// It panics if factory is nil.
func (c *Container) RegisterFactory(service Type, factory Factory) *Container {
	if err := c.registry.RegisterFactory(service, factory); err != nil {
		panic(err)
	}

	c.logger.Debug("service factory registered", zap.Stringer("service", service))
	return c
}

// RegisterInstance maps service to a fixed instance returned by every
// resolve. It panics with a NULL_INSTANCE error if instance is nil.
func (c *Container) RegisterInstance(service Type, instance any) *Container {
	if err := c.registry.RegisterInstance(service, instance); err != nil {
		panic(err)
	}

	c.logger.Debug("service instance registered",
		zap.Stringer("service", service),
		zap.Stringer("instance_type", reflect.TypeOf(instance)),
	)
	return c
}

// Declare adds constructors and known types to the container's catalog.
//
// A constructor is a function returning T or (T, error); its parameters are
// resolved by type when T is constructed. Several constructors for the same
// T are overloads and the one with the most parameters is used. A Type item
// only makes a closed generic instantiation known, so open templates can be
// specialized into it through its implicit constructor.
//
// Declare panics with an INVALID_CONSTRUCTOR error on a malformed item.
func (c *Container) Declare(items ...any) *Container {
	for _, item := range items {
		if t, ok := item.(Type); ok {
			c.registry.catalog.learn(t.rtype)
			continue
		}

		info, err := analyzeConstructor(item)
		if err != nil {
			panic(ErrInvalidConstructor(item, err))
		}
		c.registry.catalog.declare(info)

		c.logger.Debug("constructor declared",
			zap.Stringer("implementation", info.result),
			zap.Int("parameters", len(info.params)),
		)
	}
	return c
}

// IsRegistered reports whether service can be looked up.
func (c *Container) IsRegistered(service Type) bool {
	return c.registry.IsRegistered(service)
}

// Registry returns the underlying registry.
func (c *Container) Registry() *Registry {
	return c.registry
}

// Use adds middleware to the container.
// Middleware is called in the order they are added.
func (c *Container) Use(middleware Middleware) {
	c.middleware.add(middleware)
}

// Resolve builds an instance of service.
func (c *Container) Resolve(service Type) (any, error) {
	ctx := context.Background()

	// Call middleware before resolve
	if err := c.middleware.beforeResolve(ctx, service); err != nil {
		return nil, err
	}

	// Perform actual resolution
	instance, err := c.resolveInternal(service)

	// Call middleware after resolve
	if mwErr := c.middleware.afterResolve(ctx, service, instance, err); mwErr != nil {
		return nil, mwErr
	}

	return instance, err
}

// resolveInternal performs the actual service resolution without middleware.
func (c *Container) resolveInternal(service Type) (any, error) {
	reg, ok, err := c.registry.Lookup(service)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrServiceNotRegistered(service)
	}

	// Factories and instances are returned as produced.
	if reg.factory != nil {
		return reg.factory(c)
	}

	impl := reg.impl
	if impl.IsZero() {
		impl = service
	}

	if impl.rtype == nil {
		return nil, ErrNoConstructor(impl)
	}
	if service.rtype != nil && !impl.rtype.AssignableTo(service.rtype) {
		return nil, ErrIncompatibleImplementation(service, impl)
	}

	ctor := c.registry.catalog.constructorFor(impl.rtype)
	if ctor == nil {
		return nil, ErrNoConstructor(impl)
	}

	var args []reflect.Value
	if len(ctor.params) > 0 {
		args, err = c.resolveArgs(ctor)
		if err != nil {
			return nil, err
		}
	}

	instance, err := ctor.call(args)
	if err != nil {
		return nil, err
	}

	if reg.proxy != nil {
		return reg.proxy(instance)
	}

	return instance, nil
}

// resolveArgs resolves constructor parameters in declaration order.
func (c *Container) resolveArgs(ctor *constructorInfo) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(ctor.params))

	for i, param := range ctor.params {
		var (
			arg reflect.Value
			err error
		)
		if param.isIn {
			arg, err = c.resolveInStruct(param)
		} else {
			arg, err = c.resolveParam(param)
		}
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	return args, nil
}

// resolveParam resolves a single parameter by type
func (c *Container) resolveParam(param paramInfo) (reflect.Value, error) {
	service := TypeFor(param.typ)

	if param.optional {
		_, ok, err := c.registry.Lookup(service)
		if err != nil {
			return reflect.Value{}, err
		}
		if !ok {
			return reflect.Zero(param.typ), nil
		}
	}

	resolved, err := c.Resolve(service)
	if err != nil {
		return reflect.Value{}, err
	}

	return valueFor(resolved, param.typ)
}

// resolveInStruct creates and populates an In struct with resolved dependencies
func (c *Container) resolveInStruct(param paramInfo) (reflect.Value, error) {
	structType := param.typ
	isPtr := structType.Kind() == reflect.Ptr
	if isPtr {
		structType = structType.Elem()
	}

	structValue := reflect.New(structType).Elem()

	for _, field := range param.inFields {
		value, err := c.resolveParam(field)
		if err != nil {
			return reflect.Value{}, err
		}
		structValue.Field(field.index).Set(value)
	}

	if isPtr {
		return structValue.Addr(), nil
	}

	return structValue, nil
}

// valueFor converts a resolved instance into an argument of type t.
func valueFor(resolved any, t reflect.Type) (reflect.Value, error) {
	if resolved == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(resolved)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, ErrTypeMismatch(TypeFor(t), resolved)
	}

	return v, nil
}
