package crate

import (
	"reflect"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Factory builds a service instance from the container.
type Factory func(c *Container) (any, error)

// RegistrationKind describes how a registration satisfies its service.
type RegistrationKind string

const (
	// KindType constructs a concrete implementation type.
	KindType RegistrationKind = "type"
	// KindFactory calls a caller-supplied factory on every resolve.
	KindFactory RegistrationKind = "factory"
	// KindInstance returns one captured instance on every resolve.
	KindInstance RegistrationKind = "instance"
	// KindOpen is an open generic template specialized per closed request.
	KindOpen RegistrationKind = "open"
)

// Registration describes how to satisfy one service type.
// Registrations are immutable once created.
type Registration struct {
	service Type
	impl    Type
	factory Factory
	kind    RegistrationKind
	proxy   proxyFunc
}

// proxyFunc wraps a constructed instance in its invocation proxy.
type proxyFunc func(instance any) (any, error)

// ServiceType returns the registered service type.
func (r Registration) ServiceType() Type {
	return r.service
}

// ImplementationType returns the implementation type, or the zero Type for
// factory and instance registrations.
func (r Registration) ImplementationType() Type {
	return r.impl
}

// Factory returns the factory, or nil for type registrations.
func (r Registration) Factory() Factory {
	return r.factory
}

// Kind returns how the registration satisfies its service.
func (r Registration) Kind() RegistrationKind {
	return r.kind
}

// Proxied reports whether resolved instances are wrapped in an invocation proxy.
func (r Registration) Proxied() bool {
	return r.proxy != nil
}

// Registry stores registrations, split into exact lookups and open generic
// templates matched structurally against closed requests.
type Registry struct {
	exact   map[Type]*Registration
	open    []*Registration
	catalog *typeCatalog
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		exact:   make(map[Type]*Registration),
		catalog: newTypeCatalog(),
	}
}

// Register maps a service type to an implementation type. Open templates on
// either side are appended to the template list; everything else overwrites
// the exact entry for service.
func (r *Registry) Register(service, impl Type, opts ...RegisterOption) {
	config := mergeRegisterOptions(opts)

	reg := &Registration{
		service: service,
		impl:    impl,
		kind:    KindType,
		proxy:   config.proxy,
	}

	r.catalog.learn(service.rtype)
	r.catalog.learn(impl.rtype)

	r.mu.Lock()
	defer r.mu.Unlock()

	if service.IsOpen() || impl.IsOpen() {
		reg.kind = KindOpen
		r.open = append(r.open, reg)
		return
	}

	r.exact[service] = reg
}

// RegisterFactory maps a service type to a factory, overwriting any exact entry.
// Factory results are returned as-is, so proxy options do not apply.
func (r *Registry) RegisterFactory(service Type, factory Factory) error {
	if factory == nil {
		return ErrInvalidConstructor(factory, errors.New("factory cannot be nil"))
	}

	r.catalog.learn(service.rtype)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.exact[service] = &Registration{
		service: service,
		factory: factory,
		kind:    KindFactory,
	}
	return nil
}

// RegisterInstance maps a service type to a fixed instance, overwriting any exact entry.
func (r *Registry) RegisterInstance(service Type, instance any) error {
	if isNil(instance) {
		return ErrNullInstance(service)
	}

	r.catalog.learn(service.rtype)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.exact[service] = &Registration{
		service: service,
		factory: func(*Container) (any, error) { return instance, nil },
		kind:    KindInstance,
	}
	return nil
}

// Lookup returns the registration satisfying service. Exact entries win;
// otherwise a closed generic request is matched against the open templates
// in registration order and the first match is specialized. Specialized
// registrations are synthesized per call and never stored.
func (r *Registry) Lookup(service Type) (*Registration, bool, error) {
	reg, exact := r.match(service)
	if reg == nil {
		return nil, false, nil
	}
	if exact {
		return reg, true, nil
	}

	reg, err := r.specialize(reg, service)
	if err != nil {
		return nil, false, err
	}
	return reg, true, nil
}

// match finds the exact registration of service, or else the first open
// template matching it. exact reports which of the two was found.
func (r *Registry) match(service Type) (reg *Registration, exact bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if reg, ok := r.exact[service]; ok {
		return reg, true
	}

	if !service.IsGeneric() {
		return nil, false
	}
	template := service.Template()
	for _, reg := range r.open {
		if reg.service == template {
			return reg, false
		}
	}
	return nil, false
}

// specialize closes an open registration over the type arguments of service
func (r *Registry) specialize(match *Registration, service Type) (*Registration, error) {
	if !match.impl.IsOpen() {
		return nil, ErrMalformedOpenGeneric(match.service, match.impl)
	}

	args := service.typeArgs()
	impl, ok := r.catalog.instantiation(match.impl.instantiate(args))
	if !ok {
		return nil, ErrUnknownInstantiation(match.impl, args)
	}

	return &Registration{
		service: service,
		impl:    TypeFor(impl),
		kind:    KindType,
		proxy:   match.proxy,
	}, nil
}

// IsRegistered reports whether Lookup would find a registration. A closed
// generic matching an open template counts only when its implementation
// instantiation is known. A matching open registration without an
// implementation template is a configuration error and panics.
func (r *Registry) IsRegistered(service Type) bool {
	reg, exact := r.match(service)
	if reg == nil {
		return false
	}
	if exact {
		return true
	}
	if !reg.impl.IsOpen() {
		panic(ErrMalformedOpenGeneric(reg.service, reg.impl))
	}

	_, ok := r.catalog.instantiation(reg.impl.instantiate(service.typeArgs()))
	return ok
}

// Registrations returns a snapshot of the exact registrations, sorted by
// service name, followed by the open templates in registration order.
func (r *Registry) Registrations() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Registration, 0, len(r.exact)+len(r.open))
	for _, reg := range r.exact {
		result = append(result, *reg)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].service.String() < result[j].service.String()
	})

	for _, reg := range r.open {
		result = append(result, *reg)
	}
	return result
}

// isNil reports whether v is nil or a typed nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}
