package crate

// ServiceInfo describes how the container satisfies one service type.
type ServiceInfo struct {
	Service        Type
	Implementation Type
	Kind           RegistrationKind
	Registered     bool
	Proxied        bool
	// Dependencies lists the parameter types of the constructor that would be
	// used, In fields expanded. Factory, instance and open registrations have none.
	Dependencies []Type
}

// ServiceQuery defines criteria for querying registrations.
type ServiceQuery struct {
	// Kind filters by registration kind. Empty string matches all kinds.
	Kind RegistrationKind

	// Proxied filters by whether instances are wrapped in a proxy.
	// nil matches all registrations.
	Proxied *bool
}

// Inspect reports how service would be resolved without constructing anything.
// A service whose lookup fails is reported as unregistered.
func (c *Container) Inspect(service Type) ServiceInfo {
	reg, ok, err := c.registry.Lookup(service)
	if err != nil || !ok {
		return ServiceInfo{Service: service}
	}
	return c.describe(*reg)
}

// describe builds the ServiceInfo of a registration.
func (c *Container) describe(reg Registration) ServiceInfo {
	info := ServiceInfo{
		Service:        reg.service,
		Implementation: reg.impl,
		Kind:           reg.kind,
		Registered:     true,
		Proxied:        reg.proxy != nil,
	}

	if reg.kind != KindType {
		return info
	}

	impl := reg.impl
	if impl.IsZero() {
		impl = reg.service
	}
	if impl.rtype == nil {
		return info
	}

	if ctor := c.registry.catalog.constructorFor(impl.rtype); ctor != nil {
		for _, p := range ctor.dependencies() {
			info.Dependencies = append(info.Dependencies, TypeFor(p.typ))
		}
	}
	return info
}

// Query returns information about the registrations matching query, exact
// registrations first in service order, then open templates.
//
// Example:
//
//	proxied := true
//	results := crate.Query(c, crate.ServiceQuery{
//	    Kind:    crate.KindType,
//	    Proxied: &proxied,
//	})
func Query(c *Container, query ServiceQuery) []ServiceInfo {
	var results []ServiceInfo

	for _, reg := range c.registry.Registrations() {
		if query.Kind != "" && reg.kind != query.Kind {
			continue
		}
		if query.Proxied != nil && reg.Proxied() != *query.Proxied {
			continue
		}
		results = append(results, c.describe(reg))
	}

	return results
}

// QueryServices returns the service types matching query.
func QueryServices(c *Container, query ServiceQuery) []Type {
	results := Query(c, query)
	services := make([]Type, len(results))
	for i, info := range results {
		services[i] = info.Service
	}
	return services
}

// FindByKind returns all registrations of a specific kind.
func FindByKind(c *Container, kind RegistrationKind) []ServiceInfo {
	return Query(c, ServiceQuery{Kind: kind})
}

// FindProxied returns all registrations whose instances are proxied.
func FindProxied(c *Container) []ServiceInfo {
	proxied := true
	return Query(c, ServiceQuery{Proxied: &proxied})
}
