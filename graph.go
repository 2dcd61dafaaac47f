package crate

import (
	goerrs "github.com/xraph/go-utils/errs"
	"go.uber.org/multierr"
)

// DependencyGraph is a static view of which services each registration needs.
type DependencyGraph struct {
	nodes map[Type]*node
	order []Type // Preserve insertion order
}

type node struct {
	service      Type
	dependencies []Type
}

// NewDependencyGraph creates an empty dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[Type]*node),
		order: make([]Type, 0),
	}
}

// AddNode adds a service with its dependencies. Adding a service twice
// replaces its dependencies but keeps its original position.
func (g *DependencyGraph) AddNode(service Type, dependencies []Type) {
	if _, ok := g.nodes[service]; !ok {
		g.order = append(g.order, service)
	}
	g.nodes[service] = &node{
		service:      service,
		dependencies: dependencies,
	}
}

// GetDependencies returns the dependencies of a service.
func (g *DependencyGraph) GetDependencies(service Type) []Type {
	if node, ok := g.nodes[service]; ok {
		return node.dependencies
	}

	return nil
}

// HasNode checks if a service exists in the graph.
func (g *DependencyGraph) HasNode(service Type) bool {
	_, ok := g.nodes[service]

	return ok
}

// Services returns the services in insertion order.
func (g *DependencyGraph) Services() []Type {
	return append([]Type(nil), g.order...)
}

// TopologicalSort returns services with dependencies before their dependents.
// Services without dependencies keep their insertion order. Cycles are not
// reported; the edge closing a cycle is ignored.
func (g *DependencyGraph) TopologicalSort() []Type {
	visited := make(map[Type]bool)
	result := make([]Type, 0, len(g.nodes))

	for _, service := range g.order {
		g.visit(service, visited, &result)
	}

	return result
}

// visit performs DFS traversal.
func (g *DependencyGraph) visit(service Type, visited map[Type]bool, result *[]Type) {
	if visited[service] {
		return
	}

	node := g.nodes[service]
	if node == nil {
		// Not in graph (open-generic or unregistered dependency)
		return
	}

	visited[service] = true

	for _, dep := range node.dependencies {
		g.visit(dep, visited, result)
	}

	*result = append(*result, service)
}

// DependencyGraph builds the graph of every exact registration.
func (c *Container) DependencyGraph() *DependencyGraph {
	g := NewDependencyGraph()

	for _, reg := range c.registry.Registrations() {
		if reg.kind == KindOpen {
			continue
		}
		g.AddNode(reg.service, c.describe(reg).Dependencies)
	}

	return g
}

// Verify checks the registrations without constructing anything. For each
// exact type registration it reports an implementation that does not satisfy
// its service, a missing constructor and every required dependency that
// cannot be looked up. Open registrations lacking an implementation template
// are reported too. All problems are combined into one error.
func (c *Container) Verify() error {
	var errs error

	for _, reg := range c.registry.Registrations() {
		switch reg.kind {
		case KindOpen:
			if !reg.impl.IsOpen() {
				errs = multierr.Append(errs, ErrMalformedOpenGeneric(reg.service, reg.impl))
			}
		case KindType:
			errs = multierr.Append(errs, c.verifyType(reg))
		}
	}

	return errs
}

// verifyType checks one exact type registration.
func (c *Container) verifyType(reg Registration) error {
	impl := reg.impl
	if impl.IsZero() {
		impl = reg.service
	}

	if impl.rtype == nil {
		return ErrNoConstructor(impl)
	}
	if reg.service.rtype != nil && !impl.rtype.AssignableTo(reg.service.rtype) {
		return ErrIncompatibleImplementation(reg.service, impl)
	}

	ctor := c.registry.catalog.constructorFor(impl.rtype)
	if ctor == nil {
		return ErrNoConstructor(impl)
	}

	var errs error
	for _, p := range ctor.dependencies() {
		if p.optional {
			continue
		}

		dep := TypeFor(p.typ)
		_, ok, err := c.registry.Lookup(dep)
		switch {
		case err != nil:
			errs = multierr.Append(errs, err)
		case !ok:
			errs = multierr.Append(errs,
				ErrServiceNotRegistered(dep).WithContext("required_by", reg.service.String()).(*goerrs.Error))
		}
	}

	return errs
}
