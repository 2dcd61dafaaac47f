package crate

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Lazy wraps a dependency that is resolved on first access.
// This is useful for deferring resolution of services until a test
// actually needs them.
type Lazy[T any] struct {
	container *Container
	mu        sync.Once
	value     T
	err       error
	resolved  atomic.Bool
}

// NewLazy creates a new lazy dependency wrapper.
func NewLazy[T any](container *Container) *Lazy[T] {
	return &Lazy[T]{container: container}
}

// Get resolves the dependency and returns it.
// The resolution happens only once; subsequent calls return the cached value.
func (l *Lazy[T]) Get() (T, error) {
	l.mu.Do(func() {
		l.value, l.err = Resolve[T](l.container)
		l.resolved.Store(l.err == nil)
	})

	return l.value, l.err
}

// MustGet resolves the dependency and returns it, panicking on error.
func (l *Lazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy dependency %s failed: %v", l.Type(), err))
	}

	return value
}

// IsResolved returns true if the dependency has been resolved.
func (l *Lazy[T]) IsResolved() bool {
	return l.resolved.Load()
}

// Type returns the service type of the dependency.
func (l *Lazy[T]) Type() Type {
	return TypeOf[T]()
}

// Provider wraps a dependency that creates new instances on each access.
// Since the container caches nothing, every Provide rebuilds the graph.
type Provider[T any] struct {
	container *Container
}

// NewProvider creates a new provider.
func NewProvider[T any](container *Container) *Provider[T] {
	return &Provider[T]{container: container}
}

// Provide resolves and returns a new instance of the dependency.
func (p *Provider[T]) Provide() (T, error) {
	return Resolve[T](p.container)
}

// MustProvide resolves and returns a new instance, panicking on error.
func (p *Provider[T]) MustProvide() T {
	value, err := p.Provide()
	if err != nil {
		panic(fmt.Sprintf("provider %s failed: %v", p.Type(), err))
	}

	return value
}

// Type returns the service type of the dependency.
func (p *Provider[T]) Type() Type {
	return TypeOf[T]()
}
