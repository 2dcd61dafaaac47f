package crate

import (
	"context"
	"sync"
)

// Middleware provides hooks for intercepting resolution.
// Middleware can be used for logging, metrics, testing, etc.
// Hooks run for every Resolve, including the recursive resolves of
// constructor parameters.
type Middleware interface {
	// BeforeResolve is called before resolving a service.
	// Return error to abort resolution.
	BeforeResolve(ctx context.Context, service Type) error

	// AfterResolve is called after resolving a service.
	// Called even if resolution failed (instance and err may both be set).
	AfterResolve(ctx context.Context, service Type, instance any, err error) error
}

// middlewareChain manages multiple middleware.
type middlewareChain struct {
	middleware []Middleware
	mu         sync.RWMutex
}

// newMiddlewareChain creates a new middleware chain.
func newMiddlewareChain() *middlewareChain {
	return &middlewareChain{
		middleware: make([]Middleware, 0),
	}
}

// add appends middleware to the chain.
func (m *middlewareChain) add(middleware Middleware) {
	if middleware == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.middleware = append(m.middleware, middleware)
}

// snapshot returns the current middleware without holding the lock during hooks.
func (m *middlewareChain) snapshot() []Middleware {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.middleware
}

// beforeResolve calls BeforeResolve on all middleware.
func (m *middlewareChain) beforeResolve(ctx context.Context, service Type) error {
	for _, mw := range m.snapshot() {
		if err := mw.BeforeResolve(ctx, service); err != nil {
			return err
		}
	}
	return nil
}

// afterResolve calls AfterResolve on all middleware.
func (m *middlewareChain) afterResolve(ctx context.Context, service Type, instance any, err error) error {
	for _, mw := range m.snapshot() {
		if mwErr := mw.AfterResolve(ctx, service, instance, err); mwErr != nil {
			return mwErr
		}
	}
	return nil
}

// FuncMiddleware wraps functions as Middleware.
type FuncMiddleware struct {
	BeforeResolveFunc func(ctx context.Context, service Type) error
	AfterResolveFunc  func(ctx context.Context, service Type, instance any, err error) error
}

// BeforeResolve implements Middleware.
func (f *FuncMiddleware) BeforeResolve(ctx context.Context, service Type) error {
	if f.BeforeResolveFunc != nil {
		return f.BeforeResolveFunc(ctx, service)
	}
	return nil
}

// AfterResolve implements Middleware.
func (f *FuncMiddleware) AfterResolve(ctx context.Context, service Type, instance any, err error) error {
	if f.AfterResolveFunc != nil {
		return f.AfterResolveFunc(ctx, service, instance, err)
	}
	return nil
}
