package crate

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// InvocationError reports a failure raised inside a reflectively invoked
// method. Err is the failure the method itself produced.
type InvocationError struct {
	Method string
	Err    error
}

// Error implements error.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("invocation of %s failed: %v", e.Method, e.Err)
}

// Unwrap supports errors.Is and errors.As.
func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Cause returns the wrapped failure for errors.Cause.
func (e *InvocationError) Cause() error {
	return e.Err
}

// Invoke calls method on target reflectively. A non-nil error returned as the
// method's last result, or a panic raised by the method, is wrapped in an
// *InvocationError. The trailing error result is not included in results.
func Invoke(target any, method string, args ...any) (results []any, err error) {
	v := reflect.ValueOf(target)
	if !v.IsValid() {
		return nil, errors.Errorf("crate: cannot invoke %s on nil target", method)
	}

	m := v.MethodByName(method)
	if !m.IsValid() {
		return nil, errors.Errorf("crate: %T has no method %s", target, method)
	}

	in, err := invocationArgs(m.Type(), args)
	if err != nil {
		return nil, wrapf(err, "crate: invoke %s", method)
	}

	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = &InvocationError{Method: method, Err: panicError(r)}
		}
	}()

	out := m.Call(in)

	if n := len(out); n > 0 && m.Type().Out(n-1) == errorType {
		if last := out[n-1]; !last.IsNil() {
			return nil, &InvocationError{Method: method, Err: last.Interface().(error)}
		}
		out = out[:n-1]
	}

	results = make([]any, len(out))
	for i, o := range out {
		results[i] = o.Interface()
	}
	return results, nil
}

// invocationArgs converts args to the parameter types of fnType.
func invocationArgs(fnType reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := fnType.NumIn()
	if fnType.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, errors.Errorf("expected at least %d arguments, got %d", numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, errors.Errorf("expected %d arguments, got %d", numIn, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var paramType reflect.Type
		if fnType.IsVariadic() && i >= numIn-1 {
			paramType = fnType.In(numIn - 1).Elem()
		} else {
			paramType = fnType.In(i)
		}

		v, err := valueFor(arg, paramType)
		if err != nil {
			return nil, wrapf(err, "argument %d", i)
		}
		in[i] = v
	}
	return in, nil
}

// panicError turns a recovered panic value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errors.Errorf("panic: %v", r)
}

// UnwrapInvocation surfaces the failure hidden behind an *InvocationError.
//
// An *InvocationError carrying a cause yields that cause. When the cause is
// itself an *InvocationError and twice is set, the second-level cause is
// returned if there is one. Every other error is returned unchanged.
func UnwrapInvocation(err error, twice bool) error {
	inv, ok := err.(*InvocationError)
	if !ok || inv.Err == nil {
		return err
	}

	inner := inv.Err
	nested, ok := inner.(*InvocationError)
	if !ok {
		return inner
	}
	if twice && nested.Err != nil {
		return nested.Err
	}
	return inner
}

// ProxyOption configures a Proxy.
type ProxyOption func(*proxyConfig)

type proxyConfig struct {
	unwrapTwice map[string]bool
}

// UnwrapTwice marks methods whose nested invocation failures are peeled two
// levels instead of one.
func UnwrapTwice(methods ...string) ProxyOption {
	return func(c *proxyConfig) {
		for _, m := range methods {
			c.unwrapTwice[m] = true
		}
	}
}

// Proxy forwards calls to a target implementing T and surfaces the original
// failure of reflective invocations instead of their *InvocationError wrapper.
//
// Go cannot generate an implementation of T at run time, so a decorator
// implements T by hand and routes each method through Call:
//
//	type itemFactoryProxy struct {
//	    *crate.Proxy[ItemFactory]
//	}
//
//	func (p itemFactoryProxy) CreateMany(n int) (items []Item, err error) {
//	    err = p.Call("CreateMany", func(f ItemFactory) (err error) {
//	        items, err = f.CreateMany(n)
//	        return err
//	    })
//	    return items, err
//	}
type Proxy[T any] struct {
	target T
	config proxyConfig
}

// NewProxy creates a proxy around target.
func NewProxy[T any](target T, opts ...ProxyOption) *Proxy[T] {
	p := &Proxy[T]{
		target: target,
		config: proxyConfig{unwrapTwice: make(map[string]bool)},
	}
	for _, opt := range opts {
		opt(&p.config)
	}
	return p
}

// Target returns the proxied value.
func (p *Proxy[T]) Target() T {
	return p.target
}

// Call forwards one method to the target. A returned error is unwrapped;
// a panic carrying an error is re-raised with the unwrapped value and any
// other panic is re-raised unchanged.
func (p *Proxy[T]) Call(method string, fn func(target T) error) error {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				panic(p.unwrap(method, err))
			}
			panic(r)
		}
	}()

	if err := fn(p.target); err != nil {
		return p.unwrap(method, err)
	}
	return nil
}

// Invoke forwards method to the target by name through Invoke and unwraps
// the resulting failure.
func (p *Proxy[T]) Invoke(method string, args ...any) ([]any, error) {
	results, err := Invoke(p.target, method, args...)
	if err != nil {
		return nil, p.unwrap(method, err)
	}
	return results, nil
}

func (p *Proxy[T]) unwrap(method string, err error) error {
	return UnwrapInvocation(err, p.config.unwrapTwice[method])
}
