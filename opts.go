package crate

import (
	"fmt"
	"reflect"

	metrics "github.com/rcrowley/go-metrics"
	"go.uber.org/zap"
)

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration logs and installs a
// middleware logging every resolution. The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger == nil {
			return
		}
		c.logger = logger
		c.middleware.add(NewLogMiddleware(logger))
	}
}

// WithMetrics records resolution counters into registry.
func WithMetrics(registry metrics.Registry) Option {
	return func(c *Container) {
		c.middleware.add(NewMetricsMiddleware(registry))
	}
}

// WithMiddleware adds middleware in order.
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Container) {
		for _, mw := range middleware {
			c.middleware.add(mw)
		}
	}
}

// RegisterOption is a configuration option for type registration.
type RegisterOption interface {
	applyRegister(*registerConfig)
}

// registerConfig holds per-registration settings
type registerConfig struct {
	proxy proxyFunc
}

// registerOptionFunc is a function adapter for RegisterOption
type registerOptionFunc func(*registerConfig)

func (f registerOptionFunc) applyRegister(c *registerConfig) { f(c) }

// mergeRegisterOptions combines multiple options; later options win.
func mergeRegisterOptions(opts []RegisterOption) registerConfig {
	var config registerConfig
	for _, opt := range opts {
		if opt != nil {
			opt.applyRegister(&config)
		}
	}
	return config
}

// Proxied wraps every instance constructed for the registration in the
// decorator returned by wrap, typically one built on Proxy. T must be an
// interface type and the constructed instance must implement it.
//
// Example:
//
//	crate.Register[ItemFactory, *itemFactory](c, crate.Proxied(func(f ItemFactory) ItemFactory {
//	    return &itemFactoryProxy{Proxy: crate.NewProxy(f)}
//	}))
func Proxied[T any](wrap func(T) T) RegisterOption {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Interface {
		panic(fmt.Sprintf("crate: Proxied requires an interface type, got %s", t))
	}
	if wrap == nil {
		panic("crate: Proxied requires a wrap function")
	}

	return registerOptionFunc(func(c *registerConfig) {
		c.proxy = func(instance any) (any, error) {
			target, ok := instance.(T)
			if !ok {
				return nil, ErrTypeMismatch(TypeFor(t), instance)
			}
			return wrap(target), nil
		}
	})
}
