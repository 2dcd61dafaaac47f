package crate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// logMiddleware logs each resolution at debug level.
type logMiddleware struct {
	logger *zap.Logger
}

// NewLogMiddleware returns middleware that logs every resolve attempt and its outcome.
func NewLogMiddleware(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logMiddleware{logger: logger.Named("crate")}
}

// BeforeResolve implements Middleware.
func (m *logMiddleware) BeforeResolve(_ context.Context, service Type) error {
	m.logger.Debug("resolving service", zap.Stringer("service", service))
	return nil
}

// AfterResolve implements Middleware.
func (m *logMiddleware) AfterResolve(_ context.Context, service Type, instance any, err error) error {
	if err != nil {
		m.logger.Debug("service resolution failed",
			zap.Stringer("service", service),
			zap.Error(err),
		)
		return nil
	}

	m.logger.Debug("service resolved",
		zap.Stringer("service", service),
		zap.String("instance_type", fmt.Sprintf("%T", instance)),
	)
	return nil
}
