package diorite

import (
	"fmt"

	"go.uber.org/zap"
)

// Option is a function that configures a Container.
type Option func(*Container) error

// WithStrict makes re-registration of an existing key fail with a
// BindingAlreadyExistsError instead of overwriting it.
func WithStrict() Option {
	return func(c *Container) error {
		c.registry.SetStrict(true)
		return nil
	}
}

// WithLogger sets the logger used for container diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithDebug logs every resolution with a development logger.
func WithDebug() Option {
	return func(c *Container) error {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create debug logger: %w", err)
		}
		c.logger = logger
		return nil
	}
}
