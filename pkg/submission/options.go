package submission

import (
	"log/slog"

	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// Option configures a Controller.
type Option func(*Controller)

// WithSchema overrides the validation schema (defaults to
// validation.NewSchema()).
func WithSchema(schema *validation.Schema) Option {
	return func(c *Controller) {
		if schema != nil {
			c.schema = schema
		}
	}
}

// WithLogger sets the structured logger used for transition logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithListener registers a listener at construction time.
func WithListener(listener Listener) Option {
	return func(c *Controller) {
		if listener != nil {
			c.addListener(listener)
		}
	}
}
