package transcription

import (
	"context"
	"fmt"

	"github.com/kbukum/whisperd/component"
	"github.com/kbukum/whisperd/logger"
	"github.com/kbukum/whisperd/provider"
)

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component manages the backend's lifecycle: it is initialized and probed
// once at startup and closed at shutdown.
type Component struct {
	backend Backend
	log     *logger.Logger
}

// NewComponent wraps backend for the component registry.
func NewComponent(backend Backend, log *logger.Logger) *Component {
	return &Component{backend: backend, log: log.WithComponent("inference")}
}

// Name implements component.Component.
func (c *Component) Name() string { return "inference" }

// Start initializes the backend and fails if it cannot serve.
func (c *Component) Start(ctx context.Context) error {
	if in, ok := c.backend.(provider.Initializable); ok {
		if err := in.Init(ctx); err != nil {
			return fmt.Errorf("init %s: %w", c.backend.Name(), err)
		}
	}
	if !c.backend.IsAvailable(ctx) {
		return fmt.Errorf("inference backend %s is not available", c.backend.Name())
	}
	c.log.Info("inference backend ready", logger.Fields(logger.FieldBackend, c.backend.Name()))
	return nil
}

// Stop releases the backend.
func (c *Component) Stop(ctx context.Context) error {
	return c.backend.Close(ctx)
}

// Health probes the backend.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.backend.IsAvailable(ctx) {
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: c.backend.Name()}
	}
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusUnhealthy,
		Message: c.backend.Name() + " is not available",
	}
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	details := c.backend.Name()
	if d, ok := c.backend.(interface{ Details() string }); ok {
		details = d.Details()
	}
	return component.Description{Name: "Inference Backend", Type: "inference", Details: details}
}
