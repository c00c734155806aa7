package server

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kbukum/whisperd/component"
)

const componentName = "http-server"

// Component runs a Server under the bootstrap lifecycle.
type Component struct {
	srv     *Server
	serving atomic.Bool
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

func NewComponent(s *Server) *Component { return &Component{srv: s} }

func (c *Component) Name() string { return componentName }

func (c *Component) Start(ctx context.Context) error {
	c.srv.logRoutes()
	if err := c.srv.Start(ctx); err != nil {
		return err
	}
	c.serving.Store(true)
	return nil
}

// Stop is a no-op unless the server is serving.
func (c *Component) Stop(ctx context.Context) error {
	if c.serving.Swap(false) {
		return c.srv.Stop(ctx)
	}
	return nil
}

func (c *Component) Health(context.Context) component.Health {
	h := component.Health{Name: componentName, Status: component.StatusHealthy}
	if !c.serving.Load() {
		h.Status, h.Message = component.StatusUnhealthy, "not listening"
	}
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s (%d routes)", c.srv.Addr(), len(c.srv.Routes())),
		Port:    c.srv.config.Port,
	}
}
