package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/whisperd/component"
	"github.com/kbukum/whisperd/logger"
)

// Component owns the tracer and meter providers. When disabled it serves
// no-op instruments so callers never branch on telemetry being on.
type Component struct {
	cfg     Config
	service string
	version string
	env     string

	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	metrics *Metrics
}

var _ component.Component = (*Component)(nil)

// NewComponent creates the telemetry component.
func NewComponent(cfg Config, service, version, env string) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, service: service, version: version, env: env}
}

// Name implements component.Component.
func (c *Component) Name() string { return "observability" }

// Start implements component.Component.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		m, err := NewMetrics(noop.NewMeterProvider().Meter(c.service))
		if err != nil {
			return err
		}
		c.metrics = m
		return nil
	}

	res, err := newResource(c.service, c.version, c.env)
	if err != nil {
		return fmt.Errorf("observability: resource: %w", err)
	}
	if c.tp, err = initTracer(ctx, c.cfg, res); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	if c.mp, err = initMeter(ctx, c.cfg, res); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	logger.Info("telemetry exporting", logger.Fields(
		"endpoint", c.cfg.Endpoint,
		"sample_rate", c.cfg.SampleRate,
		"interval", c.cfg.Interval.String(),
	))

	m, err := NewMetrics(c.mp.Meter(c.service))
	if err != nil {
		return err
	}
	c.metrics = m
	return nil
}

// Stop flushes and shuts down the providers.
func (c *Component) Stop(ctx context.Context) error {
	var errs []error
	if c.tp != nil {
		errs = append(errs, c.tp.Shutdown(ctx))
	}
	if c.mp != nil {
		errs = append(errs, c.mp.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn("telemetry shutdown incomplete", logger.ErrorFields("shutdown", err))
		return err
	}
	return nil
}

// Health implements component.Component.
func (c *Component) Health(_ context.Context) component.Health {
	status := component.StatusHealthy
	msg := "disabled"
	if c.cfg.Enabled {
		msg = "exporting to " + c.cfg.Endpoint
		if c.tp == nil {
			status = component.StatusDegraded
			msg = "not started"
		}
	}
	return component.Health{Name: c.Name(), Status: status, Message: msg}
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	details := "disabled"
	if c.cfg.Enabled {
		details = "otlp " + c.cfg.Endpoint
	}
	return component.Description{Name: "Telemetry", Type: "observability", Details: details}
}

// Metrics returns the instruments. Nil before Start; Metrics methods accept a nil receiver.
func (c *Component) Metrics() *Metrics { return c.metrics }
