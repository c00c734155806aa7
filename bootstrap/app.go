package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/whisperd/component"
	"github.com/kbukum/whisperd/logger"
)

// App owns the component registry and drives the service through its
// phases: start components, run configure callbacks (which may register
// more components, such as the HTTP server), report readiness, then block
// until SIGINT, SIGTERM or ctx cancellation and stop everything in reverse.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger

	shutdownTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error
	onStart         []Hook
	onReady         []Hook
	onStop          []Hook
}

// NewApp applies config defaults, validates, and sets up logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	base := cfg.Base()

	s := settings{shutdownTimeout: base.ShutdownTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		logger.Init(&base.Logging, base.Name)
		s.logger = logger.GetGlobalLogger()
	} else {
		logger.SetGlobalLogger(s.logger)
	}

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Logger:          s.logger,
		shutdownTimeout: s.shutdownTimeout,
	}, nil
}

// RegisterComponent adds c to the registry. Components registered before Run
// start in the first phase; those registered by a configure callback start
// right after the callbacks return.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure adds a callback that runs once the first components are up,
// typically to build handlers over them.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck returns an error naming every component that is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []string
	for _, h := range a.Components.Unhealthy(ctx) {
		entry := fmt.Sprintf("%s=%s", h.Name, h.Status)
		if h.Message != "" {
			entry += " (" + h.Message + ")"
		}
		bad = append(bad, entry)
	}
	if len(bad) > 0 {
		return errors.New("not ready: " + strings.Join(bad, ", "))
	}
	return nil
}

// Run starts the service and blocks until it is told to stop. A failed
// startup still stops whatever had started.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		if stopErr := a.stop(); stopErr != nil {
			a.Logger.Error("stop after failed startup", logger.Fields(logger.FieldError, stopErr.Error()))
		}
		return err
	}
	a.WaitForSignal(ctx)
	return a.stop()
}

func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("starting", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("start components: %w", err)
	}
	if err := runHooks(ctx, "start", a.onStart); err != nil {
		return err
	}

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configure: %w", err)
		}
	}
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("start configured components: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, "ready", a.onReady); err != nil {
		return err
	}

	a.logSummary(time.Since(began))
	return nil
}

// WaitForSignal blocks until SIGINT or SIGTERM arrives, returning it, or
// until ctx ends, returning nil.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)

	select {
	case sig := <-ch:
		a.Logger.Info("shutdown requested", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context done, shutting down")
		return nil
	}
}

// stop runs the stop hooks, then stops components in reverse order, all
// within the shutdown timeout. Both steps always run.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.Logger.Info("stopping", logger.Fields("timeout", a.shutdownTimeout.String()))
	err := errors.Join(
		runHooks(ctx, "stop", a.onStop),
		a.Components.StopAll(ctx),
	)
	if err != nil {
		a.Logger.Error("stopped with errors", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	a.Logger.Info("stopped")
	return nil
}
