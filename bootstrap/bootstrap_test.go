package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/whisperd/component"
	"github.com/kbukum/whisperd/config"
	"github.com/kbukum/whisperd/logger"
)

type testConfig struct {
	config.ServiceConfig
}

func newConfig(name string) *testConfig {
	return &testConfig{ServiceConfig: config.ServiceConfig{Name: name, Version: "1.0.0", Environment: "development"}}
}

func newApp(t *testing.T, cfg *testConfig, opts ...Option) *App[*testConfig] {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewWithWriter(io.Discard, cfg.Name))}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

// stub is a component whose lifecycle calls go into a shared trace.
type stub struct {
	name     string
	status   component.HealthStatus
	message  string
	startErr error
	trace    *[]string
	started  bool
	stopped  bool
}

func (s *stub) Name() string { return s.name }

func (s *stub) Start(context.Context) error {
	s.started = true
	s.record("start " + s.name)
	return s.startErr
}

func (s *stub) Stop(context.Context) error {
	s.stopped = true
	s.record("stop " + s.name)
	return nil
}

func (s *stub) Health(context.Context) component.Health {
	status := s.status
	if status == "" {
		status = component.StatusHealthy
	}
	return component.Health{Name: s.name, Status: status, Message: s.message}
}

func (s *stub) record(event string) {
	if s.trace != nil {
		*s.trace = append(*s.trace, event)
	}
}

func TestNewApp(t *testing.T) {
	app := newApp(t, newConfig("whisperd"))
	if app.Name != "whisperd" || app.Version != "1.0.0" || app.Cfg.Name != "whisperd" {
		t.Errorf("unexpected app %+v", app)
	}
	if app.shutdownTimeout != config.DefaultShutdownTimeout {
		t.Errorf("expected default shutdown timeout, got %v", app.shutdownTimeout)
	}
	if logger.GetGlobalLogger() != app.Logger {
		t.Error("expected the app logger to become global")
	}

	if _, err := NewApp(&testConfig{ServiceConfig: config.ServiceConfig{Environment: "development"}}); err == nil {
		t.Error("expected a config without a name to be rejected")
	}
}

func TestShutdownTimeout(t *testing.T) {
	cfg := newConfig("whisperd")
	cfg.ShutdownTimeout = 2 * time.Second
	if got := newApp(t, cfg).shutdownTimeout; got != 2*time.Second {
		t.Errorf("expected configured 2s, got %v", got)
	}
	if got := newApp(t, newConfig("whisperd"), WithShutdownTimeout(5*time.Second)).shutdownTimeout; got != 5*time.Second {
		t.Errorf("expected option to win, got %v", got)
	}
}

func TestRunHooks(t *testing.T) {
	var calls []string
	hook := func(name string, err error) Hook {
		return func(context.Context) error {
			calls = append(calls, name)
			return err
		}
	}

	if err := runHooks(context.Background(), "start", []Hook{hook("a", nil), hook("b", nil)}); err != nil {
		t.Fatalf("runHooks: %v", err)
	}
	err := runHooks(context.Background(), "stop", []Hook{hook("c", nil), hook("d", errors.New("flush failed")), hook("e", nil)})
	if err == nil || err.Error() != "stop hook #2: flush failed" {
		t.Errorf("unexpected error %v", err)
	}
	if !slices.Equal(calls, []string{"a", "b", "c", "d"}) {
		t.Errorf("expected hooks to stop at the failure, got %v", calls)
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name  string
		stubs []*stub
		want  string
	}{
		{"empty", nil, ""},
		{"healthy", []*stub{{name: "inference"}, {name: "http-server"}}, ""},
		{"unhealthy", []*stub{{name: "inference"}, {name: "http-server", status: component.StatusUnhealthy, message: "timeout"}}, "http-server=unhealthy (timeout)"},
		{"degraded", []*stub{{name: "observability", status: component.StatusDegraded}}, "observability=degraded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp(t, newConfig("whisperd"))
			for _, s := range tc.stubs {
				if err := app.RegisterComponent(s); err != nil {
					t.Fatal(err)
				}
			}
			err := app.ReadyCheck(context.Background())
			switch {
			case tc.want == "" && err != nil:
				t.Errorf("unexpected error %v", err)
			case tc.want != "" && (err == nil || !strings.Contains(err.Error(), tc.want)):
				t.Errorf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestRunPhases(t *testing.T) {
	var trace []string
	app := newApp(t, newConfig("whisperd"), WithShutdownTimeout(time.Second))
	srv := &stub{name: "http-server", trace: &trace}
	if err := app.RegisterComponent(&stub{name: "inference", trace: &trace}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.OnStart(func(context.Context) error { trace = append(trace, "on start"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		trace = append(trace, "configure "+a.Cfg.Name)
		return a.RegisterComponent(srv)
	})
	app.OnReady(func(context.Context) error {
		trace = append(trace, "on ready")
		cancel()
		return nil
	})
	app.OnStop(func(context.Context) error { trace = append(trace, "on stop"); return nil })

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{
		"start inference", "on start", "configure whisperd", "start http-server",
		"on ready", "on stop", "stop http-server", "stop inference",
	}
	if !slices.Equal(trace, want) {
		t.Errorf("phases\n got %v\nwant %v", trace, want)
	}
}

func TestRunStartupFailures(t *testing.T) {
	t.Run("component start", func(t *testing.T) {
		app := newApp(t, newConfig("whisperd"))
		_ = app.RegisterComponent(&stub{name: "inference", startErr: errors.New("whispercpp binary not found")})
		if err := app.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "whispercpp binary not found") {
			t.Fatalf("unexpected error %v", err)
		}
	})

	t.Run("configure stops started components", func(t *testing.T) {
		app := newApp(t, newConfig("whisperd"))
		c := &stub{name: "inference"}
		_ = app.RegisterComponent(c)
		app.OnConfigure(func(context.Context, *App[*testConfig]) error { return errors.New("route wiring failed") })
		if err := app.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "configure: route wiring failed") {
			t.Fatalf("unexpected error %v", err)
		}
		if !c.stopped {
			t.Error("expected the started component to be stopped")
		}
	})
}

func TestStopRunsComponentsAfterHookError(t *testing.T) {
	app := newApp(t, newConfig("whisperd"))
	c := &stub{name: "inference"}
	_ = app.RegisterComponent(c)
	if err := app.Components.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	app.OnStop(func(context.Context) error { return errors.New("flush failed") })

	if err := app.stop(); err == nil || !strings.Contains(err.Error(), "flush failed") {
		t.Errorf("expected stop hook error, got %v", err)
	}
	if !c.stopped {
		t.Error("expected component stopped despite hook error")
	}
}

func TestWaitForSignalReturnsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sig := newApp(t, newConfig("whisperd")).WaitForSignal(ctx); sig != nil {
		t.Errorf("expected nil signal, got %v", sig)
	}
}

type described struct{ stub }

func (d *described) Describe() component.Description {
	return component.Description{Name: "Inference Backend", Type: "inference", Details: "whisper.cpp", Port: 0}
}

func TestLogSummary(t *testing.T) {
	var buf lockedBuffer
	app := newApp(t, newConfig("whisperd"), WithLogger(logger.NewWithWriter(&buf, "whisperd")))
	_ = app.RegisterComponent(&described{stub{name: "inference"}})
	_ = app.RegisterComponent(&stub{name: "plain"})

	app.logSummary(3 * time.Millisecond)

	out := buf.String()
	for _, want := range []string{`"label":"Inference Backend"`, `"kind":"inference"`, `"startup_ms":3`, `"components":2`} {
		if !strings.Contains(out, want) {
			t.Errorf("summary lacks %s: %s", want, out)
		}
	}
	if strings.Contains(out, `"component":"plain"`) {
		t.Error("components without a description should not be listed")
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
