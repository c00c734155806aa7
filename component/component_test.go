package component

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

// journal records lifecycle calls across fakes.
type journal []string

type fake struct {
	name     string
	status   HealthStatus
	startErr error
	stopErr  error
	log      *journal
}

func (f *fake) Name() string { return f.name }

func (f *fake) note(event string) {
	if f.log != nil {
		*f.log = append(*f.log, event+" "+f.name)
	}
}

func (f *fake) Start(context.Context) error {
	f.note("start")
	return f.startErr
}

func (f *fake) Stop(context.Context) error {
	f.note("stop")
	return f.stopErr
}

func (f *fake) Health(context.Context) Health {
	return Health{Name: f.name, Status: f.status}
}

func register(t *testing.T, r *Registry, cs ...Component) {
	t.Helper()
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			t.Fatalf("Register(%s): %v", c.Name(), err)
		}
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	register(t, r, &fake{name: "inference"}, &fake{name: "http-server"})

	if err := r.Register(&fake{name: "inference"}); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
	if c := r.Get("inference"); c == nil || c.Name() != "inference" {
		t.Errorf("Get(inference) = %v", c)
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for an unknown name")
	}
	var names []string
	for _, c := range r.All() {
		names = append(names, c.Name())
	}
	if !slices.Equal(names, []string{"inference", "http-server"}) {
		t.Errorf("All() order = %v", names)
	}
}

func TestLifecycleOrder(t *testing.T) {
	var log journal
	r := NewRegistry()
	register(t, r,
		&fake{name: "observability", log: &log},
		&fake{name: "inference", log: &log},
	)
	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	// Registered during configure, started by the second pass only.
	register(t, r, &fake{name: "http-server", log: &log})
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("second StartAll: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("second StopAll: %v", err)
	}

	want := journal{
		"start observability", "start inference", "start http-server",
		"stop http-server", "stop inference", "stop observability",
	}
	if !slices.Equal(log, want) {
		t.Errorf("lifecycle\n got %v\nwant %v", log, want)
	}
}

func TestStartAllStopsAtFirstFailure(t *testing.T) {
	var log journal
	r := NewRegistry()
	register(t, r,
		&fake{name: "inference", startErr: errors.New("whispercpp binary not found"), log: &log},
		&fake{name: "http-server", log: &log},
	)
	err := r.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "start inference: whispercpp binary not found") {
		t.Fatalf("unexpected error %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if !slices.Equal(log, journal{"start inference"}) {
		t.Errorf("expected nothing else started or stopped, got %v", log)
	}
}

func TestStopAllJoinsErrors(t *testing.T) {
	errStuck := errors.New("listener stuck")
	r := NewRegistry()
	register(t, r,
		&fake{name: "inference", stopErr: errors.New("stop failed")},
		&fake{name: "http-server", stopErr: errStuck},
	)
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	err := r.StopAll(context.Background())
	if !errors.Is(err, errStuck) {
		t.Fatalf("expected joined error to wrap errStuck, got %v", err)
	}
	for _, want := range []string{"stop inference: stop failed", "stop http-server: listener stuck"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err)
		}
	}
}

func TestHealth(t *testing.T) {
	r := NewRegistry()
	register(t, r, &fake{name: "inference", status: StatusHealthy})
	if got := r.Unhealthy(context.Background()); len(got) != 0 {
		t.Errorf("expected no unhealthy components, got %v", got)
	}

	register(t, r, &fake{name: "http-server", status: StatusDegraded})
	all := r.HealthAll(context.Background())
	if len(all) != 2 || all[0].Status != StatusHealthy || all[1].Status != StatusDegraded {
		t.Errorf("HealthAll = %v", all)
	}
	got := r.Unhealthy(context.Background())
	if len(got) != 1 || got[0].Name != "http-server" {
		t.Errorf("expected the degraded server reported, got %v", got)
	}
}
