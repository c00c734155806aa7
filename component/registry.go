package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/whisperd/logger"
)

// stopTimeout bounds each component's Stop call.
const stopTimeout = 10 * time.Second

type slot struct {
	c       Component
	running bool
}

// Registry starts components in registration order and stops them in
// reverse. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	slots  []*slot
	byName map[string]*slot
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*slot)}
}

// Register appends c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %s already registered", name)
	}
	s := &slot{c: c}
	r.slots = append(r.slots, s)
	r.byName[name] = s
	logger.Debug("component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts, in registration order, every component not yet started.
// Calling it again after registering more components starts only those.
// It stops at the first failure and leaves earlier components running.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.slots {
		if s.running {
			continue
		}
		name := s.c.Name()
		if err := s.c.Start(ctx); err != nil {
			logger.Error("component failed to start", logger.Fields(logger.FieldComponent, name, logger.FieldError, err.Error()))
			return fmt.Errorf("start %s: %w", name, err)
		}
		s.running = true
		logger.Debug("component started", logger.Fields(logger.FieldComponent, name))
	}
	return nil
}

// StopAll stops running components in reverse registration order, giving
// each at most stopTimeout. Every component gets its Stop call even when an
// earlier one fails; the failures are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.slots) - 1; i >= 0; i-- {
		s := r.slots[i]
		if !s.running {
			continue
		}
		name := s.c.Name()
		stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
		err := s.c.Stop(stopCtx)
		cancel()
		s.running = false
		if err != nil {
			logger.Error("component failed to stop", logger.Fields(logger.FieldComponent, name, logger.FieldError, err.Error()))
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
			continue
		}
		logger.Debug("component stopped", logger.Fields(logger.FieldComponent, name))
	}
	return errors.Join(errs...)
}

// HealthAll collects Health from every component in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, 0, len(r.slots))
	for _, s := range r.slots {
		out = append(out, s.c.Health(ctx))
	}
	return out
}

// Unhealthy returns the reports whose status is not StatusHealthy.
func (r *Registry) Unhealthy(ctx context.Context) []Health {
	var out []Health
	for _, h := range r.HealthAll(ctx) {
		if h.Status != StatusHealthy {
			out = append(out, h)
		}
	}
	return out
}

// Get returns the named component, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.byName[name]; ok {
		return s.c
	}
	return nil
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.c
	}
	return out
}
