package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/whisperd/component"
)

// Start starts c and stops it when the test ends. A start failure is fatal.
func Start(t testing.TB, c component.Component) {
	t.Helper()
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start %s: %v", c.Name(), err)
	}
	t.Cleanup(func() {
		if err := c.Stop(ctx); err != nil {
			t.Errorf("stop %s: %v", c.Name(), err)
		}
	})
}

// RequireHealthy fails the test unless c reports healthy.
func RequireHealthy(t testing.TB, c component.Component) {
	t.Helper()
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Fatalf("%s is %s: %s", c.Name(), h.Status, h.Message)
	}
}
