package bootstrap

import (
	"context"
	"fmt"
)

// Hook runs at a fixed point of the lifecycle.
type Hook func(ctx context.Context) error

// OnStart adds hooks that run once the initially registered components are up.
func (a *App[C]) OnStart(hooks ...Hook) { a.onStart = append(a.onStart, hooks...) }

// OnReady adds hooks that run after the HTTP surface is up and the ready
// check has been logged.
func (a *App[C]) OnReady(hooks ...Hook) { a.onReady = append(a.onReady, hooks...) }

// OnStop adds hooks that run at shutdown before any component stops.
func (a *App[C]) OnStop(hooks ...Hook) { a.onStop = append(a.onStop, hooks...) }

// runHooks stops at the first failing hook.
func runHooks(ctx context.Context, stage string, hooks []Hook) error {
	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("%s hook #%d: %w", stage, i+1, err)
		}
	}
	return nil
}
