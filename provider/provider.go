package provider

import "context"

// Provider is a named backend that can report whether it is ready to serve.
type Provider interface {
	Name() string
	IsAvailable(ctx context.Context) bool
}

// Factory builds a provider from a loosely typed config section, usually
// decoded with mapstructure.
type Factory[T Provider] func(cfg map[string]any) (T, error)
