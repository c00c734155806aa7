package provider

import "context"

// Initializable providers need setup before their first request, such as
// waiting for a model runtime to finish loading. Init runs once at startup.
type Initializable interface {
	Init(ctx context.Context) error
}

// Closeable providers hold resources released at shutdown.
type Closeable interface {
	Close(ctx context.Context) error
}
