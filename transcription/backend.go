package transcription

import (
	"context"

	"github.com/kbukum/whisperd/provider"
)

// Backend is a speech-to-text strategy. Implementations need not be safe for
// concurrent Transcribe calls; Dispatcher serializes them.
type Backend interface {
	provider.Provider
	provider.Closeable

	// Transcribe runs inference on req.AudioPath.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}

// Interruptible is a Backend whose Transcribe returns only after its work has
// stopped, even when ctx is cancelled. Dispatcher hands other backends a
// context detached from the caller.
type Interruptible interface {
	Backend
	StopsOnCancel() bool
}

func stopsOnCancel(b Backend) bool {
	i, ok := b.(Interruptible)
	return ok && i.StopsOnCancel()
}

// Model is a loaded speech-to-text model. Implementations may also satisfy
// provider.Initializable (called once at startup) and provider.Closeable.
type Model interface {
	provider.Provider

	// Transcribe runs the model over the audio file at path.
	Transcribe(ctx context.Context, path string, opts ModelOptions) (*ModelOutput, error)
}

// NewModelRegistry creates a registry of Model factories keyed by runtime name.
func NewModelRegistry() *provider.Registry[Model] {
	return provider.NewRegistry[Model]()
}
