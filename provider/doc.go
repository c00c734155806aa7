// Package provider lets whisperd pick a backend implementation by name.
//
// A Provider has a name and an availability check. Registry maps names to
// factories, so the model runtime is chosen from configuration at startup:
//
//	reg := transcription.NewModelRegistry()
//	reg.RegisterFactory(whisper.ProviderName, whisper.Factory())
//	m, err := reg.Create(cfg.ModelRuntime, map[string]any{"model": "base"})
//
// Initializable and Closeable are opt-in lifecycle hooks.
package provider
