// Package transcription turns a buffered audio clip into a normalized Result.
//
// Two Backend implementations exist and exactly one is chosen at startup:
// ModelBackend drives a loaded Whisper model through the Model interface,
// and ExternalBackend runs the whisper.cpp command line and reads back its
// JSON output. Dispatcher wraps the chosen backend with a single-slot gate
// so only one inference runs at a time, plus a per-call timeout.
//
//	backend := transcription.NewExternalBackend(cfg, log)
//	d := transcription.NewDispatcher(backend, transcription.DispatcherConfig{Timeout: 5 * time.Minute}, metrics, log)
//	res, err := d.Transcribe(ctx, transcription.Request{AudioPath: path, ResultBase: base})
package transcription
