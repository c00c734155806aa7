// Command whisperd serves POST /transcribe: it buffers an uploaded clip,
// skips clips that hold no speech, and otherwise runs one Whisper
// inference at a time on the configured backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/whisperd/api"
	"github.com/kbukum/whisperd/bootstrap"
	"github.com/kbukum/whisperd/config"
	"github.com/kbukum/whisperd/logger"
	"github.com/kbukum/whisperd/observability"
	"github.com/kbukum/whisperd/pipeline"
	"github.com/kbukum/whisperd/server"
	"github.com/kbukum/whisperd/transcription"
	"github.com/kbukum/whisperd/transcription/whisper"
	"github.com/kbukum/whisperd/version"
)

func main() {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, config.WithDefaults(loaderDefaults())); err != nil {
		fmt.Fprintf(os.Stderr, "whisperd: %v\n", err)
		os.Exit(1)
	}
	if cfg.Version == "" {
		cfg.Version = version.Version
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "whisperd: %v\n", err)
		os.Exit(1)
	}
	app.Logger.Info("build", logger.Fields("build", version.Get().String()))

	if err := wire(app); err != nil {
		app.Logger.Fatal("wiring failed", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := app.Run(context.Background()); err != nil {
		app.Logger.Fatal("whisperd stopped with error", logger.Fields(logger.FieldError, err.Error()))
	}
}

// wire registers the telemetry and inference components, then mounts the
// HTTP surface once telemetry has started.
func wire(app *bootstrap.App[*Config]) error {
	cfg := app.Cfg
	log := app.Logger

	obs := observability.NewComponent(cfg.Observability, cfg.Name, cfg.Version, cfg.Environment)
	if err := app.RegisterComponent(obs); err != nil {
		return err
	}

	backend, err := newBackend(cfg, log)
	if err != nil {
		return err
	}
	if err := app.RegisterComponent(transcription.NewComponent(backend, log)); err != nil {
		return err
	}

	app.OnConfigure(func(_ context.Context, a *bootstrap.App[*Config]) error {
		metrics := obs.Metrics()
		dispatcher := transcription.NewDispatcher(backend, cfg.Inference, metrics, log)
		proc := pipeline.NewTranscriber(pipeline.Config{
			TempDir:   cfg.Upload.TempDir,
			ChunkSize: cfg.Upload.ChunkSize,
			Silence:   cfg.Segmenter,
		}, dispatcher, metrics, log)

		srv := server.New(cfg.Server, log)
		api.NewTranscribeHandler(proc, cfg.Upload.Field, metrics, log).Register(srv.GinEngine())
		srv.RegisterDefaultEndpoints(a.Name, a.Components.HealthAll, func() map[string]any {
			return map[string]any{
				"backend": backend.Name(),
				"model":   cfg.modelName(),
				"busy":    dispatcher.Busy(),
			}
		})
		return a.RegisterComponent(server.NewComponent(srv))
	})
	return nil
}

// newBackend picks the in-process model when whisper.model is set and the
// whisper.cpp executable otherwise.
func newBackend(cfg *Config, log *logger.Logger) (transcription.Backend, error) {
	if !cfg.UsesModel() {
		return transcription.NewExternalBackend(cfg.WhisperCpp, log), nil
	}
	models := transcription.NewModelRegistry()
	models.RegisterFactory(whisper.ProviderName, whisper.Factory())
	model, err := models.Create(cfg.ModelRuntime, cfg.modelConfig())
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", cfg.ModelRuntime, err)
	}
	return transcription.NewModelBackend(model, log), nil
}
