package main

import (
	"fmt"
	"time"

	"github.com/kbukum/whisperd/api"
	"github.com/kbukum/whisperd/audio"
	"github.com/kbukum/whisperd/config"
	"github.com/kbukum/whisperd/observability"
	"github.com/kbukum/whisperd/server"
	"github.com/kbukum/whisperd/transcription"
	"github.com/kbukum/whisperd/transcription/whisper"
	"github.com/kbukum/whisperd/upload"
	"github.com/kbukum/whisperd/util"
	"github.com/kbukum/whisperd/validation"
)

const serviceName = "whisperd"

const (
	defaultCppBin      = "./whispercpp_main"
	defaultCppModel    = "./ggml-base-q5_1.bin"
	defaultGracePeriod = 5 * time.Second
)

// Config is the whisperd configuration. Every key can be overridden from the
// environment, e.g. WHISPERCPP_BIN for whispercpp.bin.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	ModelRuntime  string                         `yaml:"model_runtime" mapstructure:"model_runtime"`
	Whisper       whisper.Config                 `yaml:"whisper" mapstructure:"whisper"`
	WhisperCpp    transcription.ExternalConfig   `yaml:"whispercpp" mapstructure:"whispercpp"`
	Segmenter     audio.SilenceConfig            `yaml:"segmenter" mapstructure:"segmenter"`
	Upload        UploadConfig                   `yaml:"upload" mapstructure:"upload"`
	Inference     transcription.DispatcherConfig `yaml:"inference" mapstructure:"inference"`
	Server        server.Config                  `yaml:"server" mapstructure:"server"`
	Observability observability.Config           `yaml:"observability" mapstructure:"observability"`
}

// UploadConfig controls how request bodies are buffered to disk.
type UploadConfig struct {
	ChunkSize int    `yaml:"chunk_size" mapstructure:"chunk_size" validate:"gte=0"`
	TempDir   string `yaml:"temp_dir" mapstructure:"temp_dir"`
	Field     string `yaml:"field" mapstructure:"field"`
}

// loaderDefaults are applied below the config file and the environment.
// They cover keys whose empty or zero value is itself meaningful. An empty
// whisper.model selects whisper.cpp and a zero inference.timeout disables
// the limit.
func loaderDefaults() map[string]any {
	return map[string]any{
		"name":                          serviceName,
		"whisper.model":                 "base",
		"whisper.url":                   "http://localhost:8387",
		"inference.timeout":             "5m",
		"server.cors.allow_credentials": true,
	}
}

// UsesModel reports whether the in-process model backend is selected.
func (c *Config) UsesModel() bool { return c.Whisper.Model != "" }

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.Name = util.Coalesce(c.Name, serviceName)
	c.ServiceConfig.ApplyDefaults()

	c.ModelRuntime = util.Coalesce(c.ModelRuntime, whisper.ProviderName)
	c.WhisperCpp.Bin = util.Coalesce(c.WhisperCpp.Bin, defaultCppBin)
	c.WhisperCpp.Model = util.Coalesce(c.WhisperCpp.Model, defaultCppModel)
	if c.WhisperCpp.GracePeriod == 0 {
		c.WhisperCpp.GracePeriod = defaultGracePeriod
	}

	if c.Segmenter == (audio.SilenceConfig{}) {
		c.Segmenter = audio.DefaultSilenceConfig()
	}
	if c.Upload.ChunkSize == 0 {
		c.Upload.ChunkSize = upload.DefaultChunkSize
	}
	c.Upload.Field = util.Coalesce(c.Upload.Field, api.DefaultField)

	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the base service fields, the server, and struct tags.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// modelName is the weights identifier reported on /info.
func (c *Config) modelName() string {
	if c.UsesModel() {
		return c.Whisper.Model
	}
	return c.WhisperCpp.Model
}

// modelConfig renders the whisper section as a provider factory config.
func (c *Config) modelConfig() map[string]any {
	return map[string]any{
		"url":              c.Whisper.URL,
		"model":            c.Whisper.Model,
		"language":         c.Whisper.Language,
		"timeout":          c.Whisper.Timeout.String(),
		"startup_attempts": c.Whisper.StartupAttempts,
		"startup_backoff":  c.Whisper.StartupBackoff.String(),
	}
}
