package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"

	apperrors "github.com/kbukum/whisperd/errors"
	"github.com/kbukum/whisperd/httpclient"
	"github.com/kbukum/whisperd/provider"
	"github.com/kbukum/whisperd/resilience"
	"github.com/kbukum/whisperd/transcription"
	"github.com/kbukum/whisperd/util"
)

const (
	// ProviderName is the registered name for the Whisper runtime model.
	ProviderName = "whisper"

	runtimeName = "whisper runtime"

	defaultURL             = "http://localhost:8387"
	defaultModel           = "base"
	defaultStartupAttempts = 10
	defaultStartupBackoff  = 500 * time.Millisecond
	healthTimeout          = 5 * time.Second
)

var (
	_ transcription.Model    = (*Model)(nil)
	_ provider.Initializable = (*Model)(nil)
	_ provider.Closeable     = (*Model)(nil)
)

// Config holds configuration for the Whisper runtime model.
type Config struct {
	// URL is the runtime's base address.
	URL string `json:"url" yaml:"url" mapstructure:"url"`
	// Model is the model size or variant the runtime keeps loaded (e.g. "base").
	Model string `json:"model" yaml:"model" mapstructure:"model"`
	// Language forces the source language. Empty lets the model detect it.
	Language string `json:"language,omitempty" yaml:"language" mapstructure:"language"`
	// Timeout bounds one HTTP call. Zero leaves the caller's context in charge.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// StartupAttempts is how many health probes Init makes before giving up.
	StartupAttempts int `json:"startup_attempts" yaml:"startup_attempts" mapstructure:"startup_attempts"`
	// StartupBackoff is the initial delay between health probes.
	StartupBackoff time.Duration `json:"startup_backoff" yaml:"startup_backoff" mapstructure:"startup_backoff"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.URL = util.Coalesce(c.URL, defaultURL)
	c.Model = util.Coalesce(c.Model, defaultModel)
	if c.StartupAttempts <= 0 {
		c.StartupAttempts = defaultStartupAttempts
	}
	if c.StartupBackoff <= 0 {
		c.StartupBackoff = defaultStartupBackoff
	}
}

// Model implements transcription.Model against a locally hosted Whisper
// runtime that holds the weights in memory for the process lifetime.
type Model struct {
	cfg    Config
	client *httpclient.Client
}

// New creates a Model for the runtime at cfg.URL.
func New(cfg Config) (*Model, error) {
	cfg.ApplyDefaults()
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = -1
	}
	client, err := httpclient.New(httpclient.Config{BaseURL: cfg.URL, Timeout: timeout})
	if err != nil {
		return nil, err
	}
	return &Model{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory that builds a Model from a generic
// config map (keys as in Config's mapstructure tags).
func Factory() provider.Factory[transcription.Model] {
	return func(raw map[string]any) (transcription.Model, error) {
		var cfg Config
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			WeaklyTypedInput: true,
			Result:           &cfg,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(raw); err != nil {
			return nil, fmt.Errorf("whisper config: %w", err)
		}
		return New(cfg)
	}
}

// Name returns the provider name.
func (m *Model) Name() string { return ProviderName }

// ModelName returns the loaded model variant.
func (m *Model) ModelName() string { return m.cfg.Model }

// IsAvailable checks if the runtime answers its health endpoint.
func (m *Model) IsAvailable(ctx context.Context) bool {
	return m.health(ctx) == nil
}

// Init waits for the runtime to come up, retrying transient failures.
func (m *Model) Init(ctx context.Context) error {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = m.cfg.StartupAttempts
	retry.InitialBackoff = m.cfg.StartupBackoff
	return resilience.Retry(ctx, retry, m.health)
}

// Close releases idle connections to the runtime.
func (m *Model) Close(context.Context) error {
	m.client.CloseIdleConnections()
	return nil
}

func (m *Model) health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	_, err := m.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	if err != nil {
		return toAppError(err)
	}
	return nil
}

// Transcribe uploads the clip and returns the runtime's decoded output.
func (m *Model) Transcribe(ctx context.Context, path string, opts transcription.ModelOptions) (*transcription.ModelOutput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.InferenceFailed(ProviderName, "open audio for inference: "+err.Error(), err)
	}
	defer f.Close()

	fields := map[string]string{
		"model": m.cfg.Model,
		"task":  util.Coalesce(opts.Task, transcription.TaskTranslate),
	}
	if lang := util.Coalesce(opts.Language, m.cfg.Language); lang != "" {
		fields["language"] = lang
	}

	resp, err := m.client.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    "/transcribe",
		Headers: map[string]string{"Accept": "application/json"},
		Form: &httpclient.MultipartBody{
			Fields: fields,
			File: httpclient.FilePart{
				FieldName:   "audio",
				FileName:    filepath.Base(path),
				ContentType: "audio/wav",
				Reader:      f,
			},
		},
	})
	if err != nil {
		return nil, toAppError(err)
	}

	var out runtimeResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, apperrors.ResultParseFailed("decode whisper runtime response", err)
	}
	return out.toModelOutput(), nil
}

// --- runtime API response types ---

type runtimeResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []runtimeSegment `json:"segments"`
}

type runtimeSegment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	Temperature  float64 `json:"temperature"`
	NoSpeechProb float64 `json:"no_speech_prob"`
	AvgLogprob   float64 `json:"avg_logprob"`
}

func (r *runtimeResponse) toModelOutput() *transcription.ModelOutput {
	segments := make([]transcription.ModelSegment, len(r.Segments))
	for i, s := range r.Segments {
		segments[i] = transcription.ModelSegment{
			Start:        s.Start,
			End:          s.End,
			Text:         s.Text,
			Temperature:  s.Temperature,
			NoSpeechProb: s.NoSpeechProb,
			AvgLogprob:   s.AvgLogprob,
		}
	}
	return &transcription.ModelOutput{
		Text:     r.Text,
		Language: r.Language,
		Segments: segments,
	}
}

// toAppError maps transport failures onto the application taxonomy.
func toAppError(err error) error {
	hErr, ok := httpclient.AsError(err)
	if !ok {
		return apperrors.InferenceFailed(ProviderName, err.Error(), err)
	}
	switch hErr.Code {
	case httpclient.ErrCodeTimeout:
		return apperrors.Timeout(runtimeName).WithCause(err)
	case httpclient.ErrCodeConnection, httpclient.ErrCodeUnavailable:
		return apperrors.ServiceUnavailable(runtimeName).WithCause(err)
	}
	msg := fmt.Sprintf("%s error (HTTP %d)", runtimeName, hErr.StatusCode)
	if len(hErr.Body) > 0 {
		msg += ": " + util.Truncate(string(hErr.Body), 2048)
	}
	return apperrors.InferenceFailed(ProviderName, msg, err)
}
