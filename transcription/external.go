package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "github.com/kbukum/whisperd/errors"
	"github.com/kbukum/whisperd/logger"
	"github.com/kbukum/whisperd/process"
	"github.com/kbukum/whisperd/util"
	"github.com/kbukum/whisperd/validation"
)

// ExternalName is the backend name reported in errors, logs and metrics.
const ExternalName = "whisper.cpp"

var _ Interruptible = (*ExternalBackend)(nil)

// ExternalConfig locates the whisper.cpp executable and its weights.
type ExternalConfig struct {
	Bin         string        `yaml:"bin" mapstructure:"bin" validate:"required"`
	Model       string        `yaml:"model" mapstructure:"model" validate:"required"`
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period" validate:"gte=0"`
}

// ExternalBackend runs whisper.cpp once per clip and reads the JSON file it writes.
type ExternalBackend struct {
	cfg  ExternalConfig
	proc *process.Adapter
	log  *logger.Logger
}

// NewExternalBackend creates a backend for the configured binary.
func NewExternalBackend(cfg ExternalConfig, log *logger.Logger) *ExternalBackend {
	return &ExternalBackend{
		cfg: cfg,
		proc: process.NewAdapter(process.Config{
			Name:        ExternalName,
			Binary:      cfg.Bin,
			GracePeriod: cfg.GracePeriod,
		}),
		log: log.WithComponent("external-backend"),
	}
}

// Name returns "whisper.cpp".
func (b *ExternalBackend) Name() string { return ExternalName }

// IsAvailable reports whether the binary is executable and the weights exist.
func (b *ExternalBackend) IsAvailable(ctx context.Context) bool {
	if !b.proc.IsAvailable(ctx) {
		return false
	}
	info, err := os.Stat(b.cfg.Model)
	return err == nil && !info.IsDir()
}

// StopsOnCancel reports true: a cancelled call kills and reaps whisper.cpp
// before Transcribe returns.
func (b *ExternalBackend) StopsOnCancel() bool { return true }

// Close is a no-op; each call owns its own process.
func (b *ExternalBackend) Close(context.Context) error { return nil }

// Details describes the backend for the startup summary.
func (b *ExternalBackend) Details() string {
	return ExternalName + " " + b.cfg.Model
}

// Transcribe runs whisper.cpp with automatic language detection and JSON
// output to req.ResultBase, then reads req.ResultBase + ".json".
func (b *ExternalBackend) Transcribe(ctx context.Context, req Request) (*Result, error) {
	if req.ResultBase == "" {
		return nil, apperrors.Internal(errors.New("whisper.cpp needs a result path"))
	}

	args := []string{
		"-m", b.cfg.Model,
		"-l", "auto",
		"-oj",
		"-of", req.ResultBase,
		req.AudioPath,
	}
	res, err := b.proc.Run(ctx, args...)
	if res != nil && len(res.Stdout) > 0 {
		b.log.Debug("whisper.cpp output", logger.Fields(
			"stdout", util.Truncate(string(res.Stdout), 4096),
			"duration_ms", res.Duration.Milliseconds(),
		))
	}
	if err != nil {
		return nil, b.runError(res, err)
	}

	return readCppResult(req.ResultBase + ".json")
}

func (b *ExternalBackend) runError(res *process.Result, err error) error {
	switch {
	case errors.Is(err, process.ErrKilled):
		return apperrors.Timeout("whisper.cpp inference").WithCause(err)
	case errors.Is(err, process.ErrNotStarted):
		return apperrors.InferenceFailed(ExternalName,
			"whisper.cpp could not be started: "+err.Error(), err)
	case res == nil:
		return apperrors.InferenceFailed(ExternalName, err.Error(), err)
	default:
		return apperrors.InferenceFailed(ExternalName,
			fmt.Sprintf("whisper.cpp [%d]:\n%s", res.ExitCode, res.StderrText()), err)
	}
}

type cppOutput struct {
	Transcription []cppSegment `json:"transcription" validate:"required,min=1,dive"`
	Result        *cppResult   `json:"result" validate:"required"`
}

type cppSegment struct {
	Text *string `json:"text" validate:"required"`
}

type cppResult struct {
	Language string `json:"language" validate:"required"`
}

func readCppResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ResultParseFailed("read whisper.cpp result", err)
	}

	var out cppOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apperrors.ResultParseFailed("parse whisper.cpp result", err)
	}
	if err := validation.Validate(&out); err != nil {
		return nil, parseError("whisper.cpp result has unexpected shape", err)
	}

	return &Result{
		Transcription: strings.TrimSpace(*out.Transcription[0].Text),
		Language:      out.Result.Language,
	}, nil
}
