package transcription

import (
	"context"
	"errors"

	apperrors "github.com/kbukum/whisperd/errors"
	"github.com/kbukum/whisperd/logger"
	"github.com/kbukum/whisperd/provider"
	"github.com/kbukum/whisperd/util"
	"github.com/kbukum/whisperd/validation"
)

var (
	_ Backend                = (*ModelBackend)(nil)
	_ provider.Initializable = (*ModelBackend)(nil)
)

// ModelBackend transcribes with a model held for the process lifetime.
type ModelBackend struct {
	model Model
	log   *logger.Logger
}

// NewModelBackend wraps model as a Backend.
func NewModelBackend(model Model, log *logger.Logger) *ModelBackend {
	return &ModelBackend{
		model: model,
		log:   log.WithComponent("model-backend"),
	}
}

// Name returns the model runtime name.
func (b *ModelBackend) Name() string { return b.model.Name() }

// IsAvailable reports whether the model can serve requests.
func (b *ModelBackend) IsAvailable(ctx context.Context) bool {
	return b.model.IsAvailable(ctx)
}

// Init loads or waits for the model when it supports initialization.
func (b *ModelBackend) Init(ctx context.Context) error {
	if m, ok := b.model.(provider.Initializable); ok {
		return m.Init(ctx)
	}
	return nil
}

// Close releases the model handle.
func (b *ModelBackend) Close(ctx context.Context) error {
	if m, ok := b.model.(provider.Closeable); ok {
		return m.Close(ctx)
	}
	return nil
}

// Details describes the backend for the startup summary.
func (b *ModelBackend) Details() string {
	return "in-process model " + b.model.Name()
}

// Transcribe translates the clip to English text. Diagnostics are copied
// from the first segment the model produced.
func (b *ModelBackend) Transcribe(ctx context.Context, req Request) (*Result, error) {
	out, err := b.model.Transcribe(ctx, req.AudioPath, ModelOptions{Task: TaskTranslate})
	if err != nil {
		return nil, b.classify(ctx, err)
	}
	if out == nil {
		return nil, apperrors.ResultParseFailed("model returned no output", nil)
	}
	if err := validation.Validate(out); err != nil {
		return nil, parseError("model output has unexpected shape", err)
	}

	res := &Result{
		Transcription: out.Text,
		Language:      out.Language,
	}
	if len(out.Segments) > 0 {
		first := out.Segments[0]
		res.Temperature = util.Ptr(first.Temperature)
		res.NoSpeechProb = util.Ptr(first.NoSpeechProb)
	}

	b.log.Debug("model transcription", logger.Fields(
		"language", res.Language,
		"segments", len(out.Segments),
		"chars", len(res.Transcription),
	))
	return res, nil
}

func (b *ModelBackend) classify(ctx context.Context, err error) error {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout("inference").WithCause(err)
	}
	return apperrors.InferenceFailed(b.Name(), err.Error(), err)
}

// parseError converts a struct validation failure into RESULT_PARSE_FAILED,
// keeping the field-level message.
func parseError(reason string, err error) *apperrors.AppError {
	if ve, ok := apperrors.AsAppError(err); ok {
		return apperrors.ResultParseFailed(reason+": "+ve.Message, nil).WithCause(err)
	}
	return apperrors.ResultParseFailed(reason, err)
}
