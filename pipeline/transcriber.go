package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/whisperd/audio"
	apperrors "github.com/kbukum/whisperd/errors"
	"github.com/kbukum/whisperd/logger"
	"github.com/kbukum/whisperd/observability"
	"github.com/kbukum/whisperd/transcription"
	"github.com/kbukum/whisperd/upload"
)

// Stage names used for spans, logs, and error details.
const (
	StageUpload    = "upload"
	StageDecode    = "decode"
	StageSegment   = "segment"
	StageInference = "inference"
)

// DetailStage is the AppError detail key naming the stage that failed.
const DetailStage = "stage"

const resultBaseName = "result"

// Config tunes the request pipeline.
type Config struct {
	// TempDir is where per-request working directories are created. Empty uses os.TempDir.
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
	// ChunkSize is the upload read size in bytes.
	ChunkSize int `yaml:"chunk_size" mapstructure:"chunk_size" validate:"gte=0"`
	// Silence holds the segmenter thresholds.
	Silence audio.SilenceConfig `yaml:"silence" mapstructure:"silence"`
}

// Dispatcher is the inference entry point the pipeline hands clips to.
type Dispatcher interface {
	Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error)
}

// Transcriber turns an uploaded clip into a transcription result.
type Transcriber struct {
	cfg        Config
	dispatcher Dispatcher
	metrics    *observability.Metrics
	log        *logger.Logger
}

// NewTranscriber creates a Transcriber. metrics may be nil.
func NewTranscriber(cfg Config, dispatcher Dispatcher, metrics *observability.Metrics, log *logger.Logger) *Transcriber {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = upload.DefaultChunkSize
	}
	if cfg.Silence == (audio.SilenceConfig{}) {
		cfg.Silence = audio.DefaultSilenceConfig()
	}
	return &Transcriber{
		cfg:        cfg,
		dispatcher: dispatcher,
		metrics:    metrics,
		log:        log.WithComponent("pipeline"),
	}
}

// Process buffers src, segments it, and transcribes it when it holds speech.
// A clip with no speech yields transcription.Silent without touching the backend.
func (t *Transcriber) Process(ctx context.Context, src io.Reader, filename string) (*transcription.Result, error) {
	dir, err := t.workDir()
	if err != nil {
		return nil, tagStage(apperrors.Internal(err), StageUpload)
	}
	defer t.cleanup(ctx, dir)

	path, err := t.receive(ctx, src, filename, dir)
	if err != nil {
		return nil, err
	}

	clip, err := t.decode(ctx, path)
	if err != nil {
		return nil, err
	}

	segments := t.segment(ctx, clip)
	if len(segments) == 0 {
		t.log.WithContext(ctx).Debug("no speech detected, skipping inference", logger.Fields(
			"clip_ms", clip.DurationMs(),
		))
		return transcription.Silent(), nil
	}

	res, err := t.dispatcher.Transcribe(ctx, transcription.Request{
		AudioPath:  path,
		ResultBase: filepath.Join(dir, resultBaseName),
	})
	if err != nil {
		return nil, tagStage(err, StageInference)
	}
	if res == nil {
		return nil, tagStage(apperrors.ResultParseFailed("backend returned no result", nil), StageInference)
	}
	return res, nil
}

func (t *Transcriber) receive(ctx context.Context, src io.Reader, filename, dir string) (string, error) {
	ctx, end := observability.StartStage(ctx, StageUpload)
	path, err := upload.Receive(ctx, src, filename, dir, t.cfg.ChunkSize)
	end(err)
	if err != nil {
		return "", tagStage(err, StageUpload)
	}
	return path, nil
}

func (t *Transcriber) decode(ctx context.Context, path string) (*audio.DecodedAudio, error) {
	_, end := observability.StartStage(ctx, StageDecode)
	clip, err := audio.Decode(path)
	end(err)
	if err != nil {
		return nil, tagStage(err, StageDecode)
	}
	return clip, nil
}

func (t *Transcriber) segment(ctx context.Context, clip *audio.DecodedAudio) []audio.Segment {
	ctx, end := observability.StartStage(ctx, StageSegment)
	defer end(nil)

	started := time.Now()
	segments := audio.Split(clip, t.cfg.Silence)
	observability.SetSpanAttribute(ctx, observability.AttrSegments, len(segments))
	t.metrics.RecordSegments(ctx, len(segments))
	t.log.Debug("audio segmented", logger.Fields(
		"segments", len(segments),
		"sample_rate", clip.SampleRate,
		"sample_width", clip.SampleWidth,
		"source_channels", clip.SourceChannels,
		logger.FieldDuration, time.Since(started).Milliseconds(),
	))
	return segments
}

func (t *Transcriber) workDir() (string, error) {
	base := t.cfg.TempDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "whisperd-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func (t *Transcriber) cleanup(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		t.log.WithContext(ctx).Warn("failed to remove working directory", logger.Fields(
			"dir", dir, logger.FieldError, err.Error(),
		))
	}
}

// tagStage converts err to an AppError carrying the failing stage.
func tagStage(err error, stage string) error {
	appErr := apperrors.Wrap(err)
	if _, ok := appErr.Details[DetailStage]; !ok {
		appErr.WithDetail(DetailStage, stage)
	}
	return appErr
}
