package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/whisperd/errors"
	"github.com/kbukum/whisperd/logger"
	"github.com/kbukum/whisperd/observability"
	"github.com/kbukum/whisperd/pipeline"
	"github.com/kbukum/whisperd/server"
	"github.com/kbukum/whisperd/transcription"
)

// DefaultField is the multipart field carrying the audio file.
const DefaultField = "file"

// Processor runs one clip through the pipeline.
type Processor interface {
	Process(ctx context.Context, src io.Reader, filename string) (*transcription.Result, error)
}

// TranscribeHandler serves POST /transcribe.
type TranscribeHandler struct {
	proc    Processor
	field   string
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewTranscribeHandler creates the handler. An empty field uses DefaultField;
// metrics may be nil.
func NewTranscribeHandler(proc Processor, field string, metrics *observability.Metrics, log *logger.Logger) *TranscribeHandler {
	if field == "" {
		field = DefaultField
	}
	return &TranscribeHandler{
		proc:    proc,
		field:   field,
		metrics: metrics,
		log:     log.WithComponent("api"),
	}
}

// Register mounts the handler's routes.
func (h *TranscribeHandler) Register(r gin.IRoutes) {
	r.POST("/transcribe", h.Transcribe)
}

// Transcribe handles one upload.
func (h *TranscribeHandler) Transcribe(c *gin.Context) {
	ctx, end := observability.StartStage(c.Request.Context(), "request",
		attribute.String(observability.AttrRequestID, logger.RequestIDFromContext(c.Request.Context())))
	started := time.Now()
	h.metrics.RecordRequestStart(ctx)

	res, err := h.process(ctx, c.Request)
	if err != nil {
		appErr := server.ToAppError(err)
		end(appErr)
		h.metrics.RecordRequestEnd(ctx, string(appErr.Code), time.Since(started))
		h.logFailure(ctx, appErr, time.Since(started))
		server.RespondWithError(c, appErr)
		return
	}

	end(nil)
	h.metrics.RecordRequestEnd(ctx, "ok", time.Since(started))
	h.log.WithContext(ctx).Info("Transcription complete", logger.Fields(
		"language", res.Language,
		"chars", len(res.Transcription),
		logger.FieldDuration, time.Since(started).Milliseconds(),
	))
	server.RespondOK(c, res)
}

func (h *TranscribeHandler) process(ctx context.Context, r *http.Request) (*transcription.Result, error) {
	part, err := h.filePart(r)
	if err != nil {
		return nil, err
	}
	defer part.Close()
	return h.proc.Process(ctx, part, part.FileName())
}

// filePart advances the multipart stream to the audio field without
// reading any part into memory.
func (h *TranscribeHandler) filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, stageUpload(apperrors.UploadFailed("expected a multipart/form-data body", err))
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, stageUpload(apperrors.UploadFailed("form has no \""+h.field+"\" file field", nil))
		}
		if err != nil {
			return nil, stageUpload(apperrors.UploadFailed("read multipart body", err))
		}
		if part.FormName() == h.field {
			return part, nil
		}
		_ = part.Close()
	}
}

func (h *TranscribeHandler) logFailure(ctx context.Context, appErr *apperrors.AppError, elapsed time.Duration) {
	stage, _ := appErr.Details[pipeline.DetailStage].(string)
	if stage == "" {
		stage = "request"
	}
	h.metrics.RecordError(ctx, string(appErr.Code), stage)

	fields := logger.Fields(
		logger.FieldCode, string(appErr.Code),
		logger.FieldStage, stage,
		logger.FieldStatus, appErr.HTTPStatus,
		logger.FieldError, appErr.Message,
		logger.FieldDuration, elapsed.Milliseconds(),
	)
	if appErr.Cause != nil {
		fields["cause"] = appErr.Cause.Error()
	}
	for k, v := range appErr.Details {
		if _, taken := fields[k]; !taken {
			fields[k] = v
		}
	}
	log := h.log.WithContext(ctx)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("Transcription failed", fields)
		return
	}
	log.Warn("Transcription rejected", fields)
}

func stageUpload(appErr *apperrors.AppError) *apperrors.AppError {
	return appErr.WithDetail(pipeline.DetailStage, pipeline.StageUpload)
}
