package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/whisperd/errors"
)

const tracerName = "github.com/kbukum/whisperd"

// Span names carry SpanPrefix; attributes use these keys.
const (
	SpanPrefix = "whisperd."

	AttrStage     = "whisperd.stage"
	AttrBackend   = "whisperd.backend"
	AttrSegments  = "whisperd.segments"
	AttrRequestID = "request.id"
	AttrErrorCode = "error.code"
)

// StartSpan starts a span on the global tracer provider.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// StartStage opens the span for one step of handling a request. Call the
// returned func exactly once with the step's error. A non-nil error marks
// the span failed, and an *errors.AppError also sets AttrErrorCode.
func StartStage(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	attrs = append([]attribute.KeyValue{attribute.String(AttrStage, stage)}, attrs...)
	ctx, span := StartSpan(ctx, SpanPrefix+stage, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			if appErr, ok := apperrors.AsAppError(err); ok {
				span.SetAttributes(attribute.String(AttrErrorCode, string(appErr.Code)))
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// SetSpanAttribute sets key on the span in ctx if it is recording. Values
// other than string, int, int64, float64 and bool are dropped.
func SetSpanAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	var kv attribute.KeyValue
	switch v := value.(type) {
	case string:
		kv = attribute.String(key, v)
	case int:
		kv = attribute.Int(key, v)
	case int64:
		kv = attribute.Int64(key, v)
	case float64:
		kv = attribute.Float64(key, v)
	case bool:
		kv = attribute.Bool(key, v)
	default:
		return
	}
	span.SetAttributes(kv)
}
