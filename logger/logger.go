package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a zerolog logger tagged with the service name.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// New builds a Logger from cfg. Unknown levels fall back to info.
func New(cfg *Config, service string) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := writerFor(cfg.Output)
	var zl zerolog.Logger
	if cfg.Format == "console" || cfg.Format == "text" {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05", NoColor: cfg.NoColor})
	} else {
		zl = zerolog.New(out)
	}

	ctx := zl.Level(level).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	if service != "" {
		ctx = ctx.Str("service", service)
	}
	return &Logger{zl: ctx.Logger(), service: service}
}

// NewDefault logs at info level to stdout in console format.
func NewDefault(service string) *Logger {
	cfg := Config{}
	cfg.ApplyDefaults()
	return New(&cfg, service)
}

// NewWithWriter logs JSON at every level to w. Tests use it to inspect
// entries.
func NewWithWriter(w io.Writer, service string) *Logger {
	zl := zerolog.New(w).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	return &Logger{zl: zl, service: service}
}

func writerFor(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

type requestIDKey struct{}

// ContextWithRequestID attaches a request id for WithContext to log.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by ContextWithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithContext adds the request id carried by ctx. Without one it returns l.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	id := RequestIDFromContext(ctx)
	if id == "" {
		return l
	}
	return l.with(l.zl.With().Str(FieldRequestID, id))
}

// WithComponent tags every entry with the component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.with(l.zl.With().Str(FieldComponent, name))
}

// WithError attaches err to every entry.
func (l *Logger) WithError(err error) *Logger {
	return l.with(l.zl.With().Err(err))
}

func (l *Logger) with(c zerolog.Context) *Logger {
	return &Logger{zl: c.Logger(), service: l.service}
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Error(), msg, fields)
}

// Fatal logs and exits the process with status 1.
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Fatal(), msg, fields)
}

func emit(ev *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, m := range fields {
		for k, v := range m {
			ev = ev.Interface(k, v)
		}
	}
	ev.Msg(msg)
}

var global *Logger

// Init replaces the package logger with one built from cfg.
func Init(cfg *Config, service string) {
	cfg.ApplyDefaults()
	global = New(cfg, service)
}

// SetGlobalLogger replaces the package logger.
func SetGlobalLogger(l *Logger) { global = l }

// GetGlobalLogger returns the package logger, creating a default one on
// first use.
func GetGlobalLogger() *Logger {
	if global == nil {
		global = NewDefault("")
	}
	return global
}

// Package-level helpers log through GetGlobalLogger. Packages without an
// injected logger (component, observability) use them.

func Debug(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]interface{})  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]interface{})  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Error(msg, fields...) }
