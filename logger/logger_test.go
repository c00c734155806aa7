package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("whisperd")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "whisperd" {
		t.Errorf("expected service 'whisperd', got %q", l.service)
	}
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"invalid-level", zerolog.InfoLevel},
	}
	for _, tc := range tests {
		l := New(&Config{Level: tc.level, Format: "json", Output: "stderr"}, "test")
		if got := l.zl.GetLevel(); got != tc.want {
			t.Errorf("level %q: expected %v, got %v", tc.level, tc.want, got)
		}
	}
}

func TestWithContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "test")

	ctx := ContextWithRequestID(context.Background(), "req-42")
	l.WithContext(ctx).Error("pipeline failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry[FieldRequestID] != "req-42" {
		t.Errorf("expected request_id=req-42, got %v", entry[FieldRequestID])
	}
}

func TestWithContext_NoRequestIDReturnsSameLogger(t *testing.T) {
	l := NewDefault("test")
	if l.WithContext(context.Background()) != l {
		t.Error("expected the same logger when context has no request id")
	}
}

func TestWithComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "test").WithComponent("segmenter")
	l.Info("split complete", Fields("segments", 3))

	out := buf.String()
	if !strings.Contains(out, `"component":"segmenter"`) {
		t.Errorf("expected component field, got %s", out)
	}
	if !strings.Contains(out, `"segments":3`) {
		t.Errorf("expected segments field, got %s", out)
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "test").WithError(errors.New("boom")).Warn("failed")
	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected error field, got %s", buf.String())
	}
}

func TestInit(t *testing.T) {
	Init(&Config{Level: "info", Format: "console", Output: "stdout"}, "whisperd")
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger to be set after Init")
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	global = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestPackageHelpersUseGlobal(t *testing.T) {
	var buf bytes.Buffer
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(NewWithWriter(&buf, "whisperd"))
	Warn("telemetry shutdown incomplete", ErrorFields("shutdown", errors.New("exporter closed")))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["level"] != "warn" || entry[FieldStage] != "shutdown" || entry[FieldError] != "exporter closed" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json", Output: "stderr"}, false},
		{"trace", Config{Level: "trace", Format: "text", Output: "stdout"}, false},
		{"bad level", Config{Level: "loud", Format: "json", Output: "stdout"}, true},
		{"empty level", Config{Format: "json", Output: "stdout"}, true},
		{"bad format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"bad output", Config{Level: "info", Format: "json", Output: "/var/log/x"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	f := Fields("segments", 3, 42, "ignored", FieldDuration, int64(1500), "dangling")
	if len(f) != 2 {
		t.Fatalf("expected 2 fields, got %v", f)
	}
	if f["segments"] != 3 || f[FieldDuration] != int64(1500) {
		t.Errorf("unexpected fields %v", f)
	}
}
