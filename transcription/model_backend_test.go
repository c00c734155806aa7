package transcription

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/kbukum/whisperd/errors"
)

type fakeModel struct {
	mu        sync.Mutex
	out       *ModelOutput
	err       error
	available bool
	initErr   error
	calls     int
	lastPath  string
	lastOpts  ModelOptions
	inits     int
	closed    bool
}

func (m *fakeModel) Name() string                     { return "fake" }
func (m *fakeModel) IsAvailable(context.Context) bool { return m.available }

func (m *fakeModel) Init(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inits++
	return m.initErr
}

func (m *fakeModel) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *fakeModel) Transcribe(ctx context.Context, path string, opts ModelOptions) (*ModelOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastPath = path
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.out, nil
}

func TestModelBackendFirstSegmentDiagnostics(t *testing.T) {
	model := &fakeModel{out: &ModelOutput{
		Text:     "good morning",
		Language: "fr",
		Segments: []ModelSegment{
			{Text: "good", Temperature: 0.2, NoSpeechProb: 0.01},
			{Text: "morning", Temperature: 0.8, NoSpeechProb: 0.5},
		},
	}}
	b := NewModelBackend(model, testLogger())

	res, err := b.Transcribe(context.Background(), Request{AudioPath: "/tmp/clip.wav"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Transcription != "good morning" || res.Language != "fr" {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Temperature == nil || *res.Temperature != 0.2 {
		t.Errorf("expected temperature from first segment, got %v", res.Temperature)
	}
	if res.NoSpeechProb == nil || *res.NoSpeechProb != 0.01 {
		t.Errorf("expected no_speech_prob from first segment, got %v", res.NoSpeechProb)
	}
	if model.lastOpts.Task != TaskTranslate {
		t.Errorf("expected task %q, got %q", TaskTranslate, model.lastOpts.Task)
	}
	if model.lastPath != "/tmp/clip.wav" {
		t.Errorf("expected original clip path, got %q", model.lastPath)
	}
}

func TestModelBackendNoSegments(t *testing.T) {
	b := NewModelBackend(&fakeModel{out: &ModelOutput{Text: "", Language: "en"}}, testLogger())
	res, err := b.Transcribe(context.Background(), Request{AudioPath: "a.wav"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Temperature != nil || res.NoSpeechProb != nil {
		t.Error("expected no diagnostics without segments")
	}
	if res.Language != "en" {
		t.Errorf("expected en, got %q", res.Language)
	}
}

func TestModelBackendErrors(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		m    *fakeModel
		code apperrors.ErrorCode
		msg  string
	}{
		{"model raises", context.Background(), &fakeModel{err: errors.New("CUDA out of memory")}, apperrors.ErrCodeInferenceFailed, "CUDA out of memory"},
		{"context ended", canceled, &fakeModel{err: errors.New("aborted")}, apperrors.ErrCodeTimeout, "timed out"},
		{"app error passes through", context.Background(), &fakeModel{err: apperrors.ServiceUnavailable("whisper runtime")}, apperrors.ErrCodeServiceUnavailable, "whisper runtime"},
		{"nil output", context.Background(), &fakeModel{}, apperrors.ErrCodeResultParseFailed, "no output"},
		{"missing language", context.Background(), &fakeModel{out: &ModelOutput{Text: "hi"}}, apperrors.ErrCodeResultParseFailed, "language"},
		{"bad no_speech_prob", context.Background(), &fakeModel{out: &ModelOutput{
			Text: "hi", Language: "en", Segments: []ModelSegment{{NoSpeechProb: 3}},
		}}, apperrors.ErrCodeResultParseFailed, "no_speech_prob"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewModelBackend(tc.m, testLogger())
			_, err := b.Transcribe(tc.ctx, Request{AudioPath: "a.wav"})
			appErr := requireCode(t, err, tc.code)
			if !strings.Contains(appErr.Message, tc.msg) {
				t.Errorf("expected message containing %q, got %q", tc.msg, appErr.Message)
			}
		})
	}
}

func TestModelBackendLifecycle(t *testing.T) {
	model := &fakeModel{available: true, initErr: errors.New("weights missing")}
	b := NewModelBackend(model, testLogger())

	if err := b.Init(context.Background()); err == nil || !strings.Contains(err.Error(), "weights missing") {
		t.Errorf("expected init error to propagate, got %v", err)
	}
	if !b.IsAvailable(context.Background()) {
		t.Error("expected available")
	}
	if err := b.Close(context.Background()); err != nil {
		t.Errorf("Close: %v", err)
	}
	if !model.closed {
		t.Error("expected model to be closed")
	}
	if b.Name() != "fake" || b.Details() != "in-process model fake" {
		t.Errorf("unexpected name/details %q/%q", b.Name(), b.Details())
	}
}
