package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeModel struct {
	name      string
	available bool
}

func (p *fakeModel) Name() string                        { return p.name }
func (p *fakeModel) IsAvailable(ctx context.Context) bool { return p.available }

func modelFactory(name string) Factory[*fakeModel] {
	return func(cfg map[string]any) (*fakeModel, error) {
		size, _ := cfg["model"].(string)
		if size == "" {
			return nil, fmt.Errorf("model is required")
		}
		return &fakeModel{name: name + "-" + size, available: true}, nil
	}
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*fakeModel]()
	reg.RegisterFactory("whisper", modelFactory("whisper"))

	m, err := reg.Create("whisper", map[string]any{"model": "base"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.Name() != "whisper-base" || !m.IsAvailable(context.Background()) {
		t.Errorf("unexpected provider %+v", m)
	}

	if _, err := reg.Create("whisper", map[string]any{}); err == nil || errors.Is(err, ErrUnknown) {
		t.Errorf("expected the factory's own error, got %v", err)
	}
}

func TestRegistryCreateUnknown(t *testing.T) {
	reg := NewRegistry[*fakeModel]()
	reg.RegisterFactory("whisper", modelFactory("whisper"))
	reg.RegisterFactory("faster-whisper", modelFactory("faster-whisper"))

	_, err := reg.Create("vosk", nil)
	if !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
	if !strings.Contains(err.Error(), `"vosk" (registered: faster-whisper, whisper)`) {
		t.Errorf("expected registered names in %q", err.Error())
	}
}

func TestRegistryReplaceFactory(t *testing.T) {
	reg := NewRegistry[*fakeModel]()
	reg.RegisterFactory("whisper", modelFactory("old"))
	reg.RegisterFactory("whisper", modelFactory("new"))

	m, err := reg.Create("whisper", map[string]any{"model": "tiny"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.Name() != "new-tiny" {
		t.Errorf("expected replaced factory, got %q", m.Name())
	}
	if names := reg.Names(); len(names) != 1 {
		t.Errorf("expected one name, got %v", names)
	}
}
