package process

import (
	"context"
	"os/exec"
	"time"

	"github.com/kbukum/whisperd/provider"
)

var _ provider.Provider = (*Adapter)(nil)

// Config binds an Adapter to one executable.
type Config struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Binary      string        `yaml:"binary" mapstructure:"binary"`
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
}

// Adapter runs its configured binary with per-call arguments and reports
// whether that binary can be found.
type Adapter struct {
	cfg Config
}

// NewAdapter creates an Adapter for cfg.Binary.
func NewAdapter(cfg Config) *Adapter {
	return &Adapter{cfg: cfg}
}

// Run executes the binary with args.
func (a *Adapter) Run(ctx context.Context, args ...string) (*Result, error) {
	return Run(ctx, Command{Binary: a.cfg.Binary, Args: args, GracePeriod: a.cfg.GracePeriod})
}

func (a *Adapter) Name() string { return a.cfg.Name }

// IsAvailable reports whether the binary resolves to an executable file,
// either as a path or through PATH.
func (a *Adapter) IsAvailable(context.Context) bool {
	if a.cfg.Binary == "" {
		return false
	}
	_, err := exec.LookPath(a.cfg.Binary)
	return err == nil
}
