package logger

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

var (
	formats = []string{"console", "text", "json"}
	outputs = []string{"stdout", "stderr"}
)

// Config is the logging section of a service config. Entries always carry
// a timestamp.
type Config struct {
	Level   string `yaml:"level" mapstructure:"level"`
	Format  string `yaml:"format" mapstructure:"format"`
	Output  string `yaml:"output" mapstructure:"output"`
	NoColor bool   `yaml:"no_color" mapstructure:"no_color"`
	Caller  bool   `yaml:"caller" mapstructure:"caller"`
}

func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = zerolog.InfoLevel.String()
	}
	if c.Format == "" {
		c.Format = formats[0]
	}
	if c.Output == "" {
		c.Output = outputs[0]
	}
}

// Validate accepts any level zerolog can parse.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil || c.Level == "" {
		return fmt.Errorf("logging.level %q is not a log level", c.Level)
	}
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", formats, c.Format)
	}
	if !slices.Contains(outputs, c.Output) {
		return fmt.Errorf("logging.output must be one of %v (got: %s)", outputs, c.Output)
	}
	return nil
}
