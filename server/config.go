package server

import (
	"fmt"
	"slices"
	"time"

	"github.com/kbukum/whisperd/server/middleware"
)

// Config configures the listener. Timeouts are whole seconds; the write
// timeout has to outlast a full inference.
type Config struct {
	Host         string                `yaml:"host" mapstructure:"host"`
	Port         int                   `yaml:"port" mapstructure:"port"`
	ReadTimeout  int                   `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout int                   `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  int                   `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxBodySize  string                `yaml:"max_body_size" mapstructure:"max_body_size"`
	CORS         middleware.CORSConfig `yaml:"cors" mapstructure:"cors"`
}

func orDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func (c *Config) ApplyDefaults() {
	orDefault(&c.Port, 8000)
	orDefault(&c.ReadTimeout, 120)
	orDefault(&c.WriteTimeout, 360)
	orDefault(&c.IdleTimeout, 120)
	orDefault(&c.CORS.MaxAge, 600)
	if c.MaxBodySize == "" {
		c.MaxBodySize = "100MB"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:8000"}
	}
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	for _, t := range []struct {
		key string
		val int
	}{
		{"read_timeout", c.ReadTimeout},
		{"write_timeout", c.WriteTimeout},
		{"idle_timeout", c.IdleTimeout},
	} {
		if t.val < 0 {
			return fmt.Errorf("server.%s must be non-negative (got: %d)", t.key, t.val)
		}
	}
	if slices.Contains(c.CORS.AllowedOrigins, "") {
		return fmt.Errorf("server.cors.allowed_origins must not contain empty entries")
	}
	return nil
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
