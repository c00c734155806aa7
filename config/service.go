package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kbukum/whisperd/logger"
)

// DefaultShutdownTimeout bounds graceful shutdown when none is configured.
const DefaultShutdownTimeout = 15 * time.Second

var environments = []string{"development", "staging", "production"}

// ServiceConfig holds the fields every service shares. Embed it with
// mapstructure ",squash" so its keys sit at the top level of config.yml.
type ServiceConfig struct {
	Name            string        `yaml:"name" mapstructure:"name"`
	Environment     string        `yaml:"environment" mapstructure:"environment"`
	Version         string        `yaml:"version" mapstructure:"version"`
	Debug           bool          `yaml:"debug" mapstructure:"debug"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	Logging         logger.Config `yaml:"logging" mapstructure:"logging"`
}

// Base returns c. Embedding structs inherit it, which is how bootstrap
// reaches the shared fields of any service config.
func (c *ServiceConfig) Base() *ServiceConfig { return c }

// ApplyDefaults sets the development environment, with debug on, when none
// is given, and fills the shutdown timeout and logging defaults.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Debug = c.Debug || c.Environment == "development"
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the shared fields. Embedding structs call it first from
// their own Validate.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return errors.New("config.name is required")
	}
	if !slices.Contains(environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", environments, c.Environment)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("config.shutdown_timeout must not be negative (got: %s)", c.ShutdownTimeout)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
