package httpclient

import (
	"fmt"
	"net/url"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config points a Client at one upstream.
type Config struct {
	// BaseURL is prepended to every request path.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Timeout bounds a whole exchange, body upload included. Zero means 30s;
	// a negative value leaves only the request context in charge.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate requires an absolute http or https base URL.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("httpclient: base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("httpclient: base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("httpclient: base_url must be an absolute http(s) URL (got: %s)", c.BaseURL)
	}
	return nil
}
