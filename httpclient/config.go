package httpclient

import (
	"fmt"
	"time"
)

// Config configures a Client.
type Config struct {
	// BaseURL is prepended to relative request paths. Required.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Timeout bounds each request end to end.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Headers are applied to every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("httpclient: base_url is required")
	}
	return nil
}
