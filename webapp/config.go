package webapp

import (
	"fmt"

	"github.com/skillsenselab/voicenotes/auth"
	"github.com/skillsenselab/voicenotes/config"
	"github.com/skillsenselab/voicenotes/httpclient"
	"github.com/skillsenselab/voicenotes/observability"
	"github.com/skillsenselab/voicenotes/server"
	"github.com/skillsenselab/voicenotes/store"
)

// Config is the webapp service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Database      store.Config         `yaml:"database" mapstructure:"database"`
	UploadDir     string               `yaml:"upload_dir" mapstructure:"upload_dir"`
	Transcriber   httpclient.Config    `yaml:"transcriber" mapstructure:"transcriber"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "webapp"
	}
	c.ServiceConfig.ApplyDefaults()
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	if c.UploadDir == "" {
		c.UploadDir = "uploaded_audio"
	}
	if c.Transcriber.BaseURL == "" {
		c.Transcriber.BaseURL = "http://localhost:5001"
	}
	c.Transcriber.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Transcriber.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if c.UploadDir == "" {
		return fmt.Errorf("upload_dir is required")
	}
	return nil
}
