package transcriber

import (
	"github.com/skillsenselab/voicenotes/auth"
	"github.com/skillsenselab/voicenotes/config"
	"github.com/skillsenselab/voicenotes/ingest"
	"github.com/skillsenselab/voicenotes/observability"
	"github.com/skillsenselab/voicenotes/server"
	"github.com/skillsenselab/voicenotes/store"
	"github.com/skillsenselab/voicenotes/transcription/deepgram"
)

// Config is the transcriber service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Database      store.Config         `yaml:"database" mapstructure:"database"`
	Ingest        ingest.Config        `yaml:"ingest" mapstructure:"ingest"`
	Deepgram      deepgram.Config      `yaml:"deepgram" mapstructure:"deepgram"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "transcriber"
	}
	c.ServiceConfig.ApplyDefaults()
	if c.Server.Port == 0 {
		c.Server.Port = 5001
	}
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Ingest.ApplyDefaults()
	c.Deepgram.ApplyDefaults()
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
	if err := c.Ingest.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}
