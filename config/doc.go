// Package config loads service configuration from YAML files, .env files,
// and environment variables, in that order of increasing precedence.
//
// Each binary embeds ServiceConfig in its own config struct and calls
// LoadConfig with its service name:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Database store.Config `yaml:"database" mapstructure:"database"`
//	}
//
//	var cfg Config
//	if err := config.LoadConfig("webapp", &cfg); err != nil { ... }
package config
