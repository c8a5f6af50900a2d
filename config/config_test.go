package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/skillsenselab/voicenotes/logger"
)

// fakeFileSystem reports only the listed paths as existing and records .env
// load requests without touching the process environment.
type fakeFileSystem struct {
	existing map[string]bool
	loaded   []string
}

func (f *fakeFileSystem) Exists(path string) bool { return f.existing[path] }

func (f *fakeFileSystem) LoadEnv(path string) error {
	f.loaded = append(f.loaded, path)
	return nil
}

func TestServiceConfig_ApplyDefaults(t *testing.T) {
	cfg := &ServiceConfig{Name: "webapp"}
	cfg.ApplyDefaults()

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "development")
	}
	if !cfg.Debug {
		t.Error("Debug should default to true in development")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestServiceConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
	}{
		{
			name: "valid",
			cfg: ServiceConfig{
				Name:        "webapp",
				Environment: "production",
				Logging:     logger.Config{Level: "info", Format: "json"},
			},
			wantErr: false,
		},
		{
			name:    "missing name",
			cfg:     ServiceConfig{Environment: "development"},
			wantErr: true,
		},
		{
			name: "bad environment",
			cfg: ServiceConfig{
				Name:        "webapp",
				Environment: "qa",
				Logging:     logger.Config{Level: "info", Format: "json"},
			},
			wantErr: true,
		},
		{
			name: "bad logging level",
			cfg: ServiceConfig{
				Name:        "webapp",
				Environment: "development",
				Logging:     logger.Config{Level: "verbose", Format: "json"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_FromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	yaml := "name: webapp\nenvironment: staging\nlogging:\n  level: debug\n"
	if err := os.WriteFile(configPath, []byte(yaml), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	var cfg ServiceConfig
	if err := LoadConfig("webapp", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Name != "webapp" {
		t.Errorf("Name = %q, want %q", cfg.Name, "webapp")
	}
	if cfg.Environment != "staging" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "staging")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte("name: webapp\nenvironment: development\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("ENVIRONMENT", "production")

	var cfg ServiceConfig
	if err := LoadConfig("webapp", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Environment != "production" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "production")
	}
}

func TestLoadConfig_FindsServiceScopedFile(t *testing.T) {
	fs := &fakeFileSystem{existing: map[string]bool{
		"./cmd/webapp/.env": true,
	}}

	var cfg ServiceConfig
	if err := LoadConfig("webapp", &cfg, WithFileSystem(fs)); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if len(fs.loaded) != 1 || fs.loaded[0] != "./cmd/webapp/.env" {
		t.Errorf("loaded env files = %v, want [./cmd/webapp/.env]", fs.loaded)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"PORT", "port"},
		{"DATABASE_DSN", "database.dsn"},
		{"TRANSCRIBER_BASE_URL", "transcriber.base_url"},
	}

	for _, tt := range tests {
		variants := envKeyVariants(tt.key)
		found := false
		for _, v := range variants {
			if v == tt.want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("envKeyVariants(%q) = %v, missing %q", tt.key, variants, tt.want)
		}
	}
}
