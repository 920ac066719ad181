package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Asana.PageLimit != 100 {
		t.Errorf("expected page limit 100, got %d", cfg.Asana.PageLimit)
	}
	if cfg.Sync.PassTimeout != 60*time.Second {
		t.Errorf("expected pass timeout 60s, got %v", cfg.Sync.PassTimeout)
	}
	if cfg.Breaker.Timeout != 30*time.Second {
		t.Errorf("expected breaker timeout 30s, got %v", cfg.Breaker.Timeout)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
asana:
  base_url: "https://asana.test/api/1.0"
  page_limit: 50
sync:
  pass_timeout: 90s
logging:
  level: "debug"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Asana.BaseURL != "https://asana.test/api/1.0" {
		t.Errorf("expected overridden asana base url, got %s", cfg.Asana.BaseURL)
	}
	if cfg.Asana.PageLimit != 50 {
		t.Errorf("expected page limit 50, got %d", cfg.Asana.PageLimit)
	}
	if cfg.Sync.PassTimeout != 90*time.Second {
		t.Errorf("expected pass timeout 90s, got %v", cfg.Sync.PassTimeout)
	}
	// Unchanged fields keep defaults
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("expected default NATS URL, got %s", cfg.NATS.URL)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	err := loadYAML(&cfg, "/nonexistent/path.yaml")
	if err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("TASKBRIDGE_PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://test:test@db:5432/test")
	t.Setenv("TASKBRIDGE_ASANA_HTTP_TIMEOUT", "5s")
	t.Setenv("TASKBRIDGE_LOG_LEVEL", "warn")

	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if cfg.Postgres.DSN != "postgres://test:test@db:5432/test" {
		t.Errorf("expected env DSN, got %s", cfg.Postgres.DSN)
	}
	if cfg.Asana.HTTPTimeout != 5*time.Second {
		t.Errorf("expected asana timeout 5s, got %v", cfg.Asana.HTTPTimeout)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(_ *Config) {}, false},
		{"empty port", func(c *Config) { c.Server.Port = "" }, true},
		{"empty dsn", func(c *Config) { c.Postgres.DSN = "" }, true},
		{"page limit over cap", func(c *Config) { c.Asana.PageLimit = 200 }, true},
		{"zero pass timeout", func(c *Config) { c.Sync.PassTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := validate(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
