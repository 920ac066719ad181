package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "taskbridge.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "TASKBRIDGE_PORT")
	setString(&cfg.Server.CORSOrigin, "TASKBRIDGE_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "TASKBRIDGE_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "TASKBRIDGE_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "TASKBRIDGE_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "TASKBRIDGE_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "TASKBRIDGE_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Asana.BaseURL, "ASANA_BASE_URL")
	setString(&cfg.Asana.TokenURL, "ASANA_TOKEN_URL")
	setString(&cfg.Asana.ClientID, "ASANA_CLIENT_ID")
	setString(&cfg.Asana.ClientSecret, "ASANA_CLIENT_SECRET")
	setDuration(&cfg.Asana.HTTPTimeout, "TASKBRIDGE_ASANA_HTTP_TIMEOUT")
	setInt(&cfg.Asana.PageLimit, "TASKBRIDGE_ASANA_PAGE_LIMIT")
	setInt64(&cfg.Cache.MaxSizeMB, "TASKBRIDGE_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.SnapshotTTL, "TASKBRIDGE_CACHE_SNAPSHOT_TTL")
	setDuration(&cfg.Sync.PassTimeout, "TASKBRIDGE_SYNC_PASS_TIMEOUT")
	setDuration(&cfg.Sync.TokenSkew, "TASKBRIDGE_SYNC_TOKEN_SKEW")
	setString(&cfg.Logging.Level, "TASKBRIDGE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "TASKBRIDGE_LOG_SERVICE")
	setInt(&cfg.Breaker.MaxFailures, "TASKBRIDGE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "TASKBRIDGE_BREAKER_TIMEOUT")
	setString(&cfg.OTel.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Asana.PageLimit < 1 || cfg.Asana.PageLimit > 100 {
		return errors.New("asana.page_limit must be between 1 and 100")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Sync.PassTimeout <= 0 {
		return errors.New("sync.pass_timeout must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
