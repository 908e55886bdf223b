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
const DefaultConfigFile = "dayplan.yaml"

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
	setString(&cfg.Server.Port, "DAYPLAN_PORT")
	setString(&cfg.Server.CORSOrigin, "DAYPLAN_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "DAYPLAN_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "DAYPLAN_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "DAYPLAN_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "DAYPLAN_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "DAYPLAN_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "DAYPLAN_GEMINI_MODEL")
	setString(&cfg.Gemini.Endpoint, "DAYPLAN_GEMINI_ENDPOINT")
	setDuration(&cfg.Gemini.Timeout, "DAYPLAN_GEMINI_TIMEOUT")
	setInt64(&cfg.Gemini.MaxConcurrent, "DAYPLAN_GEMINI_MAX_CONCURRENT")
	setString(&cfg.Auth.JWTSecret, "DAYPLAN_JWT_SECRET")
	setDuration(&cfg.Auth.AccessTokenExpiry, "DAYPLAN_ACCESS_TOKEN_EXPIRY")
	setInt(&cfg.Auth.BcryptCost, "DAYPLAN_BCRYPT_COST")
	setDuration(&cfg.Auth.UserCacheTTL, "DAYPLAN_USER_CACHE_TTL")
	setString(&cfg.Logging.Level, "DAYPLAN_LOG_LEVEL")
	setString(&cfg.Logging.Service, "DAYPLAN_LOG_SERVICE")
	setInt(&cfg.Breaker.MaxFailures, "DAYPLAN_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "DAYPLAN_BREAKER_TIMEOUT")
	setInt64(&cfg.Cache.MaxSizeMB, "DAYPLAN_CACHE_SIZE_MB")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Gemini.MaxConcurrent < 1 {
		return errors.New("gemini.max_concurrent must be >= 1")
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
