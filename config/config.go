/*
Package config loads server and engine settings.

SOURCES (later wins):
  1. YAML file (optional; -config flag)
  2. .env file in the working directory, if present
  3. Environment: PORT, DATABASE_PATH, LOG_LEVEL, LOG_FORMAT
  4. Defaults for anything still unset

EXAMPLE (config.yaml):
  server:
    port: 8080
    read_timeout_seconds: 15
    allowed_origins: ["http://localhost:5173"]
  storage:
    dsn: equity.db
  log:
    level: info
    format: json
  rate_limit:
    requests_per_second: 20
    burst: 40
  tax:
    income_rate: 0.30
    capital_gains_rate: 0.20315
    qualifying_holding_years: 2
*/
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/equity-engine/generic"
	"github.com/warp/equity-engine/tax"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Tax       TaxConfig       `yaml:"tax"`
}

type ServerConfig struct {
	Port                int      `yaml:"port"`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int      `yaml:"idle_timeout_seconds"`
	ShutdownSeconds     int      `yaml:"shutdown_seconds"`
	AllowedOrigins      []string `yaml:"allowed_origins"`
}

// StorageConfig points at the SQLite file holding company profiles.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // file path, or ":memory:"
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// RateLimitConfig throttles simulation endpoints. Zero rps disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// TaxConfig overrides the default flat rates. Absent keys keep the default;
// an explicit 0 is a 0% rate.
type TaxConfig struct {
	IncomeRate             *float64 `yaml:"income_rate"`
	CapitalGainsRate       *float64 `yaml:"capital_gains_rate"`
	QualifyingHoldingYears *int     `yaml:"qualifying_holding_years"`
}

// Load reads the YAML file at path (skipped when empty), then applies .env,
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration built from defaults only.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config.Load: PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 15
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}
	if cfg.Server.ShutdownSeconds <= 0 {
		cfg.Server.ShutdownSeconds = 30
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "equity.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.RateLimit.RequestsPerSecond > 0 && cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = int(cfg.RateLimit.RequestsPerSecond) * 2
		if cfg.RateLimit.Burst < 1 {
			cfg.RateLimit.Burst = 1
		}
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q must be debug, info, warn or error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q must be text or json", c.Log.Format)
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("config: rate_limit.requests_per_second must not be negative")
	}
	if _, err := c.TaxRates(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// TaxRates merges configured rates over the defaults.
func (c *Config) TaxRates() (tax.Rates, error) {
	r := tax.DefaultRates()
	var err error
	if c.Tax.IncomeRate != nil {
		if r.IncomeRate, err = generic.DecimalFromFloat("tax.income_rate", *c.Tax.IncomeRate); err != nil {
			return tax.Rates{}, err
		}
	}
	if c.Tax.CapitalGainsRate != nil {
		if r.CapitalGainsRate, err = generic.DecimalFromFloat("tax.capital_gains_rate", *c.Tax.CapitalGainsRate); err != nil {
			return tax.Rates{}, err
		}
	}
	if c.Tax.QualifyingHoldingYears != nil {
		r.QualifyingHoldingYears = *c.Tax.QualifyingHoldingYears
	}
	if err := r.Validate(); err != nil {
		return tax.Rates{}, err
	}
	return r, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
}

func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Server.IdleTimeoutSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}

// NewLogger builds a slog logger writing to w at the configured level and format.
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
