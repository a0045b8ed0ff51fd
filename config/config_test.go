package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/equity-engine/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DATABASE_PATH", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout())
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout())
	assert.Equal(t, "equity.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Zero(t, cfg.RateLimit.RequestsPerSecond)
	assert.NotEmpty(t, cfg.Server.AllowedOrigins)

	rates, err := cfg.TaxRates()
	require.NoError(t, err)
	assert.True(t, rates.CapitalGainsRate.Equal(decimal.RequireFromString("0.20315")))
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 9090
  allowed_origins: ["https://equity.example.com"]
storage:
  dsn: ":memory:"
log:
  level: debug
  format: json
rate_limit:
  requests_per_second: 5
tax:
  income_rate: 0.45
  qualifying_holding_years: 1
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://equity.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.RateLimit.Burst, "burst defaults to twice the rate")

	rates, err := cfg.TaxRates()
	require.NoError(t, err)
	assert.True(t, rates.IncomeRate.Equal(decimal.RequireFromString("0.45")))
	assert.True(t, rates.CapitalGainsRate.Equal(decimal.RequireFromString("0.20315")), "unset rate keeps default")
	assert.Equal(t, 1, rates.QualifyingHoldingYears)
}

func TestLoad_ExplicitZeroTaxRates(t *testing.T) {
	// GIVEN: A config that sets both rates and the holding period to zero
	// WHEN: Loading it
	// THEN: The zeros are kept rather than replaced by defaults

	clearEnv(t)
	path := writeConfig(t, "tax:\n  income_rate: 0\n  capital_gains_rate: 0\n  qualifying_holding_years: 0\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	rates, err := cfg.TaxRates()
	require.NoError(t, err)
	assert.True(t, rates.IncomeRate.IsZero())
	assert.True(t, rates.CapitalGainsRate.IsZero())
	assert.Zero(t, rates.QualifyingHoldingYears)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  port: 9090\nlog:\n  level: warn\n")
	t.Setenv("PORT", "7000")
	t.Setenv("DATABASE_PATH", "/tmp/equity-test.db")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/tmp/equity-test.db", cfg.Storage.DSN)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{"malformed yaml", "server: [", nil},
		{"port out of range", "server:\n  port: 70000\n", nil},
		{"unknown log level", "log:\n  level: verbose\n", nil},
		{"unknown log format", "log:\n  format: xml\n", nil},
		{"negative rate limit", "rate_limit:\n  requests_per_second: -1\n", nil},
		{"tax rate above one", "tax:\n  income_rate: 1.5\n", nil},
		{"infinite tax rate", "tax:\n  capital_gains_rate: .inf\n", nil},
		{"NaN tax rate", "tax:\n  income_rate: .nan\n", nil},
		{"negative holding years", "tax:\n  qualifying_holding_years: -1\n", nil},
		{"non-numeric PORT", "", map[string]string{"PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.Load: read")
}

func TestNewLogger_FormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := config.NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "run_id", "abc")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"run_id":"abc"`)
}
