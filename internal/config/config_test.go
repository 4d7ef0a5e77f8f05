package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 14, cfg.Validation.WindowDays)
	assert.Equal(t, 2.5, cfg.Validation.Sigma)
	assert.Equal(t, 15.0, cfg.Validation.DefaultThresholdC)
	assert.Equal(t, 24*time.Hour, cfg.Validation.DayInterval.Duration)
	assert.Equal(t, []string{"London", "New York", "Chicago"}, cfg.Validation.TargetCities)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "validate"
log_level = "debug"

[validation]
window_days = 7
day_interval = "1s"
assumed_win_rate = 0.8
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 7, cfg.Validation.WindowDays)
	assert.Equal(t, time.Second, cfg.Validation.DayInterval.Duration)
	assert.Equal(t, 0.8, cfg.Validation.AssumedWinRate)
	// Untouched sections keep their defaults.
	assert.Equal(t, "https://api.weather.gov", cfg.NOAA.BaseURL)
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.Polymarket.GammaHost)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CELSIUS_VALIDATION_WINDOW_DAYS", "3")
	t.Setenv("CELSIUS_VALIDATION_TARGET_CITIES", "London, Chicago")
	t.Setenv("CELSIUS_REDIS_PASSWORD", "hunter2")
	t.Setenv("CELSIUS_MODE", "validate")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Validation.WindowDays)
	assert.Equal(t, []string{"London", "Chicago"}, cfg.Validation.TargetCities)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.Validation.WindowDays = 0
	cfg.Validation.Sigma = -1
	cfg.Validation.AssumedWinRate = 1.2
	cfg.NOAA.UserAgent = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "window_days")
	assert.Contains(t, err.Error(), "sigma")
	assert.Contains(t, err.Error(), "assumed_win_rate")
	assert.Contains(t, err.Error(), "user_agent")
}

func TestValidateTargetCityNeedsCoordinates(t *testing.T) {
	cfg := Defaults()
	cfg.Validation.TargetCities = append(cfg.Validation.TargetCities, "Atlantis")
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no coordinates configured for target city "Atlantis"`)
}

func TestValidateReportModeRequiresDatabase(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "report"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report mode requires supabase.enabled")

	cfg.Supabase.Enabled = true
	require.NoError(t, cfg.Validate())
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Supabase.Password = "secret"
	cfg.S3.SecretKey = "key"
	cfg.Notify.TelegramToken = "token"

	red := RedactedConfig(&cfg)
	assert.Equal(t, "***", red.Supabase.Password)
	assert.Equal(t, "***", red.S3.SecretKey)
	assert.Equal(t, "***", red.Notify.TelegramToken)
	// Original is untouched.
	assert.Equal(t, "secret", cfg.Supabase.Password)
}
