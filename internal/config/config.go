// Package config defines the configuration for the thesis validation service
// and provides validation helpers.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by CELSIUS_* environment variables.
type Config struct {
	Validation ValidationConfig `toml:"validation"`
	NOAA       NOAAConfig       `toml:"noaa"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Supabase   SupabaseConfig   `toml:"supabase"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	CSV        CSVConfig        `toml:"csv"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// ValidationConfig holds the parameters of the validation run itself.
type ValidationConfig struct {
	TargetCities []string `toml:"target_cities"`
	WindowDays   int      `toml:"window_days"`
	// Sigma is the forecast uncertainty in degrees Celsius.
	Sigma float64 `toml:"sigma"`
	// DefaultThresholdC is applied to every matched market until threshold
	// extraction from question text exists.
	DefaultThresholdC float64 `toml:"default_threshold_c"`
	// DayInterval is the wait between observation days. Shorten it for
	// rehearsal runs.
	DayInterval duration `toml:"day_interval"`
	// AssumedWinRate stands in for realized outcomes the run cannot yet
	// observe. It is fed to the decision gate as-is.
	AssumedWinRate float64 `toml:"assumed_win_rate"`
	// MarketLimit caps the page size requested from the markets API.
	MarketLimit int `toml:"market_limit"`
}

// CityConfig pins a city name to the coordinates used for forecast lookups.
type CityConfig struct {
	Name string  `toml:"name"`
	Lat  float64 `toml:"lat"`
	Lon  float64 `toml:"lon"`
}

// NOAAConfig holds NOAA Weather Service API parameters.
type NOAAConfig struct {
	BaseURL string `toml:"base_url"`
	// UserAgent is required by the NOAA API terms of service.
	UserAgent string       `toml:"user_agent"`
	Cities    []CityConfig `toml:"cities"`
}

// PolymarketConfig holds the Polymarket Gamma API endpoint.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
}

// SupabaseConfig holds PostgreSQL / Supabase connection parameters.
type SupabaseConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for run archives.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// CSVConfig holds the results file location.
type CSVConfig struct {
	Path string `toml:"path"`
}

// ServerConfig holds the run monitor HTTP server parameters.
type ServerConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "24h", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Validation: ValidationConfig{
			TargetCities:      []string{"London", "New York", "Chicago"},
			WindowDays:        14,
			Sigma:             2.5,
			DefaultThresholdC: 15.0,
			DayInterval:       duration{24 * time.Hour},
			AssumedWinRate:    0.70,
			MarketLimit:       200,
		},
		NOAA: NOAAConfig{
			BaseURL:   "https://api.weather.gov",
			UserAgent: "CelsiusValidation/1.0 (ops@celsius.dev)",
			Cities: []CityConfig{
				{Name: "London", Lat: 51.5074, Lon: -0.1278},
				{Name: "New York", Lat: 40.7128, Lon: -74.0060},
				{Name: "Chicago", Lat: 41.8781, Lon: -87.6298},
			},
		},
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
		},
		Supabase: SupabaseConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "celsius-data",
			UseSSL:         false,
			ForcePathStyle: true,
			Prefix:         "validations",
		},
		CSV: CSVConfig{
			Path: "thesis_validation_results.csv",
		},
		Server: ServerConfig{
			Enabled: false,
			Port:    8000,
		},
		Notify: NotifyConfig{
			Events: []string{"day_complete", "verdict"},
		},
		Mode:     "validate",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"validate": true,
	"report":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: validate, report)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Validation run parameters
	if len(c.Validation.TargetCities) == 0 {
		errs = append(errs, "validation: target_cities must not be empty")
	}
	if c.Validation.WindowDays < 1 {
		errs = append(errs, fmt.Sprintf("validation: window_days must be >= 1, got %d", c.Validation.WindowDays))
	}
	if c.Validation.Sigma <= 0 || math.IsNaN(c.Validation.Sigma) {
		errs = append(errs, fmt.Sprintf("validation: sigma must be > 0, got %v", c.Validation.Sigma))
	}
	if c.Validation.AssumedWinRate < 0 || c.Validation.AssumedWinRate > 1 || math.IsNaN(c.Validation.AssumedWinRate) {
		errs = append(errs, fmt.Sprintf("validation: assumed_win_rate must be in [0, 1], got %v", c.Validation.AssumedWinRate))
	}
	if c.Validation.DayInterval.Duration < 0 {
		errs = append(errs, "validation: day_interval must not be negative")
	}
	if c.Validation.MarketLimit < 1 {
		errs = append(errs, fmt.Sprintf("validation: market_limit must be >= 1, got %d", c.Validation.MarketLimit))
	}

	// NOAA
	if c.NOAA.BaseURL == "" {
		errs = append(errs, "noaa: base_url must not be empty")
	}
	if c.NOAA.UserAgent == "" {
		errs = append(errs, "noaa: user_agent must not be empty (required by the NOAA API)")
	}
	coords := make(map[string]bool, len(c.NOAA.Cities))
	for _, city := range c.NOAA.Cities {
		if city.Name == "" {
			errs = append(errs, "noaa: city entries must have a name")
			continue
		}
		coords[strings.ToLower(city.Name)] = true
	}
	for _, target := range c.Validation.TargetCities {
		if !coords[strings.ToLower(target)] {
			errs = append(errs, fmt.Sprintf("noaa: no coordinates configured for target city %q", target))
		}
	}

	// Polymarket
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}

	// Supabase
	if c.Supabase.Enabled {
		if strings.TrimSpace(c.Supabase.DSN) == "" {
			if c.Supabase.Host == "" {
				errs = append(errs, "supabase: host must not be empty (or set supabase.dsn)")
			}
			if c.Supabase.Port <= 0 || c.Supabase.Port > 65535 {
				errs = append(errs, fmt.Sprintf("supabase: port must be 1-65535, got %d", c.Supabase.Port))
			}
			if c.Supabase.Database == "" {
				errs = append(errs, "supabase: database must not be empty")
			}
		}
		if c.Supabase.PoolMaxConns < 1 {
			errs = append(errs, "supabase: pool_max_conns must be >= 1")
		}
		if c.Supabase.PoolMinConns < 0 {
			errs = append(errs, "supabase: pool_min_conns must be >= 0")
		}
		if c.Supabase.PoolMinConns > c.Supabase.PoolMaxConns {
			errs = append(errs, "supabase: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
	}

	// CSV
	if strings.TrimSpace(c.CSV.Path) == "" {
		errs = append(errs, "csv: path must not be empty")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Report mode requires the database, it has nothing else to read from.
	if strings.ToLower(c.Mode) == "report" && !c.Supabase.Enabled {
		errs = append(errs, "mode: report mode requires supabase.enabled = true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
