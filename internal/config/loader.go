package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies CELSIUS_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known CELSIUS_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Validation ──
	setStringSlice(&cfg.Validation.TargetCities, "CELSIUS_VALIDATION_TARGET_CITIES")
	setInt(&cfg.Validation.WindowDays, "CELSIUS_VALIDATION_WINDOW_DAYS")
	setFloat64(&cfg.Validation.Sigma, "CELSIUS_VALIDATION_SIGMA")
	setFloat64(&cfg.Validation.DefaultThresholdC, "CELSIUS_VALIDATION_DEFAULT_THRESHOLD_C")
	setDuration(&cfg.Validation.DayInterval, "CELSIUS_VALIDATION_DAY_INTERVAL")
	setFloat64(&cfg.Validation.AssumedWinRate, "CELSIUS_VALIDATION_ASSUMED_WIN_RATE")
	setInt(&cfg.Validation.MarketLimit, "CELSIUS_VALIDATION_MARKET_LIMIT")

	// ── NOAA ──
	setStr(&cfg.NOAA.BaseURL, "CELSIUS_NOAA_BASE_URL")
	setStr(&cfg.NOAA.UserAgent, "CELSIUS_NOAA_USER_AGENT")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "CELSIUS_POLYMARKET_GAMMA_HOST")

	// ── Supabase ──
	setBool(&cfg.Supabase.Enabled, "CELSIUS_SUPABASE_ENABLED")
	setStr(&cfg.Supabase.DSN, "CELSIUS_SUPABASE_DSN")
	setStr(&cfg.Supabase.Host, "CELSIUS_SUPABASE_HOST")
	setInt(&cfg.Supabase.Port, "CELSIUS_SUPABASE_PORT")
	setStr(&cfg.Supabase.Database, "CELSIUS_SUPABASE_DATABASE")
	setStr(&cfg.Supabase.User, "CELSIUS_SUPABASE_USER")
	setStr(&cfg.Supabase.Password, "CELSIUS_SUPABASE_PASSWORD")
	setStr(&cfg.Supabase.SSLMode, "CELSIUS_SUPABASE_SSL_MODE")
	setInt(&cfg.Supabase.PoolMaxConns, "CELSIUS_SUPABASE_POOL_MAX_CONNS")
	setInt(&cfg.Supabase.PoolMinConns, "CELSIUS_SUPABASE_POOL_MIN_CONNS")
	setBool(&cfg.Supabase.RunMigrations, "CELSIUS_SUPABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "CELSIUS_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "CELSIUS_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "CELSIUS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "CELSIUS_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "CELSIUS_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "CELSIUS_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "CELSIUS_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "CELSIUS_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "CELSIUS_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "CELSIUS_S3_REGION")
	setStr(&cfg.S3.Bucket, "CELSIUS_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "CELSIUS_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "CELSIUS_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "CELSIUS_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "CELSIUS_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "CELSIUS_S3_PREFIX")

	// ── CSV ──
	setStr(&cfg.CSV.Path, "CELSIUS_CSV_PATH")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "CELSIUS_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "CELSIUS_SERVER_PORT")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "CELSIUS_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "CELSIUS_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "CELSIUS_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "CELSIUS_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "CELSIUS_MODE")
	setStr(&cfg.LogLevel, "CELSIUS_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
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

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
