package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the crash casino services.
type Config struct {
	AppEnv string `mapstructure:"app_env"`

	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Bot       BotConfig       `mapstructure:"bot"`
	Game      GameConfig      `mapstructure:"game"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

// ServerConfig configures the public HTTP listener.
type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"`
}

// MetricsConfig configures the /metrics and /healthz listener.
type MetricsConfig struct {
	Port string `mapstructure:"port" validate:"required"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"ssl_mode"`

	MigrationsDir string `mapstructure:"migrations_dir"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode,
	)
}

// RedisConfig configures the optional Redis connection used for shared rate
// limiting. When disabled the server falls back to the in-memory limiter.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BotConfig holds the Telegram credentials. The token doubles as the HMAC
// root for init-data validation, so the server needs it even without the bot
// process running.
type BotConfig struct {
	Token     string        `mapstructure:"token" validate:"required"`
	WebAppURL string        `mapstructure:"webapp_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// GameConfig tunes the round loop. Defaults reproduce the production pacing;
// tests compress the durations.
type GameConfig struct {
	CountdownTicks int           `mapstructure:"countdown_ticks" validate:"gt=0"`
	TickInterval   time.Duration `mapstructure:"tick_interval" validate:"gt=0"`
	FlyInterval    time.Duration `mapstructure:"fly_interval" validate:"gt=0"`
	CrashPause     time.Duration `mapstructure:"crash_pause" validate:"gt=0"`
	HistorySeed    []float64     `mapstructure:"history_seed"`
}

// RateLimitConfig bounds per-client request rates on the API.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Requests        int           `mapstructure:"requests"`
	Window          time.Duration `mapstructure:"window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	BucketMaxAge    time.Duration `mapstructure:"bucket_max_age"`
}

// LoggerConfig controls log output.
type LoggerConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LoggerFileConfig `mapstructure:"file"`
}

// LoggerFileConfig enables rotated file output alongside stdout.
type LoggerFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig controls error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}
