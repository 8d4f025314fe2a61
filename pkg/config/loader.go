// Package config provides configuration loading, validation and hot-reload
// for the crash casino services.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from the per-environment YAML file and environment
// variables, validates it, and returns the resulting Config alongside the
// viper instance so callers can watch for changes.
func Load() (*Config, *viper.Viper, error) {
	// Missing env files are fine; environments without them configure the
	// process through real environment variables.
	_ = godotenv.Load(".env.local", ".env")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	// Unmarshal only sees environment overrides for explicitly bound keys.
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, v, nil
}

// Watch re-reads the YAML file whenever it changes on disk and hands each
// successfully parsed Config to apply. Reload failures keep the previous
// configuration and are reported through onError.
func Watch(v *viper.Viper, apply func(Config), onError func(error)) {
	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			onError(fmt.Errorf("reload config: %w", err))
			return
		}

		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			onError(fmt.Errorf("unmarshal reloaded config: %w", err))
			return
		}

		apply(cfg)
	})
	v.WatchConfig()
}
