// Package config defines server configuration. Operational settings are
// loaded from an optional YAML file with UISTD_*-prefixed environment
// variable overrides, matching the project's ambient configuration style —
// the CLI surface itself stays fixed at exactly two positional arguments
// (bind address, port); everything else is env/file-driven.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level server configuration.
type Config struct {
	Datasets  DatasetsConfig  `mapstructure:"datasets"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// DatasetsConfig controls where named datasets are loaded from at startup.
type DatasetsConfig struct {
	Dir          string `mapstructure:"dir"`           // directory of *.csv snapshot files
	CacheDir     string `mapstructure:"cache_dir"`      // parsed-dataset cache directory
	RandomLength int    `mapstructure:"random_length"` // length of the built-in synthetic dataset
}

// LoggingConfig controls the server's structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RateLimitConfig tunes the token-bucket limiter guarding the registry.
type RateLimitConfig struct {
	TickCapacity   float64       `mapstructure:"tick_capacity"`
	TickRate       float64       `mapstructure:"tick_rate"`
	MutateCapacity float64       `mapstructure:"mutate_capacity"`
	MutateRate     float64       `mapstructure:"mutate_rate"`
	ReadCapacity   float64       `mapstructure:"read_capacity"`
	ReadRate       float64       `mapstructure:"read_rate"`
	WaitTimeout    time.Duration `mapstructure:"wait_timeout"`
}

// Default returns the configuration used when no file is supplied and no
// overrides are present.
func Default() Config {
	return Config{
		Datasets: DatasetsConfig{
			Dir:          "datasets",
			CacheDir:     "datasets/.cache",
			RandomLength: 3000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		RateLimit: RateLimitConfig{
			TickCapacity:   100,
			TickRate:       50,
			MutateCapacity: 100,
			MutateRate:     50,
			ReadCapacity:   200,
			ReadRate:       100,
			WaitTimeout:    2 * time.Second,
		},
	}
}

// Load reads configuration from an optional YAML file, applying
// UISTD_*-prefixed environment variable overrides on top. A missing file is
// not an error — the defaults (and any env overrides) still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	cfg := Default()
	v.SetDefault("datasets.dir", cfg.Datasets.Dir)
	v.SetDefault("datasets.cache_dir", cfg.Datasets.CacheDir)
	v.SetDefault("datasets.random_length", cfg.Datasets.RandomLength)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("rate_limit.tick_capacity", cfg.RateLimit.TickCapacity)
	v.SetDefault("rate_limit.tick_rate", cfg.RateLimit.TickRate)
	v.SetDefault("rate_limit.mutate_capacity", cfg.RateLimit.MutateCapacity)
	v.SetDefault("rate_limit.mutate_rate", cfg.RateLimit.MutateRate)
	v.SetDefault("rate_limit.read_capacity", cfg.RateLimit.ReadCapacity)
	v.SetDefault("rate_limit.read_rate", cfg.RateLimit.ReadRate)
	v.SetDefault("rate_limit.wait_timeout", cfg.RateLimit.WaitTimeout)

	v.SetEnvPrefix("UISTD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &out, nil
}
