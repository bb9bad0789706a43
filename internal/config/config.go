package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/varoOP/jikansync/internal/domain"
)

const (
	defaultBaseURL        = "https://api.jikan.moe/v4"
	defaultRatePerSecond  = 3
	defaultRatePerMinute  = 60
	defaultRetryAttempts  = 3
	defaultRequestTimeout = 10 * time.Second
	defaultAnimeTTL       = 24 * time.Hour
)

// Load loads configuration from multiple sources:
// 1. Config file (config.toml, optional)
// 2. Environment variables (JIKANSYNC_*)
func Load() (*domain.Config, error) {
	cfg := &domain.Config{
		DataDir:       viper.GetString("data_dir"),
		JikanBaseURL:  viper.GetString("jikan_base_url"),
		RedisAddr:     viper.GetString("redis_addr"),
		RedisPassword: viper.GetString("redis_password"),
		RedisDB:       viper.GetInt("redis_db"),

		RatePerSecond: viper.GetInt("rate_per_second"),
		RatePerMinute: viper.GetInt("rate_per_minute"),

		RetryAttempts:  viper.GetInt("retry_attempts"),
		RequestTimeout: viper.GetDuration("request_timeout"),

		BreakerFailureThreshold: viper.GetFloat64("breaker_failure_threshold"),
		BreakerMinSamples:       viper.GetInt("breaker_min_samples"),
		BreakerCooldown:         viper.GetDuration("breaker_cooldown"),
		BreakerProbes:           viper.GetInt("breaker_probes"),

		AnimeTTL: viper.GetDuration("anime_ttl"),
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.JikanBaseURL == "" {
		cfg.JikanBaseURL = defaultBaseURL
	}
	if cfg.RatePerSecond == 0 {
		cfg.RatePerSecond = defaultRatePerSecond
	}
	if cfg.RatePerMinute == 0 {
		cfg.RatePerMinute = defaultRatePerMinute
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.BreakerFailureThreshold == 0 {
		cfg.BreakerFailureThreshold = 0.5
	}
	if cfg.BreakerMinSamples == 0 {
		cfg.BreakerMinSamples = 5
	}
	if cfg.BreakerCooldown == 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	if cfg.BreakerProbes == 0 {
		cfg.BreakerProbes = 1
	}
	if cfg.AnimeTTL == 0 {
		cfg.AnimeTTL = defaultAnimeTTL
	}

	// Validate values that would silently break the pipeline
	if cfg.RatePerSecond < 0 || cfg.RatePerMinute < 0 {
		return nil, fmt.Errorf("rate limits must be positive (got %d/s, %d/min)", cfg.RatePerSecond, cfg.RatePerMinute)
	}
	if cfg.BreakerFailureThreshold < 0 || cfg.BreakerFailureThreshold > 1 {
		return nil, fmt.Errorf("breaker_failure_threshold must be within [0,1], got %v", cfg.BreakerFailureThreshold)
	}

	return cfg, nil
}
