package domain

import "time"

// Config holds all runtime configuration, loaded via viper from a config
// file and JIKANSYNC_* environment variables.
type Config struct {
	DataDir string `toml:"data_dir" mapstructure:"data_dir"`

	JikanBaseURL string `toml:"jikan_base_url" mapstructure:"jikan_base_url"`

	// Redis cache tier. Empty address selects the sqlite-backed cache.
	RedisAddr     string `toml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `toml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `toml:"redis_db" mapstructure:"redis_db"`

	// Jikan allows 3 requests per second and 60 per minute.
	RatePerSecond int `toml:"rate_per_second" mapstructure:"rate_per_second"`
	RatePerMinute int `toml:"rate_per_minute" mapstructure:"rate_per_minute"`

	RetryAttempts  int           `toml:"retry_attempts" mapstructure:"retry_attempts"`
	RequestTimeout time.Duration `toml:"request_timeout" mapstructure:"request_timeout"`

	// Circuit breaker tuning, shared by all operation classes.
	BreakerFailureThreshold float64       `toml:"breaker_failure_threshold" mapstructure:"breaker_failure_threshold"`
	BreakerMinSamples       int           `toml:"breaker_min_samples" mapstructure:"breaker_min_samples"`
	BreakerCooldown         time.Duration `toml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
	BreakerProbes           int           `toml:"breaker_probes" mapstructure:"breaker_probes"`

	// Cache TTL for anime-by-id. The listing datasets have fixed TTLs.
	AnimeTTL time.Duration `toml:"anime_ttl" mapstructure:"anime_ttl"`
}
