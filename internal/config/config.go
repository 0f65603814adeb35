// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Output  OutputConfig  `mapstructure:"output"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
	SSEHeartbeatSeconds   int `mapstructure:"sse_heartbeat_seconds"`
}

// FetchConfig governs outbound HTTP behavior.
type FetchConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
}

// ScrapeConfig governs adapter heuristics and job pacing.
type ScrapeConfig struct {
	MinParagraphChars int      `mapstructure:"min_paragraph_chars"`
	ExcludedHeadings  []string `mapstructure:"excluded_headings"`
	RequestDelayMs    int      `mapstructure:"request_delay_ms"`
	CatalogFile       string   `mapstructure:"catalog_file"`
}

// CacheConfig selects and tunes the document cache backend.
type CacheConfig struct {
	// Backend is one of "fs", "redis", or "postgres".
	Backend     string `mapstructure:"backend"`
	Dir         string `mapstructure:"dir"`
	TTLHours    int    `mapstructure:"ttl_hours"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisDB     int    `mapstructure:"redis_db"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// OutputConfig sets where artifacts land.
type OutputConfig struct {
	// Backend is "local" or "gcs".
	Backend   string `mapstructure:"backend"`
	Dir       string `mapstructure:"dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// PubSubConfig holds completion-notification settings. Empty topic
// disables publishing.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk and environment. Environment variables use
// the WIKIPEDIZER_ prefix with underscores, e.g. WIKIPEDIZER_SERVER_PORT.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WIKIPEDIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("server.sse_heartbeat_seconds", 30)
	v.SetDefault("fetch.user_agent", "wikipedizer-9000/1.0 (educational research tool)")
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.respect_robots", true)
	v.SetDefault("scrape.min_paragraph_chars", 50)
	v.SetDefault("scrape.request_delay_ms", 1000)
	v.SetDefault("cache.backend", "fs")
	v.SetDefault("cache.dir", "cache")
	v.SetDefault("cache.ttl_hours", 0)
	v.SetDefault("output.backend", "local")
	v.SetDefault("output.dir", "astronomy_notes")
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Scrape.MinParagraphChars < 0 {
		return fmt.Errorf("scrape.min_paragraph_chars must be >= 0")
	}
	switch c.Cache.Backend {
	case "fs":
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir must be set for the fs backend")
		}
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr must be set for the redis backend")
		}
	case "postgres":
		if c.Cache.PostgresDSN == "" {
			return fmt.Errorf("cache.postgres_dsn must be set for the postgres backend")
		}
	default:
		return fmt.Errorf("cache.backend must be fs, redis, or postgres")
	}
	switch c.Output.Backend {
	case "local":
		if c.Output.Dir == "" {
			return fmt.Errorf("output.dir must be set for the local backend")
		}
	case "gcs":
		if c.Output.GCSBucket == "" {
			return fmt.Errorf("output.gcs_bucket must be set for the gcs backend")
		}
	default:
		return fmt.Errorf("output.backend must be local or gcs")
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when a topic is configured")
	}
	return nil
}

// FetchTimeout converts the fetch timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// RequestDelay converts the inter-request delay into a duration.
func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.Scrape.RequestDelayMs) * time.Millisecond
}

// CacheTTL converts the cache TTL into a duration; zero means no expiry.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}
