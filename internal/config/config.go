// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all pipeline configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Dirs    DirsConfig    `mapstructure:"dirs"`
	DB      DBConfig      `mapstructure:"db"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig identifies the target job board.
type CrawlerConfig struct {
	SearchURL string `mapstructure:"search_url"`
	Source    string `mapstructure:"source"`
	UserAgent string `mapstructure:"user_agent"`
}

// FetchConfig governs rendering, retry, and pacing behavior.
type FetchConfig struct {
	MaxRetries        int `mapstructure:"max_retries"`
	NavTimeoutSec     int `mapstructure:"nav_timeout_seconds"`
	SettleDelaySec    int `mapstructure:"settle_delay_seconds"`
	SearchDelayMinSec int `mapstructure:"search_delay_min_seconds"`
	SearchDelayMaxSec int `mapstructure:"search_delay_max_seconds"`
	DetailDelayMinSec int `mapstructure:"detail_delay_min_seconds"`
	DetailDelayMaxSec int `mapstructure:"detail_delay_max_seconds"`
	CooldownSec       int `mapstructure:"cooldown_seconds"`
}

// DirsConfig sets the local artifact directories.
type DirsConfig struct {
	Links  string `mapstructure:"links"`
	Jobs   string `mapstructure:"jobs"`
	Errors string `mapstructure:"errors"`
}

// DBConfig controls the Postgres connection pool.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// LLMConfig governs the structuring phase.
type LLMConfig struct {
	Model           string  `mapstructure:"model"`
	MaxRetries      int     `mapstructure:"max_retries"`
	RPM             int     `mapstructure:"rpm"`
	BatchLimit      int     `mapstructure:"batch_limit"`
	USDToMillionVND float64 `mapstructure:"usd_to_million_vnd"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. Environment variables use
// the JOBCRAWLER_ prefix with dots replaced by underscores, e.g.
// JOBCRAWLER_DB_DSN overrides db.dsn.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JOBCRAWLER")
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
	v.SetDefault("crawler.search_url", "https://www.topcv.vn/tim-viec-lam-ai-engineer?sba=1")
	v.SetDefault("crawler.source", "topcv")
	v.SetDefault("crawler.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.nav_timeout_seconds", 30)
	v.SetDefault("fetch.settle_delay_seconds", 3)
	v.SetDefault("fetch.search_delay_min_seconds", 2)
	v.SetDefault("fetch.search_delay_max_seconds", 4)
	v.SetDefault("fetch.detail_delay_min_seconds", 10)
	v.SetDefault("fetch.detail_delay_max_seconds", 15)
	v.SetDefault("fetch.cooldown_seconds", 30)
	v.SetDefault("dirs.links", "data/links")
	v.SetDefault("dirs.jobs", "data/jobs")
	v.SetDefault("dirs.errors", "data/errors")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("llm.model", "gemini-2.5-flash-lite")
	v.SetDefault("llm.max_retries", 10)
	v.SetDefault("llm.rpm", 20)
	v.SetDefault("llm.batch_limit", 50)
	v.SetDefault("llm.usd_to_million_vnd", 25.0)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9091)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.SearchURL == "" {
		return fmt.Errorf("crawler.search_url is required")
	}
	if c.Fetch.MaxRetries <= 0 {
		return fmt.Errorf("fetch.max_retries must be > 0")
	}
	if c.Fetch.NavTimeoutSec <= 0 {
		return fmt.Errorf("fetch.nav_timeout_seconds must be > 0")
	}
	if c.Fetch.SearchDelayMaxSec < c.Fetch.SearchDelayMinSec {
		return fmt.Errorf("fetch.search_delay_max_seconds must be >= the minimum")
	}
	if c.Fetch.DetailDelayMaxSec < c.Fetch.DetailDelayMinSec {
		return fmt.Errorf("fetch.detail_delay_max_seconds must be >= the minimum")
	}
	if c.LLM.MaxRetries <= 0 {
		return fmt.Errorf("llm.max_retries must be > 0")
	}
	if c.LLM.BatchLimit <= 0 {
		return fmt.Errorf("llm.batch_limit must be > 0")
	}
	if c.Metrics.Enabled && c.Metrics.Port <= 0 {
		return fmt.Errorf("metrics.port must be > 0 when metrics are enabled")
	}
	return nil
}

// NavTimeout returns the renderer navigation budget.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Fetch.NavTimeoutSec) * time.Second
}

// SettleDelay returns the post-load settle wait.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Fetch.SettleDelaySec) * time.Second
}

// SearchDelayBounds returns the courtesy delay window for the search page.
func (c Config) SearchDelayBounds() (time.Duration, time.Duration) {
	return time.Duration(c.Fetch.SearchDelayMinSec) * time.Second,
		time.Duration(c.Fetch.SearchDelayMaxSec) * time.Second
}

// DetailDelayBounds returns the courtesy delay window for posting pages.
func (c Config) DetailDelayBounds() (time.Duration, time.Duration) {
	return time.Duration(c.Fetch.DetailDelayMinSec) * time.Second,
		time.Duration(c.Fetch.DetailDelayMaxSec) * time.Second
}

// Cooldown returns the post-failure pause.
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.Fetch.CooldownSec) * time.Second
}
