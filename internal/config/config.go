package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`
	DataSource struct {
		Period         string `yaml:"period"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"data_source"`
	Cache struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"cache"`
	Volatility struct {
		Window int `yaml:"window"`
	} `yaml:"volatility"`
	Watchlist struct {
		Tickers  []string `yaml:"tickers"`
		Interval string   `yaml:"interval"`
		WarmCron string   `yaml:"warm_cron"`
	} `yaml:"watchlist"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("LOOKBACK_PERIOD"); v != "" {
		cfg.DataSource.Period = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Cache.Capacity = n
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("WARM_CRON"); v != "" {
		cfg.Watchlist.WarmCron = v
	}

	// Defaults
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.DataSource.Period == "" {
		cfg.DataSource.Period = "1y"
	}
	if cfg.DataSource.TimeoutSeconds == 0 {
		cfg.DataSource.TimeoutSeconds = 30
	}
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = 64
	}
	if cfg.Volatility.Window == 0 {
		cfg.Volatility.Window = 20
	}
	if cfg.Watchlist.Interval == "" {
		cfg.Watchlist.Interval = "1d"
	}
	if cfg.Watchlist.WarmCron == "" {
		// Weekday mornings before the first interactive load.
		cfg.Watchlist.WarmCron = "0 0 7 * * 1-5"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be positive")
	}
	if c.Volatility.Window < 2 {
		return fmt.Errorf("volatility.window must be at least 2")
	}
	if c.DataSource.TimeoutSeconds <= 0 {
		return fmt.Errorf("data_source.timeout_seconds must be positive")
	}
	switch c.Watchlist.Interval {
	case "1d", "1wk", "1mo":
	default:
		return fmt.Errorf("watchlist.interval must be one of 1d, 1wk, 1mo")
	}
	return nil
}
