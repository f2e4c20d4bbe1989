package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/shelf/catalog"
	"github.com/fwojciec/shelf/crawl"
	"github.com/fwojciec/shelf/pool"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings read from the config file.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Pool     PoolConfig     `yaml:"pool"`
	Search   SearchConfig   `yaml:"search"`
	Content  ContentConfig  `yaml:"content"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Browser  BrowserConfig  `yaml:"browser"`
	LogLevel string         `yaml:"log_level"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type HTTPConfig struct {
	Timeout     time.Duration      `yaml:"timeout"`
	UserAgent   string             `yaml:"user_agent"`
	RateLimit   float64            `yaml:"rate_limit"`
	Burst       int                `yaml:"burst"`
	HostRates   map[string]float64 `yaml:"host_rates"`
	RetryDelays []time.Duration    `yaml:"retry_delays"`
}

type PoolConfig struct {
	CoreSize      int `yaml:"core_size"`
	MaxSize       int `yaml:"max_size"`
	QueueCapacity int `yaml:"queue_capacity"`
}

type SearchConfig struct {
	SourceTimeout time.Duration `yaml:"source_timeout"`
}

type ContentConfig struct {
	MaxPages int  `yaml:"max_pages"`
	Sanitize bool `yaml:"sanitize"`
	Prefetch int  `yaml:"prefetch"`
}

type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type BrowserConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Bin          string `yaml:"bin"`
	NoSandbox    bool   `yaml:"no_sandbox"`
	RecycleAfter int    `yaml:"recycle_after"`
}

// LoadConfig reads the YAML config at path, expanding ${VAR} references
// from the environment and an optional .env file. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(shelfDir(), "shelf.db")
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 30 * time.Second
	}
	if c.HTTP.RateLimit == 0 {
		c.HTTP.RateLimit = 2
	}
	if c.HTTP.RetryDelays == nil {
		c.HTTP.RetryDelays = crawl.DefaultBackoff()
	}
	if c.Pool.CoreSize == 0 {
		c.Pool.CoreSize = pool.DefaultCoreSize
	}
	if c.Pool.MaxSize == 0 {
		c.Pool.MaxSize = pool.DefaultMaxSize
	}
	if c.Pool.QueueCapacity == 0 {
		c.Pool.QueueCapacity = pool.DefaultQueueCapacity
	}
	if c.Content.MaxPages == 0 {
		c.Content.MaxPages = catalog.DefaultMaxPages
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// defaultConfigPath returns the config file used when none is given.
func defaultConfigPath() string {
	if path := os.Getenv("SHELF_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(shelfDir(), "config.yaml")
}

func shelfDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".shelf")
}

func setupLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	return slog.New(slog.NewTextHandler(w, opts))
}
