package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment" validate:"oneof=development production"` // Controls test URL validation
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Crawler     CrawlerConfig   `toml:"crawler"`
	Analysis    AnalysisConfig  `toml:"analysis"`
	Knowledge   KnowledgeConfig `toml:"knowledge"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	LLM         LLMConfig       `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"`
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// CrawlerConfig contains configuration for URL validation, robots
// handling, rate limiting, fetching, and batch orchestration
type CrawlerConfig struct {
	UserAgent         string        `toml:"user_agent" validate:"required"`
	RequestTimeout    time.Duration `toml:"request_timeout" validate:"gt=0"`
	ProbeTimeout      time.Duration `toml:"probe_timeout" validate:"gt=0"`  // HEAD probe timeout for URL validation
	RobotsTimeout     time.Duration `toml:"robots_timeout" validate:"gt=0"` // robots.txt fetch timeout
	RobotsCacheTTL    time.Duration `toml:"robots_cache_ttl"`
	RequestsPerSecond float64       `toml:"requests_per_second" validate:"gt=0"` // Per-domain rate cap
	GlobalRate        float64       `toml:"global_rate" validate:"gt=0"`         // Total outbound requests per second across all domains
	Concurrency       int           `toml:"concurrency" validate:"gt=0"`         // Batch fan-out for scan jobs
	MaxRetries        int           `toml:"max_retries" validate:"gt=0"`
	RetryBackoff      time.Duration `toml:"retry_backoff" validate:"gt=0"`
	RespectRobotsTxt  bool          `toml:"respect_robots_txt"`
	MaxBodySize       int64         `toml:"max_body_size" validate:"gt=0"` // Maximum response body size in bytes
}

// AnalysisConfig contains configuration for content analysis and
// near-duplicate detection
type AnalysisConfig struct {
	DuplicateThreshold float64 `toml:"duplicate_threshold" validate:"gt=0,lte=1"`
	DuplicateCacheSize int     `toml:"duplicate_cache_size" validate:"gt=0"` // LRU bound on the dedup cache
}

// KnowledgeConfig contains configuration for the knowledge base manager
type KnowledgeConfig struct {
	SearchHistoryDays int  `toml:"search_history_days" validate:"gt=0"` // Window for trend/gap analytics
	GapMinOccurrences int  `toml:"gap_min_occurrences" validate:"gt=0"` // Repeats before a zero-result query is a gap
	EnrichmentEnabled bool `toml:"enrichment_enabled"`                  // LLM summary/keyword enrichment on import
}

// SchedulerConfig contains cron schedules for background maintenance
type SchedulerConfig struct {
	Enabled           bool   `toml:"enabled"`
	AnalyticsSchedule string `toml:"analytics_schedule"` // Cron format
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
)

// LLMConfig selects the enrichment provider
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=claude gemini"`
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in scout.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Crawler: CrawlerConfig{
			UserAgent:         "ScoutBot/1.0 (+https://brightreply.com/scout)",
			RequestTimeout:    30 * time.Second,
			ProbeTimeout:      10 * time.Second,
			RobotsTimeout:     5 * time.Second,
			RobotsCacheTTL:    24 * time.Hour,
			RequestsPerSecond: 1.0,
			GlobalRate:        10.0,
			Concurrency:       5,
			MaxRetries:        3,
			RetryBackoff:      1 * time.Second,
			RespectRobotsTxt:  true,
			MaxBodySize:       10 * 1024 * 1024, // 10MB
		},
		Analysis: AnalysisConfig{
			DuplicateThreshold: 0.85,
			DuplicateCacheSize: 1000,
		},
		Knowledge: KnowledgeConfig{
			SearchHistoryDays: 30,
			GapMinOccurrences: 3,
			EnrichmentEnabled: false,
		},
		Scheduler: SchedulerConfig{
			Enabled:           false,
			AnalyticsSchedule: "0 */6 * * *", // Every 6 hours
		},
		Claude: ClaudeConfig{
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   1024,
			Timeout:     "2m",
			Temperature: 0.3,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			MaxTokens:   1024,
			Timeout:     "2m",
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 ->
// file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks the configuration using go-playground/validator tags
func (c *Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SCOUT_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("SCOUT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SCOUT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("SCOUT_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("SCOUT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if userAgent := os.Getenv("SCOUT_CRAWLER_USER_AGENT"); userAgent != "" {
		config.Crawler.UserAgent = userAgent
	}
	if rps := os.Getenv("SCOUT_CRAWLER_REQUESTS_PER_SECOND"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil && v > 0 {
			config.Crawler.RequestsPerSecond = v
		}
	}
	if concurrency := os.Getenv("SCOUT_CRAWLER_CONCURRENCY"); concurrency != "" {
		if v, err := strconv.Atoi(concurrency); err == nil && v > 0 {
			config.Crawler.Concurrency = v
		}
	}
	if respectRobots := os.Getenv("SCOUT_CRAWLER_RESPECT_ROBOTS"); respectRobots != "" {
		if v, err := strconv.ParseBool(respectRobots); err == nil {
			config.Crawler.RespectRobotsTxt = v
		}
	}

	if threshold := os.Getenv("SCOUT_ANALYSIS_DUPLICATE_THRESHOLD"); threshold != "" {
		if v, err := strconv.ParseFloat(threshold, 64); err == nil && v > 0 && v <= 1 {
			config.Analysis.DuplicateThreshold = v
		}
	}

	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = apiKey
	}
	if provider := os.Getenv("SCOUT_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}

// MinRequestInterval derives the minimum per-domain delay between
// requests from the configured rate
func (c *CrawlerConfig) MinRequestInterval() time.Duration {
	if c.RequestsPerSecond <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / c.RequestsPerSecond)
}
