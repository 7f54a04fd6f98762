package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultFile is read when CONFIG_FILE is unset.
const DefaultFile = "config.yaml"

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigin      string        `yaml:"cors_origin"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel   string `yaml:"log_level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type PricingConfig struct {
	CDF string `yaml:"cdf"` // erf, polynomial, gonum
}

// SweepConfig is the volatility grid in percent.
type SweepConfig struct {
	From        float64 `yaml:"from"`
	To          float64 `yaml:"to"`
	Step        float64 `yaml:"step"`
	Parallelism int     `yaml:"parallelism"`
}

type RecommendConfig struct {
	High            float64 `yaml:"high"`
	Medium          float64 `yaml:"medium"`
	InclusiveBounds bool    `yaml:"inclusive_bounds"`
}

type DisplayConfig struct {
	PricePlaces int32 `yaml:"price_places"`
	DeltaPlaces int32 `yaml:"delta_places"`
}

type CacheConfig struct {
	Backend   string        `yaml:"backend"` // memory, redis, none
	TTL       time.Duration `yaml:"ttl"`
	SizeMB    int           `yaml:"size_mb"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
	KeyPrefix string        `yaml:"key_prefix"`
}

type QuotesConfig struct {
	Provider      string        `yaml:"provider"`
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerMinute int           `yaml:"rate_per_minute"`
	SlowThreshold time.Duration `yaml:"slow_threshold"`
	Cache         CacheConfig   `yaml:"cache"`
}

type TreasuryConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	FallbackRate float64       `yaml:"fallback_rate"`
}

// AuditConfig controls the JSON-lines calculation audit trail
type AuditConfig struct {
	Enabled    bool   `yaml:"enabled"`
	File       string `yaml:"file"`
	BufferSize int    `yaml:"buffer_size"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Sweep     SweepConfig     `yaml:"sweep"`
	Recommend RecommendConfig `yaml:"recommend"`
	Display   DisplayConfig   `yaml:"display"`
	Quotes    QuotesConfig    `yaml:"quotes"`
	Treasury  TreasuryConfig  `yaml:"treasury"`
	Audit     AuditConfig     `yaml:"audit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigin:      "*",
		},
		Logging: LoggingConfig{
			LogLevel:   "info",
			LogFile:    "breakingbad.log",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
		Pricing: PricingConfig{CDF: "erf"},
		Sweep:   SweepConfig{From: 5, To: 50, Step: 2.5, Parallelism: 1},
		Recommend: RecommendConfig{
			High:   0.10,
			Medium: 0.05,
		},
		Display: DisplayConfig{PricePlaces: 2, DeltaPlaces: 3},
		Quotes: QuotesConfig{
			Provider:      "alphavantage",
			BaseURL:       "https://www.alphavantage.co",
			Timeout:       10 * time.Second,
			RatePerMinute: 5,
			SlowThreshold: 2 * time.Second,
			Cache: CacheConfig{
				Backend:   "memory",
				TTL:       60 * time.Second,
				SizeMB:    8,
				RedisAddr: "localhost:6379",
				KeyPrefix: "breakingbad:quote:",
			},
		},
		Treasury: TreasuryConfig{
			BaseURL:      "https://api.fiscaldata.treasury.gov/services/api/fiscal_service",
			Timeout:      10 * time.Second,
			FallbackRate: 0.04,
		},
		Audit: AuditConfig{
			File:       "audit.jsonl",
			BufferSize: 100,
			MaxSizeMB:  20,
			MaxBackups: 3,
		},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// Load reads CONFIG_FILE (or config.yaml) and applies environment overrides.
func Load() (*Config, error) {
	return LoadFrom(getEnv("CONFIG_FILE", DefaultFile))
}

// LoadFrom layers defaults, the YAML file at path (if it exists) and the
// environment, in that order. The result is validated.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// no file, defaults + env only
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.CORSOrigin = getEnv("CORS_ORIGIN", cfg.Server.CORSOrigin)

	cfg.Logging.LogLevel = getEnv("LOG_LEVEL", cfg.Logging.LogLevel)
	cfg.Logging.LogFile = getEnv("LOG_FILE", cfg.Logging.LogFile)

	cfg.Pricing.CDF = getEnv("PRICING_CDF", cfg.Pricing.CDF)
	cfg.Sweep.Parallelism = getEnvInt("SWEEP_PARALLELISM", cfg.Sweep.Parallelism)

	cfg.Recommend.High = getEnvFloat("RECOMMEND_HIGH", cfg.Recommend.High)
	cfg.Recommend.Medium = getEnvFloat("RECOMMEND_MEDIUM", cfg.Recommend.Medium)

	cfg.Quotes.APIKey = getEnv("ALPHA_VANTAGE_API_KEY", cfg.Quotes.APIKey)
	cfg.Quotes.Timeout = getEnvDuration("QUOTES_TIMEOUT", cfg.Quotes.Timeout)
	cfg.Quotes.Cache.Backend = getEnv("QUOTES_CACHE_BACKEND", cfg.Quotes.Cache.Backend)
	cfg.Quotes.Cache.RedisAddr = getEnv("REDIS_ADDR", cfg.Quotes.Cache.RedisAddr)

	cfg.Treasury.FallbackRate = getEnvFloat("TREASURY_FALLBACK_RATE", cfg.Treasury.FallbackRate)

	cfg.Audit.Enabled = getEnvBool("AUDIT_ENABLED", cfg.Audit.Enabled)
	cfg.Audit.File = getEnv("AUDIT_FILE", cfg.Audit.File)

	cfg.Metrics.Enabled = getEnvBool("METRICS_ENABLED", cfg.Metrics.Enabled)
}

var logLevels = []string{"error", "warn", "info", "debug", "verbose"}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port == "" {
		problems = append(problems, "server.port is required")
	}
	if !contains(logLevels, c.Logging.LogLevel) {
		problems = append(problems, fmt.Sprintf("logging.log_level %q must be one of %s", c.Logging.LogLevel, strings.Join(logLevels, ", ")))
	}
	if !contains([]string{"", "erf", "polynomial", "poly", "zelen-severo", "gonum"}, strings.ToLower(c.Pricing.CDF)) {
		problems = append(problems, fmt.Sprintf("pricing.cdf %q is not supported", c.Pricing.CDF))
	}
	if c.Sweep.From <= 0 || c.Sweep.Step <= 0 || c.Sweep.To < c.Sweep.From {
		problems = append(problems, fmt.Sprintf("sweep grid %v..%v step %v is invalid", c.Sweep.From, c.Sweep.To, c.Sweep.Step))
	}
	if c.Sweep.Parallelism < 1 {
		problems = append(problems, "sweep.parallelism must be at least 1")
	}
	if c.Recommend.Medium <= 0 || c.Recommend.High < c.Recommend.Medium {
		problems = append(problems, fmt.Sprintf("recommend thresholds medium=%v high=%v need 0 < medium <= high", c.Recommend.Medium, c.Recommend.High))
	}
	if c.Display.PricePlaces < 0 || c.Display.PricePlaces > 8 || c.Display.DeltaPlaces < 0 || c.Display.DeltaPlaces > 8 {
		problems = append(problems, "display places must be between 0 and 8")
	}
	if c.Quotes.Provider != "alphavantage" {
		problems = append(problems, fmt.Sprintf("quotes.provider %q is not supported", c.Quotes.Provider))
	}
	if c.Quotes.RatePerMinute <= 0 {
		problems = append(problems, "quotes.rate_per_minute must be positive")
	}
	if !contains([]string{"memory", "redis", "none"}, c.Quotes.Cache.Backend) {
		problems = append(problems, fmt.Sprintf("quotes.cache.backend %q must be memory, redis or none", c.Quotes.Cache.Backend))
	}
	if c.Quotes.Cache.Backend != "none" && c.Quotes.Cache.TTL <= 0 {
		problems = append(problems, "quotes.cache.ttl must be positive")
	}
	if c.Audit.Enabled && c.Audit.File == "" {
		problems = append(problems, "audit.file is required when audit is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
