package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the unisearch API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Routing  RoutingConfig  `yaml:"routing"`
	Adapters AdaptersConfig `yaml:"adapters"`
	Cache    CacheConfig    `yaml:"cache"`
	Stream   StreamConfig   `yaml:"stream"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings for the answer cache.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RoutingConfig holds classifier and pipeline settings.
type RoutingConfig struct {
	// ConfidenceThreshold is the level below which a decision counts as
	// ambiguous. Ambiguous queries route to hybrid.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	// PipelineTimeoutSec bounds the whole routing-to-synthesis pipeline.
	PipelineTimeoutSec int `yaml:"pipeline_timeout_sec"`
}

// AdaptersConfig holds per-adapter collaborator settings.
type AdaptersConfig struct {
	Document DocumentAdapterConfig `yaml:"document"`
	Web      WebAdapterConfig      `yaml:"web"`
}

// DocumentAdapterConfig holds document index collaborator settings.
type DocumentAdapterConfig struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// WebAdapterConfig holds web search collaborator settings.
type WebAdapterConfig struct {
	BaseURL      string  `yaml:"base_url"`
	TimeoutSec   int     `yaml:"timeout_sec"`
	CostPerQuery float64 `yaml:"cost_per_query"`
	// RateLimitPerSec caps outbound provider calls; 0 disables limiting.
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	Burst           int     `yaml:"burst"`
}

// CacheConfig holds answer cache settings. TTLs are keyed by query
// complexity class; a zero TTL disables caching for that class.
type CacheConfig struct {
	Enabled       bool `yaml:"enabled"`
	SimpleTTLSec  int  `yaml:"simple_ttl_sec"`
	StandardTTL   int  `yaml:"standard_ttl_sec"`
	OpenTTLSec    int  `yaml:"open_ttl_sec"`
	HistoryTTLSec int  `yaml:"history_ttl_sec"`
}

// StreamConfig holds chunked delivery settings.
type StreamConfig struct {
	Model            string `yaml:"model"`
	MinChunkWords    int    `yaml:"min_chunk_words"`
	TargetChunkCount int    `yaml:"target_chunk_count"`
	FirstDelayMS     int    `yaml:"first_delay_ms"`
	EarlyDelayMS     int    `yaml:"early_delay_ms"`
	LateDelayMS      int    `yaml:"late_delay_ms"`
	CachedDelayMS    int    `yaml:"cached_delay_ms"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Streaming responses hold the connection open across pacing delays.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Routing.ConfidenceThreshold <= 0 {
		c.Routing.ConfidenceThreshold = 0.5
	}
	if c.Routing.PipelineTimeoutSec <= 0 {
		c.Routing.PipelineTimeoutSec = 30
	}
	if c.Adapters.Document.TimeoutSec <= 0 {
		c.Adapters.Document.TimeoutSec = 5
	}
	if c.Adapters.Web.TimeoutSec <= 0 {
		c.Adapters.Web.TimeoutSec = 10
	}
	if c.Adapters.Web.CostPerQuery <= 0 {
		c.Adapters.Web.CostPerQuery = 0.002
	}
	if c.Adapters.Web.Burst <= 0 {
		c.Adapters.Web.Burst = 1
	}
	if c.Cache.SimpleTTLSec <= 0 {
		c.Cache.SimpleTTLSec = 3600
	}
	if c.Cache.StandardTTL <= 0 {
		c.Cache.StandardTTL = 600
	}
	if c.Cache.HistoryTTLSec <= 0 {
		c.Cache.HistoryTTLSec = 86400
	}
	if c.Stream.Model == "" {
		c.Stream.Model = "unisearch"
	}
	if c.Stream.MinChunkWords <= 0 {
		c.Stream.MinChunkWords = 8
	}
	if c.Stream.TargetChunkCount <= 0 {
		c.Stream.TargetChunkCount = 25
	}
	if c.Stream.FirstDelayMS <= 0 {
		c.Stream.FirstDelayMS = 50
	}
	if c.Stream.EarlyDelayMS <= 0 {
		c.Stream.EarlyDelayMS = 80
	}
	if c.Stream.LateDelayMS <= 0 {
		c.Stream.LateDelayMS = 120
	}
	if c.Stream.CachedDelayMS <= 0 {
		c.Stream.CachedDelayMS = 50
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Routing.ConfidenceThreshold > 1 {
		return fmt.Errorf(
			"routing.confidence_threshold must be in (0,1], got %v",
			c.Routing.ConfidenceThreshold,
		)
	}
	if c.Adapters.Document.BaseURL == "" {
		return fmt.Errorf("adapters.document.base_url is required")
	}
	if c.Adapters.Web.BaseURL == "" {
		return fmt.Errorf("adapters.web.base_url is required")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
