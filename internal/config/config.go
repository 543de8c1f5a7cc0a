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

// Config holds the ragdex API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"` // label for logs and metrics
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	TokenCeiling        int    `yaml:"token_ceiling"`
	TimeoutSec          int    `yaml:"timeout_sec"`
	MaxRetries          int    `yaml:"max_retries"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
}

// CompletionConfig holds the completion provider settings. APIKey and
// BaseURL fall back to the embedding provider's when empty.
type CompletionConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	MaxRetries  int     `yaml:"max_retries"`
}

// IngestConfig holds the ingestion pipeline settings.
type IngestConfig struct {
	MaxPages     int     `yaml:"max_pages"`     // PDF page cap
	ChunkSize    int     `yaml:"chunk_size"`    // max chunk length in chars
	ChunkOverlap int     `yaml:"chunk_overlap"` // overlap budget in chars
	Workers      int     `yaml:"workers"`       // embedding worker pool size
	RateLimit    float64 `yaml:"rate_limit"`    // embedding calls per second
	RateBurst    int     `yaml:"rate_burst"`
	HNSWM        int     `yaml:"hnsw_m"`
	HNSWEF       int     `yaml:"hnsw_ef_construction"`
}

// RetrievalConfig holds retrieval defaults.
type RetrievalConfig struct {
	MaxResults int     `yaml:"max_results"`
	Threshold  float64 `yaml:"threshold"`
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
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Ingestion is synchronous; large documents take a while.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.TokenCeiling <= 0 {
		c.Embedding.TokenCeiling = 7000
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Embedding.MaxRetries <= 0 {
		c.Embedding.MaxRetries = 3
	}
	if c.Completion.APIKey == "" {
		c.Completion.APIKey = c.Embedding.APIKey
	}
	if c.Completion.BaseURL == "" {
		c.Completion.BaseURL = c.Embedding.BaseURL
	}
	if c.Completion.Temperature <= 0 {
		c.Completion.Temperature = 0.7
	}
	if c.Completion.MaxTokens <= 0 {
		c.Completion.MaxTokens = 1024
	}
	if c.Completion.TimeoutSec <= 0 {
		c.Completion.TimeoutSec = 60
	}
	if c.Completion.MaxRetries <= 0 {
		c.Completion.MaxRetries = 3
	}
	if c.Ingest.MaxPages <= 0 {
		c.Ingest.MaxPages = 50
	}
	if c.Ingest.ChunkSize <= 0 {
		c.Ingest.ChunkSize = 2000
	}
	if c.Ingest.ChunkOverlap <= 0 {
		c.Ingest.ChunkOverlap = 200
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.RateLimit <= 0 {
		c.Ingest.RateLimit = 10
	}
	if c.Ingest.RateBurst <= 0 {
		c.Ingest.RateBurst = 10
	}
	if c.Ingest.HNSWM <= 0 {
		c.Ingest.HNSWM = 16
	}
	if c.Ingest.HNSWEF <= 0 {
		c.Ingest.HNSWEF = 200
	}
	if c.Retrieval.MaxResults <= 0 {
		c.Retrieval.MaxResults = 5
	}
	if c.Retrieval.Threshold <= 0 {
		c.Retrieval.Threshold = 0.3
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
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Completion.Model == "" {
		return fmt.Errorf("completion.model is required")
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf(
			"ingest.chunk_overlap (%d) must be smaller than ingest.chunk_size (%d)",
			c.Ingest.ChunkOverlap, c.Ingest.ChunkSize,
		)
	}
	if c.Retrieval.Threshold > 1 {
		return fmt.Errorf("retrieval.threshold must be in (0, 1], got %v", c.Retrieval.Threshold)
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
