package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the ragchat configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Extract    ExtractConfig    `yaml:"extract"`
	Upload     UploadConfig     `yaml:"upload"`
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

// OpenAIConfig holds the credentials shared by the embedding and completion clients.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	Model             string `yaml:"model"`
	Dimensions        int    `yaml:"dimensions"` // 0 = model default
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
	Concurrency       int    `yaml:"concurrency"`
	BatchSize         int    `yaml:"batch_size"` // <= 1 = one request per chunk
}

// CompletionConfig holds answer generation settings. Temperature is fixed.
type CompletionConfig struct {
	Model             string `yaml:"model"`
	MaxTokens         int    `yaml:"max_tokens"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
}

// ChunkerConfig holds text splitting settings.
type ChunkerConfig struct {
	MaxWords int `yaml:"max_words"`
}

// ExtractConfig holds web page fetching settings.
type ExtractConfig struct {
	HTTPTimeoutSec int    `yaml:"http_timeout_sec"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes"`
	UserAgent      string `yaml:"user_agent"`
}

// UploadConfig holds PDF upload limits.
type UploadConfig struct {
	MaxPDFBytes int64 `yaml:"max_pdf_bytes"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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
		// /load/* embeds a whole document before responding.
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-ada-002"
	}
	if c.Embedding.RequestTimeoutSec <= 0 {
		c.Embedding.RequestTimeoutSec = 30
	}
	if c.Embedding.Concurrency <= 0 {
		c.Embedding.Concurrency = 4
	}
	if c.Completion.Model == "" {
		c.Completion.Model = "gpt-3.5-turbo"
	}
	if c.Completion.MaxTokens <= 0 {
		c.Completion.MaxTokens = 200
	}
	if c.Completion.RequestTimeoutSec <= 0 {
		c.Completion.RequestTimeoutSec = 30
	}
	if c.Chunker.MaxWords <= 0 {
		c.Chunker.MaxWords = 500
	}
	if c.Extract.HTTPTimeoutSec <= 0 {
		c.Extract.HTTPTimeoutSec = 15
	}
	if c.Extract.MaxBodyBytes <= 0 {
		c.Extract.MaxBodyBytes = 10 << 20
	}
	if c.Extract.UserAgent == "" {
		c.Extract.UserAgent = "ragchat/1.0"
	}
	if c.Upload.MaxPDFBytes <= 0 {
		c.Upload.MaxPDFBytes = 32 << 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	if c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("openai.api_key is required (or set OPENAI_API_KEY)"))
	}
	if c.Embedding.Dimensions < 0 {
		errs = append(errs, fmt.Errorf("embedding.dimensions must be >= 0, got %d", c.Embedding.Dimensions))
	}
	if c.Embedding.Concurrency > 64 {
		errs = append(errs, fmt.Errorf("embedding.concurrency must be <= 64, got %d", c.Embedding.Concurrency))
	}
	if c.Embedding.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("embedding.batch_size must be >= 0, got %d", c.Embedding.BatchSize))
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		errs = append(errs, fmt.Errorf(
			"logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level,
		))
	}
	return errors.Join(errs...)
}

// EmbeddingTimeout returns the per-request embedding timeout.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.RequestTimeoutSec) * time.Second
}

// CompletionTimeout returns the per-request completion timeout.
func (c *Config) CompletionTimeout() time.Duration {
	return time.Duration(c.Completion.RequestTimeoutSec) * time.Second
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
