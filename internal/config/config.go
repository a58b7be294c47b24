// Package config provides unified configuration loading for passport-ocr.
// Supports YAML files, environment variables, and flag overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hkb3711220/passport-ocr/internal/domain"
)

// DefaultPrompt is the extraction prompt sent with every image.
const DefaultPrompt = `Please extract the name, passport number, and nationality from the provided passport image.
Output as a JSON object in the following format:

{
  "last_name": "<last_name>",
  "first_name": "<first_name>",
  "passport_number": "<passport_number>",
  "nationality": "<nationality>"
}

Name must be in Last Name First Name order.

Return only the JSON object without any additional text, comments, or explanations.

If there are multiple records, return an array of JSON objects.`

// Config holds all configuration for a batch run.
type Config struct {
	InputDir   string      `yaml:"input_dir"`
	OutputFile string      `yaml:"output_file"`
	Model      ModelConfig `yaml:"model"`
	Batch      BatchConfig `yaml:"batch"`
	Retry      RetryConfig `yaml:"retry"`
	Log        LogConfig   `yaml:"log"`
}

// ModelConfig holds recognition model settings.
type ModelConfig struct {
	APIKey string `yaml:"-"` // environment only, never persisted
	Name   string `yaml:"name"`
	Prompt string `yaml:"prompt"`
}

// BatchConfig holds scheduling settings.
type BatchConfig struct {
	MaxConcurrentFiles int `yaml:"max_concurrent_files"`
}

// Duration wraps time.Duration so YAML values can be written as "500ms" or
// "30s"; yaml.v3 has no native duration support.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// RetryConfig holds retry and backoff settings.
type RetryConfig struct {
	MaxRetries    int      `yaml:"max_retries"`
	RetryDelay    Duration `yaml:"retry_delay"`
	BackoffFactor float64  `yaml:"retry_backoff_factor"`
	MaxRetryDelay Duration `yaml:"max_retry_delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		OutputFile: "ocr_results.json",
		Model: ModelConfig{
			Name:   "gemini-2.0-flash",
			Prompt: DefaultPrompt,
		},
		Batch: BatchConfig{
			MaxConcurrentFiles: 3,
		},
		Retry: RetryConfig{
			MaxRetries:    3,
			RetryDelay:    Duration(time.Second),
			BackoffFactor: 2.0,
			MaxRetryDelay: Duration(30 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from an optional YAML file, then applies
// environment overrides. Pass an empty path to use defaults + environment.
func Load(path string) (*Config, error) {
	// Pick up a .env file if one exists
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ConfigError(fmt.Sprintf("cannot read config file %s", path), err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.ConfigError(fmt.Sprintf("cannot parse config file %s", path), err)
		}
	}

	applyEnv(cfg)

	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
func applyEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("PASSPORT_OCR_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("PASSPORT_OCR_INPUT_DIR"); v != "" {
		cfg.InputDir = v
	}
	if v := os.Getenv("PASSPORT_OCR_OUTPUT_FILE"); v != "" {
		cfg.OutputFile = v
	}
	if v := os.Getenv("PASSPORT_OCR_MAX_CONCURRENT_FILES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Batch.MaxConcurrentFiles = n
		}
	}
	if v := os.Getenv("PASSPORT_OCR_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retry.MaxRetries = n
		}
	}
	if v := os.Getenv("PASSPORT_OCR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PASSPORT_OCR_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// Validate checks that the configuration is usable for a run.
func (c *Config) Validate() error {
	if c.Model.APIKey == "" {
		return domain.ConfigError("GEMINI_API_KEY not set", nil)
	}
	if c.InputDir == "" {
		return domain.ConfigError("input directory is required", nil)
	}
	if c.Batch.MaxConcurrentFiles <= 0 {
		return domain.ConfigError("max_concurrent_files must be positive", nil)
	}
	if c.Retry.MaxRetries < 0 {
		return domain.ConfigError("max_retries cannot be negative", nil)
	}
	if c.Retry.RetryDelay <= 0 {
		return domain.ConfigError("retry_delay must be positive", nil)
	}
	if c.Retry.BackoffFactor < 1 {
		return domain.ConfigError("retry_backoff_factor must be at least 1", nil)
	}
	if c.Retry.MaxRetryDelay <= 0 {
		return domain.ConfigError("max_retry_delay must be positive", nil)
	}
	if c.Model.Prompt == "" {
		return domain.ConfigError("prompt cannot be empty", nil)
	}
	return nil
}
