package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "ocr_results.json", cfg.OutputFile)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model.Name)
	assert.Equal(t, 3, cfg.Batch.MaxConcurrentFiles)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, time.Second, cfg.Retry.RetryDelay.Std())
	assert.Equal(t, 2.0, cfg.Retry.BackoffFactor)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxRetryDelay.Std())
	assert.NotEmpty(t, cfg.Model.Prompt)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input_dir: /scans
output_file: out.json
batch:
  max_concurrent_files: 5
retry:
  max_retries: 1
  retry_delay: 500ms
  retry_backoff_factor: 3.0
  max_retry_delay: 10s
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/scans", cfg.InputDir)
	assert.Equal(t, "out.json", cfg.OutputFile)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrentFiles)
	assert.Equal(t, 1, cfg.Retry.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.RetryDelay.Std())
	assert.Equal(t, 3.0, cfg.Retry.BackoffFactor)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model.Name, "unset fields keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("PASSPORT_OCR_MODEL", "gemini-2.5-pro")
	t.Setenv("PASSPORT_OCR_MAX_CONCURRENT_FILES", "7")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Model.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model.Name)
	assert.Equal(t, 7, cfg.Batch.MaxConcurrentFiles)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Model.APIKey = "key"
		cfg.InputDir = "/scans"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.Model.APIKey = "" }},
		{"missing input dir", func(c *Config) { c.InputDir = "" }},
		{"zero concurrency", func(c *Config) { c.Batch.MaxConcurrentFiles = 0 }},
		{"negative retries", func(c *Config) { c.Retry.MaxRetries = -1 }},
		{"zero retry delay", func(c *Config) { c.Retry.RetryDelay = 0 }},
		{"backoff factor below one", func(c *Config) { c.Retry.BackoffFactor = 0.5 }},
		{"zero max retry delay", func(c *Config) { c.Retry.MaxRetryDelay = 0 }},
		{"empty prompt", func(c *Config) { c.Model.Prompt = "" }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAllowsZeroRetries(t *testing.T) {
	cfg := Default()
	cfg.Model.APIKey = "key"
	cfg.InputDir = "/scans"
	cfg.Retry.MaxRetries = 0

	assert.NoError(t, cfg.Validate())
}
