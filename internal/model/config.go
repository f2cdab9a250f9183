package model

import "time"

// Config holds all relvet settings. It is built once at startup from
// defaults, config file, environment and flags, then passed read-only
// into each component constructor.
type Config struct {
	Verifier   VerifierConfig   `yaml:"verifier" mapstructure:"verifier"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Checkpoint CheckpointConfig `yaml:"checkpoint" mapstructure:"checkpoint"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// VerifierConfig configures the external verification service.
type VerifierConfig struct {
	// Provider name: "ollama" or "openai".
	Provider string `yaml:"provider" mapstructure:"provider"`
	// Model is the model identifier (provider-specific).
	Model string `yaml:"model" mapstructure:"model"`
	// BaseURL for custom endpoints (e.g. a remote Ollama host).
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIKey for hosted providers. Never written to config files.
	APIKey string `yaml:"-" mapstructure:"-"`
	// Timeout per verification request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Temperature for generation. Kept low for deterministic verdicts.
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	// MaxTokens limits the response length.
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// BatchConfig controls batching and the per-run cap.
type BatchConfig struct {
	// Size is the number of records between checkpoint saves.
	Size int `yaml:"size" mapstructure:"size"`
	// MaxPerRun caps how many unprocessed records a single run verifies.
	// Negative means unlimited; zero processes nothing.
	MaxPerRun int `yaml:"max_per_run" mapstructure:"max_per_run"`
	// Workers is the number of concurrent verification calls per batch.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CheckpointConfig locates the persisted progress file.
type CheckpointConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// RateLimitConfig throttles calls to the verification service.
type RateLimitConfig struct {
	// RequestsPerSecond across all workers. Zero or negative disables
	// throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls the in-run verification outcome cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls report artifacts.
type OutputConfig struct {
	// Dir is where report artifacts are written.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// Markdown enables the Markdown report alongside JSON.
	Markdown bool `yaml:"markdown" mapstructure:"markdown"`
	// ShowPreview prints the first invalid relationships to stdout.
	ShowPreview bool `yaml:"show_preview" mapstructure:"show_preview"`
	Verbose     bool `yaml:"verbose" mapstructure:"verbose"`
}

// LoggingConfig controls leveled log output.
type LoggingConfig struct {
	// Level: debug, info, warn, error or "none" to silence everything.
	Level string `yaml:"level" mapstructure:"level"`
	// Dir is where dated log files are written when ToFile is set.
	Dir    string `yaml:"dir" mapstructure:"dir"`
	ToFile bool   `yaml:"to_file" mapstructure:"to_file"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Verifier: VerifierConfig{
			Provider:    "ollama",
			Model:       "deepseek-r1:8b",
			Timeout:     60 * time.Second,
			Temperature: 0.1,
			MaxTokens:   512,
		},
		Batch: BatchConfig{
			Size:      32,
			MaxPerRun: -1,
			Workers:   4,
		},
		Checkpoint: CheckpointConfig{
			Path: "checkpoint.json",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2.0,
			BurstSize:         1,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Output: OutputConfig{
			Dir:      ".",
			Markdown: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Dir:    "logs",
			ToFile: true,
		},
	}
}
