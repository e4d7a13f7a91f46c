// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/profile-architect/internal/llm"
	"github.com/jonathan/profile-architect/internal/logging"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey     = "GEMINI_API_KEY"
	EnvChromePath = "CHROME_PATH"
	EnvLogLevel   = "PROFILE_AGENT_LOG_LEVEL"
)

// Defaults for optional settings.
const (
	DefaultRequestTimeout = 2 * time.Minute
	DefaultPort           = 8080
	DefaultRateLimit      = 2.0
	DefaultRateBurst      = 10
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "pretty"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Discovery   string   `json:"discovery,omitempty" yaml:"discovery,omitempty"`     // Path to discovery answers (JSON/YAML)
	Personal    string   `json:"personal,omitempty" yaml:"personal,omitempty"`       // Path to personal details (JSON/YAML)
	Content     string   `json:"content,omitempty" yaml:"content,omitempty"`         // Path to raw profile notes
	Portfolio   string   `json:"portfolio,omitempty" yaml:"portfolio,omitempty"`     // Portfolio or LinkedIn URL
	Attachments []string `json:"attachments,omitempty" yaml:"attachments,omitempty"` // Attachment files or data URLs
	Portrait    string   `json:"portrait,omitempty" yaml:"portrait,omitempty"`       // Portrait image file or data URL
	OutputDir   string   `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`   // Where artifacts are written

	// Model
	APIKey         string            `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Models         map[string]string `json:"models,omitempty" yaml:"models,omitempty"` // Tier name to model name
	Temperature    float32           `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	RequestTimeout string            `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"` // Go duration, e.g. "90s"

	// Export
	ChromePath string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`

	// Logging
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"` // json or pretty

	// Server
	Port      int     `json:"port,omitempty" yaml:"port,omitempty"`
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"` // Requests per second per client
	RateBurst int     `json:"rate_burst,omitempty" yaml:"rate_burst,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		OutputDir:      ".",
		RequestTimeout: DefaultRequestTimeout.String(),
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		Port:           DefaultPort,
		RateLimit:      DefaultRateLimit,
		RateBurst:      DefaultRateBurst,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := DecodeFile(path, data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DecodeFile unmarshals data into v as YAML for .yaml/.yml paths and JSON otherwise.
func DecodeFile(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}
	return nil
}

// ApplyEnv fills empty fields from the environment.
func (c *Config) ApplyEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv(EnvAPIKey)
	}
	if c.ChromePath == "" {
		c.ChromePath = os.Getenv(EnvChromePath)
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config error: 'rate_limit' must be non-negative")
	}
	if c.RateBurst < 0 {
		return fmt.Errorf("config error: 'rate_burst' must be non-negative")
	}
	if c.RequestTimeout != "" {
		d, err := time.ParseDuration(c.RequestTimeout)
		if err != nil {
			return fmt.Errorf("config error: invalid 'request_timeout': %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: 'request_timeout' must be positive")
		}
	}
	if c.LogFormat != "" && c.LogFormat != "json" && c.LogFormat != "pretty" {
		return fmt.Errorf("config error: 'log_format' must be json or pretty")
	}
	for tier := range c.Models {
		switch llm.ModelTier(tier) {
		case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
		default:
			return fmt.Errorf("config error: unknown model tier %q", tier)
		}
	}

	for name, p := range map[string]string{"discovery": c.Discovery, "personal": c.Personal, "content": c.Content} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s file not found: %s", name, p)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	for _, f := range []struct {
		dst *string
		src string
	}{
		{&result.Discovery, defaults.Discovery},
		{&result.Personal, defaults.Personal},
		{&result.Content, defaults.Content},
		{&result.Portfolio, defaults.Portfolio},
		{&result.Portrait, defaults.Portrait},
		{&result.OutputDir, defaults.OutputDir},
		{&result.APIKey, defaults.APIKey},
		{&result.RequestTimeout, defaults.RequestTimeout},
		{&result.ChromePath, defaults.ChromePath},
		{&result.LogLevel, defaults.LogLevel},
		{&result.LogFormat, defaults.LogFormat},
	} {
		if *f.dst == "" {
			*f.dst = f.src
		}
	}

	if len(result.Attachments) == 0 {
		result.Attachments = defaults.Attachments
	}
	if len(result.Models) == 0 {
		result.Models = defaults.Models
	}
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimit == 0 {
		result.RateLimit = defaults.RateLimit
	}
	if result.RateBurst == 0 {
		result.RateBurst = defaults.RateBurst
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Timeout returns the parsed request timeout, or the default when unset or invalid.
func (c *Config) Timeout() time.Duration {
	if d, err := time.ParseDuration(c.RequestTimeout); err == nil && d > 0 {
		return d
	}
	return DefaultRequestTimeout
}

// LLMConfig builds the model configuration, overlaying configured models on the defaults.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	for tier, model := range c.Models {
		if model != "" {
			cfg = cfg.WithModel(llm.ModelTier(tier), model)
		}
	}
	if c.Temperature > 0 {
		cfg.Temperature = c.Temperature
	}
	return cfg
}

// LoggingConfig returns the logger settings.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:  c.LogLevel,
		Format: c.LogFormat,
	}
}
