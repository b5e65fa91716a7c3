// Package config loads the grader configuration from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FreeMarketamilitia/classroom-grader/internal/feedback"
	"github.com/FreeMarketamilitia/classroom-grader/internal/retry"
)

const appName = "classroom-grader"

// Config holds all configuration for the grader.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogFormat string          `yaml:"log_format"`
	Google    GoogleConfig    `yaml:"google"`
	Classroom ClassroomConfig `yaml:"classroom"`
	Extract   ExtractConfig   `yaml:"extract"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
	Retry     RetryConfig     `yaml:"retry"`
	Email     EmailConfig     `yaml:"email"`
}

// GoogleConfig holds OAuth settings.
type GoogleConfig struct {
	ClientSecretsPath string `yaml:"client_secrets_path"`
	Account           string `yaml:"account"`
}

// ClassroomConfig holds Classroom API settings.
type ClassroomConfig struct {
	PageSize int64 `yaml:"page_size"`
}

// ExtractConfig holds attachment extraction settings.
type ExtractConfig struct {
	ConvertDocuments bool  `yaml:"convert_documents"`
	MaxDownloadBytes int64 `yaml:"max_download_bytes"`
}

// FeedbackConfig holds AI feedback settings. Feedback is disabled without an API key.
type FeedbackConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	PromptTemplate string `yaml:"prompt_template"`
}

// Enabled reports whether an API key is configured.
func (f FeedbackConfig) Enabled() bool {
	return f.APIKey != ""
}

// RetryConfig holds the retry policy for Google API calls.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
	Jitter       float64       `yaml:"jitter"`
}

// Policy converts the settings to a retry.Policy.
func (r RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  r.MaxAttempts,
		InitialDelay: r.InitialDelay,
		MaxDelay:     r.MaxDelay,
		Multiplier:   r.Multiplier,
		Jitter:       r.Jitter,
	}
}

// EmailConfig holds feedback email settings.
type EmailConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultPath returns $XDG_CONFIG_HOME/classroom-grader/config.yaml, or ""
// when no user config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.yaml")
}

// Load reads the config file at path, applies environment overrides and
// defaults, and validates the result. An empty path loads DefaultPath, which
// may be absent.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultPath()
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
			cfg.Google.ClientSecretsPath = expandPath(cfg.Google.ClientSecretsPath, filepath.Dir(path))
		case optional && errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Classroom.PageSize <= 0 {
		return fmt.Errorf("classroom.page_size must be positive, got %d", c.Classroom.PageSize)
	}
	if c.Extract.MaxDownloadBytes <= 0 {
		return fmt.Errorf("extract.max_download_bytes must be positive, got %d", c.Extract.MaxDownloadBytes)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("retry.multiplier must be at least 1, got %v", c.Retry.Multiplier)
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter > 1 {
		return fmt.Errorf("retry.jitter must be between 0 and 1, got %v", c.Retry.Jitter)
	}
	if err := feedback.ValidateTemplate(c.Feedback.PromptTemplate); err != nil {
		return fmt.Errorf("feedback.prompt_template: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// expandPath resolves "./" paths against the config file's directory and
// "~/" paths against the home directory.
func expandPath(path, configDir string) string {
	switch {
	case path == "" || filepath.IsAbs(path):
		return path
	case strings.HasPrefix(path, "./"):
		return filepath.Join(configDir, path)
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
