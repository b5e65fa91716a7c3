package config

import (
	"os"
	"strconv"

	"github.com/FreeMarketamilitia/classroom-grader/internal/drive"
	"github.com/FreeMarketamilitia/classroom-grader/internal/feedback"
	"github.com/FreeMarketamilitia/classroom-grader/internal/retry"
)

// Defaults for values the config file and environment leave unset.
const (
	DefaultClientSecretsPath = "client_secrets.json"
	DefaultAccount           = "default"
	DefaultPageSize          = 50
	DefaultMaxDownloadBytes  = drive.DefaultMaxDownloadBytes
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Google.ClientSecretsPath == "" {
		cfg.Google.ClientSecretsPath = DefaultClientSecretsPath
	}
	if cfg.Google.Account == "" {
		cfg.Google.Account = DefaultAccount
	}
	if cfg.Classroom.PageSize == 0 {
		cfg.Classroom.PageSize = DefaultPageSize
	}
	if cfg.Extract.MaxDownloadBytes == 0 {
		cfg.Extract.MaxDownloadBytes = DefaultMaxDownloadBytes
	}
	if cfg.Feedback.Model == "" {
		cfg.Feedback.Model = feedback.DefaultModel
	}
	if cfg.Feedback.PromptTemplate == "" {
		cfg.Feedback.PromptTemplate = feedback.DefaultPromptTemplate
	}

	def := retry.DefaultPolicy()
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = def.MaxAttempts
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = def.InitialDelay
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry.Multiplier = def.Multiplier
	}
	if cfg.Retry.Jitter == 0 {
		cfg.Retry.Jitter = def.Jitter
	}
}

// ApplyEnv overrides cfg with the environment variables that are set.
func ApplyEnv(cfg *Config) {
	cfg.Debug = getEnvBoolOrDefault("GRADER_DEBUG", cfg.Debug)
	cfg.LogFormat = getEnvOrDefault("GRADER_LOG_FORMAT", cfg.LogFormat)
	cfg.Google.ClientSecretsPath = getEnvOrDefault("CLIENT_SECRETS_PATH", cfg.Google.ClientSecretsPath)
	cfg.Google.Account = getEnvOrDefault("GRADER_ACCOUNT", cfg.Google.Account)
	cfg.Classroom.PageSize = getEnvIntOrDefault("GRADER_PAGE_SIZE", cfg.Classroom.PageSize)
	cfg.Extract.ConvertDocuments = getEnvBoolOrDefault("GRADER_CONVERT_DOCUMENTS", cfg.Extract.ConvertDocuments)
	cfg.Feedback.APIKey = getEnvOrDefault("GEMINI_API_KEY", cfg.Feedback.APIKey)
	cfg.Feedback.Model = getEnvOrDefault("GEMINI_MODEL", cfg.Feedback.Model)
	cfg.Email.Enabled = getEnvBoolOrDefault("GRADER_EMAIL_ENABLED", cfg.Email.Enabled)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
