package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"google.golang.org/api/option"

	"github.com/FreeMarketamilitia/classroom-grader/internal/config"
	"github.com/FreeMarketamilitia/classroom-grader/internal/feedback"
	"github.com/FreeMarketamilitia/classroom-grader/internal/google"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
	"github.com/FreeMarketamilitia/classroom-grader/internal/logging"
	"github.com/FreeMarketamilitia/classroom-grader/internal/server"
)

// app holds what every command that talks to Google needs.
type app struct {
	cfg      *config.Config
	account  string
	logger   *slog.Logger
	provider *instrumentation.Provider
	tokens   google.TokenProvider
	feedback feedback.Generator
}

// loadConfig reads the config file and applies the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if debugFlag {
		cfg.Debug = true
	}
	if accountArg != "" {
		cfg.Google.Account = accountArg
	}
	return cfg, nil
}

// setupLogging installs the process logger. Logs always go to logOut so
// stdout stays free for command output and the MCP stdio transport.
func setupLogging(cfg *config.Config, logOut io.Writer) (*slog.Logger, error) {
	level := "info"
	if cfg.Debug {
		level = "debug"
	}
	return logging.Setup(logging.Options{Level: level, Format: cfg.LogFormat, Output: logOut})
}

// newApp loads configuration, logging, instrumentation, OAuth tokens and
// the optional feedback generator.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := setupLogging(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	oauthConfig, err := google.LoadOAuthConfig(cfg.Google.ClientSecretsPath)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}

	gen, err := newFeedbackGenerator(ctx, cfg, provider.Metrics(), logger)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}

	return &app{
		cfg:      cfg,
		account:  cfg.Google.Account,
		logger:   logger,
		provider: provider,
		tokens:   google.NewFileTokenProvider(oauthConfig),
		feedback: gen,
	}, nil
}

// newFeedbackGenerator returns nil without an API key.
func newFeedbackGenerator(ctx context.Context, cfg *config.Config, metrics *instrumentation.Metrics, logger *slog.Logger) (feedback.Generator, error) {
	if !cfg.Feedback.Enabled() {
		logger.Info("GEMINI_API_KEY not set, AI feedback is disabled")
		return nil, nil
	}
	client, err := feedback.NewGeminiClient(ctx, feedback.GeminiOptions{
		APIKey:         cfg.Feedback.APIKey,
		Model:          cfg.Feedback.Model,
		PromptTemplate: cfg.Feedback.PromptTemplate,
		API:            google.APIOptions{Metrics: metrics, Retry: cfg.Retry.Policy(), Logger: logger},
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback client: %w", err)
	}
	return client, nil
}

// services builds the pipeline for the app account.
func (r *app) services(ctx context.Context) (*server.Services, error) {
	if !r.tokens.HasTokenForAccount(r.account) {
		return nil, fmt.Errorf("%s", google.GetAuthenticationErrorMessage(r.account))
	}
	httpClient, err := r.tokens.HTTPClientForAccount(ctx, r.account)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client for account %s: %w", r.account, err)
	}
	return server.BuildServices(ctx, r.account, server.ServiceOptions{
		Config:   r.cfg,
		Feedback: r.feedback,
		Metrics:  r.provider.Metrics(),
		Audit:    r.provider.Audit(),
		Logger:   r.logger,
	}, option.WithHTTPClient(httpClient))
}

func (r *app) Close(ctx context.Context) {
	if err := r.provider.Shutdown(ctx); err != nil {
		r.logger.Warn("Error during instrumentation shutdown", logging.Err(err))
	}
}
