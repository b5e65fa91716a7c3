package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"google.golang.org/api/option"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/config"
	"github.com/FreeMarketamilitia/classroom-grader/internal/docs"
	"github.com/FreeMarketamilitia/classroom-grader/internal/drive"
	"github.com/FreeMarketamilitia/classroom-grader/internal/extract"
	"github.com/FreeMarketamilitia/classroom-grader/internal/feedback"
	"github.com/FreeMarketamilitia/classroom-grader/internal/forms"
	"github.com/FreeMarketamilitia/classroom-grader/internal/gmail"
	"github.com/FreeMarketamilitia/classroom-grader/internal/google"
	"github.com/FreeMarketamilitia/classroom-grader/internal/grader"
	"github.com/FreeMarketamilitia/classroom-grader/internal/instrumentation"
	"github.com/FreeMarketamilitia/classroom-grader/internal/logging"
)

// Options configures a ServerContext.
type Options struct {
	Config *config.Config
	// TokenProvider authenticates per-account clients. Without it only
	// services installed with SetServices are available.
	TokenProvider google.TokenProvider
	// Feedback is shared by all accounts. Nil disables AI feedback.
	Feedback feedback.Generator
	Metrics  *instrumentation.Metrics
	Audit    *instrumentation.AuditLogger
	Logger   *slog.Logger
}

// Services bundles the API clients and pipeline components for one account.
type Services struct {
	Account   string
	Classroom *classroom.Client
	Extractor *extract.Extractor
	Grader    *grader.Grader
	Feedback  feedback.Generator
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Config
	tp       google.TokenProvider
	feedback feedback.Generator
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
	logger   *slog.Logger
	services map[string]*Services // Maps account name to its services
	mu       sync.Mutex
	shutdown bool
}

// NewServerContext creates a new server context. Services are created lazily
// per account on first use.
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		cfg:      cfg,
		tp:       opts.TokenProvider,
		feedback: opts.Feedback,
		metrics:  opts.Metrics,
		audit:    opts.Audit,
		logger:   logging.OrDefault(opts.Logger),
		services: make(map[string]*Services),
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the loaded configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// ServicesForAccount returns the services for account, creating and caching
// them on first use.
func (sc *ServerContext) ServicesForAccount(account string) (*Services, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil, fmt.Errorf("server is shutting down")
	}
	if svc, ok := sc.services[account]; ok {
		return svc, nil
	}
	if sc.tp == nil || !sc.tp.HasTokenForAccount(account) {
		return nil, errors.New(google.GetAuthenticationErrorMessage(account))
	}

	httpClient, err := sc.tp.HTTPClientForAccount(sc.ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}
	svc, err := sc.NewServices(sc.ctx, account, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	sc.services[account] = svc
	return svc, nil
}

// NewServices builds the clients and pipeline for account from clientOpts
// without caching them.
func (sc *ServerContext) NewServices(ctx context.Context, account string, clientOpts ...option.ClientOption) (*Services, error) {
	return BuildServices(ctx, account, ServiceOptions{
		Config:   sc.cfg,
		Feedback: sc.feedback,
		Metrics:  sc.metrics,
		Audit:    sc.audit,
		Logger:   sc.logger,
	}, clientOpts...)
}

// HasCredentials reports whether services for account exist or can be created.
func (sc *ServerContext) HasCredentials(account string) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if _, ok := sc.services[account]; ok {
		return true
	}
	return sc.tp != nil && sc.tp.HasTokenForAccount(account)
}

// DefaultAccount returns the account used when a request names none.
func (sc *ServerContext) DefaultAccount() string {
	if sc.cfg.Google.Account != "" {
		return sc.cfg.Google.Account
	}
	return config.DefaultAccount
}

// SetServices installs the services for account.
func (sc *ServerContext) SetServices(account string, svc *Services) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.services[account] = svc
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.services = make(map[string]*Services)
	sc.cancel()
	return nil
}

// ServiceOptions configures BuildServices.
type ServiceOptions struct {
	Config   *config.Config
	Feedback feedback.Generator
	Mailer   grader.EmailSender
	Metrics  *instrumentation.Metrics
	Audit    *instrumentation.AuditLogger
	Logger   *slog.Logger
}

// BuildServices creates the Classroom, Drive, Forms, Docs and Gmail clients
// for account and wires them into an extractor and grader. The CLI and the
// MCP server share it.
func BuildServices(ctx context.Context, account string, opts ServiceOptions, clientOpts ...option.ClientOption) (*Services, error) {
	cfg := opts.Config
	logger := logging.OrDefault(opts.Logger).With(logging.Account(account))
	api := google.APIOptions{Metrics: opts.Metrics, Retry: cfg.Retry.Policy(), Logger: logger}

	classroomClient, err := classroom.NewClient(ctx, classroom.Options{PageSize: cfg.Classroom.PageSize, API: api}, clientOpts...)
	if err != nil {
		return nil, err
	}
	driveClient, err := drive.NewClient(ctx, drive.Options{MaxDownloadBytes: cfg.Extract.MaxDownloadBytes, API: api}, clientOpts...)
	if err != nil {
		return nil, err
	}
	formsClient, err := forms.NewClient(ctx, api, clientOpts...)
	if err != nil {
		return nil, err
	}
	docsClient, err := docs.NewClient(ctx, api, clientOpts...)
	if err != nil {
		return nil, err
	}

	mailer := opts.Mailer
	if mailer == nil && cfg.Email.Enabled {
		gmailClient, err := gmail.NewClient(ctx, api, clientOpts...)
		if err != nil {
			return nil, err
		}
		mailer = gmailClient
	}

	extractor := extract.New(driveClient, formsClient, docsClient, extract.Options{
		ConvertDocuments: cfg.Extract.ConvertDocuments,
		Metrics:          opts.Metrics,
		Logger:           logger,
	})

	return &Services{
		Account:   account,
		Classroom: classroomClient,
		Extractor: extractor,
		Grader: grader.New(classroomClient, extractor, grader.Options{
			Feedback: opts.Feedback,
			Mailer:   mailer,
			Metrics:  opts.Metrics,
			Audit:    opts.Audit,
			Logger:   logger,
		}),
		Feedback: opts.Feedback,
	}, nil
}
