package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/FreeMarketamilitia/classroom-grader/internal/logging"
	"github.com/FreeMarketamilitia/classroom-grader/internal/resources"
	"github.com/FreeMarketamilitia/classroom-grader/internal/server"
	"github.com/FreeMarketamilitia/classroom-grader/internal/tools/classroom_tools"
)

// Transport names accepted by --transport.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// serveOptions holds the serve command flags.
type serveOptions struct {
	Transport      string
	HTTPAddr       string
	ReadOnly       bool
	MetricsEnabled bool
	MetricsAddr    string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Google Classroom
grading tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport, served on /mcp

Safety Mode:
  Use --read-only to register only the tools that do not write to Classroom.

Metrics:
  With the streamable-http transport and METRICS_EXPORTER=prometheus, metrics
  and health checks are served on a dedicated port (--metrics-addr).
  Without a metrics server the health checks are served next to /mcp.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics-enabled") {
				if v := os.Getenv("METRICS_ENABLED"); v != "" {
					opts.MetricsEnabled = v == "true"
				}
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					opts.MetricsAddr = addr
				}
			}
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.HTTPAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.ReadOnly, "read-only", false, "Disable the tools that write grades or return submissions")
	cmd.Flags().BoolVar(&opts.MetricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(opts serveOptions) error {
	if opts.Transport != transportStdio && opts.Transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.Transport)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(shutdownCtx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	serverContext, err := server.NewServerContext(shutdownCtx, server.Options{
		Config:        a.cfg,
		TokenProvider: a.tokens,
		Feedback:      a.feedback,
		Metrics:       a.provider.Metrics(),
		Audit:         a.provider.Audit(),
		Logger:        a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			a.logger.Warn("Error during server context shutdown", logging.Err(err))
		}
	}()

	if !serverContext.HasCredentials(serverContext.DefaultAccount()) {
		a.logger.Warn("No Google token for the default account, tools will fail until it is authorized",
			logging.Account(serverContext.DefaultAccount()))
	}

	mcpSrv, err := newMCPServer(serverContext, opts.ReadOnly)
	if err != nil {
		return err
	}

	if opts.Transport == transportStdio {
		return runStdioServer(mcpSrv)
	}

	if opts.ReadOnly {
		a.logger.Info("Starting server in READ-ONLY mode")
	} else {
		a.logger.Info("Starting server with grade write tools enabled")
	}

	health := server.NewHealthChecker(serverContext)

	var metricsServer *server.MetricsServer
	if opts.MetricsEnabled && a.provider.ServesPrometheus() {
		metricsServer, err = startMetricsServer(opts.MetricsAddr, a, health)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				a.logger.Warn("Error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	return runStreamableHTTPServer(shutdownCtx, mcpSrv, opts.HTTPAddr, health, metricsServer == nil, a.logger)
}

// newMCPServer creates the MCP server with every tool and resource registered.
func newMCPServer(sc *server.ServerContext, readOnly bool) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("classroom-grader", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	if err := classroom_tools.RegisterClassroomTools(mcpSrv, sc, readOnly); err != nil {
		return nil, fmt.Errorf("failed to register Classroom tools: %w", err)
	}
	if err := resources.RegisterClassroomResources(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register Classroom resources: %w", err)
	}
	return mcpSrv, nil
}

func startMetricsServer(addr string, a *app, health *server.HealthChecker) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: a.provider,
		Health:                  health,
		Logger:                  a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// newHTTPHandler mounts the MCP endpoint on /mcp. withHealth adds the health
// endpoints, for deployments without a separate metrics port.
func newHTTPHandler(mcpSrv *mcpserver.MCPServer, health *server.HealthChecker, withHealth bool) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	))
	if withHealth {
		health.RegisterHealthEndpoints(mux)
	}
	return mux
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr string, health *server.HealthChecker, withHealth bool, logger *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           newHTTPHandler(mcpSrv, health, withHealth),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()
	logger.Info("MCP server listening", slog.String("addr", addr), slog.String("endpoint", "/mcp"))

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
