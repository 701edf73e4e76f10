package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/giantswarm/mcp-oauth/storage/memory"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/resources"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/accomplishment_tools"
	"github.com/teemow/workspace-mcp/internal/tools/calendar_tools"
	"github.com/teemow/workspace-mcp/internal/tools/drive_tools"
	"github.com/teemow/workspace-mcp/internal/tools/gmail_tools"
	"github.com/teemow/workspace-mcp/internal/tools/google_tools"
	"github.com/teemow/workspace-mcp/internal/tools/sheets_tools"
	"github.com/teemow/workspace-mcp/internal/tools/tasks_tools"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"

	defaultHTTPAddr = ":8000"
)

// serveOptions holds the serve flags after environment fallbacks.
type serveOptions struct {
	transport string
	httpAddr  string
	baseURL   string
	debug     bool
	yolo      bool
	envFile   string

	spreadsheetID            string
	accomplishmentsWorksheet string
	dateFormats              []string
	timeZone                 string

	credentialsJSON     string
	tokenJSON           string
	printRefreshedToken bool

	metricsEnabled bool
	metricsAddr    string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server that gives AI assistants
access to Google Sheets, Calendar, Gmail, Tasks and Drive.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport, with /oauth/start for the
    one-time Google authorization and /healthz, /readyz health checks

Safety Mode:
  By default, the server operates in read-only mode, providing only safe operations.
  Use --yolo to enable write operations (row updates, sending email, etc.)

Credentials:
  GOOGLE_CREDENTIALS holds the OAuth client JSON from the Google Cloud console.
  GOOGLE_TOKEN_JSON holds a user token for the "default" account. Without it,
  use the google_get_auth_url tool or the /oauth/start endpoint to authorize.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadServeEnv(cmd, &opts); err != nil {
				return err
			}
			return runServe(cmd.Context(), opts)
		},
	}
	bindServeFlags(cmd, &opts)

	return cmd
}

func bindServeFlags(cmd *cobra.Command, opts *serveOptions) {
	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", defaultHTTPAddr, "HTTP server address (for streamable-http transport). Can also use PORT env var.")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Public base URL of the HTTP server, used for the OAuth redirect. Can also use WORKSPACE_MCP_BASE_URL env var.")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&opts.yolo, "yolo", false, "Enable write operations. Default is read-only mode.")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Load environment variables from a dotenv file before reading the environment")

	cmd.Flags().StringVar(&opts.spreadsheetID, "spreadsheet-id", "", "Default spreadsheet for the sheet and accomplishment tools. Can also use SPREADSHEET_ID env var.")
	cmd.Flags().StringVar(&opts.accomplishmentsWorksheet, "accomplishments-worksheet", "", "Worksheet holding the accomplishments journal (default: Accomplishments)")
	cmd.Flags().StringSliceVar(&opts.dateFormats, "date-formats", nil, "Date layouts tried when comparing dates, in priority order. Can also use WORKSPACE_MCP_DATE_FORMATS env var.")
	cmd.Flags().StringVar(&opts.timeZone, "time-zone", "", "IANA time zone for calendar events given without one. Can also use WORKSPACE_MCP_TIME_ZONE env var.")

	cmd.Flags().BoolVar(&opts.printRefreshedToken, "print-refreshed-token", false, "Print the token JSON to stderr whenever it is refreshed")

	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port (streamable-http only)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")
}

// loadServeEnv fills options from the environment. An env var only applies
// when the matching flag was not set explicitly.
func loadServeEnv(cmd *cobra.Command, opts *serveOptions) error {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", opts.envFile, err)
		}
	}

	if !cmd.Flags().Changed("spreadsheet-id") {
		opts.spreadsheetID = os.Getenv("SPREADSHEET_ID")
	}
	if !cmd.Flags().Changed("http-addr") {
		if port := os.Getenv("PORT"); port != "" {
			opts.httpAddr = ":" + port
		}
	}
	if !cmd.Flags().Changed("base-url") {
		opts.baseURL = os.Getenv("WORKSPACE_MCP_BASE_URL")
	}
	if !cmd.Flags().Changed("date-formats") {
		opts.dateFormats = parseCommaSeparatedList(os.Getenv("WORKSPACE_MCP_DATE_FORMATS"))
	}
	if !cmd.Flags().Changed("time-zone") {
		opts.timeZone = os.Getenv("WORKSPACE_MCP_TIME_ZONE")
	}
	if opts.timeZone != "" {
		if _, err := time.LoadLocation(opts.timeZone); err != nil {
			return fmt.Errorf("invalid time zone %q: %w", opts.timeZone, err)
		}
	}
	opts.credentialsJSON = os.Getenv(google.EnvCredentials)
	opts.tokenJSON = os.Getenv(google.EnvToken)

	switch opts.transport {
	case transportStdio, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}
	return nil
}

// baseURLFor returns the public URL of the HTTP server.
func baseURLFor(opts serveOptions) string {
	if opts.baseURL != "" {
		return strings.TrimSuffix(opts.baseURL, "/")
	}
	if strings.HasPrefix(opts.httpAddr, ":") {
		return "http://localhost" + opts.httpAddr
	}
	return "http://" + opts.httpAddr
}

func runServe(ctx context.Context, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout belongs to the stdio transport.
	logger := logging.New(logging.Options{Debug: opts.debug, Output: os.Stderr, JSON: opts.transport != transportStdio})
	slog.SetDefault(logger)

	instrConfig := instrumentation.ConfigFromEnv()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	redirectURL := ""
	if opts.transport == transportStreamableHTTP || opts.baseURL != "" {
		redirectURL = baseURLFor(opts) + server.CallbackPath
	}
	store := memory.New()
	defer store.Stop()
	auth, err := newAuthenticator(shutdownCtx, opts, google.NewStoreTokenProvider(store), redirectURL, logger)
	if err != nil {
		return err
	}
	if auth == nil {
		logger.Warn("GOOGLE_CREDENTIALS is not set; Google tools will report missing credentials")
	}

	readOnly := !opts.yolo
	serverOpts := []server.Option{
		server.WithLogger(logger),
		server.WithAuditLogger(instrumentation.NewAuditLogger(logger, instrConfig.AuditLogging)),
	}
	if provider.Enabled() {
		serverOpts = append(serverOpts, server.WithMetrics(provider.Metrics()))
	}
	sc := server.NewServerContext(shutdownCtx, server.Config{
		SpreadsheetID:            opts.spreadsheetID,
		AccomplishmentsWorksheet: opts.accomplishmentsWorksheet,
		DateFormats:              opts.dateFormats,
		TimeZone:                 opts.timeZone,
		ReadOnly:                 readOnly,
	}, auth, serverOpts...)
	defer func() {
		if err := sc.Shutdown(); err != nil {
			logger.Error("server context shutdown failed", logging.Err(err))
		}
	}()

	mcpSrv, err := newMCPServer(sc, readOnly)
	if err != nil {
		return err
	}

	if readOnly {
		logger.Info("starting server in READ-ONLY mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting server with WRITE operations enabled (--yolo flag is set)")
	}

	switch opts.transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	default:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, sc, opts, provider)
	}
}

// newAuthenticator builds the Google authenticator from GOOGLE_CREDENTIALS
// and seeds the token store from GOOGLE_TOKEN_JSON. It returns nil when no
// credentials are configured.
func newAuthenticator(ctx context.Context, opts serveOptions, tokens google.TokenProvider, redirectURL string, logger *slog.Logger) (*google.Authenticator, error) {
	if opts.credentialsJSON == "" {
		if opts.tokenJSON != "" {
			return nil, errors.New("GOOGLE_TOKEN_JSON is set but GOOGLE_CREDENTIALS is not: both are needed to refresh the token")
		}
		return nil, nil
	}
	conf, err := google.ConfigFromJSON([]byte(opts.credentialsJSON), redirectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GOOGLE_CREDENTIALS: %w", err)
	}

	var onRefresh google.RefreshFunc
	if opts.printRefreshedToken {
		onRefresh = func(account string, tok *oauth2.Token) {
			raw, err := google.MarshalToken(tok, conf)
			if err != nil {
				logger.Error("failed to encode refreshed token", logging.Account(account), logging.Err(err))
				return
			}
			fmt.Fprintf(os.Stderr, "Refreshed token for account %q:\n%s\n", account, raw)
		}
	}
	auth := google.NewAuthenticator(conf, tokens, logger, onRefresh)

	if opts.tokenJSON != "" {
		tok, err := google.ParseToken([]byte(opts.tokenJSON))
		if err != nil {
			return nil, fmt.Errorf("invalid GOOGLE_TOKEN_JSON: %w", err)
		}
		if err := tokens.SaveTokenForAccount(ctx, google.DefaultAccount, tok); err != nil {
			return nil, fmt.Errorf("failed to store GOOGLE_TOKEN_JSON: %w", err)
		}
		logger.Info("loaded Google OAuth token", logging.Account(google.DefaultAccount))
	}
	return auth, nil
}

// newMCPServer creates the MCP server with every tool and resource.
func newMCPServer(sc *server.ServerContext, readOnly bool) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("workspace-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	if err := registerAllTools(mcpSrv, sc, readOnly); err != nil {
		return nil, err
	}
	return mcpSrv, nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registrations := []struct {
		name     string
		register func() error
	}{
		{"Sheets", func() error { return sheets_tools.RegisterSheetsTools(mcpSrv, sc, readOnly) }},
		{"Accomplishments", func() error { return accomplishment_tools.RegisterAccomplishmentTools(mcpSrv, sc, readOnly) }},
		{"Calendar", func() error { return calendar_tools.RegisterCalendarTools(mcpSrv, sc, readOnly) }},
		{"Gmail", func() error { return gmail_tools.RegisterGmailTools(mcpSrv, sc, readOnly) }},
		{"Tasks", func() error { return tasks_tools.RegisterTasksTools(mcpSrv, sc, readOnly) }},
		{"Drive", func() error { return drive_tools.RegisterDriveTools(mcpSrv, sc, readOnly) }},
		{"Google auth", func() error { return google_tools.RegisterGoogleTools(mcpSrv, sc) }},
		{"Resources", func() error { return resources.RegisterResources(mcpSrv, sc) }},
	}
	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}
	return nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, opts serveOptions, provider *instrumentation.Provider) error {
	logger := sc.Logger()

	httpServer, err := server.NewHTTPServer(mcpSrv, sc, server.HTTPServerConfig{
		Addr:    opts.httpAddr,
		BaseURL: baseURLFor(opts),
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	errCh := make(chan error, 2)

	var metricsServer *server.MetricsServer
	if opts.metricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			logger.Warn("metrics server disabled", logging.Err(err))
		} else {
			go func() {
				if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- fmt.Errorf("metrics server failed: %w", err)
				}
			}()
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		}
	}

	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()
	logger.Info("OAuth redirect URL (register it with Google)", "redirect_url", httpServer.RedirectURL())

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", logging.Err(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", logging.Err(err))
		}
	}
	return runErr
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
