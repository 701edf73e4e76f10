package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"google.golang.org/api/option"

	"github.com/teemow/workspace-mcp/internal/accomplishments"
	"github.com/teemow/workspace-mcp/internal/calendar"
	"github.com/teemow/workspace-mcp/internal/drive"
	"github.com/teemow/workspace-mcp/internal/gmail"
	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/sheets"
	"github.com/teemow/workspace-mcp/internal/tasks"
)

// DefaultAccount is used when a tool call names no account.
const DefaultAccount = "default"

// ErrShutdown is returned for client requests after Shutdown.
var ErrShutdown = errors.New("server is shutting down")

// Config is the runtime configuration the tools read.
type Config struct {
	// SpreadsheetID is the spreadsheet holding the accomplishments journal.
	SpreadsheetID            string
	AccomplishmentsWorksheet string

	// DateFormats overrides the date layouts used for coercion.
	DateFormats []string

	// TimeZone applies to calendar events created without one.
	TimeZone string

	ReadOnly bool
}

// ClientOptionsFunc returns the API client options for account.
type ClientOptionsFunc func(ctx context.Context, account string) ([]option.ClientOption, error)

// ServerContext holds the context for the MCP server.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	config        Config
	auth          *google.Authenticator
	clientOptions ClientOptionsFunc
	dates         *sheets.DateNormalizer
	logger        *slog.Logger
	metrics       *instrumentation.Metrics
	audit         *instrumentation.AuditLogger

	mu              sync.Mutex
	sheetsClients   map[string]*sheets.Client
	calendarClients map[string]*calendar.Client
	gmailClients    map[string]*gmail.Client
	tasksClients    map[string]*tasks.Client
	driveClients    map[string]*drive.Client
	shutdown        bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(sc *ServerContext) { sc.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) { sc.metrics = m }
}

// WithAuditLogger sets the tool audit logger.
func WithAuditLogger(a *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) { sc.audit = a }
}

// WithClientOptions replaces the authenticator as the source of API client
// options.
func WithClientOptions(fn ClientOptionsFunc) Option {
	return func(sc *ServerContext) { sc.clientOptions = fn }
}

// NewServerContext creates a server context. auth may be nil when client
// options are supplied with WithClientOptions.
func NewServerContext(ctx context.Context, config Config, auth *google.Authenticator, opts ...Option) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	if config.AccomplishmentsWorksheet == "" {
		config.AccomplishmentsWorksheet = accomplishments.DefaultWorksheet
	}
	sc := &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		config:          config,
		auth:            auth,
		dates:           sheets.NewDateNormalizer(config.DateFormats...),
		logger:          slog.Default(),
		sheetsClients:   make(map[string]*sheets.Client),
		calendarClients: make(map[string]*calendar.Client),
		gmailClients:    make(map[string]*gmail.Client),
		tasksClients:    make(map[string]*tasks.Client),
		driveClients:    make(map[string]*drive.Client),
	}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.clientOptions == nil {
		sc.clientOptions = sc.authorizedOptions
	}
	return sc
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the runtime configuration.
func (sc *ServerContext) Config() Config {
	return sc.config
}

// Authenticator returns the Google authenticator, or nil.
func (sc *ServerContext) Authenticator() *google.Authenticator {
	return sc.auth
}

// Logger returns the logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder. It may be nil; its methods are
// nil-safe.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// DateNormalizer returns the configured date layouts.
func (sc *ServerContext) DateNormalizer() *sheets.DateNormalizer {
	return sc.dates
}

func (sc *ServerContext) authorizedOptions(ctx context.Context, account string) ([]option.ClientOption, error) {
	if sc.auth == nil {
		return nil, fmt.Errorf("Google credentials are not configured: set GOOGLE_CREDENTIALS")
	}
	if !sc.auth.HasToken(account) {
		return nil, fmt.Errorf(`Google OAuth token not found for account "%s". To authorize access:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account and grant access
3. Copy the authorization code
4. Call the google_save_auth_code tool with the code and account="%s"

You only need to authorize once. Tokens are refreshed automatically.`, account, sc.auth.AuthCodeURL(account), account)
	}
	client, err := sc.auth.HTTPClient(ctx, account)
	if err != nil {
		return nil, err
	}
	return []option.ClientOption{option.WithHTTPClient(client)}, nil
}

// clientFor returns the cached client for account, building it on first use.
func clientFor[T any](sc *ServerContext, cache map[string]T, account string,
	build func(context.Context, string, ...option.ClientOption) (T, error)) (T, error) {
	var zero T
	if account == "" {
		account = DefaultAccount
	}
	if err := google.ValidateAccountName(account); err != nil {
		return zero, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return zero, ErrShutdown
	}
	if client, ok := cache[account]; ok {
		return client, nil
	}

	opts, err := sc.clientOptions(sc.ctx, account)
	if err != nil {
		return zero, err
	}
	client, err := build(sc.ctx, account, opts...)
	if err != nil {
		return zero, err
	}
	cache[account] = client
	sc.logger.Debug("created API client", logging.Account(account))
	return client, nil
}

// SheetsClient returns the Sheets client for account.
func (sc *ServerContext) SheetsClient(account string) (*sheets.Client, error) {
	return clientFor(sc, sc.sheetsClients, account, sheets.NewClient)
}

// CalendarClient returns the Calendar client for account.
func (sc *ServerContext) CalendarClient(account string) (*calendar.Client, error) {
	return clientFor(sc, sc.calendarClients, account,
		func(ctx context.Context, account string, opts ...option.ClientOption) (*calendar.Client, error) {
			c, err := calendar.NewClient(ctx, account, opts...)
			if err != nil {
				return nil, err
			}
			c.SetTimeZone(sc.config.TimeZone)
			return c, nil
		})
}

// GmailClient returns the Gmail client for account.
func (sc *ServerContext) GmailClient(account string) (*gmail.Client, error) {
	return clientFor(sc, sc.gmailClients, account, gmail.NewClient)
}

// TasksClient returns the Tasks client for account.
func (sc *ServerContext) TasksClient(account string) (*tasks.Client, error) {
	return clientFor(sc, sc.tasksClients, account, tasks.NewClient)
}

// DriveClient returns the Drive client for account.
func (sc *ServerContext) DriveClient(account string) (*drive.Client, error) {
	return clientFor(sc, sc.driveClients, account, drive.NewClient)
}

// Engine returns a query engine over the Sheets client of account.
func (sc *ServerContext) Engine(account string) (*sheets.Engine, error) {
	client, err := sc.SheetsClient(account)
	if err != nil {
		return nil, err
	}
	return sheets.NewEngine(client,
		sheets.WithDateNormalizer(sc.dates),
		sheets.WithLogger(sc.logger),
		sheets.WithObserver(sc.metrics),
	), nil
}

// Accomplishments returns the journal service of account.
func (sc *ServerContext) Accomplishments(account string) (*accomplishments.Service, error) {
	if sc.config.SpreadsheetID == "" {
		return nil, fmt.Errorf("no spreadsheet configured: set SPREADSHEET_ID or --spreadsheet-id")
	}
	engine, err := sc.Engine(account)
	if err != nil {
		return nil, err
	}
	return accomplishments.NewService(engine, sc.config.SpreadsheetID, sc.config.AccomplishmentsWorksheet,
		accomplishments.WithLogger(sc.logger)), nil
}

// ForgetAccount drops the cached clients of account so the next call picks
// up a newly stored token.
func (sc *ServerContext) ForgetAccount(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.sheetsClients, account)
	delete(sc.calendarClients, account)
	delete(sc.gmailClients, account)
	delete(sc.tasksClients, account)
	delete(sc.driveClients, account)
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.shutdown
}

// Shutdown cancels the server context. It is safe to call twice.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	return nil
}
