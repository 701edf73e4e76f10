package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sync"
	"time"

	mcpoauth "github.com/giantswarm/mcp-oauth"
	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/logging"
)

const (
	// CallbackPath receives the Google authorization redirect.
	CallbackPath = "/oauth/callback"
	startPath    = "/oauth/start"
	mcpPath      = "/mcp"

	stateTTL = 10 * time.Minute
)

// HTTPServerConfig configures the streamable-http transport.
type HTTPServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// BaseURL is the externally visible URL. It must be HTTPS unless it
	// points at a loopback address.
	BaseURL string

	// RateLimit is the allowed OAuth requests per second per IP.
	RateLimit float64
	RateBurst int
}

// HTTPServer serves MCP over streamable HTTP together with the one-time
// Google OAuth flow and the health checks.
type HTTPServer struct {
	config    HTTPServerConfig
	mcpServer *mcpserver.MCPServer
	sc        *ServerContext
	health    *HealthChecker
	limiter   *RateLimiter

	mu      sync.Mutex
	pending map[string]pendingAuth
	now     func() time.Time

	httpServer *http.Server
}

type pendingAuth struct {
	account string
	expires time.Time
}

// NewHTTPServer validates the configuration and returns the server.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) (*HTTPServer, error) {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost" + config.Addr
	}
	if err := validateHTTPSRequirement(config.BaseURL); err != nil {
		return nil, err
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 10
	}
	if config.RateBurst <= 0 {
		config.RateBurst = 20
	}
	return &HTTPServer{
		config:    config,
		mcpServer: mcpServer,
		sc:        sc,
		health:    NewHealthChecker(sc),
		limiter:   NewRateLimiter(config.RateLimit, config.RateBurst),
		pending:   make(map[string]pendingAuth),
		now:       time.Now,
	}, nil
}

// RedirectURL is the OAuth redirect URI to register with Google.
func (s *HTTPServer) RedirectURL() string {
	u, _ := url.JoinPath(s.config.BaseURL, CallbackPath)
	return u
}

// Health returns the health checker.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Handler builds the request router.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	m := s.sc.Metrics()

	if s.mcpServer != nil {
		streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer, mcpserver.WithEndpointPath(mcpPath))
		mux.Handle(mcpPath, InstrumentHTTP(m, mcpPath, streamable))
	}
	mux.Handle(startPath, InstrumentHTTP(m, startPath, s.limiter.Middleware(http.HandlerFunc(s.handleStart))))
	mux.Handle(CallbackPath, InstrumentHTTP(m, CallbackPath, s.limiter.Middleware(http.HandlerFunc(s.handleCallback))))
	s.health.RegisterHealthEndpoints(mux)
	return mux
}

// Start serves until Shutdown is called.
func (s *HTTPServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.sc.Logger().Info("starting HTTP server", "addr", s.config.Addr, "mcp_endpoint", s.config.BaseURL+mcpPath)
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server unready and drains connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// newState records a pending authorization for account and returns its state.
func (s *HTTPServer) newState(account string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for state, p := range s.pending {
		if now.After(p.expires) {
			delete(s.pending, state)
		}
	}
	state := uuid.NewString()
	s.pending[state] = pendingAuth{account: account, expires: now.Add(stateTTL)}
	return state
}

// consumeState returns the account of a pending state. States are single use.
func (s *HTTPServer) consumeState(state string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[state]
	if !ok {
		return "", false
	}
	delete(s.pending, state)
	if s.now().After(p.expires) {
		return "", false
	}
	return p.account, true
}

func (s *HTTPServer) handleStart(w http.ResponseWriter, r *http.Request) {
	auth := s.sc.Authenticator()
	if auth == nil {
		http.Error(w, "Google credentials are not configured", http.StatusServiceUnavailable)
		return
	}
	account := r.URL.Query().Get("account")
	if account == "" {
		account = DefaultAccount
	}
	if err := google.ValidateAccountName(account); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, auth.AuthCodeURL(s.newState(account)), http.StatusFound)
}

func (s *HTTPServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	logger := s.sc.Logger()
	auth := s.sc.Authenticator()
	if auth == nil {
		http.Error(w, "Google credentials are not configured", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	result := mcpoauth.ParseCallbackQuery(q.Get("code"), q.Get("state"), q.Get("error"), q.Get("error_description"), q.Get("error_uri"))
	if err := result.Err(); err != nil {
		msg := fmt.Sprintf("authorization failed: %v", err)
		if mcpoauth.IsSilentAuthError(err) {
			msg += "\nSign in to Google in this browser and start again at " + startPath
		}
		logger.Warn("OAuth callback returned an error", logging.Err(err))
		s.sc.Metrics().RecordCodeExchange(r.Context(), err)
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if q.Get("code") == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}
	account, ok := s.consumeState(q.Get("state"))
	if !ok {
		http.Error(w, "unknown or expired state, start again at "+startPath, http.StatusBadRequest)
		return
	}

	tok, err := auth.Exchange(r.Context(), account, q.Get("code"))
	s.sc.Metrics().RecordCodeExchange(r.Context(), err)
	if err != nil {
		logger.Error("code exchange failed", logging.Account(account), logging.Err(err))
		http.Error(w, "code exchange failed", http.StatusBadGateway)
		return
	}
	s.sc.ForgetAccount(account)

	raw, err := google.MarshalToken(tok, auth.Config())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = callbackPage.Execute(w, struct {
		Account string
		Token   string
	}{account, string(raw)})
}

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html><head><title>Authorized</title></head>
<body>
<h1>Account {{.Account}} authorized</h1>
<p>Store this value as GOOGLE_TOKEN_JSON to skip the flow on the next start:</p>
<pre>{{.Token}}</pre>
</body></html>
`))

// validateHTTPSRequirement allows plain HTTP only for loopback addresses.
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth requires HTTPS outside localhost (got: %s)", baseURL)
		}
	} else if u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
