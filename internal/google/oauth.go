package google

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/workspace-mcp/internal/logging"
)

// RefreshFunc is called after a token was refreshed and saved.
type RefreshFunc func(account string, tok *oauth2.Token)

// Authenticator performs the one-time code exchange and hands out
// authenticated HTTP clients.
type Authenticator struct {
	config    *oauth2.Config
	tokens    TokenProvider
	logger    *slog.Logger
	onRefresh RefreshFunc
}

// NewAuthenticator returns an Authenticator. onRefresh may be nil.
func NewAuthenticator(config *oauth2.Config, tokens TokenProvider, logger *slog.Logger, onRefresh RefreshFunc) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{config: config, tokens: tokens, logger: logger, onRefresh: onRefresh}
}

// Config returns the OAuth client configuration.
func (a *Authenticator) Config() *oauth2.Config {
	return a.config
}

// Tokens returns the token provider.
func (a *Authenticator) Tokens() TokenProvider {
	return a.tokens
}

// AuthCodeURL returns the consent URL. Offline access with a forced consent
// prompt makes Google return a refresh token every time.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for a token and stores it for account.
func (a *Authenticator) Exchange(ctx context.Context, account, code string) (*oauth2.Token, error) {
	if err := ValidateAccountName(account); err != nil {
		return nil, err
	}
	tok, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if err := a.tokens.SaveTokenForAccount(ctx, account, tok); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	a.logger.Info("stored Google OAuth token", logging.Account(account))
	return tok, nil
}

// HasToken reports whether account has a stored token.
func (a *Authenticator) HasToken(account string) bool {
	return a.tokens.HasTokenForAccount(account)
}

// TokenSource returns a refreshing token source for account. ctx must outlive
// the source; it is used for refresh requests.
func (a *Authenticator) TokenSource(ctx context.Context, account string) (oauth2.TokenSource, error) {
	tok, err := a.tokens.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return &savingTokenSource{
		ctx:     ctx,
		account: account,
		base:    a.config.TokenSource(ctx, tok),
		last:    tok.AccessToken,
		auth:    a,
	}, nil
}

// HTTPClient returns a client authorized for account. It speaks HTTP/1.1 only.
func (a *Authenticator) HTTPClient(ctx context.Context, account string) (*http.Client, error) {
	ts, err := a.TokenSource(ctx, account)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				ForceAttemptHTTP2: false,
				TLSNextProto:      map[string]func(string, *tls.Conn) http.RoundTripper{},
			},
		},
	}, nil
}

// savingTokenSource writes refreshed tokens back to the provider.
type savingTokenSource struct {
	ctx     context.Context
	account string
	base    oauth2.TokenSource
	auth    *Authenticator

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	refreshed := tok.AccessToken != s.last
	s.last = tok.AccessToken
	s.mu.Unlock()

	if refreshed {
		if err := s.auth.tokens.SaveTokenForAccount(s.ctx, s.account, tok); err != nil {
			s.auth.logger.Warn("failed to save refreshed token", logging.Account(s.account), logging.Err(err))
		}
		s.auth.logger.Info("Google OAuth token refreshed", logging.Account(s.account))
		if s.auth.onRefresh != nil {
			s.auth.onRefresh(s.account, tok)
		}
	}
	return tok, nil
}
