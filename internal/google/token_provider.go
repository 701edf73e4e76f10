package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage"
)

// TokenProvider supplies OAuth tokens per account.
type TokenProvider interface {
	// GetTokenForAccount retrieves the token stored for account.
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount reports whether a token is stored for account.
	HasTokenForAccount(account string) bool

	// SaveTokenForAccount stores tok for account, replacing any previous one.
	SaveTokenForAccount(ctx context.Context, account string, tok *oauth2.Token) error
}

// StoreTokenProvider is a TokenProvider over an mcp-oauth TokenStore.
type StoreTokenProvider struct {
	store storage.TokenStore
}

// NewStoreTokenProvider wraps store.
func NewStoreTokenProvider(store storage.TokenStore) *StoreTokenProvider {
	return &StoreTokenProvider{store: store}
}

func (p *StoreTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	tok, err := p.store.GetToken(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token for account %s: %w", account, err)
	}
	return tok, nil
}

func (p *StoreTokenProvider) HasTokenForAccount(account string) bool {
	tok, err := p.store.GetToken(context.Background(), account)
	return err == nil && tok != nil
}

func (p *StoreTokenProvider) SaveTokenForAccount(ctx context.Context, account string, tok *oauth2.Token) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	return p.store.SaveToken(ctx, account, tok)
}
