package google

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Environment variables holding the externally supplied credential blobs.
const (
	EnvCredentials = "GOOGLE_CREDENTIALS"
	EnvToken       = "GOOGLE_TOKEN_JSON"
)

// DefaultAccount is the account used when a tool call does not name one.
const DefaultAccount = "default"

var accountNamePattern = regexp.MustCompile(`^[A-Za-z0-9._@+-]+$`)

// ValidateAccountName rejects empty names and names with characters outside
// letters, digits and ._@+-.
func ValidateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q", account)
	}
	return nil
}

// ConfigFromJSON parses an OAuth client configuration as downloaded from the
// Google Cloud console ("installed" or "web"). A non-empty redirectURL
// replaces the one from the file.
func ConfigFromJSON(raw []byte, redirectURL string, scopes ...string) (*oauth2.Config, error) {
	if len(scopes) == 0 {
		scopes = DefaultOAuthScopes
	}
	conf, err := google.ConfigFromJSON(raw, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OAuth client config: %w", err)
	}
	if redirectURL != "" {
		conf.RedirectURL = redirectURL
	}
	return conf, nil
}

// storedToken covers both the oauth2.Token JSON layout and the
// "authorized_user" layout written by Google's Python and JS auth libraries.
type storedToken struct {
	AccessToken  string    `json:"access_token,omitempty"`
	Token        string    `json:"token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	TokenURI     string    `json:"token_uri,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	Type         string    `json:"type,omitempty"`
}

// ParseToken decodes a user token blob. A blob without an access token but
// with a refresh token is accepted; it is refreshed on first use.
func ParseToken(raw []byte) (*oauth2.Token, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, fmt.Errorf("token JSON is empty")
	}
	var st storedToken
	if err := json.Unmarshal([]byte(trimmed), &st); err != nil {
		return nil, fmt.Errorf("failed to parse token JSON: %w", err)
	}
	access := st.AccessToken
	if access == "" {
		access = st.Token
	}
	if access == "" && st.RefreshToken == "" {
		return nil, fmt.Errorf("token JSON has neither an access token nor a refresh token")
	}
	tok := &oauth2.Token{
		AccessToken:  access,
		TokenType:    st.TokenType,
		RefreshToken: st.RefreshToken,
		Expiry:       st.Expiry,
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if access == "" {
		// Force a refresh before the first request.
		tok.Expiry = time.Unix(1, 0)
	}
	return tok, nil
}

// MarshalToken encodes tok in the authorized_user layout so it can be pasted
// into GOOGLE_TOKEN_JSON by this server or by other Google auth libraries.
func MarshalToken(tok *oauth2.Token, conf *oauth2.Config) ([]byte, error) {
	if tok == nil {
		return nil, fmt.Errorf("token is nil")
	}
	st := storedToken{
		Token:        tok.AccessToken,
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry.UTC(),
		Type:         "authorized_user",
	}
	if conf != nil {
		st.TokenURI = conf.Endpoint.TokenURL
		st.ClientID = conf.ClientID
		st.ClientSecret = conf.ClientSecret
		st.Scopes = conf.Scopes
	}
	return json.Marshal(st)
}
