package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage/memory"
)

// fakeTokenEndpoint answers authorization_code and refresh_token grants.
func fakeTokenEndpoint(t *testing.T, accessToken string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "authorization_code":
			if r.Form.Get("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"` + accessToken + `","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`))
		case "refresh_token":
			_, _ = w.Write([]byte(`{"access_token":"` + accessToken + `-refreshed","token_type":"Bearer","expires_in":3600}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testAuthenticator(t *testing.T, tokenURL string, onRefresh RefreshFunc) (*Authenticator, *StoreTokenProvider) {
	t.Helper()
	store := memory.New()
	t.Cleanup(store.Stop)

	provider := NewStoreTokenProvider(store)
	conf := &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/oauth/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenURL},
		Scopes:       DefaultOAuthScopes,
	}
	return NewAuthenticator(conf, provider, nil, onRefresh), provider
}

func TestAuthenticator_AuthCodeURL(t *testing.T) {
	auth, _ := testAuthenticator(t, "https://accounts.example.com/token", nil)

	u, err := url.Parse(auth.AuthCodeURL("state-123"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "id", q.Get("client_id"))
}

func TestAuthenticator_Exchange(t *testing.T) {
	srv := fakeTokenEndpoint(t, "at")
	auth, provider := testAuthenticator(t, srv.URL, nil)
	ctx := context.Background()

	assert.False(t, auth.HasToken("default"))

	tok, err := auth.Exchange(ctx, "default", "good-code")
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.True(t, auth.HasToken("default"))

	stored, err := provider.GetTokenForAccount(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "rt", stored.RefreshToken)

	_, err = auth.Exchange(ctx, "default", "bad-code")
	assert.Error(t, err)

	_, err = auth.Exchange(ctx, "bad account", "good-code")
	assert.Error(t, err)
}

func TestAuthenticator_TokenSourceSavesRefreshedToken(t *testing.T) {
	srv := fakeTokenEndpoint(t, "at")

	var mu sync.Mutex
	var refreshedFor []string
	auth, provider := testAuthenticator(t, srv.URL, func(account string, tok *oauth2.Token) {
		mu.Lock()
		defer mu.Unlock()
		refreshedFor = append(refreshedFor, account)
	})
	ctx := context.Background()

	expired := &oauth2.Token{AccessToken: "old", RefreshToken: "rt", Expiry: time.Now().Add(-time.Hour)}
	require.NoError(t, provider.SaveTokenForAccount(ctx, "work", expired))

	ts, err := auth.TokenSource(ctx, "work")
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "at-refreshed", tok.AccessToken)

	stored, err := provider.GetTokenForAccount(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, "at-refreshed", stored.AccessToken)
	assert.Equal(t, "rt", stored.RefreshToken)

	// A second call reuses the valid token and does not report a refresh.
	_, err = ts.Token()
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"work"}, refreshedFor)
}

func TestAuthenticator_MissingToken(t *testing.T) {
	auth, _ := testAuthenticator(t, "https://accounts.example.com/token", nil)

	_, err := auth.HTTPClient(context.Background(), "nobody")
	assert.Error(t, err)
}
