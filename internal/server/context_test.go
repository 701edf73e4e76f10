package server

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/teemow/workspace-mcp/internal/accomplishments"
	"github.com/teemow/workspace-mcp/internal/sheets"
)

func TestServerContext_Defaults(t *testing.T) {
	sc := NewServerContext(context.Background(), Config{}, nil)
	defer sc.Shutdown()

	assert.Equal(t, accomplishments.DefaultWorksheet, sc.Config().AccomplishmentsWorksheet)
	assert.NotNil(t, sc.Logger())
	assert.NotNil(t, sc.DateNormalizer())
	assert.Nil(t, sc.Authenticator())
}

func TestServerContext_ClientsAreCachedPerAccount(t *testing.T) {
	calls := 0
	opts := fakeAPI(t, http.NotFoundHandler())
	sc := NewServerContext(context.Background(), Config{}, nil,
		WithClientOptions(func(ctx context.Context, account string) ([]option.ClientOption, error) {
			calls++
			return opts(ctx, account)
		}))
	defer sc.Shutdown()

	a, err := sc.SheetsClient("work")
	require.NoError(t, err)
	b, err := sc.SheetsClient("work")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)

	def, err := sc.SheetsClient("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAccount, def.Account())
	assert.Equal(t, 2, calls)

	_, err = sc.CalendarClient("work")
	require.NoError(t, err)
	_, err = sc.GmailClient("work")
	require.NoError(t, err)
	_, err = sc.TasksClient("work")
	require.NoError(t, err)
	_, err = sc.DriveClient("work")
	require.NoError(t, err)
	assert.Equal(t, 6, calls)

	sc.ForgetAccount("work")
	c, err := sc.SheetsClient("work")
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 7, calls)
}

func TestServerContext_InvalidAccount(t *testing.T) {
	sc := NewServerContext(context.Background(), Config{}, nil, WithClientOptions(fakeAPI(t, http.NotFoundHandler())))
	defer sc.Shutdown()

	_, err := sc.SheetsClient("../etc/passwd")
	assert.Error(t, err)
}

func TestServerContext_MissingCredentials(t *testing.T) {
	sc := NewServerContext(context.Background(), Config{}, nil)
	defer sc.Shutdown()

	_, err := sc.GmailClient("default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials are not configured")
}

func TestServerContext_MissingToken(t *testing.T) {
	auth := testAuthenticator(t, "https://accounts.example.com/token")
	sc := NewServerContext(context.Background(), Config{}, auth)
	defer sc.Shutdown()

	_, err := sc.DriveClient("work")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `account "work"`)
	assert.Contains(t, err.Error(), "google_save_auth_code")
	assert.Contains(t, err.Error(), "https://accounts.example.com/auth")
}

func TestServerContext_AuthorizedClient(t *testing.T) {
	tokens := fakeTokenEndpoint(t)
	auth := testAuthenticator(t, tokens.URL)
	_, err := auth.Exchange(context.Background(), "default", "good-code")
	require.NoError(t, err)

	sc := NewServerContext(context.Background(), Config{}, auth)
	defer sc.Shutdown()

	_, err = sc.TasksClient("default")
	assert.NoError(t, err)
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := NewServerContext(context.Background(), Config{}, nil, WithClientOptions(fakeAPI(t, http.NotFoundHandler())))

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())

	_, err := sc.SheetsClient("default")
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestServerContext_EngineQueriesThroughClient(t *testing.T) {
	api := fakeAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet-id/values/"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"values":[["ID","Status"],["t1","open"],["t2","done"]]}`))
	}))
	sc := NewServerContext(context.Background(), Config{}, nil, WithClientOptions(api))
	defer sc.Shutdown()

	engine, err := sc.Engine("default")
	require.NoError(t, err)

	res, err := engine.Query(context.Background(), sheets.SheetRef{SpreadsheetID: "sheet-id", Worksheet: "Tasks"}, sheets.Query{
		Filters: []sheets.Clause{{Column: "Status", Operator: sheets.OpEqual, Value: "done"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "t2", res.Records[0].Get("ID"))
}

func TestServerContext_Accomplishments(t *testing.T) {
	api := fakeAPI(t, http.NotFoundHandler())

	sc := NewServerContext(context.Background(), Config{}, nil, WithClientOptions(api))
	defer sc.Shutdown()
	_, err := sc.Accomplishments("default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPREADSHEET_ID")

	sc = NewServerContext(context.Background(), Config{SpreadsheetID: "sheet-id"}, nil, WithClientOptions(api))
	defer sc.Shutdown()
	svc, err := sc.Accomplishments("default")
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
