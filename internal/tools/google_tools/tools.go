package google_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/google"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// RegisterGoogleTools registers all Google OAuth-related tools with the MCP server
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getAuthURLTool := mcp.NewTool("google_get_auth_url",
		mcp.WithDescription("Get the OAuth URL to authorize Google Workspace access (Sheets, Calendar, Gmail, Tasks, Drive) for an account"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
	)
	s.AddTool(getAuthURLTool, common.InstrumentedToolHandlerWithService("google_get_auth_url",
		instrumentation.ServiceOAuth, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAuthURL(ctx, request, sc)
		}))

	saveAuthCodeTool := mcp.NewTool("google_save_auth_code",
		mcp.WithDescription("Exchange an OAuth authorization code for a token and store it for an account"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		mcp.WithString("auth_code",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth"),
		),
	)
	s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandlerWithService("google_save_auth_code",
		instrumentation.ServiceOAuth, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveAuthCode(ctx, request, sc)
		}))

	return nil
}

func authenticator(sc *server.ServerContext) (*google.Authenticator, error) {
	auth := sc.Authenticator()
	if auth == nil {
		return nil, fmt.Errorf("Google credentials are not configured: set GOOGLE_CREDENTIALS")
	}
	return auth, nil
}

func handleGetAuthURL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(request.GetArguments())
	if err := google.ValidateAccountName(account); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	auth, err := authenticator(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf(`To authorize Google Workspace access for account "%s":

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account and grant access
3. Copy the authorization code (the "code" parameter of the page you are sent to)

4. Call the google_save_auth_code tool with the code and account="%s" to complete authentication`,
		account, auth.AuthCodeURL(account), account)

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)
	code, err := common.RequiredString(args, "auth_code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	auth, err := authenticator(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tok, err := auth.Exchange(ctx, account, code)
	if err != nil {
		return common.ErrorResult("Failed to save auth code: %v", err), nil
	}
	sc.ForgetAccount(account)

	raw, err := google.MarshalToken(tok, auth.Config())
	if err != nil {
		return common.ErrorResult("Failed to encode token: %v", err), nil
	}

	result := fmt.Sprintf(`Successfully authenticated Google Workspace for account "%s".

Tokens are kept in memory. To keep this authorization across restarts, set GOOGLE_TOKEN_JSON to:

%s`, account, raw)
	return mcp.NewToolResultText(result), nil
}
