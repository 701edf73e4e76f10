package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/gmail"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// RegisterEmailTools registers email-related tools with the MCP server
func RegisterEmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	addTool(s, sc, mcp.NewTool("gmail_send_email",
		mcp.WithDescription("Send a plain-text email through Gmail"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body content"),
		),
		mcp.WithString("cc",
			mcp.Description("CC email address(es), comma-separated for multiple recipients"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC email address(es), comma-separated for multiple recipients"),
		),
	), instrumentation.OperationSend, handleSendEmail)
	return nil
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	msg := &gmail.EmailMessage{
		To:      common.StringList(args, "to"),
		Cc:      common.StringList(args, "cc"),
		Bcc:     common.StringList(args, "bcc"),
		Subject: common.StringArg(args, "subject"),
		Body:    common.StringArg(args, "body"),
	}
	if len(msg.To) == 0 {
		return mcp.NewToolResultError("to is required"), nil
	}
	for _, addr := range append(append(append([]string{}, msg.To...), msg.Cc...), msg.Bcc...) {
		if !strings.Contains(addr, "@") {
			return mcp.NewToolResultError(fmt.Sprintf("invalid email address %q", addr)), nil
		}
	}

	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := c.SendEmail(ctx, msg)
	if err != nil {
		return common.ErrorResult("Failed to send email: %v", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Email sent to %s (message ID %s)", strings.Join(msg.To, ", "), id)), nil
}
