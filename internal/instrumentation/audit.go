package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/workspace-mcp/internal/logging"
)

// ToolInvocation is the audit record of one tool call.
type ToolInvocation struct {
	Tool      string
	Account   string
	Service   string
	Operation string
	ReadOnly  bool

	Start    time.Time
	Duration time.Duration
	Err      error
	TraceID  string
}

// StartToolInvocation begins timing a tool call.
func StartToolInvocation(tool, account string) *ToolInvocation {
	return &ToolInvocation{Tool: tool, Account: account, Start: time.Now()}
}

// Finish stops the clock and records the outcome.
func (ti *ToolInvocation) Finish(ctx context.Context, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.Start)
	ti.Err = err
	ti.TraceID = TraceID(ctx)
	return ti
}

// Status is "success" or "error".
func (ti *ToolInvocation) Status() string {
	return statusOf(ti.Err)
}

func (ti *ToolInvocation) attrs(includePII bool) []any {
	account := ti.Account
	if !includePII {
		account = logging.Account(account).Value.String()
	}
	args := []any{
		logging.Tool(ti.Tool),
		slog.String(logging.KeyAccount, account),
		logging.Status(ti.Status()),
		slog.Duration(logging.KeyDuration, ti.Duration),
	}
	if ti.Service != "" {
		args = append(args, logging.Service(ti.Service))
	}
	if ti.Operation != "" {
		args = append(args, logging.Operation(ti.Operation))
	}
	if ti.ReadOnly {
		args = append(args, slog.Bool("read_only", true))
	}
	if ti.TraceID != "" {
		args = append(args, slog.String("trace_id", ti.TraceID))
	}
	if ti.Err != nil {
		args = append(args, logging.Err(ti.Err))
	}
	return args
}

// AuditLogger writes one record per tool call.
type AuditLogger struct {
	logger *slog.Logger
	config AuditLoggingConfig
}

// NewAuditLogger returns an AuditLogger writing to logger, or to the default
// logger when nil.
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger.With(slog.String("component", "audit")), config: config}
}

// Log writes ti at info level, or warn when the call failed.
func (a *AuditLogger) Log(ctx context.Context, ti *ToolInvocation) {
	if a == nil || !a.config.Enabled {
		return
	}
	level := slog.LevelInfo
	msg := "tool_executed"
	if ti.Err != nil {
		level = slog.LevelWarn
		msg = "tool_failed"
	}
	a.logger.Log(ctx, level, msg, ti.attrs(a.config.IncludePII)...)
}
