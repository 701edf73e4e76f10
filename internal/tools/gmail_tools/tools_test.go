package gmail_tools

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/teemow/workspace-mcp/internal/gmail"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/tooltest"
)

// modifyRecorder captures thread modify calls. Threads named "bad" fail.
type modifyRecorder struct {
	mu       sync.Mutex
	requests map[string]gmailapi.ModifyThreadRequest
}

func (m *modifyRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimSuffix(r.URL.Path, "/modify"), "/")
	id := parts[len(parts)-1]
	if id == "bad" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found."}}`))
		return
	}
	var req gmailapi.ModifyThreadRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	m.mu.Lock()
	m.requests[id] = req
	m.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"id":"` + id + `"}`))
}

func TestHandleListThreads(t *testing.T) {
	var gotQuery string
	sc := tooltest.NewContext(t, server.Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/me/threads"), r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		tooltest.WriteJSON(t, w, gmailapi.ListThreadsResponse{Threads: []*gmailapi.Thread{
			{Id: "t1", Snippet: "hello"},
			{Id: "t2", Snippet: "world"},
		}})
	}))

	var out struct {
		Query   string                `json:"query"`
		Count   int                   `json:"count"`
		Threads []gmail.ThreadSummary `json:"threads"`
	}
	tooltest.Decode(t, tooltest.Call(t, handleListThreads, sc, map[string]any{}), &out)
	assert.Equal(t, "in:inbox", gotQuery)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "t2", out.Threads[1].ID)

	tooltest.Decode(t, tooltest.Call(t, handleListThreads, sc, map[string]any{"query": "is:unread"}), &out)
	assert.Equal(t, "is:unread", gotQuery)
}

func TestHandleGetMessage(t *testing.T) {
	body := base64.URLEncoding.EncodeToString([]byte("Hi there"))
	sc := tooltest.NewContext(t, server.Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "full", r.URL.Query().Get("format"))
		tooltest.WriteJSON(t, w, gmailapi.Message{
			Id:       "m1",
			ThreadId: "t1",
			Payload: &gmailapi.MessagePart{
				MimeType: "text/plain",
				Headers:  []*gmailapi.MessagePartHeader{{Name: "Subject", Value: "Greetings"}},
				Body:     &gmailapi.MessagePartBody{Data: body},
			},
		})
	}))

	var msg gmail.MessageSummary
	tooltest.Decode(t, tooltest.Call(t, handleGetMessage, sc, map[string]any{"message_id": "m1"}), &msg)
	assert.Equal(t, "Greetings", msg.Subject)
	assert.Equal(t, "Hi there", msg.Body)

	result := tooltest.Call(t, handleGetMessage, sc, map[string]any{})
	require.True(t, result.IsError)
	assert.Contains(t, tooltest.Text(t, result), "message_id is required")
}

func TestThreadHandlers(t *testing.T) {
	tests := []struct {
		name       string
		action     threadAction
		wantAdd    []string
		wantRemove []string
	}{
		{"archive", (*gmail.Client).ArchiveThreads, nil, []string{gmail.LabelInbox}},
		{"unarchive", (*gmail.Client).UnarchiveThreads, []string{gmail.LabelInbox}, nil},
		{"mark read", (*gmail.Client).MarkRead, nil, []string{gmail.LabelUnread}},
		{"mark unread", (*gmail.Client).MarkUnread, []string{gmail.LabelUnread}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &modifyRecorder{requests: map[string]gmailapi.ModifyThreadRequest{}}
			sc := tooltest.NewContext(t, server.Config{}, rec)

			result := tooltest.Call(t, tooltest.Handler(threadHandler(tt.action, "done")), sc, map[string]any{
				"thread_ids": []any{"t1", "t2"},
			})
			require.False(t, result.IsError, tooltest.Text(t, result))
			assert.Equal(t, "2 thread(s) done: t1, t2", tooltest.Text(t, result))

			require.Len(t, rec.requests, 2)
			assert.Equal(t, tt.wantAdd, rec.requests["t1"].AddLabelIds)
			assert.Equal(t, tt.wantRemove, rec.requests["t1"].RemoveLabelIds)
		})
	}
}

func TestThreadHandler_PartialFailure(t *testing.T) {
	rec := &modifyRecorder{requests: map[string]gmailapi.ModifyThreadRequest{}}
	sc := tooltest.NewContext(t, server.Config{}, rec)

	result := tooltest.Call(t, tooltest.Handler(threadHandler((*gmail.Client).ArchiveThreads, "archived")), sc, map[string]any{
		"thread_ids": "t1,bad,t2",
	})
	require.True(t, result.IsError)
	assert.Contains(t, tooltest.Text(t, result), "thread bad")
	assert.Len(t, rec.requests, 2)
}

func TestHandleModifyLabels(t *testing.T) {
	rec := &modifyRecorder{requests: map[string]gmailapi.ModifyThreadRequest{}}
	sc := tooltest.NewContext(t, server.Config{}, rec)

	result := tooltest.Call(t, handleModifyLabels, sc, map[string]any{
		"thread_ids":    "t1",
		"add_labels":    "Label_1, STARRED",
		"remove_labels": "INBOX",
	})
	require.False(t, result.IsError, tooltest.Text(t, result))
	assert.Equal(t, []string{"Label_1", "STARRED"}, rec.requests["t1"].AddLabelIds)

	result = tooltest.Call(t, handleModifyLabels, sc, map[string]any{"thread_ids": "t1"})
	require.True(t, result.IsError)

	result = tooltest.Call(t, handleModifyLabels, sc, map[string]any{"add_labels": "X"})
	require.True(t, result.IsError)
	assert.Contains(t, tooltest.Text(t, result), "thread_ids is required")
}

func TestHandleListLabels(t *testing.T) {
	sc := tooltest.NewContext(t, server.Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(t, w, gmailapi.ListLabelsResponse{Labels: []*gmailapi.Label{
			{Id: "INBOX", Name: "INBOX", Type: "system"},
			{Id: "Label_1", Name: "Receipts", Type: "user"},
		}})
	}))

	var labels []gmail.Label
	tooltest.Decode(t, tooltest.Call(t, handleListLabels, sc, map[string]any{}), &labels)
	require.Len(t, labels, 2)
	assert.Equal(t, "Receipts", labels[1].Name)
}

func TestHandleSendEmail(t *testing.T) {
	var raw string
	sc := tooltest.NewContext(t, server.Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/me/messages/send"), r.URL.Path)
		var msg gmailapi.Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		raw = msg.Raw
		tooltest.WriteJSON(t, w, gmailapi.Message{Id: "sent-1"})
	}))

	result := tooltest.Call(t, handleSendEmail, sc, map[string]any{
		"to":      "a@example.com, b@example.com",
		"subject": "Status",
		"body":    "All green.",
	})
	require.False(t, result.IsError, tooltest.Text(t, result))
	assert.Contains(t, tooltest.Text(t, result), "sent-1")

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, string(decoded), "All green.")
}

func TestHandleSendEmail_Invalid(t *testing.T) {
	sc := tooltest.NewContext(t, server.Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	}))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"no recipient", map[string]any{"subject": "s", "body": "b"}, "to is required"},
		{"bad address", map[string]any{"to": "nobody", "subject": "s", "body": "b"}, `invalid email address "nobody"`},
		{"bad cc", map[string]any{"to": "a@example.com", "cc": "x", "subject": "s", "body": "b"}, `invalid email address "x"`},
		{"no subject", map[string]any{"to": "a@example.com", "body": "b"}, "subject is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tooltest.Call(t, handleSendEmail, sc, tt.args)
			require.True(t, result.IsError)
			assert.Contains(t, tooltest.Text(t, result), tt.want)
		})
	}
}

func TestRegisterGmailTools(t *testing.T) {
	sc := tooltest.NewContext(t, server.Config{}, http.NotFoundHandler())

	readOnly := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterGmailTools(readOnly, sc, true))
	assert.Len(t, readOnly.ListTools(), 3)

	writable := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterGmailTools(writable, sc, false))
	tools := writable.ListTools()
	assert.Len(t, tools, 9)
	for _, name := range []string{"gmail_archive_threads", "gmail_mark_unread", "gmail_modify_labels", "gmail_send_email"} {
		assert.Contains(t, tools, name)
	}
}
