package gmail

import (
	gmail "google.golang.org/api/gmail/v1"
)

// System labels toggled by the thread tools.
const (
	LabelInbox  = "INBOX"
	LabelUnread = "UNREAD"
)

// ThreadSummary is one thread in a listing.
type ThreadSummary struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet,omitempty"`
}

// MessageSummary is a message with its common headers and body text.
type MessageSummary struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"thread_id"`
	From     string   `json:"from,omitempty"`
	To       string   `json:"to,omitempty"`
	Cc       string   `json:"cc,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Date     string   `json:"date,omitempty"`
	Labels   []string `json:"labels,omitempty"`
	Snippet  string   `json:"snippet,omitempty"`
	Body     string   `json:"body,omitempty"`
}

// Label is a Gmail label.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // system or user
}

// EmailMessage is an outgoing plain-text message.
type EmailMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
}

func toMessageSummary(m *gmail.Message) MessageSummary {
	return MessageSummary{
		ID:       m.Id,
		ThreadID: m.ThreadId,
		From:     HeaderValue(m, "From"),
		To:       HeaderValue(m, "To"),
		Cc:       HeaderValue(m, "Cc"),
		Subject:  HeaderValue(m, "Subject"),
		Date:     HeaderValue(m, "Date"),
		Labels:   m.LabelIds,
		Snippet:  m.Snippet,
		Body:     messageBody(m),
	}
}
