package gmail

import (
	"context"
	"errors"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	me = "me"

	// DefaultMaxResults bounds ListThreads when no limit is given.
	DefaultMaxResults = 10

	maxPageSize = 100
)

// Client wraps the Gmail service.
type Client struct {
	svc     *gmail.Service
	account string
}

// NewClient creates a Gmail client for account.
func NewClient(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc, account: account}, nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// ListThreads lists up to maxResults threads matching the Gmail search
// query q, following page tokens as needed.
func (c *Client) ListThreads(ctx context.Context, q string, maxResults int64) ([]ThreadSummary, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	var threads []ThreadSummary
	pageToken := ""
	for int64(len(threads)) < maxResults {
		pageSize := min(maxResults-int64(len(threads)), maxPageSize)
		req := c.svc.Users.Threads.List(me).Q(q).MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}
		res, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list threads: %w", err)
		}
		for _, t := range res.Threads {
			threads = append(threads, ThreadSummary{ID: t.Id, Snippet: t.Snippet})
		}
		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}
	if int64(len(threads)) > maxResults {
		threads = threads[:maxResults]
	}
	return threads, nil
}

// GetMessage fetches a message with its headers and body text.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*MessageSummary, error) {
	msg, err := c.svc.Users.Messages.Get(me, messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	summary := toMessageSummary(msg)
	return &summary, nil
}

// ModifyThreads adds and removes labels on every thread. All threads are
// attempted; the failures are joined.
func (c *Client) ModifyThreads(ctx context.Context, threadIDs, add, remove []string) error {
	if len(add) == 0 && len(remove) == 0 {
		return fmt.Errorf("no labels to add or remove")
	}
	var errs []error
	for _, id := range threadIDs {
		_, err := c.svc.Users.Threads.Modify(me, id, &gmail.ModifyThreadRequest{
			AddLabelIds:    add,
			RemoveLabelIds: remove,
		}).Context(ctx).Do()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to modify thread %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// ArchiveThreads removes threads from the inbox.
func (c *Client) ArchiveThreads(ctx context.Context, threadIDs []string) error {
	return c.ModifyThreads(ctx, threadIDs, nil, []string{LabelInbox})
}

// UnarchiveThreads moves threads back to the inbox.
func (c *Client) UnarchiveThreads(ctx context.Context, threadIDs []string) error {
	return c.ModifyThreads(ctx, threadIDs, []string{LabelInbox}, nil)
}

// MarkRead clears the unread label.
func (c *Client) MarkRead(ctx context.Context, threadIDs []string) error {
	return c.ModifyThreads(ctx, threadIDs, nil, []string{LabelUnread})
}

// MarkUnread sets the unread label.
func (c *Client) MarkUnread(ctx context.Context, threadIDs []string) error {
	return c.ModifyThreads(ctx, threadIDs, []string{LabelUnread}, nil)
}

// ListLabels lists the system and user labels.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	res, err := c.svc.Users.Labels.List(me).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	labels := make([]Label, 0, len(res.Labels))
	for _, l := range res.Labels {
		labels = append(labels, Label{ID: l.Id, Name: l.Name, Type: l.Type})
	}
	return labels, nil
}

// SendEmail sends msg and returns the new message ID.
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	raw, err := buildRawMessage(msg)
	if err != nil {
		return "", err
	}
	sent, err := c.svc.Users.Messages.Send(me, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}
