package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	// DefaultTimeZone applies to timed events created without a zone.
	DefaultTimeZone = "America/New_York"

	// DefaultMaxResults bounds ListEvents when no limit is given.
	DefaultMaxResults = 10

	// DefaultWindow is the span listed when no end time is given.
	DefaultWindow = 7 * 24 * time.Hour

	dateLayout = "2006-01-02"
)

// Client wraps the Google Calendar service.
type Client struct {
	svc      *calendar.Service
	account  string
	timeZone string
}

// NewClient creates a Calendar client for account.
func NewClient(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc, account: account, timeZone: DefaultTimeZone}, nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// SetTimeZone changes the zone used for timed events that name none.
func (c *Client) SetTimeZone(tz string) {
	if tz != "" {
		c.timeZone = tz
	}
}

// DefaultRange returns the listing window used when the caller gives none:
// from midnight today until seven days after now.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, now.Add(DefaultWindow)
}

// ListEvents lists single events in [timeMin, timeMax) ordered by start time.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, maxResults int64) ([]EventSummary, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	events, err := c.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	summaries := make([]EventSummary, 0, len(events.Items))
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}
	return summaries, nil
}

// GetEvent retrieves one event.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*EventSummary, error) {
	event, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	summary := toEventSummary(event)
	return &summary, nil
}

// CreateEvent inserts a new event. Summary, Start and End are required.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	if input.Summary == "" || input.Start == "" || input.End == "" {
		return nil, fmt.Errorf("summary, start and end are required")
	}
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
	}
	if err := c.apply(event, input); err != nil {
		return nil, err
	}

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	summary := toEventSummary(created)
	return &summary, nil
}

// UpdateEvent fetches the event, applies the non-empty fields of input and
// writes it back.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, input EventInput) (*EventSummary, error) {
	existing, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}

	if input.Summary != "" {
		existing.Summary = input.Summary
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Location != "" {
		existing.Location = input.Location
	}
	if err := c.apply(existing, input); err != nil {
		return nil, err
	}

	updated, err := c.svc.Events.Update(calendarID, eventID, existing).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	summary := toEventSummary(updated)
	return &summary, nil
}

// apply sets the times and attendees of event from input.
func (c *Client) apply(event *calendar.Event, input EventInput) error {
	tz := input.TimeZone
	if tz == "" {
		tz = c.timeZone
	}
	if input.Start != "" {
		start, err := eventDateTime(input.Start, tz)
		if err != nil {
			return fmt.Errorf("invalid start: %w", err)
		}
		event.Start = start
	}
	if input.End != "" {
		end, err := eventDateTime(input.End, tz)
		if err != nil {
			return fmt.Errorf("invalid end: %w", err)
		}
		event.End = end
	}
	if len(input.Attendees) > 0 {
		attendees := make([]*calendar.EventAttendee, 0, len(input.Attendees))
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{Email: email})
		}
		event.Attendees = attendees
	}
	return nil
}

// eventDateTime accepts YYYY-MM-DD for all-day events, or an ISO date-time
// with or without an offset. Without an offset the time is local to tz.
func eventDateTime(value, tz string) (*calendar.EventDateTime, error) {
	if _, err := time.Parse(dateLayout, value); err == nil {
		return &calendar.EventDateTime{Date: value}, nil
	}
	if _, err := time.Parse(time.RFC3339, value); err == nil {
		return &calendar.EventDateTime{DateTime: value, TimeZone: tz}, nil
	}
	if _, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return &calendar.EventDateTime{DateTime: value, TimeZone: tz}, nil
	}
	return nil, fmt.Errorf("%q is neither a date nor an RFC 3339 date-time", value)
}

// DeleteEvent deletes one event.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ListCalendars lists the calendars on the user's calendar list.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	list, err := c.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	calendars := make([]CalendarInfo, 0, len(list.Items))
	for _, entry := range list.Items {
		calendars = append(calendars, toCalendarInfo(entry))
	}
	return calendars, nil
}
