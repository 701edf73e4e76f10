package calendar

import (
	calendar "google.golang.org/api/calendar/v3"
)

// EventInput holds the fields of an event to create or update. Start and End
// are RFC 3339 date-times, or YYYY-MM-DD dates for all-day events. Empty
// fields are left unchanged on update.
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       string
	End         string
	TimeZone    string
	Attendees   []string
}

// EventSummary is the flattened form of an event returned by the tools.
type EventSummary struct {
	ID          string         `json:"id"`
	Summary     string         `json:"summary"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Start       string         `json:"start"`
	End         string         `json:"end"`
	AllDay      bool           `json:"all_day,omitempty"`
	Status      string         `json:"status,omitempty"`
	Organizer   string         `json:"organizer,omitempty"`
	HTMLLink    string         `json:"html_link,omitempty"`
	MeetLink    string         `json:"meet_link,omitempty"`
	Attendees   []AttendeeInfo `json:"attendees,omitempty"`
}

// AttendeeInfo describes one event attendee.
type AttendeeInfo struct {
	Email          string `json:"email"`
	DisplayName    string `json:"display_name,omitempty"`
	ResponseStatus string `json:"response_status,omitempty"` // needsAction, declined, tentative, accepted
	Optional       bool   `json:"optional,omitempty"`
}

// CalendarInfo describes a calendar from the user's calendar list.
type CalendarInfo struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	TimeZone   string `json:"time_zone,omitempty"`
	Primary    bool   `json:"primary,omitempty"`
	AccessRole string `json:"access_role,omitempty"` // owner, writer, reader, freeBusyReader
}

const untitled = "No title"

func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}
	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Status:      event.Status,
		HTMLLink:    event.HtmlLink,
	}
	if summary.Summary == "" {
		summary.Summary = untitled
	}
	if event.Start != nil {
		summary.Start, summary.AllDay = eventTime(event.Start)
	}
	if event.End != nil {
		summary.End, _ = eventTime(event.End)
	}
	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}
	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, AttendeeInfo{
			Email:          att.Email,
			DisplayName:    att.DisplayName,
			ResponseStatus: att.ResponseStatus,
			Optional:       att.Optional,
		})
	}
	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				summary.MeetLink = ep.Uri
				break
			}
		}
	}
	return summary
}

// eventTime returns the date-time of t, or its date for all-day events.
func eventTime(t *calendar.EventDateTime) (string, bool) {
	if t.DateTime != "" {
		return t.DateTime, false
	}
	return t.Date, t.Date != ""
}

func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:         entry.Id,
		Summary:    entry.Summary,
		TimeZone:   entry.TimeZone,
		Primary:    entry.Primary,
		AccessRole: entry.AccessRole,
	}
}
