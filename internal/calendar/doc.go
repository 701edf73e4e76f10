// Package calendar wraps the Google Calendar API for the calendar tools.
//
// The client is a thin pass-through: it lists, reads, creates, updates and
// deletes events on one calendar and converts them to EventSummary values.
// Timed events without an explicit zone use DefaultTimeZone.
//
//	client, err := calendar.NewClient(ctx, "default", option.WithHTTPClient(httpClient))
//	if err != nil {
//	    return err
//	}
//	events, err := client.ListEvents(ctx, "primary", from, to, 10)
package calendar
