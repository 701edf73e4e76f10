package sheets

import (
	"strings"
	"time"
)

// DefaultDateLayouts are tried in order when no layouts are configured.
// Month-first forms win over ISO when both could match.
var DefaultDateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// DateNormalizer parses free-form cell text into comparable instants.
// Each cell is parsed on its own, so a column may mix formats.
type DateNormalizer struct {
	layouts []string
}

// NewDateNormalizer returns a normalizer trying layouts in the given order.
// With no layouts it uses DefaultDateLayouts.
func NewDateNormalizer(layouts ...string) *DateNormalizer {
	var cleaned []string
	for _, l := range layouts {
		if l = strings.TrimSpace(l); l != "" {
			cleaned = append(cleaned, l)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultDateLayouts...)
	}
	return &DateNormalizer{layouts: cleaned}
}

// Layouts returns a copy of the configured layouts.
func (n *DateNormalizer) Layouts() []string {
	return append([]string(nil), n.layouts...)
}

// Parse returns the instant raw denotes, in UTC, and true. It returns false
// when no layout matches; that is "not a date", never an error.
func (n *DateNormalizer) Parse(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range n.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
