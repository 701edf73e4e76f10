package accomplishments

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/teemow/workspace-mcp/internal/sheets"
)

const (
	DefaultStatsDays = 7
	MaxStatsDays     = 365

	uncategorized = "Uncategorized"
)

// Stats summarizes the accomplishments of the last Days days.
type Stats struct {
	Days         int            `json:"period_days"`
	From         string         `json:"from"`
	To           string         `json:"to"`
	Total        int            `json:"total_accomplishments"`
	ByCategory   map[string]int `json:"by_category"`
	AvgPerDay    float64        `json:"avg_per_day"`
	MedianPerDay float64        `json:"median_per_day"`
	BusiestDay   string         `json:"busiest_day,omitempty"`
}

// Stats counts accomplishments dated within the last days days, today
// included. Zero days means DefaultStatsDays.
func (s *Service) Stats(ctx context.Context, days int) (*Stats, error) {
	if days == 0 {
		days = DefaultStatsDays
	}
	if days < 1 || days > MaxStatsDays {
		return nil, fmt.Errorf("days must be between 1 and %d", MaxStatsDays)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -(days - 1))

	res, err := s.engine.Query(ctx, s.ref, sheets.Query{
		Filters: []sheets.Clause{
			{Column: ColumnDate, Operator: sheets.OpGreaterEqual, Value: from.Format(DateLayout)},
			{Column: ColumnDate, Operator: sheets.OpLessEqual, Value: today.Format(DateLayout)},
		},
	})
	if err != nil {
		return nil, err
	}

	dates := s.engine.Evaluator().Dates()
	perDay := make([]float64, days)
	byCategory := make(map[string]int)
	for _, r := range res.Records {
		d, ok := dates.Parse(r.Get(ColumnDate))
		if !ok {
			continue
		}
		day := int(truncateDay(d).Sub(from).Hours() / 24)
		if day < 0 || day >= days {
			continue
		}
		perDay[day]++

		category := r.Get(ColumnCategory)
		if category == "" {
			category = uncategorized
		}
		byCategory[category]++
	}

	st := &Stats{
		Days:       days,
		From:       from.Format(DateLayout),
		To:         today.Format(DateLayout),
		ByCategory: byCategory,
	}
	for _, n := range perDay {
		st.Total += int(n)
	}

	mean, err := stats.Mean(perDay)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mean: %w", err)
	}
	if st.AvgPerDay, err = stats.Round(mean, 2); err != nil {
		return nil, fmt.Errorf("failed to round mean: %w", err)
	}
	if st.MedianPerDay, err = stats.Median(perDay); err != nil {
		return nil, fmt.Errorf("failed to compute median: %w", err)
	}
	if st.Total > 0 {
		busiest, _ := stats.Max(perDay)
		for i, n := range perDay {
			if n == busiest {
				st.BusiestDay = from.AddDate(0, 0, i).Format(DateLayout)
				break
			}
		}
	}
	return st, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
