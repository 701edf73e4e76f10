package accomplishments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/sheets"
)

// gridBackend serves a single worksheet from memory.
type gridBackend struct {
	mu      sync.Mutex
	grid    [][]string
	written []sheets.CellUpdate
}

func (g *gridBackend) ReadRange(context.Context, string, string) ([][]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([][]string, len(g.grid))
	for i, r := range g.grid {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (g *gridBackend) WriteCells(_ context.Context, _ string, cells []sheets.CellUpdate) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range cells {
		for len(g.grid) < c.Row {
			g.grid = append(g.grid, nil)
		}
		for len(g.grid[c.Row-1]) <= c.Column {
			g.grid[c.Row-1] = append(g.grid[c.Row-1], "")
		}
		g.grid[c.Row-1][c.Column] = fmt.Sprint(c.Value)
		g.written = append(g.written, c)
	}
	return nil
}

func (g *gridBackend) DeleteRow(_ context.Context, _, _ string, sheetRow int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grid = append(g.grid[:sheetRow-1], g.grid[sheetRow:]...)
	return nil
}

var fixedNow = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

func newTestService(grid [][]string) (*Service, *gridBackend) {
	backend := &gridBackend{grid: grid}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := sheets.NewEngine(backend, sheets.WithLogger(logger))
	svc := NewService(engine, "sheet-id", "",
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(logger))
	return svc, backend
}

var header = []string{"ID", "Date", "Time", "Category", "Accomplishment", "Notes", "Tags"}

func TestService_Add(t *testing.T) {
	svc, backend := newTestService([][]string{header})

	a, err := svc.Add(context.Background(), AddInput{Description: "Shipped v1", Category: "Work", Tags: "release"})
	require.NoError(t, err)

	_, err = uuid.Parse(a.ID)
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-10", a.Date)
	assert.Equal(t, "14:30", a.Time)
	assert.Equal(t, 1, a.RowNumber)

	row := backend.grid[1]
	assert.Equal(t, []string{a.ID, "2024-03-10", "14:30", "Work", "Shipped v1", "", "release"}, row)
}

func TestService_AddDateOverride(t *testing.T) {
	svc, backend := newTestService([][]string{{"Date", "Accomplishment", "Notes"}})

	a, err := svc.Add(context.Background(), AddInput{Description: "Backfilled", Date: "03/01/2024"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", a.Date)
	assert.Empty(t, a.ID, "no ID column, no ID")
	assert.Equal(t, []string{"2024-03-01", "Backfilled"}, backend.grid[1])

	_, err = svc.Add(context.Background(), AddInput{Description: "x", Date: "someday"})
	assert.ErrorContains(t, err, "invalid date")
}

func TestService_AddValidation(t *testing.T) {
	tests := []struct {
		name  string
		grid  [][]string
		input AddInput
		want  string
	}{
		{"empty description", [][]string{header}, AddInput{}, "description is required"},
		{"long description", [][]string{header}, AddInput{Description: strings.Repeat("x", 501)}, "at most 500"},
		{"long category", [][]string{header}, AddInput{Description: "x", Category: strings.Repeat("c", 51)}, "category"},
		{"long tags", [][]string{header}, AddInput{Description: "x", Tags: strings.Repeat("t", 201)}, "tags"},
		{"missing required column", [][]string{{"Date", "Notes"}}, AddInput{Description: "x"}, "Accomplishment"},
		{"value for missing column", [][]string{{"Date", "Accomplishment"}}, AddInput{Description: "x", Notes: "n"}, "column 'Notes' not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, backend := newTestService(tt.grid)
			_, err := svc.Add(context.Background(), tt.input)
			assert.ErrorContains(t, err, tt.want)
			assert.Empty(t, backend.written)
		})
	}
}

func sampleGrid() [][]string {
	return [][]string{
		header,
		{"a1", "2024-03-10", "", "Work", "Deployed", "", ""},
		{"a2", "03/09/2024", "", "", "Read a book", "", ""},
		{"a3", "2024-03-09", "", "Work", "Reviewed PRs", "", ""},
		{"a4", "2024-03-01", "", "Health", "Ran 10k", "", ""},
		{"a5", "2024-03-12", "", "Work", "Future plan", "", ""},
		{"a6", "garbage", "", "Work", "Undated", "", ""},
	}
}

func ids(list []Accomplishment) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

func TestService_View(t *testing.T) {
	svc, _ := newTestService(sampleGrid())
	ctx := context.Background()

	tests := []struct {
		name   string
		filter ViewFilter
		want   []string
	}{
		{"everything", ViewFilter{}, []string{"a1", "a2", "a3", "a4", "a5", "a6"}},
		{"start date across formats", ViewFilter{StartDate: "2024-03-09"}, []string{"a1", "a2", "a3", "a5"}},
		{"date window", ViewFilter{StartDate: "03/02/2024", EndDate: "2024-03-10"}, []string{"a1", "a2", "a3"}},
		{"category", ViewFilter{Category: "Work"}, []string{"a1", "a3", "a5", "a6"}},
		{"limit", ViewFilter{Limit: 2}, []string{"a1", "a2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.View(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	_, err := svc.View(ctx, ViewFilter{Limit: 501})
	assert.Error(t, err)
	_, err = svc.View(ctx, ViewFilter{Limit: -1})
	assert.Error(t, err)
}

func TestService_Stats(t *testing.T) {
	svc, _ := newTestService(sampleGrid())

	st, err := svc.Stats(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 7, st.Days)
	assert.Equal(t, "2024-03-04", st.From)
	assert.Equal(t, "2024-03-10", st.To)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, map[string]int{"Work": 2, "Uncategorized": 1}, st.ByCategory)
	assert.InDelta(t, 0.43, st.AvgPerDay, 1e-9)
	assert.Equal(t, 0.0, st.MedianPerDay)
	assert.Equal(t, "2024-03-09", st.BusiestDay)

	st, err = svc.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Total)
	assert.Equal(t, 1.0, st.MedianPerDay)

	st, err = svc.Stats(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 1, st.ByCategory["Health"])

	_, err = svc.Stats(context.Background(), 366)
	assert.Error(t, err)
}

func TestService_StatsEmpty(t *testing.T) {
	svc, _ := newTestService([][]string{header})

	st, err := svc.Stats(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Total)
	assert.Equal(t, 0.0, st.AvgPerDay)
	assert.Empty(t, st.BusiestDay)
}

func TestService_Edit(t *testing.T) {
	svc, backend := newTestService(sampleGrid())
	ctx := context.Background()

	res, err := svc.Edit(ctx, "a3", EditInput{Category: "Code review"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.SheetRow)
	require.Len(t, backend.written, 1)
	assert.Equal(t, "Code review", backend.grid[3][3])
	assert.Equal(t, "Reviewed PRs", backend.grid[3][4])

	_, err = svc.Edit(ctx, "a3", EditInput{})
	assert.ErrorContains(t, err, "nothing to update")

	_, err = svc.Edit(ctx, "missing", EditInput{Notes: "n"})
	assert.True(t, sheets.IsNotFound(err))

	_, err = svc.Edit(ctx, "", EditInput{Notes: "n"})
	assert.Error(t, err)
}

func TestService_Delete(t *testing.T) {
	svc, backend := newTestService(sampleGrid())
	ctx := context.Background()

	res, err := svc.Delete(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, 3, res.SheetRow)
	assert.Len(t, backend.grid, 6)
	assert.Equal(t, "a3", backend.grid[2][0])

	_, err = svc.Delete(ctx, "a2")
	assert.True(t, sheets.IsNotFound(err))
}
