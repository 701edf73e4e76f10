package sheets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSheet = "Tasks"

func testRef() SheetRef {
	return SheetRef{SpreadsheetID: "sheet-id", Worksheet: testSheet}
}

func newTestEngine(backend Backend, obs Observer) *Engine {
	opts := []Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}
	if obs != nil {
		opts = append(opts, WithObserver(obs))
	}
	return NewEngine(backend, opts...)
}

func TestEngine_Query(t *testing.T) {
	backend := newMemoryBackend(testSheet, [][]string{
		{"ID", "Task", "Status", "Due Date"},
		{"t1", "Write report", "open", "01/15/2024"},
		{"t2", "Review PR", "closed", "2024-01-10"},
		{"t3", "Plan sprint", "open", "2024-01-05"},
	})
	obs := &recordingObserver{}
	engine := newTestEngine(backend, obs)

	res, err := engine.Query(context.Background(), testRef(), Query{
		Filters: []Clause{{Column: "Status", Operator: OpEqual, Value: "open"}},
		Columns: []string{"ID", "Task"},
		Sort:    &SortSpec{Column: "Due Date"},
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "t3", res.Records[0].Get("ID"))
	assert.Equal(t, 3, res.Records[0].RowNumber)
	assert.Equal(t, "t1", res.Records[1].Get("ID"))
	assert.Equal(t, 3, obs.scanned)
	assert.Equal(t, 2, obs.matched)
}

func TestEngine_QueryErrors(t *testing.T) {
	backend := newMemoryBackend(testSheet, [][]string{{"ID"}, {"1"}})
	engine := newTestEngine(backend, nil)
	ctx := context.Background()

	_, err := engine.Query(ctx, testRef(), Query{Filters: []Clause{{Column: "Nope", Operator: OpIsNull}}})
	assert.True(t, IsConfigurationError(err))

	_, err = engine.Query(ctx, SheetRef{SpreadsheetID: "sheet-id", Worksheet: "Missing"}, Query{})
	assert.Error(t, err)

	empty := newMemoryBackend(testSheet, nil)
	_, err = newTestEngine(empty, nil).Query(ctx, testRef(), Query{})
	assert.ErrorIs(t, err, ErrEmptySheet)
}

// rangeBackend returns fixed values for one range, as the API returns only
// the requested window of a worksheet.
type rangeBackend struct {
	memoryBackend
	values   [][]string
	lastRead string
}

func (b *rangeBackend) ReadRange(_ context.Context, _, rangeSpec string) ([][]string, error) {
	b.lastRead = rangeSpec
	return b.values, nil
}

func TestEngine_QueryRangeKeepsSheetRows(t *testing.T) {
	tests := []struct {
		name      string
		rangeSpec string
		wantRows  []int
	}{
		{name: "range below the top", rangeSpec: "A5:B7", wantRows: []int{6, 7}},
		{name: "sheet qualified range", rangeSpec: "'Data'!A5:B7", wantRows: []int{6, 7}},
		{name: "whole columns", rangeSpec: "A:B", wantRows: []int{2, 3}},
		{name: "from row one", rangeSpec: "A1:B3", wantRows: []int{2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &rangeBackend{values: [][]string{{"ID", "Name"}, {"a", "x"}, {"b", "y"}}}
			engine := newTestEngine(backend, nil)

			ref := SheetRef{SpreadsheetID: "sheet-id", Worksheet: "Data", Range: tt.rangeSpec}
			res, err := engine.Query(context.Background(), ref, Query{})
			require.NoError(t, err)
			require.Len(t, res.Records, 2)
			for i, rec := range res.Records {
				assert.Equal(t, tt.wantRows[i], rec.SheetRow)
				assert.Equal(t, tt.wantRows[i]-1, rec.RowNumber)
			}
		})
	}
}

func TestEngine_QueryRejectsBadRange(t *testing.T) {
	backend := &rangeBackend{values: [][]string{{"ID"}}}
	engine := newTestEngine(backend, nil)

	_, err := engine.Query(context.Background(), SheetRef{SpreadsheetID: "sheet-id", Worksheet: "Data", Range: "B3:A1x"}, Query{})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Empty(t, backend.lastRead, "nothing is read for an invalid range")
}

func TestEngine_BackendErrorsPassThrough(t *testing.T) {
	backendErr := errors.New("quota exceeded")
	backend := newMemoryBackend(testSheet, [][]string{{"ID"}, {"1"}})
	backend.readErr = backendErr
	engine := newTestEngine(backend, nil)
	ctx := context.Background()

	_, err := engine.Query(ctx, testRef(), Query{})
	assert.Same(t, backendErr, err)

	_, err = engine.Append(ctx, testRef(), UpdateSet{"ID": "2"})
	assert.Same(t, backendErr, err)

	backend.readErr = nil
	backend.writErr = backendErr
	_, err = engine.UpdateByID(ctx, testRef(), "ID", "1", UpdateSet{"ID": "9"})
	assert.Same(t, backendErr, err)

	_, err = engine.DeleteByID(ctx, testRef(), "ID", "1")
	assert.Same(t, backendErr, err)
}

func TestEngine_WithDateNormalizer(t *testing.T) {
	backend := newMemoryBackend(testSheet, [][]string{
		{"Date", "Item"},
		{"24.12.2024", "b"},
		{"01.06.2024", "a"},
	})
	engine := NewEngine(backend, WithDateNormalizer(NewDateNormalizer("02.01.2006")))
	assert.Equal(t, []string{"02.01.2006"}, engine.Evaluator().Dates().Layouts())

	res, err := engine.Query(context.Background(), testRef(), Query{
		Filters: []Clause{{Column: "Date", Operator: OpGreater, Value: "01.01.2024"}},
		Sort:    &SortSpec{Column: "Date"},
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "a", res.Records[0].Get("Item"))
}

func TestEngine_Run(t *testing.T) {
	table, err := NewTable([][]string{{"A"}, {"1"}, {"2"}, {"3"}})
	require.NoError(t, err)
	engine := newTestEngine(newMemoryBackend(testSheet, nil), nil)

	res, err := engine.Run(context.Background(), table, Query{
		Sort:  &SortSpec{Column: "A", Descending: true},
		Limit: 1,
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "3", res.Records[0].Get("A"))
	assert.Equal(t, 3, res.Matched)
}
