package sheets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in      string
		desc    bool
		wantErr bool
	}{
		{"", false, false},
		{"asc", false, false},
		{"ASC", false, false},
		{"ascending", false, false},
		{"desc", true, false},
		{" Descending ", true, false},
		{"random", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			desc, err := ParseSortOrder(tt.in)
			if tt.wantErr {
				assert.True(t, IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.desc, desc)
		})
	}
}

func datesTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable([][]string{
		{"Date", "Item"},
		{"2024-01-03", "c"},
		{"", "blank"},
		{"01/02/2024", "b"},
		{"Jan 1, 2024", "a"},
		{"January 4, 2024", "d"},
	})
	require.NoError(t, err)
	return table
}

func items(res *Result) []string {
	out := make([]string, len(res.Records))
	for i, r := range res.Records {
		out[i] = r.Get("Item")
	}
	return out
}

func TestProject_SortMixedDateFormats(t *testing.T) {
	table := datesTable(t)
	e := NewEvaluator(nil)

	res, err := e.Project(table, table.Rows, Projection{Sort: &SortSpec{Column: "Date"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "blank"}, items(res))

	res, err = e.Project(table, table.Rows, Projection{Sort: &SortSpec{Column: "Date", Descending: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c", "b", "a", "blank"}, items(res), "empty cells stay last")
}

func TestProject_SortNumbersAndText(t *testing.T) {
	table, err := NewTable([][]string{
		{"Name", "Score"},
		{"x", "10"},
		{"y", "9"},
		{"z", "1,000"},
		{"w", "pending"},
		{"v", "10"},
	})
	require.NoError(t, err)
	e := NewEvaluator(nil)

	res, err := e.Project(table, table.Rows, Projection{Columns: []string{"Name"}, Sort: &SortSpec{Column: "Score"}})
	require.NoError(t, err)
	var names []string
	for _, r := range res.Records {
		names = append(names, r.Get("Name"))
	}
	// Numbers before text; equal keys keep sheet order.
	assert.Equal(t, []string{"y", "x", "v", "z", "w"}, names)
}

func TestProject_ColumnsAndLimit(t *testing.T) {
	table := datesTable(t)
	e := NewEvaluator(nil)

	res, err := e.Project(table, table.Rows, Projection{
		Columns: []string{"Item", "Date"},
		Sort:    &SortSpec{Column: "Date", Descending: true},
		Limit:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Item", "Date"}, res.Columns)
	assert.Equal(t, 5, res.Matched)
	assert.Equal(t, 5, res.Scanned)
	require.Len(t, res.Records, 2)

	first := res.Records[0]
	assert.Equal(t, "d", first.Get("Item"))
	assert.Equal(t, 5, first.RowNumber)
	assert.Equal(t, 6, first.SheetRow)
	assert.Equal(t, map[string]string{"Item": "d", "Date": "January 4, 2024"}, first.Map())
	assert.Empty(t, first.Get("Missing"))
}

func TestProject_DoesNotReorderInput(t *testing.T) {
	table := datesTable(t)
	e := NewEvaluator(nil)
	rows := table.Rows

	_, err := e.Project(table, rows, Projection{Sort: &SortSpec{Column: "Date"}})
	require.NoError(t, err)
	assert.Equal(t, 1, rows[0].Number)
}

func TestProject_UnknownColumns(t *testing.T) {
	table := datesTable(t)
	e := NewEvaluator(nil)

	_, err := e.Project(table, table.Rows, Projection{Columns: []string{"Nope"}})
	assert.True(t, IsConfigurationError(err))

	_, err = e.Project(table, table.Rows, Projection{Sort: &SortSpec{Column: "Nope"}})
	assert.True(t, IsConfigurationError(err))
}

func TestRecord_MarshalJSONKeepsColumnOrder(t *testing.T) {
	r := Record{
		RowNumber: 3,
		SheetRow:  4,
		Columns:   []string{"Zeta", "Alpha", `Quote "q"`},
		Values:    []string{"1", "2", "3"},
	}
	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"row_number":3,"sheet_row":4,"values":{"Zeta":"1","Alpha":"2","Quote \"q\"":"3"}}`, string(raw))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, float64(3), decoded["row_number"])
}
