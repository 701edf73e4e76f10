package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLetter(t *testing.T) {
	tests := map[int]string{
		1:   "A",
		2:   "B",
		26:  "Z",
		27:  "AA",
		52:  "AZ",
		53:  "BA",
		702: "ZZ",
		703: "AAA",
	}
	for n, letters := range tests {
		assert.Equal(t, letters, ColumnLetter(n))
		assert.Equal(t, n, ColumnNumber(letters))
	}
	assert.Equal(t, 28, ColumnNumber("ab"))
	assert.Equal(t, 0, ColumnNumber("A1"))
	assert.Equal(t, "", ColumnLetter(0))
}

func TestCellAddress(t *testing.T) {
	assert.Equal(t, "'Tasks'!C5", CellAddress("Tasks", 5, 2))
	assert.Equal(t, "'Bob''s list'!A2", CellAddress("Bob's list", 2, 0))
	assert.Equal(t, "'My Sheet'!AA10", CellAddress("My Sheet", 10, 26))
}

func TestWorksheetRange(t *testing.T) {
	assert.Equal(t, "'Tasks'", WorksheetRange("Tasks", ""))
	assert.Equal(t, "'Tasks'!A1:D20", WorksheetRange("Tasks", " A1:D20 "))
	assert.Equal(t, "Other!A1", WorksheetRange("Tasks", "Other!A1"))
	assert.Equal(t, "A1:B2", WorksheetRange("", "A1:B2"))
}

func TestParseA1(t *testing.T) {
	tests := []struct {
		in      string
		want    GridBounds
		wantErr bool
	}{
		{in: "B2", want: GridBounds{StartRow: 1, EndRow: 2, StartColumn: 1, EndColumn: 2}},
		{in: "A1:C10", want: GridBounds{StartRow: 0, EndRow: 10, StartColumn: 0, EndColumn: 3}},
		{in: "$A$1:$B$2", want: GridBounds{StartRow: 0, EndRow: 2, StartColumn: 0, EndColumn: 2}},
		{in: "A:C", want: GridBounds{StartRow: -1, EndRow: -1, StartColumn: 0, EndColumn: 3}},
		{in: "2:5", want: GridBounds{StartRow: 1, EndRow: 5, StartColumn: -1, EndColumn: -1}},
		{in: "'Sheet 1'!D4:E", want: GridBounds{StartRow: 3, EndRow: -1, StartColumn: 3, EndColumn: 5}},
		{in: "", wantErr: true},
		{in: "C1:A1", wantErr: true},
		{in: "A5:A2", wantErr: true},
		{in: "A0", wantErr: true},
		{in: "1A", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseA1(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
