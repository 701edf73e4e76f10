package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/teemow/workspace-mcp/internal/logging"
)

// UpdateSet maps column names to the values to write. Only the named cells
// are touched.
type UpdateSet map[string]any

// CellUpdate addresses a single cell. Row is the absolute 1-indexed sheet
// row, Column the 0-based column index.
type CellUpdate struct {
	Worksheet string
	Row       int
	Column    int
	Value     any
}

// Address returns the A1 address of the cell.
func (c CellUpdate) Address() string {
	return CellAddress(c.Worksheet, c.Row, c.Column)
}

// WriteResult describes a completed mutation.
type WriteResult struct {
	Operation  string   `json:"operation"`
	RowNumber  int      `json:"row_number"`
	SheetRow   int      `json:"sheet_row"`
	Cells      []string `json:"cells,omitempty"`
	Duplicates []int    `json:"duplicate_sheet_rows,omitempty"`
}

// Writer performs formula-safe mutations. It never rewrites a whole row:
// every write is a list of single-cell updates.
type Writer struct {
	backend  Backend
	logger   *slog.Logger
	observer Observer
}

// NewWriter returns a Writer over backend.
func NewWriter(backend Backend, logger *slog.Logger, observer Observer) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Writer{backend: backend, logger: logger, observer: observer}
}

func (w *Writer) load(ctx context.Context, ref SheetRef) (*Table, error) {
	values, err := w.backend.ReadRange(ctx, ref.SpreadsheetID, WorksheetRange(ref.Worksheet, ""))
	if err != nil {
		return nil, err
	}
	return NewTable(values)
}

// FormulaReader is implemented by backends that can read cells as entered,
// returning formulas instead of their results.
type FormulaReader interface {
	ReadFormulas(ctx context.Context, spreadsheetID, rangeSpec string) ([][]string, error)
}

// contentRows returns the data rows of the worksheet as entered. Backends
// without FormulaReader yield the displayed values, in which case a formula
// result counts as data.
func (w *Writer) contentRows(ctx context.Context, ref SheetRef, t *Table) ([][]string, error) {
	fr, ok := w.backend.(FormulaReader)
	if !ok {
		rows := make([][]string, len(t.Rows))
		for i, r := range t.Rows {
			rows[i] = r.Cells
		}
		return rows, nil
	}
	values, err := fr.ReadFormulas(ctx, ref.SpreadsheetID, WorksheetRange(ref.Worksheet, ""))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values[1:], nil
}

// holdsData reports whether any cell has a value that is not a formula.
func holdsData(cells []string) bool {
	for _, c := range cells {
		c = strings.TrimSpace(c)
		if c != "" && !strings.HasPrefix(c, "=") {
			return true
		}
	}
	return false
}

// resolve maps every column of set to its index before anything is written.
func resolve(schema Schema, set UpdateSet) ([]int, []string, error) {
	if len(set) == 0 {
		return nil, nil, fmt.Errorf("no columns to write")
	}
	columns := make([]string, 0, len(set))
	for c := range set {
		columns = append(columns, c)
	}
	indexes := make([]int, len(columns))
	for i, c := range columns {
		idx, err := schema.Require(c)
		if err != nil {
			return nil, nil, err
		}
		if err := checkScalar(c, set[c]); err != nil {
			return nil, nil, err
		}
		indexes[i] = idx
	}
	sort.Sort(byIndex{indexes, columns})
	return indexes, columns, nil
}

type byIndex struct {
	idx  []int
	name []string
}

func (b byIndex) Len() int           { return len(b.idx) }
func (b byIndex) Less(i, j int) bool { return b.idx[i] < b.idx[j] }
func (b byIndex) Swap(i, j int) {
	b.idx[i], b.idx[j] = b.idx[j], b.idx[i]
	b.name[i], b.name[j] = b.name[j], b.name[i]
}

func checkScalar(column string, v any) error {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int64, int32, json.Number:
		return nil
	default:
		return &ConfigurationError{Kind: "value type", Name: fmt.Sprintf("%T for column %s", v, column)}
	}
}

func cellsFor(ref SheetRef, sheetRow int, indexes []int, columns []string, set UpdateSet) []CellUpdate {
	cells := make([]CellUpdate, len(indexes))
	for i, idx := range indexes {
		v := set[columns[i]]
		if v == nil {
			v = ""
		}
		cells[i] = CellUpdate{Worksheet: ref.Worksheet, Row: sheetRow, Column: idx, Value: v}
	}
	return cells
}

func addresses(cells []CellUpdate) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Address()
	}
	return out
}

// locate finds the row whose idColumn equals id. With duplicates the first
// row wins and the others are reported.
func (w *Writer) locate(ref SheetRef, t *Table, idColumn, id string) (Row, []int, error) {
	matches, err := t.FindRows(idColumn, id)
	if err != nil {
		return Row{}, nil, err
	}
	if len(matches) == 0 {
		return Row{}, nil, &NotFoundError{Column: idColumn, Value: id}
	}
	var dups []int
	if len(matches) > 1 {
		for _, m := range matches {
			dups = append(dups, m.SheetRow())
		}
		w.logger.Warn("duplicate ID values, using first match",
			logging.Spreadsheet(ref.SpreadsheetID),
			logging.Worksheet(ref.Worksheet),
			slog.String("id_column", idColumn),
			slog.Any("sheet_rows", dups))
	}
	return matches[0], dups, nil
}

// UpdateByID writes updates into the row whose idColumn equals id. All
// columns are validated before any cell is written.
func (w *Writer) UpdateByID(ctx context.Context, ref SheetRef, idColumn, id string, updates UpdateSet) (*WriteResult, error) {
	t, err := w.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if _, err := t.Schema.Require(idColumn); err != nil {
		return nil, err
	}
	indexes, columns, err := resolve(t.Schema, updates)
	if err != nil {
		return nil, err
	}
	row, dups, err := w.locate(ref, t, idColumn, id)
	if err != nil {
		return nil, err
	}

	cells := cellsFor(ref, row.SheetRow(), indexes, columns, updates)
	if err := w.backend.WriteCells(ctx, ref.SpreadsheetID, cells); err != nil {
		return nil, err
	}
	w.observer.ObserveWrite(ctx, "update", len(cells))

	return &WriteResult{
		Operation:  "update",
		RowNumber:  row.Number,
		SheetRow:   row.SheetRow(),
		Cells:      addresses(cells),
		Duplicates: dups,
	}, nil
}

// Append writes data into the row after the last one holding data. Only the
// named cells are written. A row whose only content is formulas counts as
// free, so formula columns pre-filled down the sheet are left in place and
// the new values land beside them.
func (w *Writer) Append(ctx context.Context, ref SheetRef, data UpdateSet) (*WriteResult, error) {
	t, err := w.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	indexes, columns, err := resolve(t.Schema, data)
	if err != nil {
		return nil, err
	}
	rows, err := w.contentRows(ctx, ref, t)
	if err != nil {
		return nil, err
	}

	lastUsed := 0
	for i, cells := range rows {
		if holdsData(cells) {
			lastUsed = i + 1
		}
	}
	number := lastUsed + 1
	target := Row{Number: number}

	cells := cellsFor(ref, target.SheetRow(), indexes, columns, data)
	if err := w.backend.WriteCells(ctx, ref.SpreadsheetID, cells); err != nil {
		return nil, err
	}
	w.observer.ObserveWrite(ctx, "append", len(cells))

	return &WriteResult{
		Operation: "append",
		RowNumber: number,
		SheetRow:  target.SheetRow(),
		Cells:     addresses(cells),
	}, nil
}

// DeleteByID removes the row whose idColumn equals id.
func (w *Writer) DeleteByID(ctx context.Context, ref SheetRef, idColumn, id string) (*WriteResult, error) {
	t, err := w.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	row, dups, err := w.locate(ref, t, idColumn, id)
	if err != nil {
		return nil, err
	}
	if err := w.backend.DeleteRow(ctx, ref.SpreadsheetID, ref.Worksheet, row.SheetRow()); err != nil {
		return nil, err
	}
	w.observer.ObserveWrite(ctx, "delete", 0)

	return &WriteResult{
		Operation:  "delete",
		RowNumber:  row.Number,
		SheetRow:   row.SheetRow(),
		Duplicates: dups,
	}, nil
}
