package sheets

import (
	"fmt"
	"strings"
)

// Schema is the ordered list of column names taken from a header row.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema builds a Schema from a header row. When a name repeats, lookups
// resolve to its first position.
func NewSchema(header []string) Schema {
	s := Schema{
		columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
	}
	for i, name := range header {
		s.columns[i] = name
		if _, seen := s.index[name]; !seen && name != "" {
			s.index[name] = i
		}
	}
	return s
}

// Columns returns the header names in sheet order.
func (s Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Len returns the number of header cells.
func (s Schema) Len() int {
	return len(s.columns)
}

// Has reports whether name is a header.
func (s Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Index returns the 0-based position of name.
func (s Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Require is like Index but returns a *ConfigurationError naming the
// available columns when name is unknown.
func (s Schema) Require(name string) (int, error) {
	if i, ok := s.index[name]; ok {
		return i, nil
	}
	var available []string
	for _, c := range s.columns {
		if c != "" {
			available = append(available, c)
		}
	}
	return -1, &ConfigurationError{Kind: "column", Name: name, Available: available}
}

// Row is one data row. Number is 1-indexed and excludes the header row of
// the worksheet, so the first data row is 1 and lives on sheet row 2. Rows
// read from a range further down keep their worksheet numbering.
type Row struct {
	Number int
	Cells  []string
}

// Cell returns the value at idx, or "" when the row is shorter.
func (r Row) Cell(idx int) string {
	if idx < 0 || idx >= len(r.Cells) {
		return ""
	}
	return r.Cells[idx]
}

// SheetRow returns the absolute 1-indexed row in the worksheet.
func (r Row) SheetRow() int {
	return r.Number + 1
}

// Table is the result of one full-range read.
type Table struct {
	Schema Schema
	Rows   []Row

	// HeaderRow is the absolute sheet row the header was read from.
	HeaderRow int
}

// NewTable splits raw range values into a header and data rows. The header
// is taken to be sheet row 1.
func NewTable(values [][]string) (*Table, error) {
	return NewTableAt(values, 1)
}

// NewTableAt is like NewTable for values read from a range whose first row
// is sheet row headerRow.
func NewTableAt(values [][]string, headerRow int) (*Table, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, ErrEmptySheet
	}
	if headerRow < 1 {
		headerRow = 1
	}
	t := &Table{
		Schema:    NewSchema(values[0]),
		Rows:      make([]Row, 0, len(values)-1),
		HeaderRow: headerRow,
	}
	for i, cells := range values[1:] {
		// Data row i sits on sheet row headerRow+1+i.
		t.Rows = append(t.Rows, Row{Number: headerRow + i, Cells: cells})
	}
	return t, nil
}

// Value returns the cell of row under column name, or "" if either is unknown.
func (t *Table) Value(row Row, column string) string {
	idx, ok := t.Schema.Index(column)
	if !ok {
		return ""
	}
	return row.Cell(idx)
}

// RowMap converts a row to a column->value map covering every header.
func (t *Table) RowMap(row Row) map[string]string {
	m := make(map[string]string, t.Schema.Len())
	for name, idx := range t.Schema.index {
		m[name] = row.Cell(idx)
	}
	return m
}

// FindRows returns every row whose cell in column equals value exactly, in
// sheet order.
func (t *Table) FindRows(column, value string) ([]Row, error) {
	idx, err := t.Schema.Require(column)
	if err != nil {
		return nil, err
	}
	var matches []Row
	for _, r := range t.Rows {
		if r.Cell(idx) == value {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

// ColumnSet describes the columns a well-formed sheet of some kind carries.
type ColumnSet struct {
	Name     string   `json:"name"`
	Required []string `json:"required"`
	Standard []string `json:"standard"`
	Optional []string `json:"optional,omitempty"`
}

// Standard column sets for the sheets this server manages.
var (
	TaskColumns = ColumnSet{
		Name:     "tasks",
		Required: []string{"Task", "Status"},
		Standard: []string{"Created Date", "Completed Date", "Status", "Task", "Tags",
			"Category", "Projects", "Do Date", "Due Date", "Due Time",
			"Urgent", "Important", "Priority", "Location", "Notes"},
		Optional: []string{"Recurring", "Recurring Schedule", "Task ID"},
	}

	AccomplishmentColumns = ColumnSet{
		Name:     "accomplishments",
		Required: []string{"Date", "Accomplishment"},
		Standard: []string{"Date", "Time", "Category", "Accomplishment", "Notes"},
		Optional: []string{"ID", "Tags"},
	}

	PriorityColumns = ColumnSet{
		Name:     "priorities",
		Required: []string{"Date", "Priorities"},
		Standard: []string{"Date", "Priorities"},
	}
)

// ColumnSets indexes the standard sets by name.
var ColumnSets = map[string]ColumnSet{
	TaskColumns.Name:           TaskColumns,
	AccomplishmentColumns.Name: AccomplishmentColumns,
	PriorityColumns.Name:       PriorityColumns,
}

// StructureReport is the outcome of ValidateStructure.
type StructureReport struct {
	Valid           bool     `json:"valid"`
	MissingRequired []string `json:"missing_required,omitempty"`
	MissingStandard []string `json:"missing_standard,omitempty"`
	Extra           []string `json:"extra,omitempty"`
}

// Err returns an error listing the missing required columns, or nil.
func (r StructureReport) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("sheet is missing required columns: %s", strings.Join(r.MissingRequired, ", "))
}

// ValidateStructure compares a schema against a column set.
func ValidateStructure(schema Schema, set ColumnSet) StructureReport {
	report := StructureReport{}
	for _, c := range set.Required {
		if !schema.Has(c) {
			report.MissingRequired = append(report.MissingRequired, c)
		}
	}
	for _, c := range set.Standard {
		if !schema.Has(c) && !contains(set.Required, c) {
			report.MissingStandard = append(report.MissingStandard, c)
		}
	}
	known := make(map[string]bool)
	for _, list := range [][]string{set.Required, set.Standard, set.Optional} {
		for _, c := range list {
			known[c] = true
		}
	}
	for _, c := range schema.columns {
		if c != "" && !known[c] {
			report.Extra = append(report.Extra, c)
		}
	}
	report.Valid = len(report.MissingRequired) == 0
	return report
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
