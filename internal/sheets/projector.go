package sheets

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// SortSpec orders a result by one column.
type SortSpec struct {
	Column     string
	Descending bool
}

// ParseSortOrder maps "asc"/"desc" (any case, empty meaning asc) to
// Descending.
func ParseSortOrder(order string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "asc", "ascending":
		return false, nil
	case "desc", "descending":
		return true, nil
	default:
		return false, &ConfigurationError{Kind: "sort order", Name: order, Available: []string{"asc", "desc"}}
	}
}

// Projection shapes accepted rows into a result.
type Projection struct {
	Columns []string // nil keeps every column
	Sort    *SortSpec
	Limit   int // <= 0 means no limit
}

// Record is one projected row. It marshals to a JSON object whose keys keep
// the projection's column order.
type Record struct {
	RowNumber int
	SheetRow  int
	Columns   []string
	Values    []string
}

// Get returns the value of column, or "" when it was not projected.
func (r Record) Get(column string) string {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i]
		}
	}
	return ""
}

// Map returns the record as a plain map.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return m
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"row_number":`)
	buf.WriteString(strconv.Itoa(r.RowNumber))
	buf.WriteString(`,"sheet_row":`)
	buf.WriteString(strconv.Itoa(r.SheetRow))
	buf.WriteString(`,"values":{`)
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// Result is a projected, ordered set of records.
type Result struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
	Matched int      `json:"matched"`
	Scanned int      `json:"scanned"`
}

// Project selects columns, sorts and limits rows taken from t.
func (e *Evaluator) Project(t *Table, rows []Row, p Projection) (*Result, error) {
	columns := p.Columns
	if len(columns) == 0 {
		columns = t.Schema.Columns()
	}
	indexes := make([]int, len(columns))
	for i, c := range columns {
		idx, err := t.Schema.Require(c)
		if err != nil {
			return nil, err
		}
		indexes[i] = idx
	}

	ordered := slices.Clone(rows)
	if p.Sort != nil {
		idx, err := t.Schema.Require(p.Sort.Column)
		if err != nil {
			return nil, err
		}
		e.sortRows(ordered, idx, p.Sort.Descending)
	}

	matched := len(ordered)
	if p.Limit > 0 && len(ordered) > p.Limit {
		ordered = ordered[:p.Limit]
	}

	res := &Result{
		Columns: columns,
		Records: make([]Record, 0, len(ordered)),
		Matched: matched,
		Scanned: len(t.Rows),
	}
	for _, r := range ordered {
		values := make([]string, len(indexes))
		for i, idx := range indexes {
			values[i] = r.Cell(idx)
		}
		res.Records = append(res.Records, Record{
			RowNumber: r.Number,
			SheetRow:  r.SheetRow(),
			Columns:   columns,
			Values:    values,
		})
	}
	return res, nil
}

// sortRows sorts in place, stable. Values are grouped by kind (dates, then
// numbers, then text) and compared within their kind. Empty cells go last in
// either direction.
func (e *Evaluator) sortRows(rows []Row, idx int, descending bool) {
	keys := make(map[int]typedValue, len(rows))
	for _, r := range rows {
		keys[r.Number] = e.classify(r.Cell(idx))
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		ka, kb := keys[a.Number], keys[b.Number]
		if (ka.kind == kindNull) != (kb.kind == kindNull) {
			if ka.kind == kindNull {
				return 1
			}
			return -1
		}
		cmp := compareKeys(ka, kb)
		if descending {
			return -cmp
		}
		return cmp
	})
}

func compareKeys(a, b typedValue) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case kindDate:
		return a.date.Compare(b.date)
	case kindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	case kindString:
		return strings.Compare(a.raw, b.raw)
	}
	return 0
}
