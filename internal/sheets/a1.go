package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ColumnLetter converts a 1-indexed column number to its A1 letters:
// 1 -> A, 26 -> Z, 27 -> AA.
func ColumnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// ColumnNumber is the inverse of ColumnLetter. It returns 0 for input that is
// not made of letters.
func ColumnNumber(letters string) int {
	n := 0
	for _, r := range strings.ToUpper(letters) {
		if r < 'A' || r > 'Z' {
			return 0
		}
		n = n*26 + int(r-'A'+1)
	}
	return n
}

// QuoteSheetName quotes a worksheet title for use in an A1 range.
func QuoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// CellAddress returns the A1 address of a single cell. row is the absolute
// 1-indexed sheet row, col the 0-based column index.
func CellAddress(worksheet string, row, col int) string {
	return fmt.Sprintf("%s!%s%d", QuoteSheetName(worksheet), ColumnLetter(col+1), row)
}

// WorksheetRange builds the range for a worksheet, optionally narrowed by an
// A1 range such as "A1:D20". A range that already names a sheet is used as is.
func WorksheetRange(worksheet, a1 string) string {
	a1 = strings.TrimSpace(a1)
	if a1 == "" {
		return QuoteSheetName(worksheet)
	}
	if strings.Contains(a1, "!") || worksheet == "" {
		return a1
	}
	return QuoteSheetName(worksheet) + "!" + a1
}

// GridBounds is a parsed A1 range with 0-based, end-exclusive indexes.
// An unbounded side is -1.
type GridBounds struct {
	StartRow, EndRow       int
	StartColumn, EndColumn int
}

// ParseA1 parses ranges like "B2", "A1:C10", "A:C" or "2:5".
func ParseA1(a1 string) (GridBounds, error) {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		a1 = a1[i+1:]
	}
	a1 = strings.ReplaceAll(strings.TrimSpace(a1), "$", "")
	if a1 == "" {
		return GridBounds{}, fmt.Errorf("empty range")
	}

	start, end, hasEnd := strings.Cut(a1, ":")
	sc, sr, err := splitCell(start)
	if err != nil {
		return GridBounds{}, err
	}
	ec, er := sc, sr
	if hasEnd {
		if ec, er, err = splitCell(end); err != nil {
			return GridBounds{}, err
		}
	}

	b := GridBounds{StartRow: -1, EndRow: -1, StartColumn: -1, EndColumn: -1}
	if sc > 0 {
		b.StartColumn = sc - 1
	}
	if ec > 0 {
		b.EndColumn = ec
	}
	if sr > 0 {
		b.StartRow = sr - 1
	}
	if er > 0 {
		b.EndRow = er
	}
	if b.StartColumn >= 0 && b.EndColumn >= 0 && b.EndColumn <= b.StartColumn {
		return GridBounds{}, fmt.Errorf("invalid range %q", a1)
	}
	if b.StartRow >= 0 && b.EndRow >= 0 && b.EndRow <= b.StartRow {
		return GridBounds{}, fmt.Errorf("invalid range %q", a1)
	}
	return b, nil
}

// splitCell splits "AB12" into column 28 and row 12. Either part may be
// absent, in which case it is 0.
func splitCell(cell string) (col, row int, err error) {
	i := 0
	for i < len(cell) && unicode.IsLetter(rune(cell[i])) {
		i++
	}
	letters, digits := cell[:i], cell[i:]
	if letters == "" && digits == "" {
		return 0, 0, fmt.Errorf("invalid cell reference %q", cell)
	}
	if letters != "" {
		if col = ColumnNumber(letters); col == 0 {
			return 0, 0, fmt.Errorf("invalid column in %q", cell)
		}
	}
	if digits != "" {
		row, err = strconv.Atoi(digits)
		if err != nil || row < 1 {
			return 0, 0, fmt.Errorf("invalid row in %q", cell)
		}
	}
	return col, row, nil
}
