// Package sheetstest provides an in-memory Google Sheets API for tests of
// code built on sheets.Client.
package sheetstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/teemow/workspace-mcp/internal/sheets"
)

// Server answers the subset of the Sheets v4 API that sheets.Client uses:
// spreadsheet metadata, value reads, value batch updates, appends and row
// deletion. It holds a single spreadsheet.
type Server struct {
	SpreadsheetID string

	srv *httptest.Server

	mu      sync.Mutex
	order   []string
	grids   map[string][][]string
	written []string
	deleted []int64
}

// NewServer starts a server for spreadsheetID. It is closed with the test.
func NewServer(t testing.TB, spreadsheetID string) *Server {
	t.Helper()
	s := &Server{SpreadsheetID: spreadsheetID, grids: make(map[string][][]string)}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

// ClientOptions points a sheets.Client at the server.
func (s *Server) ClientOptions() []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(s.srv.URL + "/"),
		option.WithHTTPClient(s.srv.Client()),
	}
}

// SetSheet replaces the contents of worksheet, adding it when new.
func (s *Server) SetSheet(worksheet string, grid [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grids[worksheet]; !ok {
		s.order = append(s.order, worksheet)
	}
	s.grids[worksheet] = grid
}

// Sheet returns a copy of the contents of worksheet.
func (s *Server) Sheet(worksheet string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.grids[worksheet]))
	for i, row := range s.grids[worksheet] {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// WrittenRanges lists every range written through values:batchUpdate, in
// order.
func (s *Server) WrittenRanges() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.written...)
}

// DeletedRows lists the 0-based start index of every deleted row.
func (s *Server) DeletedRows() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.deleted...)
}

func sheetID(index int) int64 {
	return int64(100 + index)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	prefix := "/v4/spreadsheets/" + s.SpreadsheetID
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, prefix)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case rest == "" && r.Method == http.MethodGet:
		s.metadata(w)
	case rest == ":batchUpdate":
		s.batchUpdate(w, r)
	case rest == "/values:batchUpdate":
		s.valuesBatchUpdate(w, r)
	case strings.HasPrefix(rest, "/values/") && strings.HasSuffix(rest, ":append"):
		s.appendValues(w, r, strings.TrimSuffix(strings.TrimPrefix(rest, "/values/"), ":append"))
	case strings.HasPrefix(rest, "/values/") && r.Method == http.MethodGet:
		s.readValues(w, strings.TrimPrefix(rest, "/values/"))
	default:
		writeError(w, http.StatusNotFound, "unsupported call "+r.Method+" "+r.URL.Path)
	}
}

func (s *Server) metadata(w http.ResponseWriter) {
	resp := &sheetsapi.Spreadsheet{SpreadsheetId: s.SpreadsheetID}
	for i, name := range s.order {
		resp.Sheets = append(resp.Sheets, &sheetsapi.Sheet{Properties: &sheetsapi.SheetProperties{
			SheetId: sheetID(i),
			Title:   name,
			Index:   int64(i),
			GridProperties: &sheetsapi.GridProperties{
				RowCount:    1000,
				ColumnCount: 26,
			},
		}})
	}
	writeJSON(w, resp)
}

func (s *Server) readValues(w http.ResponseWriter, rangeSpec string) {
	name := worksheetOf(rangeSpec)
	grid, ok := s.grids[name]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unable to parse range: "+rangeSpec)
		return
	}
	values := make([][]any, len(grid))
	for i, row := range grid {
		values[i] = make([]any, len(row))
		for j, v := range row {
			values[i][j] = v
		}
	}
	writeJSON(w, &sheetsapi.ValueRange{Range: rangeSpec, Values: values})
}

func (s *Server) valuesBatchUpdate(w http.ResponseWriter, r *http.Request) {
	var req sheetsapi.BatchUpdateValuesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cells := 0
	for _, vr := range req.Data {
		name := worksheetOf(vr.Range)
		_, cell, _ := strings.Cut(vr.Range, "!")
		col, row, err := splitCell(cell)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		for i, values := range vr.Values {
			for j, v := range values {
				s.set(name, row+i, col+j, fmt.Sprint(v))
				cells++
			}
		}
		s.written = append(s.written, vr.Range)
	}
	writeJSON(w, &sheetsapi.BatchUpdateValuesResponse{SpreadsheetId: s.SpreadsheetID, TotalUpdatedCells: int64(cells)})
}

func (s *Server) appendValues(w http.ResponseWriter, r *http.Request, rangeSpec string) {
	var vr sheetsapi.ValueRange
	if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := worksheetOf(rangeSpec)
	start := len(s.grids[name])
	for i, values := range vr.Values {
		for j, v := range values {
			s.set(name, start+i, j, fmt.Sprint(v))
		}
	}
	updated := fmt.Sprintf("%s!A%d:%s%d", sheets.QuoteSheetName(name), start+1,
		sheets.ColumnLetter(widest(vr.Values)), start+len(vr.Values))
	writeJSON(w, &sheetsapi.AppendValuesResponse{Updates: &sheetsapi.UpdateValuesResponse{UpdatedRange: updated}})
}

func (s *Server) batchUpdate(w http.ResponseWriter, r *http.Request) {
	var req sheetsapi.BatchUpdateSpreadsheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, op := range req.Requests {
		if op.DeleteDimension == nil || op.DeleteDimension.Range == nil {
			writeError(w, http.StatusBadRequest, "only deleteDimension is supported")
			return
		}
		dr := op.DeleteDimension.Range
		for i, name := range s.order {
			if sheetID(i) != dr.SheetId {
				continue
			}
			grid := s.grids[name]
			if int(dr.EndIndex) <= len(grid) {
				s.grids[name] = append(grid[:dr.StartIndex:dr.StartIndex], grid[dr.EndIndex:]...)
			}
		}
		s.deleted = append(s.deleted, dr.StartIndex)
	}
	writeJSON(w, &sheetsapi.BatchUpdateSpreadsheetResponse{SpreadsheetId: s.SpreadsheetID})
}

// set writes a 0-based cell, growing the grid as needed.
func (s *Server) set(name string, row, col int, v string) {
	if _, ok := s.grids[name]; !ok {
		s.order = append(s.order, name)
	}
	grid := s.grids[name]
	for len(grid) <= row {
		grid = append(grid, nil)
	}
	for len(grid[row]) <= col {
		grid[row] = append(grid[row], "")
	}
	grid[row][col] = v
	s.grids[name] = grid
}

func worksheetOf(rangeSpec string) string {
	name, _, _ := strings.Cut(rangeSpec, "!")
	name = strings.TrimPrefix(strings.TrimSuffix(name, "'"), "'")
	return strings.ReplaceAll(name, "''", "'")
}

// splitCell turns "C3" into 0-based column 2 and row 2.
func splitCell(cell string) (col, row int, err error) {
	i := strings.IndexFunc(cell, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return 0, 0, fmt.Errorf("bad cell %q", cell)
	}
	n, err := strconv.Atoi(cell[i:])
	if err != nil {
		return 0, 0, fmt.Errorf("bad cell %q", cell)
	}
	return sheets.ColumnNumber(cell[:i]) - 1, n - 1, nil
}

func widest(rows [][]any) int {
	n := 1
	for _, r := range rows {
		n = max(n, len(r))
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": msg},
	})
}
