package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// memoryBackend is an in-memory Backend holding one grid per worksheet.
type memoryBackend struct {
	mu      sync.Mutex
	sheets  map[string][][]string
	writes  [][]CellUpdate
	deletes []int
	readErr error
	writErr error
}

func newMemoryBackend(worksheet string, grid [][]string) *memoryBackend {
	return &memoryBackend{sheets: map[string][][]string{worksheet: grid}}
}

func worksheetOf(rangeSpec string) string {
	name, _, _ := strings.Cut(rangeSpec, "!")
	name = strings.TrimPrefix(strings.TrimSuffix(name, "'"), "'")
	return strings.ReplaceAll(name, "''", "'")
}

func (m *memoryBackend) ReadRange(_ context.Context, _, rangeSpec string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	grid, ok := m.sheets[worksheetOf(rangeSpec)]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", rangeSpec)
	}
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

// ReadFormulas returns the grid as stored; formulas are kept as "=" text.
func (m *memoryBackend) ReadFormulas(ctx context.Context, id, rangeSpec string) ([][]string, error) {
	return m.ReadRange(ctx, id, rangeSpec)
}

func (m *memoryBackend) WriteCells(_ context.Context, _ string, cells []CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writErr != nil {
		return m.writErr
	}
	m.writes = append(m.writes, cells)
	for _, c := range cells {
		grid := m.sheets[c.Worksheet]
		for len(grid) < c.Row {
			grid = append(grid, nil)
		}
		row := grid[c.Row-1]
		for len(row) <= c.Column {
			row = append(row, "")
		}
		row[c.Column] = fmt.Sprint(c.Value)
		grid[c.Row-1] = row
		m.sheets[c.Worksheet] = grid
	}
	return nil
}

func (m *memoryBackend) DeleteRow(_ context.Context, _, worksheet string, sheetRow int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writErr != nil {
		return m.writErr
	}
	grid := m.sheets[worksheet]
	if sheetRow < 1 || sheetRow > len(grid) {
		return fmt.Errorf("row %d out of range", sheetRow)
	}
	m.sheets[worksheet] = append(grid[:sheetRow-1], grid[sheetRow:]...)
	m.deletes = append(m.deletes, sheetRow)
	return nil
}

func (m *memoryBackend) grid(worksheet string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sheets[worksheet]
}

type recordingObserver struct {
	mu      sync.Mutex
	scanned int
	matched int
	writes  map[string]int
}

func (o *recordingObserver) ObserveQuery(_ context.Context, scanned, matched int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scanned += scanned
	o.matched += matched
}

func (o *recordingObserver) ObserveWrite(_ context.Context, operation string, cells int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.writes == nil {
		o.writes = make(map[string]int)
	}
	o.writes[operation] += cells
}
