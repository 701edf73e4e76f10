package sheets

import (
	"context"
	"log/slog"
	"strings"
)

// Backend is the spreadsheet service the engine reads from and writes to.
// Errors are returned to callers unchanged.
type Backend interface {
	// ReadRange returns the cell text of an A1 range, row by row.
	ReadRange(ctx context.Context, spreadsheetID, rangeSpec string) ([][]string, error)
	// WriteCells writes each cell individually.
	WriteCells(ctx context.Context, spreadsheetID string, cells []CellUpdate) error
	// DeleteRow removes an absolute 1-indexed row from a worksheet.
	DeleteRow(ctx context.Context, spreadsheetID, worksheet string, sheetRow int) error
}

// Observer receives engine activity, typically for metrics.
type Observer interface {
	ObserveQuery(ctx context.Context, scanned, matched int)
	ObserveWrite(ctx context.Context, operation string, cells int)
}

type nopObserver struct{}

func (nopObserver) ObserveQuery(context.Context, int, int)    {}
func (nopObserver) ObserveWrite(context.Context, string, int) {}

// SheetRef names a worksheet, optionally narrowed to an A1 range for reads.
type SheetRef struct {
	SpreadsheetID string
	Worksheet     string
	Range         string
}

// Query is a filter, projection and sort request.
type Query struct {
	Filters []Clause
	Columns []string
	Sort    *SortSpec
	Limit   int
}

// Engine runs queries and formula-safe writes against a Backend.
type Engine struct {
	backend  Backend
	eval     *Evaluator
	writer   *Writer
	logger   *slog.Logger
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithDateNormalizer sets the date layouts used for coercion.
func WithDateNormalizer(n *DateNormalizer) Option {
	return func(e *Engine) { e.eval = NewEvaluator(n) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObserver sets the activity observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine returns an Engine over backend.
func NewEngine(backend Backend, opts ...Option) *Engine {
	e := &Engine{
		backend:  backend,
		eval:     NewEvaluator(nil),
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.writer = NewWriter(backend, e.logger, e.observer)
	return e
}

// Evaluator returns the engine's evaluator.
func (e *Engine) Evaluator() *Evaluator {
	return e.eval
}

// Load reads ref and returns it as a Table. With a range, its first row is
// the header and row numbers follow the range's position in the worksheet.
func (e *Engine) Load(ctx context.Context, ref SheetRef) (*Table, error) {
	headerRow, err := rangeStartRow(ref.Range)
	if err != nil {
		return nil, err
	}
	values, err := e.backend.ReadRange(ctx, ref.SpreadsheetID, WorksheetRange(ref.Worksheet, ref.Range))
	if err != nil {
		return nil, err
	}
	return NewTableAt(values, headerRow)
}

// rangeStartRow returns the sheet row an A1 range starts on. Whole-column
// ranges such as "A:D" start on row 1.
func rangeStartRow(a1 string) (int, error) {
	if strings.TrimSpace(a1) == "" {
		return 1, nil
	}
	b, err := ParseA1(a1)
	if err != nil {
		return 0, &ConfigurationError{Kind: "range", Name: a1}
	}
	if b.StartRow < 0 {
		return 1, nil
	}
	return b.StartRow + 1, nil
}

// Query reads ref, filters, projects and sorts it.
func (e *Engine) Query(ctx context.Context, ref SheetRef, q Query) (*Result, error) {
	t, err := e.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, t, q)
}

// Run evaluates q over an already loaded table.
func (e *Engine) Run(ctx context.Context, t *Table, q Query) (*Result, error) {
	pred, err := e.eval.Compile(t.Schema, q.Filters)
	if err != nil {
		return nil, err
	}
	rows := Filter(t, pred)
	res, err := e.eval.Project(t, rows, Projection{Columns: q.Columns, Sort: q.Sort, Limit: q.Limit})
	if err != nil {
		return nil, err
	}
	e.observer.ObserveQuery(ctx, res.Scanned, res.Matched)
	return res, nil
}

// UpdateByID writes updates into the row identified by idColumn = id.
func (e *Engine) UpdateByID(ctx context.Context, ref SheetRef, idColumn, id string, updates UpdateSet) (*WriteResult, error) {
	return e.writer.UpdateByID(ctx, ref, idColumn, id, updates)
}

// Append writes data into the next free row.
func (e *Engine) Append(ctx context.Context, ref SheetRef, data UpdateSet) (*WriteResult, error) {
	return e.writer.Append(ctx, ref, data)
}

// DeleteByID deletes the row identified by idColumn = id.
func (e *Engine) DeleteByID(ctx context.Context, ref SheetRef, idColumn, id string) (*WriteResult, error) {
	return e.writer.DeleteByID(ctx, ref, idColumn, id)
}
