package accomplishments

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/sheets"
)

// DefaultWorksheet is the worksheet accomplishments are stored in.
const DefaultWorksheet = "Accomplishments"

// Column names.
const (
	ColumnID          = "ID"
	ColumnDate        = "Date"
	ColumnTime        = "Time"
	ColumnDescription = "Accomplishment"
	ColumnCategory    = "Category"
	ColumnTags        = "Tags"
	ColumnNotes       = "Notes"
)

// DateLayout is the layout dates are written in.
const DateLayout = "2006-01-02"

// Limits on user supplied fields.
const (
	MaxDescription = 500
	MaxCategory    = 50
	MaxTags        = 200
	MaxNotes       = 500

	DefaultViewLimit = 50
	MaxViewLimit     = 500
)

// Accomplishment is one logged item.
type Accomplishment struct {
	ID          string `json:"id,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Tags        string `json:"tags,omitempty"`
	Notes       string `json:"notes,omitempty"`
	RowNumber   int    `json:"row_number"`
}

// Service reads and writes accomplishments through a sheets engine.
type Service struct {
	engine *sheets.Engine
	ref    sheets.SheetRef
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a Service for worksheet of spreadsheetID. An empty
// worksheet means DefaultWorksheet.
func NewService(engine *sheets.Engine, spreadsheetID, worksheet string, opts ...Option) *Service {
	if worksheet == "" {
		worksheet = DefaultWorksheet
	}
	s := &Service{
		engine: engine,
		ref:    sheets.SheetRef{SpreadsheetID: spreadsheetID, Worksheet: worksheet},
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		return fmt.Errorf("%s is required", field)
	}
	if n > max {
		return fmt.Errorf("%s must be at most %d characters, got %d", field, max, n)
	}
	return nil
}

// AddInput is the data for a new accomplishment.
type AddInput struct {
	Description string
	Category    string
	Tags        string
	Notes       string
	// Date overrides today. Any format the engine recognizes is accepted; it
	// is stored as YYYY-MM-DD.
	Date string
}

// Add appends a new accomplishment and returns it with its generated ID.
func (s *Service) Add(ctx context.Context, in AddInput) (*Accomplishment, error) {
	if err := checkLength("description", in.Description, 1, MaxDescription); err != nil {
		return nil, err
	}
	if err := checkLength("category", in.Category, 0, MaxCategory); err != nil {
		return nil, err
	}
	if err := checkLength("tags", in.Tags, 0, MaxTags); err != nil {
		return nil, err
	}
	if err := checkLength("notes", in.Notes, 0, MaxNotes); err != nil {
		return nil, err
	}

	now := s.now()
	date := now.Format(DateLayout)
	if in.Date != "" {
		d, ok := s.engine.Evaluator().Dates().Parse(in.Date)
		if !ok {
			return nil, fmt.Errorf("invalid date %q", in.Date)
		}
		date = d.Format(DateLayout)
	}

	table, err := s.engine.Load(ctx, s.ref)
	if err != nil {
		return nil, err
	}
	if err := sheets.ValidateStructure(table.Schema, sheets.AccomplishmentColumns).Err(); err != nil {
		return nil, err
	}

	a := &Accomplishment{
		Date:        date,
		Description: in.Description,
		Category:    in.Category,
		Tags:        in.Tags,
		Notes:       in.Notes,
	}
	data := sheets.UpdateSet{
		ColumnDate:        a.Date,
		ColumnDescription: a.Description,
	}
	// Generated columns are filled when the sheet has them. User supplied
	// values for a missing column are an error.
	optional := []struct {
		column    string
		value     string
		generated bool
		field     *string
	}{
		{ColumnID, uuid.NewString(), true, &a.ID},
		{ColumnTime, now.Format("15:04"), true, &a.Time},
		{ColumnCategory, in.Category, false, nil},
		{ColumnTags, in.Tags, false, nil},
		{ColumnNotes, in.Notes, false, nil},
	}
	for _, o := range optional {
		if o.value == "" || (o.generated && !table.Schema.Has(o.column)) {
			continue
		}
		data[o.column] = o.value
		if o.field != nil {
			*o.field = o.value
		}
	}

	res, err := s.engine.Append(ctx, s.ref, data)
	if err != nil {
		return nil, err
	}
	a.RowNumber = res.RowNumber

	s.logger.Info("accomplishment added",
		logging.Spreadsheet(s.ref.SpreadsheetID),
		slog.String("id", a.ID),
		slog.Int("row", res.SheetRow))
	return a, nil
}

// ViewFilter narrows View. Empty fields are ignored.
type ViewFilter struct {
	StartDate string
	EndDate   string
	Category  string
	Limit     int
}

// View lists accomplishments in sheet order.
func (s *Service) View(ctx context.Context, f ViewFilter) ([]Accomplishment, error) {
	limit := f.Limit
	if limit == 0 {
		limit = DefaultViewLimit
	}
	if limit < 1 || limit > MaxViewLimit {
		return nil, fmt.Errorf("limit must be between 1 and %d", MaxViewLimit)
	}

	var clauses []sheets.Clause
	if f.StartDate != "" {
		clauses = append(clauses, sheets.Clause{Column: ColumnDate, Operator: sheets.OpGreaterEqual, Value: f.StartDate})
	}
	if f.EndDate != "" {
		clauses = append(clauses, sheets.Clause{Column: ColumnDate, Operator: sheets.OpLessEqual, Value: f.EndDate})
	}
	if f.Category != "" {
		clauses = append(clauses, sheets.Clause{Column: ColumnCategory, Operator: sheets.OpEqual, Value: f.Category})
	}

	res, err := s.engine.Query(ctx, s.ref, sheets.Query{Filters: clauses, Limit: limit})
	if err != nil {
		return nil, err
	}

	out := make([]Accomplishment, 0, len(res.Records))
	for _, r := range res.Records {
		out = append(out, fromRecord(r))
	}
	return out, nil
}

func fromRecord(r sheets.Record) Accomplishment {
	return Accomplishment{
		ID:          r.Get(ColumnID),
		Date:        r.Get(ColumnDate),
		Time:        r.Get(ColumnTime),
		Description: r.Get(ColumnDescription),
		Category:    r.Get(ColumnCategory),
		Tags:        r.Get(ColumnTags),
		Notes:       r.Get(ColumnNotes),
		RowNumber:   r.RowNumber,
	}
}

// EditInput lists the fields to change. Empty fields are left alone.
type EditInput struct {
	Description string
	Category    string
	Notes       string
}

// Edit updates the accomplishment with the given ID. Only the provided
// fields are written.
func (s *Service) Edit(ctx context.Context, id string, in EditInput) (*sheets.WriteResult, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	if err := checkLength("description", in.Description, 0, MaxDescription); err != nil {
		return nil, err
	}
	if err := checkLength("category", in.Category, 0, MaxCategory); err != nil {
		return nil, err
	}
	if err := checkLength("notes", in.Notes, 0, MaxNotes); err != nil {
		return nil, err
	}

	updates := sheets.UpdateSet{}
	if in.Description != "" {
		updates[ColumnDescription] = in.Description
	}
	if in.Category != "" {
		updates[ColumnCategory] = in.Category
	}
	if in.Notes != "" {
		updates[ColumnNotes] = in.Notes
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("nothing to update: provide description, category or notes")
	}
	return s.engine.UpdateByID(ctx, s.ref, ColumnID, id, updates)
}

// Delete removes the accomplishment with the given ID.
func (s *Service) Delete(ctx context.Context, id string) (*sheets.WriteResult, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	return s.engine.DeleteByID(ctx, s.ref, ColumnID, id)
}
