package sheets

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	// SpreadsheetMimeType is the Drive MIME type of native spreadsheets.
	SpreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

	valueInputUserEntered = "USER_ENTERED"
	searchConcurrency     = 4
)

// Client is a Backend over the Google Sheets API. It also carries the
// spreadsheet administration calls the tools expose.
type Client struct {
	service *sheetsapi.Service
	drive   *drive.Service
	account string
}

// NewClient creates a Sheets client for account. opts usually carries
// option.WithHTTPClient with an authorized client.
func NewClient(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	drv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{service: svc, drive: drv, account: account}, nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// ReadRange returns the formatted cell text of rangeSpec. Rows are as long as
// the API returns them; trailing empty cells are omitted.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, rangeSpec string) ([][]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, rangeSpec).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rangeSpec, err)
	}
	return stringify(resp.Values), nil
}

// ReadFormulas returns rangeSpec as entered: formulas as their "=" text and
// literal values unformatted.
func (c *Client) ReadFormulas(ctx context.Context, spreadsheetID, rangeSpec string) ([][]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, rangeSpec).
		ValueRenderOption("FORMULA").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read formulas in %s: %w", rangeSpec, err)
	}
	return stringify(resp.Values), nil
}

// WriteCells writes each cell as its own value range in a single batch so no
// neighbouring cell is touched.
func (c *Client) WriteCells(ctx context.Context, spreadsheetID string, cells []CellUpdate) error {
	if len(cells) == 0 {
		return nil
	}
	data := make([]*sheetsapi.ValueRange, len(cells))
	for i, cell := range cells {
		data[i] = &sheetsapi.ValueRange{
			Range:  cell.Address(),
			Values: [][]any{{cell.Value}},
		}
	}
	_, err := c.service.Spreadsheets.Values.BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: valueInputUserEntered,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write %d cells: %w", len(cells), err)
	}
	return nil
}

// DeleteRow removes a 1-indexed row from worksheet, shifting later rows up.
func (c *Client) DeleteRow(ctx context.Context, spreadsheetID, worksheet string, sheetRow int) error {
	if sheetRow < 1 {
		return fmt.Errorf("invalid row %d", sheetRow)
	}
	ws, err := c.worksheet(ctx, spreadsheetID, worksheet)
	if err != nil {
		return err
	}
	return c.batch(ctx, spreadsheetID, &sheetsapi.Request{
		DeleteDimension: &sheetsapi.DeleteDimensionRequest{
			Range: &sheetsapi.DimensionRange{
				SheetId:    ws.SheetID,
				Dimension:  "ROWS",
				StartIndex: int64(sheetRow - 1),
				EndIndex:   int64(sheetRow),
			},
		},
	})
}

// SpreadsheetInfo describes a spreadsheet file.
type SpreadsheetInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modified_time,omitempty"`
	URL          string `json:"url,omitempty"`
}

// WorksheetInfo describes one worksheet (tab).
type WorksheetInfo struct {
	SheetID     int64  `json:"sheet_id"`
	Title       string `json:"title"`
	Index       int64  `json:"index"`
	RowCount    int64  `json:"row_count"`
	ColumnCount int64  `json:"column_count"`
}

// ListSpreadsheets lists spreadsheets visible to the account, most recently
// modified first.
func (c *Client) ListSpreadsheets(ctx context.Context, pageSize int64) ([]SpreadsheetInfo, error) {
	if pageSize <= 0 {
		pageSize = 50
	}
	resp, err := c.drive.Files.List().
		Q(fmt.Sprintf("mimeType='%s' and trashed=false", SpreadsheetMimeType)).
		OrderBy("modifiedTime desc").
		PageSize(pageSize).
		Fields("files(id, name, modifiedTime, webViewLink)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list spreadsheets: %w", err)
	}
	out := make([]SpreadsheetInfo, 0, len(resp.Files))
	for _, f := range resp.Files {
		out = append(out, SpreadsheetInfo{ID: f.Id, Name: f.Name, ModifiedTime: f.ModifiedTime, URL: f.WebViewLink})
	}
	return out, nil
}

// ListWorksheets returns the worksheets of a spreadsheet in tab order.
func (c *Client) ListWorksheets(ctx context.Context, spreadsheetID string) ([]WorksheetInfo, error) {
	resp, err := c.service.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}
	out := make([]WorksheetInfo, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			out = append(out, worksheetInfo(s.Properties))
		}
	}
	return out, nil
}

func worksheetInfo(p *sheetsapi.SheetProperties) WorksheetInfo {
	info := WorksheetInfo{SheetID: p.SheetId, Title: p.Title, Index: p.Index}
	if p.GridProperties != nil {
		info.RowCount = p.GridProperties.RowCount
		info.ColumnCount = p.GridProperties.ColumnCount
	}
	return info
}

func (c *Client) worksheet(ctx context.Context, spreadsheetID, title string) (WorksheetInfo, error) {
	all, err := c.ListWorksheets(ctx, spreadsheetID)
	if err != nil {
		return WorksheetInfo{}, err
	}
	for _, ws := range all {
		if ws.Title == title {
			return ws, nil
		}
	}
	names := make([]string, len(all))
	for i, ws := range all {
		names[i] = ws.Title
	}
	return WorksheetInfo{}, &ConfigurationError{Kind: "worksheet", Name: title, Available: names}
}

func (c *Client) batch(ctx context.Context, spreadsheetID string, reqs ...*sheetsapi.Request) error {
	_, err := c.batchResponse(ctx, spreadsheetID, reqs...)
	return err
}

func (c *Client) batchResponse(ctx context.Context, spreadsheetID string, reqs ...*sheetsapi.Request) (*sheetsapi.BatchUpdateSpreadsheetResponse, error) {
	resp, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update spreadsheet %s: %w", spreadsheetID, err)
	}
	return resp, nil
}

// ReadValues reads a worksheet, or an A1 range inside it.
func (c *Client) ReadValues(ctx context.Context, spreadsheetID, worksheet, a1 string) ([][]string, error) {
	return c.ReadRange(ctx, spreadsheetID, WorksheetRange(worksheet, a1))
}

// WriteRange overwrites a rectangular range and returns the number of
// updated cells. Values are interpreted as if typed by a user.
func (c *Client) WriteRange(ctx context.Context, spreadsheetID, rangeSpec string, values [][]any) (int64, error) {
	resp, err := c.service.Spreadsheets.Values.Update(spreadsheetID, rangeSpec, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", rangeSpec, err)
	}
	return resp.UpdatedCells, nil
}

// AppendRows appends raw rows after the worksheet's table and returns the
// range that was written.
func (c *Client) AppendRows(ctx context.Context, spreadsheetID, worksheet string, rows [][]any) (string, error) {
	resp, err := c.service.Spreadsheets.Values.Append(spreadsheetID, QuoteSheetName(worksheet), &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(valueInputUserEntered).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to append rows to %s: %w", worksheet, err)
	}
	if resp.Updates == nil {
		return "", nil
	}
	return resp.Updates.UpdatedRange, nil
}

// CreateSpreadsheet creates a spreadsheet with the given worksheet titles.
// Without titles Google creates a single "Sheet1".
func (c *Client) CreateSpreadsheet(ctx context.Context, title string, worksheets []string) (*SpreadsheetInfo, error) {
	sp := &sheetsapi.Spreadsheet{
		Properties: &sheetsapi.SpreadsheetProperties{Title: title},
	}
	for _, ws := range worksheets {
		sp.Sheets = append(sp.Sheets, &sheetsapi.Sheet{Properties: &sheetsapi.SheetProperties{Title: ws}})
	}
	resp, err := c.service.Spreadsheets.Create(sp).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet: %w", err)
	}
	info := &SpreadsheetInfo{ID: resp.SpreadsheetId, URL: resp.SpreadsheetUrl}
	if resp.Properties != nil {
		info.Name = resp.Properties.Title
	}
	return info, nil
}

// CreateWorksheet adds a worksheet. Zero sizes default to 1000 rows and 26
// columns.
func (c *Client) CreateWorksheet(ctx context.Context, spreadsheetID, title string, rows, cols int64) (*WorksheetInfo, error) {
	if rows <= 0 {
		rows = 1000
	}
	if cols <= 0 {
		cols = 26
	}
	resp, err := c.batchResponse(ctx, spreadsheetID, &sheetsapi.Request{
		AddSheet: &sheetsapi.AddSheetRequest{
			Properties: &sheetsapi.SheetProperties{
				Title:          title,
				GridProperties: &sheetsapi.GridProperties{RowCount: rows, ColumnCount: cols},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	for _, r := range resp.Replies {
		if r.AddSheet != nil && r.AddSheet.Properties != nil {
			info := worksheetInfo(r.AddSheet.Properties)
			return &info, nil
		}
	}
	return &WorksheetInfo{Title: title, RowCount: rows, ColumnCount: cols}, nil
}

// DeleteWorksheet removes a worksheet by title.
func (c *Client) DeleteWorksheet(ctx context.Context, spreadsheetID, title string) error {
	ws, err := c.worksheet(ctx, spreadsheetID, title)
	if err != nil {
		return err
	}
	return c.batch(ctx, spreadsheetID, &sheetsapi.Request{
		DeleteSheet: &sheetsapi.DeleteSheetRequest{SheetId: ws.SheetID},
	})
}

// CopyWorksheet duplicates source inside the same spreadsheet under newTitle.
func (c *Client) CopyWorksheet(ctx context.Context, spreadsheetID, source, newTitle string) (*WorksheetInfo, error) {
	ws, err := c.worksheet(ctx, spreadsheetID, source)
	if err != nil {
		return nil, err
	}
	resp, err := c.batchResponse(ctx, spreadsheetID, &sheetsapi.Request{
		DuplicateSheet: &sheetsapi.DuplicateSheetRequest{
			SourceSheetId: ws.SheetID,
			NewSheetName:  newTitle,
		},
	})
	if err != nil {
		return nil, err
	}
	for _, r := range resp.Replies {
		if r.DuplicateSheet != nil && r.DuplicateSheet.Properties != nil {
			info := worksheetInfo(r.DuplicateSheet.Properties)
			return &info, nil
		}
	}
	return &WorksheetInfo{Title: newTitle}, nil
}

// ClearRange clears values in rangeSpec. Formatting is kept.
func (c *Client) ClearRange(ctx context.Context, spreadsheetID, rangeSpec string) error {
	_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, rangeSpec, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", rangeSpec, err)
	}
	return nil
}

// Color is an RGB color with components in 0..1.
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// CellFormat lists the format attributes to apply. Nil fields are left as
// they are.
type CellFormat struct {
	Bold       *bool  `json:"bold,omitempty"`
	Italic     *bool  `json:"italic,omitempty"`
	Background *Color `json:"background_color,omitempty"`
	Foreground *Color `json:"text_color,omitempty"`
}

// FormatCells applies f to an A1 range of worksheet.
func (c *Client) FormatCells(ctx context.Context, spreadsheetID, worksheet, a1 string, f CellFormat) error {
	req, err := repeatCellRequest(0, a1, f)
	if err != nil {
		return err
	}
	ws, err := c.worksheet(ctx, spreadsheetID, worksheet)
	if err != nil {
		return err
	}
	req.RepeatCell.Range.SheetId = ws.SheetID
	return c.batch(ctx, spreadsheetID, req)
}

// repeatCellRequest builds the RepeatCell request and its field mask.
func repeatCellRequest(sheetID int64, a1 string, f CellFormat) (*sheetsapi.Request, error) {
	bounds, err := ParseA1(a1)
	if err != nil {
		return nil, err
	}

	grid := &sheetsapi.GridRange{SheetId: sheetID, ForceSendFields: []string{"SheetId"}}
	if bounds.StartRow >= 0 {
		grid.StartRowIndex = int64(bounds.StartRow)
	}
	if bounds.EndRow >= 0 {
		grid.EndRowIndex = int64(bounds.EndRow)
	}
	if bounds.StartColumn >= 0 {
		grid.StartColumnIndex = int64(bounds.StartColumn)
	}
	if bounds.EndColumn >= 0 {
		grid.EndColumnIndex = int64(bounds.EndColumn)
	}

	format := &sheetsapi.CellFormat{}
	var fields []string
	if f.Background != nil {
		format.BackgroundColor = apiColor(*f.Background)
		fields = append(fields, "userEnteredFormat.backgroundColor")
	}
	if f.Bold != nil || f.Italic != nil || f.Foreground != nil {
		tf := &sheetsapi.TextFormat{}
		if f.Bold != nil {
			tf.Bold = *f.Bold
			tf.ForceSendFields = append(tf.ForceSendFields, "Bold")
			fields = append(fields, "userEnteredFormat.textFormat.bold")
		}
		if f.Italic != nil {
			tf.Italic = *f.Italic
			tf.ForceSendFields = append(tf.ForceSendFields, "Italic")
			fields = append(fields, "userEnteredFormat.textFormat.italic")
		}
		if f.Foreground != nil {
			tf.ForegroundColor = apiColor(*f.Foreground)
			fields = append(fields, "userEnteredFormat.textFormat.foregroundColor")
		}
		format.TextFormat = tf
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no format attributes given")
	}

	return &sheetsapi.Request{
		RepeatCell: &sheetsapi.RepeatCellRequest{
			Range:  grid,
			Cell:   &sheetsapi.CellData{UserEnteredFormat: format},
			Fields: strings.Join(fields, ","),
		},
	}, nil
}

func apiColor(c Color) *sheetsapi.Color {
	return &sheetsapi.Color{
		Red:             c.Red,
		Green:           c.Green,
		Blue:            c.Blue,
		ForceSendFields: []string{"Red", "Green", "Blue"},
	}
}

// SearchMatch is a cell whose text matched a search.
type SearchMatch struct {
	Worksheet string `json:"worksheet"`
	Cell      string `json:"cell"`
	Row       int    `json:"row"`
	Column    string `json:"column"`
	Value     string `json:"value"`
}

// Search looks for query in the given worksheets, or in all of them when
// none are given. Matching is exact unless partial is set, in which case it
// is a case-insensitive substring match. Worksheets are read concurrently;
// matches come back in worksheet order.
func (c *Client) Search(ctx context.Context, spreadsheetID, query string, worksheets []string, partial bool) ([]SearchMatch, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if len(worksheets) == 0 {
		all, err := c.ListWorksheets(ctx, spreadsheetID)
		if err != nil {
			return nil, err
		}
		for _, ws := range all {
			worksheets = append(worksheets, ws.Title)
		}
	}

	found := make([][]SearchMatch, len(worksheets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchConcurrency)
	for i, ws := range worksheets {
		g.Go(func() error {
			values, err := c.ReadRange(gctx, spreadsheetID, QuoteSheetName(ws))
			if err != nil {
				return err
			}
			found[i] = searchValues(ws, values, query, partial)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []SearchMatch
	for _, m := range found {
		out = append(out, m...)
	}
	return out, nil
}

func searchValues(worksheet string, values [][]string, query string, partial bool) []SearchMatch {
	needle := strings.ToLower(query)
	var out []SearchMatch
	for r, row := range values {
		for col, v := range row {
			hit := v == query
			if partial {
				hit = strings.Contains(strings.ToLower(v), needle)
			}
			if !hit {
				continue
			}
			out = append(out, SearchMatch{
				Worksheet: worksheet,
				Cell:      CellAddress(worksheet, r+1, col),
				Row:       r + 1,
				Column:    ColumnLetter(col + 1),
				Value:     v,
			})
		}
	}
	return out
}

func stringify(values [][]any) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		out[i] = cells
	}
	return out
}
