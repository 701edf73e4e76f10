package drive

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	// MaxTextBytes caps the text returned by ReadText.
	MaxTextBytes = 1 << 20

	// maxWorkbookBytes caps the size of a workbook downloaded for decoding.
	maxWorkbookBytes = 32 << 20

	xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// exportTypes maps native Google types to the export format read as text.
var exportTypes = map[string]string{
	DocumentMimeType:     "text/plain",
	SpreadsheetMimeType:  "text/csv",
	PresentationMimeType: "text/plain",
}

// ReadText returns the plain text of a file. Files that are neither native
// documents, text nor Excel workbooks are rejected.
func (c *Client) ReadText(ctx context.Context, fileID string) (*FileText, error) {
	info, err := c.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	out := &FileText{ID: info.ID, Name: info.Name, MimeType: info.MimeType}

	var text string
	switch {
	case exportTypes[info.MimeType] != "":
		text, err = c.exportText(ctx, fileID, exportTypes[info.MimeType])
	case isWorkbook(info):
		text, err = c.workbookText(ctx, info)
	case isText(info.MimeType):
		text, err = c.downloadText(ctx, fileID)
	default:
		return nil, fmt.Errorf("unsupported file type %s: only Google Docs, Sheets, Slides, text and .xlsx files can be read as text", info.MimeType)
	}
	if err != nil {
		return nil, err
	}
	out.Text, out.Truncated = truncateUTF8(text, MaxTextBytes)
	return out, nil
}

func (c *Client) exportText(ctx context.Context, fileID, mimeType string) (string, error) {
	resp, err := c.service.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("failed to export file %s: %w", fileID, err)
	}
	return readLimited(resp, fileID, MaxTextBytes)
}

func (c *Client) downloadText(ctx context.Context, fileID string) (string, error) {
	resp, err := c.download(ctx, fileID)
	if err != nil {
		return "", err
	}
	return readLimited(resp, fileID, MaxTextBytes)
}

func (c *Client) workbookText(ctx context.Context, info *FileInfo) (string, error) {
	resp, err := c.download(ctx, info.ID)
	if err != nil {
		return "", err
	}
	data, err := readLimited(resp, info.ID, maxWorkbookBytes)
	if err != nil {
		return "", err
	}
	if len(data) > maxWorkbookBytes {
		return "", fmt.Errorf("workbook %s is larger than %d bytes", info.Name, maxWorkbookBytes)
	}
	return WorkbookText(strings.NewReader(data))
}

func (c *Client) download(ctx context.Context, fileID string) (*http.Response, error) {
	resp, err := c.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	return resp, nil
}

func isWorkbook(info *FileInfo) bool {
	return info.MimeType == xlsxMimeType || strings.HasSuffix(strings.ToLower(info.Name), ".xlsx")
}

func isText(mimeType string) bool {
	switch mimeType {
	case "application/json", "application/xml", "application/x-yaml", "application/csv":
		return true
	}
	return strings.HasPrefix(mimeType, "text/")
}

// readLimited reads at most limit+1 bytes of the body and closes it, so
// callers can tell that the content was longer than limit.
func readLimited(resp *http.Response, fileID string, limit int64) (string, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return string(data), nil
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) (string, bool) {
	if len(s) <= limit {
		return s, false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}

// WorkbookText renders every sheet of an .xlsx workbook as CSV, each under a
// "## Sheet: <name>" heading.
func WorkbookText(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for i, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## Sheet: %s\n", name)
		w := csv.NewWriter(&b)
		if err := w.WriteAll(rows); err != nil {
			return "", fmt.Errorf("failed to render sheet %s: %w", name, err)
		}
		if b.Len() > MaxTextBytes {
			break
		}
	}
	return b.String(), nil
}
