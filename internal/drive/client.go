package drive

import (
	"context"
	"fmt"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// MIME types of native Google files.
const (
	FolderMimeType       = "application/vnd.google-apps.folder"
	DocumentMimeType     = "application/vnd.google-apps.document"
	SpreadsheetMimeType  = "application/vnd.google-apps.spreadsheet"
	PresentationMimeType = "application/vnd.google-apps.presentation"
)

// Client wraps the Google Drive API service.
type Client struct {
	service *drive.Service
	account string
}

// NewClient creates a Drive client for account.
func NewClient(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{service: svc, account: account}, nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// ListFiles lists files, excluding trashed ones unless asked. It returns the
// next page token, or "".
func (c *Client) ListFiles(ctx context.Context, options ListOptions) ([]*FileInfo, string, error) {
	call := c.service.Files.List().
		Context(ctx).
		Fields(googleapi.Field("nextPageToken, files(" + fileFields + ")"))

	if q := listQuery(options); q != "" {
		call = call.Q(q)
	}
	if options.PageSize > 0 {
		call = call.PageSize(options.PageSize)
	}
	if options.OrderBy != "" {
		call = call.OrderBy(options.OrderBy)
	}
	if options.PageToken != "" {
		call = call.PageToken(options.PageToken)
	}

	fileList, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list files: %w", err)
	}
	files := make([]*FileInfo, len(fileList.Files))
	for i, f := range fileList.Files {
		files[i] = convertToFileInfo(f)
	}
	return files, fileList.NextPageToken, nil
}

func listQuery(options ListOptions) string {
	var parts []string
	if options.Query != "" {
		parts = append(parts, "("+options.Query+")")
	}
	if !options.IncludeTrashed {
		parts = append(parts, "trashed = false")
	}
	return strings.Join(parts, " and ")
}

// GetFile retrieves the metadata of one file.
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	file, err := c.service.Files.Get(fileID).Context(ctx).Fields(fileFields).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}
	return convertToFileInfo(file), nil
}

// UploadText creates a text/plain file holding content.
func (c *Client) UploadText(ctx context.Context, name, content string, parents []string) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}
	file := &drive.File{Name: name, MimeType: "text/plain", Parents: parents}
	created, err := c.service.Files.Create(file).
		Context(ctx).
		Media(strings.NewReader(content), googleapi.ContentType("text/plain")).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	return convertToFileInfo(created), nil
}

// CreateFolder creates a folder, optionally inside parents.
func (c *Client) CreateFolder(ctx context.Context, name string, parents []string) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}
	folder := &drive.File{Name: name, MimeType: FolderMimeType, Parents: parents}
	created, err := c.service.Files.Create(folder).Context(ctx).Fields(fileFields).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	return convertToFileInfo(created), nil
}
