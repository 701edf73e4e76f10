package drive

import (
	drive "google.golang.org/api/drive/v3"
)

// FileInfo is the metadata of a file or folder.
type FileInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MimeType     string   `json:"mimeType"`
	Size         int64    `json:"size,omitempty"`
	CreatedTime  string   `json:"createdTime,omitempty"`
	ModifiedTime string   `json:"modifiedTime,omitempty"`
	WebViewLink  string   `json:"webViewLink,omitempty"`
	Parents      []string `json:"parents,omitempty"`
	Owners       []User   `json:"owners,omitempty"`
	Shared       bool     `json:"shared"`
	Trashed      bool     `json:"trashed"`
}

// User is a file owner.
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// ListOptions filters and pages ListFiles.
type ListOptions struct {
	// Query uses the Drive search syntax, e.g. "name contains 'report'".
	Query string

	// PageSize is capped at 1000 by the API.
	PageSize int64

	// OrderBy such as "folder,modifiedTime desc,name".
	OrderBy string

	PageToken      string
	IncludeTrashed bool
}

// FileText is the extracted text of a file.
type FileText struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated,omitempty"`
}

const fileFields = "id, name, mimeType, size, createdTime, modifiedTime, webViewLink, parents, owners, shared, trashed"

func convertToFileInfo(f *drive.File) *FileInfo {
	info := &FileInfo{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Size:         f.Size,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
		WebViewLink:  f.WebViewLink,
		Parents:      f.Parents,
		Shared:       f.Shared,
		Trashed:      f.Trashed,
	}
	for _, owner := range f.Owners {
		info.Owners = append(info.Owners, User{
			DisplayName:  owner.DisplayName,
			EmailAddress: owner.EmailAddress,
		})
	}
	return info
}
