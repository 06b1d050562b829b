// Package drive wraps the parts of Google Drive the sheet uses: folders and
// flat files inside them.
package drive

//go:generate mockgen -destination=mock/mock.go -package=mockdrive -source=client.go

import (
	"context"
	"time"
)

const (
	// RootID addresses the user's My Drive root
	RootID = "root"

	// FolderMimeType marks a Drive folder
	FolderMimeType = "application/vnd.google-apps.folder"
)

// File is the metadata of a Drive file or folder
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	ModifiedTime time.Time `json:"modifiedTime"`
	Size         int64     `json:"size"`
}

// IsFolder reports whether the file is a folder
func (f *File) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// Client is the Drive surface used by the save manager
type Client interface {
	// FindFolder returns the folder called name directly under parentID
	FindFolder(ctx context.Context, name, parentID string) (*File, error)

	// CreateFolder creates a folder under parentID
	CreateFolder(ctx context.Context, name, parentID string) (*File, error)

	// FindFile returns the non-folder file called name directly under parentID
	FindFile(ctx context.Context, name, parentID string) (*File, error)

	// ListFiles returns the non-folder files directly under parentID
	ListFiles(ctx context.Context, parentID string) ([]*File, error)

	// CreateFile uploads a new file under parentID
	CreateFile(ctx context.Context, name, parentID, mimeType string, data []byte) (*File, error)

	// ReadFile downloads a file's content
	ReadFile(ctx context.Context, fileID string) ([]byte, error)

	// UpdateFile replaces a file's content and optionally renames it
	UpdateFile(ctx context.Context, fileID, name, mimeType string, data []byte) (*File, error)

	// DeleteFile removes a file
	DeleteFile(ctx context.Context, fileID string) error
}
