package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

const fileFields = "id, name, mimeType, modifiedTime, size"

// googleClient implements Client on the Drive v3 API
type googleClient struct {
	svc *drive.Service
}

// NewGoogleClient creates a Drive client authorized by ts
func NewGoogleClient(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (Client, error) {
	if ts != nil {
		opts = append(opts, option.WithTokenSource(ts))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &googleClient{svc: svc}, nil
}

func (c *googleClient) FindFolder(ctx context.Context, name, parentID string) (*File, error) {
	q := fmt.Sprintf("name = '%s' and '%s' in parents and mimeType = '%s' and trashed = false",
		escapeQuery(name), escapeQuery(parentID), FolderMimeType)
	return c.findOne(ctx, q, name)
}

func (c *googleClient) CreateFolder(ctx context.Context, name, parentID string) (*File, error) {
	f, err := c.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: FolderMimeType,
		Parents:  []string{parentID},
	}).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return nil, translate(err, name)
	}
	return toFile(f), nil
}

func (c *googleClient) FindFile(ctx context.Context, name, parentID string) (*File, error) {
	q := fmt.Sprintf("name = '%s' and '%s' in parents and mimeType != '%s' and trashed = false",
		escapeQuery(name), escapeQuery(parentID), FolderMimeType)
	return c.findOne(ctx, q, name)
}

func (c *googleClient) ListFiles(ctx context.Context, parentID string) ([]*File, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType != '%s' and trashed = false",
		escapeQuery(parentID), FolderMimeType)

	var files []*File
	err := c.svc.Files.List().
		Q(q).
		Fields(googleapi.Field("nextPageToken, files("+fileFields+")")).
		OrderBy("modifiedTime desc").
		PageSize(100).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, toFile(f))
			}
			return nil
		})
	if err != nil {
		return nil, translate(err, parentID)
	}
	return files, nil
}

func (c *googleClient) CreateFile(ctx context.Context, name, parentID, mimeType string, data []byte) (*File, error) {
	f, err := c.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: mimeType,
		Parents:  []string{parentID},
	}).Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return nil, translate(err, parentID)
	}
	return toFile(f), nil
}

func (c *googleClient) ReadFile(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, translate(err, fileID)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read drive file %s: %w", fileID, err)
	}
	return data, nil
}

func (c *googleClient) UpdateFile(ctx context.Context, fileID, name, mimeType string, data []byte) (*File, error) {
	f, err := c.svc.Files.Update(fileID, &drive.File{Name: name}).
		Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return nil, translate(err, fileID)
	}
	return toFile(f), nil
}

func (c *googleClient) DeleteFile(ctx context.Context, fileID string) error {
	if err := c.svc.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return translate(err, fileID)
	}
	return nil
}

func (c *googleClient) findOne(ctx context.Context, q, name string) (*File, error) {
	list, err := c.svc.Files.List().
		Q(q).
		Fields(googleapi.Field("files(" + fileFields + ")")).
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return nil, translate(err, name)
	}
	if len(list.Files) == 0 {
		return nil, sheeterr.NotFoundf("drive file '%s' not found", name)
	}
	return toFile(list.Files[0]), nil
}

func toFile(f *drive.File) *File {
	modified, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	return &File{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		ModifiedTime: modified,
		Size:         f.Size,
	}
}

// translate maps Drive API errors to coded errors
func translate(err error, ref string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return sheeterr.WrapWithCode(err, sheeterr.CodeNotFound, fmt.Sprintf("drive file '%s' not found", ref))
		case http.StatusUnauthorized:
			return sheeterr.WrapWithCode(err, sheeterr.CodeUnauthenticated, "drive authorization expired")
		case http.StatusForbidden:
			return sheeterr.WrapWithCode(err, sheeterr.CodePermissionDenied, "drive access denied")
		}
	}
	return sheeterr.WrapWithCode(err, sheeterr.CodeUnavailable, "drive request failed")
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
