package drive_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/KirkDiggler/aionia-sheet/internal/clients/drive"
	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

func newFakeDrive(t *testing.T) drive.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		files := []map[string]any{}
		if strings.Contains(q, "name = 'Aionia'") {
			files = append(files, map[string]any{
				"id":           "folder-1",
				"name":         "Aionia",
				"mimeType":     drive.FolderMimeType,
				"modifiedTime": "2025-01-02T03:04:05Z",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"files": files})
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/files/")
		if id != "file-1" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"File not found: ` + id + `"}}`))
			return
		}
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte("zip-bytes"))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := drive.NewGoogleClient(context.Background(), nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestGoogleClient_FindFolder(t *testing.T) {
	c := newFakeDrive(t)
	ctx := context.Background()

	f, err := c.FindFolder(ctx, "Aionia", drive.RootID)
	require.NoError(t, err)
	assert.Equal(t, "folder-1", f.ID)
	assert.True(t, f.IsFolder())
	assert.Equal(t, 2025, f.ModifiedTime.Year())

	_, err = c.FindFolder(ctx, "Missing", drive.RootID)
	assert.True(t, sheeterr.IsNotFound(err))
}

func TestGoogleClient_ReadAndDelete(t *testing.T) {
	c := newFakeDrive(t)
	ctx := context.Background()

	data, err := c.ReadFile(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("zip-bytes"), data)

	require.NoError(t, c.DeleteFile(ctx, "file-1"))

	err = c.DeleteFile(ctx, "file-2")
	assert.True(t, sheeterr.IsNotFound(err))

	_, err = c.ReadFile(ctx, "file-2")
	assert.True(t, sheeterr.IsNotFound(err))
}
