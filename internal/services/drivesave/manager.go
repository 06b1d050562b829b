// Package drivesave stores character archives in a user-chosen Google Drive folder.
// The folder path is kept in a small JSON file at the Drive root.
package drivesave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/aionia-sheet/internal/archive"
	"github.com/KirkDiggler/aionia-sheet/internal/clients/drive"
	"github.com/KirkDiggler/aionia-sheet/internal/domain/character"
	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

const (
	// ConfigFileName is the sidecar file holding the folder path
	ConfigFileName = "aionia-sheet-config.json"

	// DefaultFolderPath is used until the user picks a folder
	DefaultFolderPath = "Aionia/Characters"

	zipMimeType  = "application/zip"
	jsonMimeType = "application/json"
)

// ErrFolderNotFound is returned when the configured folder no longer exists
var ErrFolderNotFound = sheeterr.NotFound("the save folder was not found on Google Drive, please select the folder again")

// TimeProvider stamps archive file names
type TimeProvider interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now() }

// Config holds the manager's dependencies
type Config struct {
	Client       drive.Client
	TimeProvider TimeProvider // Optional
}

// Manager saves and loads archives for one Drive account
type Manager struct {
	client       drive.Client
	timeProvider TimeProvider
}

type folderConfig struct {
	FolderPath string `json:"folderPath"`
}

// NewManager creates a Drive save manager
func NewManager(cfg *Config) *Manager {
	if cfg == nil {
		panic("drivesave config cannot be nil")
	}
	if cfg.Client == nil {
		panic("drive client cannot be nil")
	}
	m := &Manager{
		client:       cfg.Client,
		timeProvider: cfg.TimeProvider,
	}
	if m.timeProvider == nil {
		m.timeProvider = systemTime{}
	}
	return m
}

// FolderPath returns the configured folder path, or the default when none is stored
func (m *Manager) FolderPath(ctx context.Context) (string, error) {
	f, err := m.client.FindFile(ctx, ConfigFileName, drive.RootID)
	if err != nil {
		if sheeterr.IsNotFound(err) {
			return DefaultFolderPath, nil
		}
		log.Printf("DriveSave: failed to find %s: %v", ConfigFileName, err)
		return "", err
	}

	data, err := m.client.ReadFile(ctx, f.ID)
	if err != nil {
		log.Printf("DriveSave: failed to read %s: %v", ConfigFileName, err)
		return "", err
	}

	path := CleanFolderPath(gjson.GetBytes(data, "folderPath").String())
	if path == "" {
		return DefaultFolderPath, nil
	}
	return path, nil
}

// SetFolderPath stores a new folder path, creating the folders that are missing
func (m *Manager) SetFolderPath(ctx context.Context, path string) (string, error) {
	path = CleanFolderPath(path)
	if path == "" {
		return "", sheeterr.InvalidArgument("folder path cannot be empty")
	}

	if _, err := m.resolveFolder(ctx, path, true); err != nil {
		return "", err
	}

	data, err := json.Marshal(folderConfig{FolderPath: path})
	if err != nil {
		return "", fmt.Errorf("failed to marshal folder config: %w", err)
	}

	existing, err := m.client.FindFile(ctx, ConfigFileName, drive.RootID)
	switch {
	case err == nil:
		_, err = m.client.UpdateFile(ctx, existing.ID, ConfigFileName, jsonMimeType, data)
	case sheeterr.IsNotFound(err):
		_, err = m.client.CreateFile(ctx, ConfigFileName, drive.RootID, jsonMimeType, data)
	}
	if err != nil {
		log.Printf("DriveSave: failed to write %s: %v", ConfigFileName, err)
		return "", err
	}

	log.Printf("DriveSave: folder path set to %s", path)
	return path, nil
}

// Save writes the record as an archive. An empty fileID creates a new file,
// otherwise the existing file is overwritten and renamed.
func (m *Manager) Save(ctx context.Context, fileID string, rec *character.Record, images []string) (*drive.File, error) {
	data, err := archive.Build(rec, images)
	if err != nil {
		return nil, err
	}
	name := archive.FileName(rec.Character.Name, m.timeProvider.Now())

	if fileID != "" {
		f, err := m.client.UpdateFile(ctx, fileID, name, zipMimeType, data)
		if err != nil {
			log.Printf("DriveSave: failed to update %s: %v", fileID, err)
			return nil, err
		}
		return f, nil
	}

	folderID, err := m.folderID(ctx, true)
	if err != nil {
		return nil, err
	}

	f, err := m.client.CreateFile(ctx, name, folderID, zipMimeType, data)
	if err != nil {
		if sheeterr.IsNotFound(err) {
			log.Printf("DriveSave: save folder disappeared: %v", err)
			return nil, ErrFolderNotFound
		}
		log.Printf("DriveSave: failed to create %s: %v", name, err)
		return nil, err
	}
	return f, nil
}

// Load downloads and parses an archive
func (m *Manager) Load(ctx context.Context, fileID string) (*archive.Result, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, sheeterr.InvalidArgument("file id is required")
	}

	data, err := m.client.ReadFile(ctx, fileID)
	if err != nil {
		log.Printf("DriveSave: failed to read %s: %v", fileID, err)
		return nil, err
	}

	result, err := archive.Parse(data)
	if err != nil {
		log.Printf("DriveSave: failed to parse %s: %v", fileID, err)
		return nil, err
	}
	return result, nil
}

// List returns the archives in the save folder, newest first
func (m *Manager) List(ctx context.Context) ([]*drive.File, error) {
	folderID, err := m.folderID(ctx, false)
	if err != nil {
		// nothing was ever saved to the default folder
		if sheeterr.IsNotFound(err) && !errors.Is(err, ErrFolderNotFound) {
			return []*drive.File{}, nil
		}
		return nil, err
	}

	files, err := m.client.ListFiles(ctx, folderID)
	if err != nil {
		log.Printf("DriveSave: failed to list folder: %v", err)
		return nil, err
	}

	result := make([]*drive.File, 0, len(files))
	for _, f := range files {
		lower := strings.ToLower(f.Name)
		if strings.HasSuffix(lower, ".zip") || strings.HasSuffix(lower, ".json") {
			result = append(result, f)
		}
	}
	return result, nil
}

// Delete removes an archive
func (m *Manager) Delete(ctx context.Context, fileID string) error {
	if strings.TrimSpace(fileID) == "" {
		return sheeterr.InvalidArgument("file id is required")
	}
	if err := m.client.DeleteFile(ctx, fileID); err != nil {
		log.Printf("DriveSave: failed to delete %s: %v", fileID, err)
		return err
	}
	return nil
}

// folderID resolves the configured folder. The default folder is created on
// first save; a user-chosen folder that vanished yields ErrFolderNotFound.
func (m *Manager) folderID(ctx context.Context, create bool) (string, error) {
	path, err := m.FolderPath(ctx)
	if err != nil {
		return "", err
	}

	isDefault := path == DefaultFolderPath
	id, err := m.resolveFolder(ctx, path, create && isDefault)
	if err != nil {
		if sheeterr.IsNotFound(err) && !isDefault {
			log.Printf("DriveSave: folder %s not found", path)
			return "", ErrFolderNotFound
		}
		return "", err
	}
	return id, nil
}

func (m *Manager) resolveFolder(ctx context.Context, path string, create bool) (string, error) {
	parent := drive.RootID
	for _, name := range strings.Split(path, "/") {
		f, err := m.client.FindFolder(ctx, name, parent)
		if err != nil {
			if !sheeterr.IsNotFound(err) || !create {
				return "", err
			}
			f, err = m.client.CreateFolder(ctx, name, parent)
			if err != nil {
				log.Printf("DriveSave: failed to create folder %s: %v", name, err)
				return "", err
			}
		}
		parent = f.ID
	}
	return parent, nil
}

// CleanFolderPath trims slashes and drops empty segments
func CleanFolderPath(path string) string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}
