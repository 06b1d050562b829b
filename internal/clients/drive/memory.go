package drive

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
)

// MemoryClient is an in-process Drive used in tests and offline mode
type MemoryClient struct {
	mu     sync.RWMutex
	files  map[string]*memoryFile
	nextID int
	now    func() time.Time
}

type memoryFile struct {
	meta   File
	parent string
	data   []byte
}

// NewMemoryClient creates an empty in-memory Drive
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		files: make(map[string]*memoryFile),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the clock used for modification times
func (c *MemoryClient) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *MemoryClient) FindFolder(ctx context.Context, name, parentID string) (*File, error) {
	return c.find(name, parentID, true)
}

func (c *MemoryClient) CreateFolder(ctx context.Context, name, parentID string) (*File, error) {
	return c.create(name, parentID, FolderMimeType, nil)
}

func (c *MemoryClient) FindFile(ctx context.Context, name, parentID string) (*File, error) {
	return c.find(name, parentID, false)
}

func (c *MemoryClient) ListFiles(ctx context.Context, parentID string) ([]*File, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.checkParent(parentID); err != nil {
		return nil, err
	}

	var result []*File
	for _, f := range c.files {
		if f.parent == parentID && !f.meta.IsFolder() {
			meta := f.meta
			result = append(result, &meta)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ModifiedTime.After(result[j].ModifiedTime)
	})
	return result, nil
}

func (c *MemoryClient) CreateFile(ctx context.Context, name, parentID, mimeType string, data []byte) (*File, error) {
	return c.create(name, parentID, mimeType, data)
}

func (c *MemoryClient) ReadFile(ctx context.Context, fileID string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.files[fileID]
	if !ok {
		return nil, sheeterr.NotFoundf("drive file '%s' not found", fileID)
	}
	return append([]byte(nil), f.data...), nil
}

func (c *MemoryClient) UpdateFile(ctx context.Context, fileID, name, mimeType string, data []byte) (*File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.files[fileID]
	if !ok {
		return nil, sheeterr.NotFoundf("drive file '%s' not found", fileID)
	}
	if name != "" {
		f.meta.Name = name
	}
	f.meta.MimeType = mimeType
	f.meta.ModifiedTime = c.now()
	f.meta.Size = int64(len(data))
	f.data = append([]byte(nil), data...)

	meta := f.meta
	return &meta, nil
}

func (c *MemoryClient) DeleteFile(ctx context.Context, fileID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.files[fileID]; !ok {
		return sheeterr.NotFoundf("drive file '%s' not found", fileID)
	}
	delete(c.files, fileID)
	// children of a deleted folder go with it
	for id, f := range c.files {
		if f.parent == fileID {
			delete(c.files, id)
		}
	}
	return nil
}

func (c *MemoryClient) find(name, parentID string, folder bool) (*File, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.checkParent(parentID); err != nil {
		return nil, err
	}

	var match *File
	for _, f := range c.files {
		if f.parent != parentID || f.meta.Name != name || f.meta.IsFolder() != folder {
			continue
		}
		if match == nil || f.meta.ID < match.ID {
			meta := f.meta
			match = &meta
		}
	}
	if match == nil {
		return nil, sheeterr.NotFoundf("drive file '%s' not found", name)
	}
	return match, nil
}

func (c *MemoryClient) create(name, parentID, mimeType string, data []byte) (*File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkParent(parentID); err != nil {
		return nil, err
	}

	c.nextID++
	f := &memoryFile{
		meta: File{
			ID:           fmt.Sprintf("file-%04d", c.nextID),
			Name:         name,
			MimeType:     mimeType,
			ModifiedTime: c.now(),
			Size:         int64(len(data)),
		},
		parent: parentID,
		data:   append([]byte(nil), data...),
	}
	c.files[f.meta.ID] = f

	meta := f.meta
	return &meta, nil
}

// checkParent must be called with the lock held
func (c *MemoryClient) checkParent(parentID string) error {
	if parentID == RootID {
		return nil
	}
	p, ok := c.files[parentID]
	if !ok || !p.meta.IsFolder() {
		return sheeterr.NotFoundf("drive file '%s' not found", parentID)
	}
	return nil
}

var _ Client = (*MemoryClient)(nil)
