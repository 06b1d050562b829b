// Package characters stores each user's character sheets and images in the object store.
package characters

//go:generate mockgen -destination=mock/mock.go -package=mockcharacters -source=service.go

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/aionia-sheet/internal/archive"
	"github.com/KirkDiggler/aionia-sheet/internal/domain/character"
	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
	"github.com/KirkDiggler/aionia-sheet/internal/repositories/objects"
	"github.com/KirkDiggler/aionia-sheet/internal/uuid"
)

const (
	// DefaultMaxImageBytes caps an uploaded image
	DefaultMaxImageBytes = 5 << 20

	jsonContentType = "application/json"
	imagesDir       = "images"
	listConcurrency = 8
	maxIDLength     = 128
)

// Service defines the character storage operations
type Service interface {
	// List returns summaries of the user's characters, most recently updated first
	List(ctx context.Context, userID string) ([]*Summary, error)

	// Get loads one character
	Get(ctx context.Context, userID, id string) (*Character, error)

	// Save normalizes raw and stores it; an empty id creates a new character
	Save(ctx context.Context, userID, id string, raw []byte) (*Character, error)

	// Delete removes one character
	Delete(ctx context.Context, userID, id string) error

	// UploadImage stores an image under the user's image prefix
	UploadImage(ctx context.Context, userID, contentType string, data []byte) (*Image, error)

	// DeleteImage removes an image owned by the user
	DeleteImage(ctx context.Context, userID, key string) error
}

// Character is a stored sheet
type Character struct {
	ID        string            `json:"id"`
	Record    *character.Record `json:"character"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Summary is the list view of a stored sheet
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PlayerName string    `json:"playerName"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Image is a stored image
type Image struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// TimeProvider stamps image keys
type TimeProvider interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now() }

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository    objects.Repository // Required
	UUIDGenerator uuid.Generator     // Optional
	TimeProvider  TimeProvider       // Optional
	MaxImageBytes int                // Optional, defaults to DefaultMaxImageBytes
}

type service struct {
	repository    objects.Repository
	uuidGenerator uuid.Generator
	timeProvider  TimeProvider
	maxImageBytes int
}

// NewService creates a new character service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil || cfg.Repository == nil {
		panic("repository is required")
	}

	svc := &service{
		repository:    cfg.Repository,
		uuidGenerator: cfg.UUIDGenerator,
		timeProvider:  cfg.TimeProvider,
		maxImageBytes: cfg.MaxImageBytes,
	}
	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.timeProvider == nil {
		svc.timeProvider = systemTime{}
	}
	if svc.maxImageBytes <= 0 {
		svc.maxImageBytes = DefaultMaxImageBytes
	}
	return svc
}

// CharacterKey is the object key of a character payload
func CharacterKey(userID, id string) string {
	return fmt.Sprintf("%s/%s.json", userID, id)
}

// ImagePrefix is the key prefix of a user's images
func ImagePrefix(userID string) string {
	return fmt.Sprintf("%s/%s/", userID, imagesDir)
}

func (s *service) List(ctx context.Context, userID string) ([]*Summary, error) {
	if err := validateSegment("user id", userID); err != nil {
		return nil, err
	}

	prefix := userID + "/"
	infos, err := s.repository.List(ctx, prefix)
	if err != nil {
		return nil, sheeterr.Wrapf(err, "failed to list characters for %s", userID)
	}

	var (
		mu        sync.Mutex
		summaries = make([]*Summary, 0, len(infos))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for _, info := range infos {
		rest := strings.TrimPrefix(info.Key, prefix)
		if strings.Contains(rest, "/") || !strings.HasSuffix(rest, ".json") {
			continue
		}
		id := strings.TrimSuffix(rest, ".json")
		key := info.Key

		g.Go(func() error {
			obj, err := s.repository.Get(gctx, key)
			if err != nil {
				// deleted between list and get
				if sheeterr.IsNotFound(err) {
					return nil
				}
				return err
			}

			doc := gjson.ParseBytes(obj.Data)
			summary := &Summary{
				ID:         id,
				Name:       doc.Get("character.name").String(),
				PlayerName: doc.Get("character.playerName").String(),
				UpdatedAt:  obj.UpdatedAt,
			}

			mu.Lock()
			summaries = append(summaries, summary)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("Characters: failed to load summaries for %s: %v", userID, err)
		return nil, sheeterr.Wrap(err, "failed to load characters")
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

func (s *service) Get(ctx context.Context, userID, id string) (*Character, error) {
	if err := validateSegment("user id", userID); err != nil {
		return nil, err
	}
	if err := validateSegment("character id", id); err != nil {
		return nil, err
	}

	obj, err := s.repository.Get(ctx, CharacterKey(userID, id))
	if err != nil {
		if sheeterr.IsNotFound(err) {
			return nil, sheeterr.NotFoundf("character '%s' not found", id)
		}
		return nil, err
	}

	rec, err := character.Normalize(obj.Data)
	if err != nil {
		return nil, sheeterr.Wrapf(err, "stored character %s is unreadable", id)
	}

	return &Character{ID: id, Record: rec, UpdatedAt: obj.UpdatedAt}, nil
}

func (s *service) Save(ctx context.Context, userID, id string, raw []byte) (*Character, error) {
	if err := validateSegment("user id", userID); err != nil {
		return nil, err
	}
	if id == "" {
		id = s.uuidGenerator.New()
	}
	if err := validateSegment("character id", id); err != nil {
		return nil, err
	}

	rec, err := character.Normalize(raw)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, sheeterr.WrapWithCode(err, sheeterr.CodeInternal, "failed to marshal character")
	}

	obj := &objects.Object{
		Key:         CharacterKey(userID, id),
		ContentType: jsonContentType,
		Data:        data,
	}
	if err := s.repository.Put(ctx, obj); err != nil {
		return nil, sheeterr.Wrapf(err, "failed to save character %s", id)
	}

	return &Character{ID: id, Record: rec, UpdatedAt: s.timeProvider.Now().UTC()}, nil
}

func (s *service) Delete(ctx context.Context, userID, id string) error {
	if err := validateSegment("user id", userID); err != nil {
		return err
	}
	if err := validateSegment("character id", id); err != nil {
		return err
	}

	if err := s.repository.Delete(ctx, CharacterKey(userID, id)); err != nil {
		if sheeterr.IsNotFound(err) {
			return sheeterr.NotFoundf("character '%s' not found", id)
		}
		return err
	}
	return nil
}

func (s *service) UploadImage(ctx context.Context, userID, contentType string, data []byte) (*Image, error) {
	if err := validateSegment("user id", userID); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, sheeterr.InvalidArgument("image is empty")
	}
	if len(data) > s.maxImageBytes {
		return nil, sheeterr.InvalidArgumentf("image exceeds %d bytes", s.maxImageBytes)
	}

	contentType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	ext, err := archive.ExtensionFor(contentType)
	if err != nil {
		return nil, sheeterr.InvalidArgumentf("unsupported image type %q", contentType)
	}

	key := fmt.Sprintf("%s%d-%s.%s",
		ImagePrefix(userID),
		s.timeProvider.Now().UnixMilli(),
		uuid.Short(s.uuidGenerator, 8),
		ext,
	)
	if err := s.repository.Put(ctx, &objects.Object{Key: key, ContentType: contentType, Data: data}); err != nil {
		return nil, sheeterr.Wrap(err, "failed to store image")
	}

	return &Image{Key: key, ContentType: contentType, Size: len(data)}, nil
}

func (s *service) DeleteImage(ctx context.Context, userID, key string) error {
	if err := validateSegment("user id", userID); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return sheeterr.InvalidArgument("image key is required")
	}

	rest, ok := strings.CutPrefix(key, ImagePrefix(userID))
	if !ok || rest == "" || strings.Contains(rest, "/") || strings.Contains(rest, "..") {
		return sheeterr.PermissionDenied("image does not belong to this user")
	}

	if err := s.repository.Delete(ctx, key); err != nil {
		if sheeterr.IsNotFound(err) {
			return sheeterr.NotFoundf("image '%s' not found", key)
		}
		return err
	}
	return nil
}

// validateSegment rejects values that could escape their key segment
func validateSegment(what, v string) error {
	switch {
	case strings.TrimSpace(v) == "":
		return sheeterr.InvalidArgumentf("%s is required", what)
	case len(v) > maxIDLength:
		return sheeterr.InvalidArgumentf("%s is too long", what)
	case strings.ContainsAny(v, `/\`), strings.Contains(v, ".."):
		return sheeterr.InvalidArgumentf("invalid %s %q", what, v)
	}
	return nil
}
