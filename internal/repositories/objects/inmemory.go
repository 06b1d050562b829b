package objects

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryRepository keeps objects in a map.
// Useful for testing and development
type InMemoryRepository struct {
	mu           sync.RWMutex
	objects      map[string]*Object
	timeProvider TimeProvider
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		objects:      make(map[string]*Object),
		timeProvider: systemTime{},
	}
}

// Put stores a copy of obj
func (r *InMemoryRepository) Put(ctx context.Context, obj *Object) error {
	if err := validateObject(obj); err != nil {
		return err
	}

	stored := copyObject(obj)
	stored.UpdatedAt = r.timeProvider.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.objects[obj.Key] = stored
	return nil
}

// Get returns a copy of the stored object
func (r *InMemoryRepository) Get(ctx context.Context, key string) (*Object, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	obj, exists := r.objects[key]
	if !exists {
		return nil, notFound(key)
	}
	return copyObject(obj), nil
}

// Delete removes an object
func (r *InMemoryRepository) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.objects[key]; !exists {
		return notFound(key)
	}
	delete(r.objects, key)
	return nil
}

// List returns objects under prefix sorted by key
func (r *InMemoryRepository) List(ctx context.Context, prefix string) ([]*Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Info
	for key, obj := range r.objects {
		if strings.HasPrefix(key, prefix) {
			result = append(result, &Info{
				Key:       key,
				Size:      int64(len(obj.Data)),
				UpdatedAt: obj.UpdatedAt,
			})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func copyObject(obj *Object) *Object {
	c := *obj
	c.Data = append([]byte(nil), obj.Data...)
	return &c
}
