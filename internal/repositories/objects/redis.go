package objects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// objectData is the serialized form of an object in Redis
type objectData struct {
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"data"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// redisRepo implements Repository using Redis.
// Each object lives at object:<key>; dir:<owner> indexes the keys of one owner,
// where owner is the first key segment.
type redisRepo struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client       redis.UniversalClient
	TimeProvider TimeProvider // Optional, defaults to the system clock
}

// NewRedisRepository creates a new Redis-backed object repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}
	if cfg.TimeProvider == nil {
		cfg.TimeProvider = systemTime{}
	}

	return &redisRepo{
		client:       cfg.Client,
		timeProvider: cfg.TimeProvider,
	}
}

func (r *redisRepo) key(key string) string {
	return fmt.Sprintf("object:%s", key)
}

func (r *redisRepo) dirKey(key string) string {
	return fmt.Sprintf("dir:%s", ownerOf(key))
}

// ownerOf returns the first segment of a key or prefix
func ownerOf(key string) string {
	owner, _, _ := strings.Cut(key, "/")
	return owner
}

// Put stores the object and indexes it under its owner
func (r *redisRepo) Put(ctx context.Context, obj *Object) error {
	if err := validateObject(obj); err != nil {
		return err
	}

	jsonData, err := json.Marshal(objectData{
		Key:         obj.Key,
		ContentType: obj.ContentType,
		Data:        obj.Data,
		UpdatedAt:   r.timeProvider.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal object: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(obj.Key), jsonData, 0)
	pipe.SAdd(ctx, r.dirKey(obj.Key), obj.Key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}
	return nil
}

// Get retrieves an object by key
func (r *redisRepo) Get(ctx context.Context, key string) (*Object, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	var od objectData
	if err := json.Unmarshal([]byte(data), &od); err != nil {
		return nil, fmt.Errorf("failed to unmarshal object: %w", err)
	}

	return &Object{
		Key:         od.Key,
		ContentType: od.ContentType,
		Data:        od.Data,
		UpdatedAt:   od.UpdatedAt,
	}, nil
}

// Delete removes the object and its index entry
func (r *redisRepo) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	del := pipe.Del(ctx, r.key(key))
	pipe.SRem(ctx, r.dirKey(key), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	if del.Val() == 0 {
		return notFound(key)
	}
	return nil
}

// List returns the objects of the prefix's owner whose keys start with prefix
func (r *redisRepo) List(ctx context.Context, prefix string) ([]*Info, error) {
	if ownerOf(prefix) == "" {
		return nil, validateKey(prefix)
	}

	keys, err := r.client.SMembers(ctx, r.dirKey(prefix)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list object keys: %w", err)
	}

	sort.Strings(keys)

	result := make([]*Info, 0, len(keys))
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		obj, err := r.Get(ctx, key)
		if err != nil {
			// index entries can outlive their object
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		result = append(result, &Info{
			Key:       obj.Key,
			Size:      int64(len(obj.Data)),
			UpdatedAt: obj.UpdatedAt,
		})
	}
	return result, nil
}
