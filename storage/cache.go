package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"todo-api/domain"
)

type backend interface {
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)
	InsertTask(ctx context.Context, t domain.Task) error
	UpdateTask(ctx context.Context, t domain.Task) error
	SetTaskOrder(ctx context.Context, userID, taskID string, order int) error
	DeleteTask(ctx context.Context, userID, taskID string) (bool, error)

	ListNotes(ctx context.Context, userID string) ([]domain.Note, error)
	InsertNote(ctx context.Context, n domain.Note) error
	UpdateNote(ctx context.Context, n domain.Note) error
	DeleteNote(ctx context.Context, userID, noteID string) (bool, error)
}

// Cache wraps a Storage instance with a Redis-backed read-through cache for
// the per-user task and note lists. Every mutation evicts the owner's cached
// list, so readers only ever see persisted state. Only stored fields are
// cached; derived fields are computed by callers after retrieval.
type Cache struct {
	*Storage
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching Storage wrapper using the provided Redis client
// and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}

	c := &Cache{
		base:  base,
		redis: client,
		ttl:   ttl,
	}
	if s, ok := base.(*Storage); ok {
		c.Storage = s
	}
	return c
}

func (c *Cache) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	var tasks []domain.Task
	if c.loadList(ctx, tasksCacheKey(userID), &tasks) {
		return tasks, nil
	}

	tasks, err := c.base.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.storeList(ctx, tasksCacheKey(userID), tasks)
	return tasks, nil
}

func (c *Cache) InsertTask(ctx context.Context, t domain.Task) error {
	if err := c.base.InsertTask(ctx, t); err != nil {
		return err
	}
	c.evict(ctx, tasksCacheKey(t.UserID))
	return nil
}

func (c *Cache) UpdateTask(ctx context.Context, t domain.Task) error {
	if err := c.base.UpdateTask(ctx, t); err != nil {
		return err
	}
	c.evict(ctx, tasksCacheKey(t.UserID))
	return nil
}

func (c *Cache) SetTaskOrder(ctx context.Context, userID, taskID string, order int) error {
	if err := c.base.SetTaskOrder(ctx, userID, taskID, order); err != nil {
		return err
	}
	c.evict(ctx, tasksCacheKey(userID))
	return nil
}

func (c *Cache) DeleteTask(ctx context.Context, userID, taskID string) (bool, error) {
	deleted, err := c.base.DeleteTask(ctx, userID, taskID)
	if err != nil {
		return false, err
	}
	if deleted {
		c.evict(ctx, tasksCacheKey(userID))
	}
	return deleted, nil
}

func (c *Cache) ListNotes(ctx context.Context, userID string) ([]domain.Note, error) {
	var notes []domain.Note
	if c.loadList(ctx, notesCacheKey(userID), &notes) {
		return notes, nil
	}

	notes, err := c.base.ListNotes(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.storeList(ctx, notesCacheKey(userID), notes)
	return notes, nil
}

func (c *Cache) InsertNote(ctx context.Context, n domain.Note) error {
	if err := c.base.InsertNote(ctx, n); err != nil {
		return err
	}
	c.evict(ctx, notesCacheKey(n.UserID))
	return nil
}

func (c *Cache) UpdateNote(ctx context.Context, n domain.Note) error {
	if err := c.base.UpdateNote(ctx, n); err != nil {
		return err
	}
	c.evict(ctx, notesCacheKey(n.UserID))
	return nil
}

func (c *Cache) DeleteNote(ctx context.Context, userID, noteID string) (bool, error) {
	deleted, err := c.base.DeleteNote(ctx, userID, noteID)
	if err != nil {
		return false, err
	}
	if deleted {
		c.evict(ctx, notesCacheKey(userID))
	}
	return deleted, nil
}

func (c *Cache) loadList(ctx context.Context, key string, dst any) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) storeList(ctx context.Context, key string, v any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, key).Result()
}

func tasksCacheKey(userID string) string {
	return "tasks:" + userID
}

func notesCacheKey(userID string) string {
	return "notes:" + userID
}
