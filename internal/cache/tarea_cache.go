package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "github.com/Jairo-Bargas/Api-project/internal/domain"
	"github.com/Jairo-Bargas/Api-project/internal/query"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tarea:list:"

// ListPage is a cached listing result: one page plus the pre-pagination total.
type ListPage struct {
	Tareas []dom.Tarea `json:"tareas"`
	Total  int64       `json:"total"`
}

// TareaCache caches listing pages in Redis, keyed per user and per
// normalized query params. Writes by a user drop all of that user's keys.
type TareaCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTareaCache returns a new TareaCache.
func NewTareaCache(rdb *redis.Client, ttl time.Duration) *TareaCache {
	return &TareaCache{rdb: rdb, ttl: ttl}
}

func listKey(userID int64, p query.Params) string {
	return keyPrefix + strconv.FormatInt(userID, 10) + ":" + p.CacheKey()
}

// GetList returns the cached page or nil if miss.
func (c *TareaCache) GetList(ctx context.Context, userID int64, p query.Params) (*ListPage, error) {
	b, err := c.rdb.Get(ctx, listKey(userID, p)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var page ListPage
	if err := json.Unmarshal(b, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SetList stores the page in cache.
func (c *TareaCache) SetList(ctx context.Context, userID int64, p query.Params, page ListPage) error {
	b, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(userID, p), b, c.ttl).Err()
}

// Invalidate removes every cached page of the given user (cache
// invalidation on write).
func (c *TareaCache) Invalidate(ctx context.Context, userID int64) error {
	pattern := keyPrefix + strconv.FormatInt(userID, 10) + ":*"
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
