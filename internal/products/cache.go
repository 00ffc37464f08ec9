package products

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// Cache is a read-through cache for single products. A miss is reported as
// (Product{}, false, nil); errors mean the cache itself failed.
//
// Every Delete bumps a per-id version. Readers take the version before
// reading the store and write back through SetIfVersion, which drops the
// write when an eviction happened in between.
type Cache interface {
	Get(ctx context.Context, id string) (Product, bool, error)
	Version(ctx context.Context, id string) (int64, error)
	SetIfVersion(ctx context.Context, p Product, version int64) error
	Delete(ctx context.Context, id string) error
}

const (
	cacheKeyPrefix   = "products:"
	versionKeyPrefix = "products:ver:"
)

func cacheKey(id string) string   { return cacheKeyPrefix + id }
func versionKey(id string) string { return versionKeyPrefix + id }

// RedisCache stores products as JSON with a fixed TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, id string) (Product, bool, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, oops.Code("CACHE_GET_FAILED").With("key", cacheKey(id)).Wrap(err)
	}
	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return Product{}, false, oops.Code("CACHE_DECODE_FAILED").With("key", cacheKey(id)).Wrap(err)
	}
	return p, true, nil
}

func (c *RedisCache) Version(ctx context.Context, id string) (int64, error) {
	v, err := readVersion(ctx, c.rdb, id)
	if err != nil {
		return 0, oops.Code("CACHE_VERSION_FAILED").With("key", versionKey(id)).Wrap(err)
	}
	return v, nil
}

// SetIfVersion writes p only while the version key still reads version.
// A lost race is not an error; the write is skipped.
func (c *RedisCache) SetIfVersion(ctx context.Context, p Product, version int64) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(p.ID), raw, c.ttl)
			return nil
		})
		return err
	}, versionKey(p.ID))
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return oops.Code("CACHE_SET_FAILED").With("key", cacheKey(p.ID)).Wrap(err)
	}
	return nil
}

// Delete removes the entry and bumps its version in one transaction. The
// version key outlives any entry written under the previous version.
func (c *RedisCache) Delete(ctx context.Context, id string) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cacheKey(id))
		pipe.Incr(ctx, versionKey(id))
		pipe.Expire(ctx, versionKey(id), c.ttl+time.Hour)
		return nil
	})
	if err != nil {
		return oops.Code("CACHE_DELETE_FAILED").With("key", cacheKey(id)).Wrap(err)
	}
	return nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readVersion(ctx context.Context, r stringGetter, id string) (int64, error) {
	raw, err := r.Get(ctx, versionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// NoopCache never holds anything. Used when no redis address is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (Product, bool, error) { return Product{}, false, nil }
func (NoopCache) Version(context.Context, string) (int64, error)     { return 0, nil }
func (NoopCache) SetIfVersion(context.Context, Product, int64) error { return nil }
func (NoopCache) Delete(context.Context, string) error               { return nil }
