package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisAddrRequired is returned by OpenRedis when no address is configured.
var ErrRedisAddrRequired = errors.New("redis addr is required")

// RedisConfig tunes the redis client. The cache is an optimization, so
// timeouts are short: a slow redis must not slow down requests.
type RedisConfig struct {
	Addr string

	DialTimeout time.Duration
	// IOTimeout bounds both reads and writes.
	IOTimeout   time.Duration
	PoolSize    int
	PingTimeout time.Duration
}

func (c RedisConfig) withDefaults() RedisConfig {
	return RedisConfig{
		Addr:        c.Addr,
		DialTimeout: durationOr(c.DialTimeout, 3*time.Second),
		IOTimeout:   durationOr(c.IOTimeout, time.Second),
		PoolSize:    intOr(c.PoolSize, 10),
		PingTimeout: durationOr(c.PingTimeout, 2*time.Second),
	}
}

func (c RedisConfig) options() *redis.Options {
	return &redis.Options{
		Addr:            c.Addr,
		DialTimeout:     c.DialTimeout,
		ReadTimeout:     c.IOTimeout,
		WriteTimeout:    c.IOTimeout,
		PoolSize:        c.PoolSize,
		PoolTimeout:     c.IOTimeout + c.DialTimeout,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// OpenRedis creates a client and checks it answers PING.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, ErrRedisAddrRequired
	}
	cfg = cfg.withDefaults()

	rdb := redis.NewClient(cfg.options())
	if err := RedisHealthCheck(ctx, rdb, cfg.PingTimeout); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// RedisHealthCheck pings redis, giving up after timeout.
func RedisHealthCheck(ctx context.Context, rdb *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
