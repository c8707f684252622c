package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client. The pool is sized for
// the request handlers plus the stock-check workers, all of which share the
// one client.
func NewRedis(redisURL string, poolSize int) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	opts.MinIdleConns = 2
	opts.DialTimeout = 5 * time.Second
	// BRPOP in the worker pool blocks up to 5s; the read timeout must
	// outlast it.
	opts.ReadTimeout = 7 * time.Second

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
