package service

import (
	"context"
	"encoding/json"
	"time"

	"bakepos/internal/dto"

	"github.com/redis/go-redis/v9"
)

const stockCacheKey = "stock:today"

// StockCache keeps the cashier's today-stock snapshot in Redis for a short
// TTL. Every ledger append invalidates it, so cashiers never see stale stock
// for longer than one request. A nil cache (tests, Redis disabled) always
// misses.
type StockCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStockCache(rdb *redis.Client, ttl time.Duration) *StockCache {
	return &StockCache{rdb: rdb, ttl: ttl}
}

func (c *StockCache) Get(ctx context.Context) ([]dto.ProductSnapshot, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, stockCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var rows []dto.ProductSnapshot
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (c *StockCache) Set(ctx context.Context, rows []dto.ProductSnapshot) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, stockCacheKey, raw, c.ttl)
}

func (c *StockCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, stockCacheKey)
}
