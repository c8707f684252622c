// Package worker runs the background goroutine pool fed by a Redis list
// queue. Checkout enqueues one stock-check job per product sold; the pool
// re-reads the product's ledger balance and maintains the low-stock alert
// set the owner dashboard reads.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"bakepos/internal/dto"
	"bakepos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueStockCheck = "jobs:stock-check"

	// AlertKey is the Redis hash holding current low-stock alerts,
	// field = product id, value = JSON dto.StockAlert.
	AlertKey = "alerts:lowstock"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type StockCheckPayload struct {
	ProductID string `json:"product_id"`
}

// Dispatcher enqueues async jobs into Redis lists. The worker pool dequeues
// them via BRPOP. A nil Dispatcher (unit tests, Redis disabled) is a no-op.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher { return &Dispatcher{rdb: rdb} }

// EnqueueStockCheck pushes a stock-check job for the product. Best-effort:
// checkout never fails because the queue is down.
func (d *Dispatcher) EnqueueStockCheck(ctx context.Context, productID uuid.UUID) error {
	if d == nil || d.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(StockCheckPayload{ProductID: productID.String()})
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: "stock-check", Payload: payload})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, QueueStockCheck, encoded).Err()
}

// StockChecker processes stock-check jobs: it resolves the product's current
// ledger balance and adds it to (or clears it from) the alert hash.
type StockChecker struct {
	ledger    repository.LedgerRepository
	products  repository.ProductRepository
	rdb       *redis.Client
	threshold int
}

func NewStockChecker(ledger repository.LedgerRepository, products repository.ProductRepository, rdb *redis.Client, threshold int) *StockChecker {
	return &StockChecker{ledger: ledger, products: products, rdb: rdb, threshold: threshold}
}

func (c *StockChecker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload StockCheckPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		return err
	}

	balance, _, err := c.ledger.LatestBasis(ctx, nil, productID)
	if err != nil {
		return err
	}

	if balance > c.threshold {
		return c.rdb.HDel(ctx, AlertKey, payload.ProductID).Err()
	}

	product, err := c.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	alert := dto.StockAlert{
		ProductID: payload.ProductID,
		Name:      product.Name,
		Stock:     balance,
		At:        time.Now().Format(time.RFC3339),
	}
	encoded, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	log.Warn().
		Str("product", product.Name).
		Int("stock", balance).
		Int("threshold", c.threshold).
		Msg("low stock")
	return c.rdb.HSet(ctx, AlertKey, payload.ProductID, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the stock-check
// queue. Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, checker *StockChecker, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, checker, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, checker *StockChecker, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueStockCheck).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, checker, result[1])
		}
	}
}

func processJob(ctx context.Context, checker *StockChecker, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal job")
		return
	}
	switch job.Type {
	case "stock-check":
		if err := checker.Process(ctx, job.Payload); err != nil {
			log.Error().Err(err).Msg("stock-check job failed")
		}
	default:
		log.Warn().Str("type", job.Type).Msg("unknown job type")
	}
}
