package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bakepos/internal/apierror"
	"bakepos/internal/dto"
	"bakepos/internal/model"
	"bakepos/internal/repository"
	"bakepos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// appendRetries bounds the automatic retry of the resolve+append sequence
// when a conditional append reports a stale carry-forward basis.
const appendRetries = 3

// ProductionInput is a validated production report handed to the ledger
// writer. A zero OccurredAt means "now" in the configured time zone.
type ProductionInput struct {
	ProductID  uuid.UUID
	OperatorID uuid.UUID
	Quantity   int
	OccurredAt time.Time
}

// LedgerService is the ledger writer: it turns production reports and
// checkouts into durable events plus running-stock ledger entries.
type LedgerService interface {
	RecordProduction(ctx context.Context, in ProductionInput) (*model.LedgerEntry, error)
	RecordSale(ctx context.Context, operatorID uuid.UUID, req dto.CheckoutRequest) (*dto.SaleResponse, error)
}

type ledgerService struct {
	ledger     repository.LedgerRepository
	sales      repository.SaleRepository
	products   repository.ProductRepository
	users      repository.UserRepository
	locks      *productLocks
	dispatcher *worker.Dispatcher
	cache      *StockCache
	now        func() time.Time
}

func NewLedgerService(
	ledger repository.LedgerRepository,
	sales repository.SaleRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	dispatcher *worker.Dispatcher,
	cache *StockCache,
	loc *time.Location,
) LedgerService {
	if loc == nil {
		loc = time.UTC
	}
	return &ledgerService{
		ledger:     ledger,
		sales:      sales,
		products:   products,
		users:      users,
		locks:      newProductLocks(),
		dispatcher: dispatcher,
		cache:      cache,
		now:        func() time.Time { return time.Now().In(loc) },
	}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// retryOnConflict re-runs fn while it fails with apierror.ErrConflict, up to
// appendRetries attempts. Any other error surfaces immediately.
func retryOnConflict(fn func() error) error {
	var err error
	for attempt := 0; attempt < appendRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, apierror.ErrConflict) {
			return err
		}
	}
	return err
}

// ── RecordProduction ─────────────────────────────────────────────────────────
// 1. Validate quantity, product and operator.
// 2. In one transaction, under the product lock: persist the production
//    event, resolve the carry-forward as of its timestamp, append the ledger
//    entry with balance = carry-forward + quantity.
//
// Retries of the whole call are NOT idempotent: calling twice appends two
// entries. Devices must dedupe on their side before resending.

func (s *ledgerService) RecordProduction(ctx context.Context, in ProductionInput) (*model.LedgerEntry, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apierror.ErrInvalidInput)
	}
	product, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: product %s", apierror.ErrNotFound, in.ProductID)
	}
	if _, err := s.users.FindByID(ctx, in.OperatorID); err != nil {
		return nil, fmt.Errorf("%w: operator %s", apierror.ErrNotFound, in.OperatorID)
	}

	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = s.now()
	}

	unlock := s.locks.lock(in.ProductID)
	defer unlock()

	var entry *model.LedgerEntry
	err = retryOnConflict(func() error {
		return runTx(ctx, s.ledger.DB(), func(tx *gorm.DB) error {
			ev := &model.ProductionEvent{
				ProductID:  in.ProductID,
				OperatorID: in.OperatorID,
				Quantity:   in.Quantity,
				OccurredAt: occurred,
			}
			if err := s.ledger.CreateProductionEvent(ctx, tx, ev); err != nil {
				return fmt.Errorf("%w: storing production event: %v", apierror.ErrStorage, err)
			}

			// Basis includes entries sharing the exact timestamp: the new
			// entry gets a higher seq and sorts after them, so a device
			// reporting two batches within the same second chains normally.
			carry, basis, err := s.ledger.BasisAt(ctx, tx, in.ProductID, occurred)
			if err != nil {
				return err
			}

			entry = &model.LedgerEntry{
				ProductID:         in.ProductID,
				OperatorID:        in.OperatorID,
				ProductionEventID: &ev.ID,
				OccurredAt:        occurred,
				Produced:          in.Quantity,
				Sold:              0,
				Balance:           carry + in.Quantity,
				MoneyIn:           decimal.Zero,
			}
			return s.ledger.AppendEntry(ctx, tx, entry, basis)
		})
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	// A fresh batch may clear an existing low-stock alert.
	_ = s.dispatcher.EnqueueStockCheck(ctx, in.ProductID)

	log.Info().
		Str("product", product.Name).
		Int("quantity", in.Quantity).
		Int("balance", entry.Balance).
		Time("occurred_at", occurred).
		Msg("production recorded")
	return entry, nil
}

// ── RecordSale ───────────────────────────────────────────────────────────────
// 1. Resolve every line's product and price; subtotal = price × qty.
// 2. Reject when tendered < total.
// 3. In ONE transaction, with every sold product locked in sorted order:
//    create the sale + items, then per line resolve the carry-forward and
//    append a ledger entry with balance = carry-forward − qty.
// The sale and its ledger entries commit or roll back together, so readers
// never observe sale rows without the matching stock decrements.

func (s *ledgerService) RecordSale(ctx context.Context, operatorID uuid.UUID, req dto.CheckoutRequest) (*dto.SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: sale has no items", apierror.ErrInvalidInput)
	}
	if _, err := s.users.FindByID(ctx, operatorID); err != nil {
		return nil, fmt.Errorf("%w: operator %s", apierror.ErrNotFound, operatorID)
	}

	type resolvedLine struct {
		product  *model.Product
		qty      int
		subtotal decimal.Decimal
	}

	var resolved []resolvedLine
	productIDs := make([]uuid.UUID, 0, len(req.Items))
	total := decimal.Zero

	for _, item := range req.Items {
		if item.Qty <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", apierror.ErrInvalidInput)
		}
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad product id %q", apierror.ErrInvalidInput, item.ProductID)
		}
		p, err := s.products.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("%w: product %s", apierror.ErrNotFound, item.ProductID)
		}
		if !p.Active {
			return nil, fmt.Errorf("%w: product %s is inactive", apierror.ErrInvalidInput, p.Name)
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(item.Qty)))
		total = total.Add(subtotal)
		resolved = append(resolved, resolvedLine{product: p, qty: item.Qty, subtotal: subtotal})
		productIDs = append(productIDs, pid)
	}

	if req.Tendered.LessThan(total) {
		return nil, fmt.Errorf("%w: tendered %s, total %s", apierror.ErrInsufficientPayment, req.Tendered, total)
	}
	change := req.Tendered.Sub(total)
	occurred := s.now()

	unlock := s.locks.lock(productIDs...)
	defer unlock()

	var sale model.Sale
	err := retryOnConflict(func() error {
		sale = model.Sale{
			OperatorID: operatorID,
			Total:      total,
			Tendered:   req.Tendered,
			Change:     change,
			OccurredAt: occurred,
		}
		for _, line := range resolved {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID: line.product.ID,
				Quantity:  line.qty,
				Subtotal:  line.subtotal,
			})
		}
		return runTx(ctx, s.ledger.DB(), func(tx *gorm.DB) error {
			if err := s.sales.Create(ctx, tx, &sale); err != nil {
				return fmt.Errorf("%w: storing sale: %v", apierror.ErrStorage, err)
			}
			for _, line := range resolved {
				carry, basis, err := s.ledger.LatestBasis(ctx, tx, line.product.ID)
				if err != nil {
					return err
				}
				saleRef := sale.ID
				entry := &model.LedgerEntry{
					ProductID:  line.product.ID,
					OperatorID: operatorID,
					SaleID:     &saleRef,
					OccurredAt: occurred,
					Produced:   0,
					Sold:       line.qty,
					Balance:    carry - line.qty,
					MoneyIn:    line.subtotal,
				}
				if err := s.ledger.AppendEntry(ctx, tx, entry, basis); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	for _, pid := range productIDs {
		_ = s.dispatcher.EnqueueStockCheck(ctx, pid)
	}

	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("total", total.String()).
		Int("lines", len(resolved)).
		Msg("sale recorded")

	resp := &dto.SaleResponse{
		ID:        sale.ID.String(),
		Total:     total,
		Tendered:  req.Tendered,
		Change:    change,
		CreatedAt: occurred.Format(time.RFC3339),
	}
	for _, line := range resolved {
		resp.Items = append(resp.Items, dto.SaleLineResponse{
			ProductID: line.product.ID.String(),
			Product:   line.product.Name,
			Qty:       line.qty,
			Subtotal:  line.subtotal,
		})
	}
	return resp, nil
}
