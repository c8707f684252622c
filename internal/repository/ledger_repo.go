package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bakepos/internal/apierror"
	"bakepos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerRepository is the append-only store for production events and ledger
// entries. Entries are ordered per product by (occurred_at, seq) and are
// never updated or deleted.
type LedgerRepository interface {
	CreateProductionEvent(ctx context.Context, tx *gorm.DB, ev *model.ProductionEvent) error

	// CarryForward resolves the balance inherited from the latest entry for
	// the product whose occurred_at is strictly before the given instant,
	// ties broken by highest seq. Returns (0, 0, nil) when no such entry
	// exists. Pure read; pass the active tx for a consistent snapshot view.
	CarryForward(ctx context.Context, tx *gorm.DB, productID uuid.UUID, before time.Time) (balance int, seq int64, err error)

	// BasisAt resolves the carry-forward basis for an append at the given
	// instant: the latest entry with occurred_at at or before it, ties
	// broken by highest seq. Equal-timestamp entries belong to the basis
	// because the new append receives a higher seq and sorts after them.
	// Returns (0, 0, nil) when the product has no such entry.
	BasisAt(ctx context.Context, tx *gorm.DB, productID uuid.UUID, at time.Time) (balance int, seq int64, err error)

	// LatestBasis resolves the product's newest entry regardless of
	// timestamp — the carry-forward basis for sale appends, which always
	// happen at "now". Returns (0, 0, nil) when the product has no entries.
	LatestBasis(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (balance int, seq int64, err error)

	// AppendEntry appends e, failing with apierror.ErrConflict when another
	// entry for the product has become the carry-forward basis since seq
	// basisSeq was resolved. Callers retry the resolve+append sequence.
	AppendEntry(ctx context.Context, tx *gorm.DB, e *model.LedgerEntry, basisSeq int64) error

	// EntriesBetween returns every product's entries with occurred_at in
	// [from, to), product preloaded, ordered by (product_id, occurred_at, seq).
	// Pass the active tx so window reads and carry-forward lookups observe
	// the same snapshot.
	EntriesBetween(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]model.LedgerEntry, error)

	// DB exposes the underlying handle so services can open transactions.
	DB() *gorm.DB
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ledgerRepo) CreateProductionEvent(ctx context.Context, tx *gorm.DB, ev *model.ProductionEvent) error {
	return r.conn(tx).WithContext(ctx).Create(ev).Error
}

func (r *ledgerRepo) CarryForward(ctx context.Context, tx *gorm.DB, productID uuid.UUID, before time.Time) (int, int64, error) {
	var e model.LedgerEntry
	err := r.conn(tx).WithContext(ctx).
		Where("product_id = ? AND occurred_at < ?", productID, before).
		Order("occurred_at DESC, seq DESC").
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("%w: resolving carry-forward: %v", apierror.ErrStorage, err)
	}
	return e.Balance, e.Seq, nil
}

func (r *ledgerRepo) BasisAt(ctx context.Context, tx *gorm.DB, productID uuid.UUID, at time.Time) (int, int64, error) {
	var e model.LedgerEntry
	err := r.conn(tx).WithContext(ctx).
		Where("product_id = ? AND occurred_at <= ?", productID, at).
		Order("occurred_at DESC, seq DESC").
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("%w: resolving append basis: %v", apierror.ErrStorage, err)
	}
	return e.Balance, e.Seq, nil
}

func (r *ledgerRepo) LatestBasis(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (int, int64, error) {
	var e model.LedgerEntry
	err := r.conn(tx).WithContext(ctx).
		Where("product_id = ?", productID).
		Order("occurred_at DESC, seq DESC").
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("%w: resolving latest basis: %v", apierror.ErrStorage, err)
	}
	return e.Balance, e.Seq, nil
}

func (r *ledgerRepo) AppendEntry(ctx context.Context, tx *gorm.DB, e *model.LedgerEntry, basisSeq int64) error {
	q := r.conn(tx).WithContext(ctx)

	// Conditional append: an entry that sorts before e in (occurred_at, seq)
	// order yet postdates the resolved basis means the carry-forward is
	// stale.
	var newer int64
	err := q.Model(&model.LedgerEntry{}).
		Where("product_id = ? AND occurred_at <= ? AND seq > ?", e.ProductID, e.OccurredAt, basisSeq).
		Count(&newer).Error
	if err != nil {
		return fmt.Errorf("%w: checking append basis: %v", apierror.ErrStorage, err)
	}
	if newer > 0 {
		return apierror.ErrConflict
	}

	if err := q.Create(e).Error; err != nil {
		return fmt.Errorf("%w: appending ledger entry: %v", apierror.ErrStorage, err)
	}
	return nil
}

func (r *ledgerRepo) EntriesBetween(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := r.conn(tx).WithContext(ctx).
		Preload("Product").
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Order("product_id ASC, occurred_at ASC, seq ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: loading ledger window: %v", apierror.ErrStorage, err)
	}
	return entries, nil
}

func (r *ledgerRepo) DB() *gorm.DB { return r.db }
