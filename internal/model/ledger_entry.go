package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry is one immutable row of the running-stock ledger. Every
// production batch and every sale line appends exactly one entry carrying the
// resulting balance, computed from the most recent prior entry for the same
// product.
//
// Entries form a total order per product by (occurred_at, seq). They are
// never updated or deleted; corrections would require compensating entries,
// which are not currently supported.
type LedgerEntry struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Seq is a global append counter (bigserial). It breaks ties between
	// entries sharing a timestamp and anchors the conditional append.
	Seq               int64      `gorm:"autoIncrement;uniqueIndex;not null"`
	ProductID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_ledger_product_time,priority:1"`
	OperatorID        uuid.UUID  `gorm:"type:uuid;not null"`
	ProductionEventID *uuid.UUID `gorm:"type:uuid"`
	SaleID            *uuid.UUID `gorm:"type:uuid"`
	OccurredAt        time.Time  `gorm:"not null;index:idx_ledger_product_time,priority:2"`
	Produced          int        `gorm:"not null"` // 0 when triggered by a sale
	Sold              int        `gorm:"not null"` // 0 when triggered by production
	// Balance is signed: it can go negative when a sale outruns stock.
	Balance   int             `gorm:"not null"`
	MoneyIn   decimal.Decimal `gorm:"type:decimal(10,2);not null"` // 0 when triggered by production
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
