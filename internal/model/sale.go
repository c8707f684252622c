package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is one checkout transaction, created atomically with its items and
// with the ledger entries that decrement stock.
type Sale struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperatorID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Total      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Tendered   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Change     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	OccurredAt time.Time       `gorm:"not null;index"`
	CreatedAt  time.Time

	Operator *User      `gorm:"foreignKey:OperatorID"`
	Items    []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is one line of a sale. Subtotal is frozen at sale time from the
// product's then-current price.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
