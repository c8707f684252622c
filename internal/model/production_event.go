package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductionEvent records one batch of bread coming out of the oven, entered
// by the owner or reported by a counting device. Never mutated or deleted.
type ProductionEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	OperatorID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity   int       `gorm:"not null"`
	OccurredAt time.Time `gorm:"not null;index"`
	CreatedAt  time.Time

	Product  *Product `gorm:"foreignKey:ProductID"`
	Operator *User    `gorm:"foreignKey:OperatorID"`
}
