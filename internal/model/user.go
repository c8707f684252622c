package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleOwner   = "owner"
	RoleCashier = "cashier"
)

// User is an operator of the system: the owner (reports, product catalog,
// device registration) or a cashier (checkout, stock view).
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Name         string    `gorm:"not null"`
	Role         string    `gorm:"not null"` // owner | cashier
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
