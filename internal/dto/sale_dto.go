package dto

import "github.com/shopspring/decimal"

type SaleItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Qty       int    `json:"qty"       validate:"required,min=1"`
}

// CheckoutRequest is the cashier checkout payload (POST /v1/sales).
// Total and Change are what the register UI displayed; the server recomputes
// both from current prices and they are returned in the response.
type CheckoutRequest struct {
	Total    decimal.Decimal   `json:"total"`
	Tendered decimal.Decimal   `json:"tendered" validate:"required"`
	Change   decimal.Decimal   `json:"change"`
	Items    []SaleItemRequest `json:"items"    validate:"required,min=1,dive"`
}

type SaleLineResponse struct {
	ProductID string          `json:"productId"`
	Product   string          `json:"product"`
	Qty       int             `json:"qty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID        string             `json:"id"`
	Total     decimal.Decimal    `json:"total"`
	Tendered  decimal.Decimal    `json:"tendered"`
	Change    decimal.Decimal    `json:"change"`
	Items     []SaleLineResponse `json:"items"`
	CreatedAt string             `json:"created_at"`
}
