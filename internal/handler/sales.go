package handler

import (
	"net/http"

	"bakepos/internal/dto"
	"bakepos/internal/middleware"
	"bakepos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct{ svc service.LedgerService }

func NewSalesHandler(svc service.LedgerService) *SalesHandler { return &SalesHandler{svc: svc} }

// Checkout handles POST /v1/sales: one atomic unit covering the sale, its
// items and the per-line ledger entries. The response carries the
// server-computed total and change.
func (h *SalesHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	operatorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.RecordSale(c.Request.Context(), operatorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
