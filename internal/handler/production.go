package handler

import (
	"fmt"
	"net/http"
	"time"

	"bakepos/internal/apierror"
	"bakepos/internal/dto"
	"bakepos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// timestampLayout is the device wire format for explicit timestamps.
const timestampLayout = "2006-01-02T15:04:05"

// ProductionHandler serves the device ingestion endpoint. Counting devices
// on the bakery floor POST their batch counts here; the handler validates
// the payload and delegates to the ledger writer.
type ProductionHandler struct {
	svc service.LedgerService
	loc *time.Location
}

func NewProductionHandler(svc service.LedgerService, loc *time.Location) *ProductionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ProductionHandler{svc: svc, loc: loc}
}

// Report handles POST /production. Counting devices only distinguish
// accepted from rejected, so every malformed payload answers 400 rather
// than the 422 the interactive endpoints use.
func (h *ProductionHandler) Report(c *gin.Context) {
	var req dto.ProductionReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return
	}
	if err := validate.Struct(&req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("productId must be a valid id"))
		return
	}
	operatorID, err := uuid.Parse(req.OperatorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("operatorId must be a valid id"))
		return
	}

	var occurred time.Time
	if req.Timestamp != "" {
		occurred, err = time.ParseInLocation(timestampLayout, req.Timestamp, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New(fmt.Sprintf("timestamp must match %s", timestampLayout)))
			return
		}
	}

	entry, err := h.svc.RecordProduction(c.Request.Context(), service.ProductionInput{
		ProductID:  productID,
		OperatorID: operatorID,
		Quantity:   req.Quantity,
		OccurredAt: occurred,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProductionReportResponse{
		Message: "production recorded",
		Balance: entry.Balance,
	})
}
