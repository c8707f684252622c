package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bakepos/internal/apierror"
	"bakepos/internal/dto"
	"bakepos/internal/infra"
	"bakepos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReportsHandler struct {
	svc service.ReportService
	loc *time.Location
}

func NewReportsHandler(svc service.ReportService, loc *time.Location) *ReportsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportsHandler{svc: svc, loc: loc}
}

// parseQuery validates the common date/period query string. Returns the
// parsed date, the window size in days, and the raw query for labels.
func (h *ReportsHandler) parseQuery(c *gin.Context) (time.Time, int, *dto.ReportQuery, bool) {
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return time.Time{}, 0, nil, false
	}
	if err := validate.Struct(&q); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return time.Time{}, 0, nil, false
	}

	date, err := time.ParseInLocation("2006-01-02", q.Date, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("date must match YYYY-MM-DD"))
		return time.Time{}, 0, nil, false
	}

	windowDays := 0
	if q.Period != "" && q.Period != "none" {
		windowDays, _ = strconv.Atoi(q.Period)
	}
	return date, windowDays, &q, true
}

// Production handles GET /v1/reports/production. With download=excel the
// snapshot is streamed as a styled .xlsx instead of JSON.
func (h *ReportsHandler) Production(c *gin.Context) {
	date, windowDays, q, ok := h.parseQuery(c)
	if !ok {
		return
	}

	rows, err := h.svc.Snapshot(c.Request.Context(), date, windowDays)
	if err != nil {
		respondError(c, err)
		return
	}

	if q.Download == "excel" {
		book, err := infra.BuildProductionReport(q.Date, q.Period, rows)
		if err != nil {
			respondError(c, fmt.Errorf("%w: building spreadsheet: %v", apierror.ErrStorage, err))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="production_report_%s.xlsx"`, q.Date))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := book.Write(c.Writer); err != nil {
			_ = c.Error(err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "date": q.Date, "period": q.Period})
}

// ChartData handles GET /v1/reports/chart-data.
func (h *ReportsHandler) ChartData(c *gin.Context) {
	date, windowDays, _, ok := h.parseQuery(c)
	if !ok {
		return
	}
	series, err := h.svc.ChartData(c.Request.Context(), date, windowDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": series})
}

// Alerts handles GET /v1/reports/alerts.
func (h *ReportsHandler) Alerts(c *gin.Context) {
	alerts, err := h.svc.Alerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts})
}

// Stock handles GET /v1/stock — the cashier's live view of today's stock.
func (h *ReportsHandler) Stock(c *gin.Context) {
	rows, err := h.svc.TodayStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}
