package handlers

import (
	"github.com/gin-gonic/gin"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/domain/reports"
	"fruitmandi/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// VendorSummary handles GET /reports/vendor-summary
func (h *ReportsHandler) VendorSummary(c *gin.Context) {
	rows, err := h.service.VendorSummary(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: rows, Count: len(rows)})
}

// DailySummary handles GET /reports/daily-summary
func (h *ReportsHandler) DailySummary(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		h.Error(c, apperror.NewValidation("date is required").WithDetail("param", "date"))
		return
	}
	date, err := dto.ParseDate("date", raw)
	if err != nil {
		h.Error(c, err)
		return
	}

	summary, err := h.service.DailySummary(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDailySummary(summary))
}

// VendorLedger handles GET /reports/vendor-ledger/:vendorId
func (h *ReportsHandler) VendorLedger(c *gin.Context) {
	vendorID, ok := h.ParseIDParam(c, "vendorId")
	if !ok {
		return
	}

	entries, err := h.service.VendorLedger(c.Request.Context(), vendorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromLedger(entries)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// SalesRange handles GET /reports/sales-range
func (h *ReportsHandler) SalesRange(c *gin.Context) {
	from, err := dto.ParseDate("from", c.Query("from"))
	if err != nil {
		h.Error(c, err)
		return
	}
	to, err := dto.ParseDate("to", c.Query("to"))
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.SalesRange(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSalesRange(report))
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/vendor-summary", h.VendorSummary)
	rg.GET("/daily-summary", h.DailySummary)
	rg.GET("/vendor-ledger/:vendorId", h.VendorLedger)
	rg.GET("/sales-range", h.SalesRange)
}
