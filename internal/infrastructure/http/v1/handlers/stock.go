package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/domain/stock"
	"fruitmandi/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for inventory.
type StockHandler struct {
	*BaseHandler
	engine *stock.Engine
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, engine *stock.Engine) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		engine:      engine,
	}
}

// Intake handles POST /stock/lots
func (h *StockHandler) Intake(c *gin.Context) {
	var req dto.IntakeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	date, err := dto.ParseDate("date", req.Date)
	if err != nil {
		h.Error(c, err)
		return
	}

	lot, err := h.engine.AddLot(c.Request.Context(), req.Fruit, req.Quantity, req.CostPrice, date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromLot(lot))
}

// CurrentStock handles GET /stock
func (h *StockHandler) CurrentStock(c *gin.Context) {
	totals, err := h.engine.CurrentStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	rows := dto.FromStockTotals(totals)
	h.OK(c, dto.ListResponse{Items: rows, Count: len(rows)})
}

// AvgCost handles GET /stock/avg-cost
func (h *StockHandler) AvgCost(c *gin.Context) {
	fruit := c.Query("fruit")
	if fruit == "" {
		h.Error(c, apperror.NewValidation("fruit is required").WithDetail("param", "fruit"))
		return
	}

	var asOf *time.Time
	if raw := c.Query("asOf"); raw != "" {
		t, err := dto.ParseDate("asOf", raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		asOf = &t
	}

	cost, err := h.engine.WeightedAvgCost(c.Request.Context(), fruit, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.AvgCostResponse{
		Fruit:   stock.NormalizeFruit(fruit),
		AvgCost: cost.Round(2),
	})
}

// RegisterRoutes registers stock routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/lots", h.Intake)
	rg.GET("", h.CurrentStock)
	rg.GET("/avg-cost", h.AvgCost)
}
