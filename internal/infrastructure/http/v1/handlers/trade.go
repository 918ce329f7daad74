package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fruitmandi/internal/domain/trade"
	"fruitmandi/internal/infrastructure/http/v1/dto"
)

// TradeHandler handles HTTP requests for sales, returns and payments.
type TradeHandler struct {
	*BaseHandler
	service *trade.Service
}

// NewTradeHandler creates a new trade handler.
func NewTradeHandler(base *BaseHandler, service *trade.Service) *TradeHandler {
	return &TradeHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreateSale handles POST /sales
func (h *TradeHandler) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.Sell(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSale(sale))
}

// GetSale handles GET /sales/:id
func (h *TradeHandler) GetSale(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.GetSale(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSale(sale))
}

// ListSales handles GET /sales
func (h *TradeHandler) ListSales(c *gin.Context) {
	var filter trade.SaleFilter

	if vid, ok := h.vendorIDQuery(c); ok {
		filter.VendorID = vid
	} else if c.IsAborted() {
		return
	}
	for _, q := range []struct {
		key  string
		dest **time.Time
	}{
		{"on", &filter.On},
		{"from", &filter.From},
		{"to", &filter.To},
	} {
		if raw := c.Query(q.key); raw != "" {
			t, err := dto.ParseDate(q.key, raw)
			if err != nil {
				h.Error(c, err)
				return
			}
			*q.dest = &t
		}
	}

	sales, err := h.service.ListSales(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromSales(sales)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// EditSale handles PUT /sales/:id
//
// Immediate admin edit; routine corrections go through change requests.
func (h *TradeHandler) EditSale(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SaleDraftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	draft, err := req.ToDraft()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.DirectEditSale(c.Request.Context(), id, draft)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSale(sale))
}

// CreateReturn handles POST /returns
func (h *TradeHandler) CreateReturn(c *gin.Context) {
	var req dto.CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	ret, err := h.service.RecordReturn(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReturn(ret))
}

// ListReturns handles GET /returns
func (h *TradeHandler) ListReturns(c *gin.Context) {
	filter, ok := h.dateFilter(c)
	if !ok {
		return
	}

	returns, err := h.service.ListReturns(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromReturns(returns)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// CreatePayment handles POST /payments
func (h *TradeHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.RecordPayment(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromPayment(p))
}

// ListPayments handles GET /payments
func (h *TradeHandler) ListPayments(c *gin.Context) {
	filter, ok := h.dateFilter(c)
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromPayments(payments)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

func (h *TradeHandler) dateFilter(c *gin.Context) (trade.DateFilter, bool) {
	var filter trade.DateFilter

	if vid, ok := h.vendorIDQuery(c); ok {
		filter.VendorID = vid
	} else if c.IsAborted() {
		return filter, false
	}
	if raw := c.Query("on"); raw != "" {
		t, err := dto.ParseDate("on", raw)
		if err != nil {
			h.Error(c, err)
			return filter, false
		}
		filter.On = &t
	}
	return filter, true
}

// vendorIDQuery parses the optional vendorId query parameter.
// The second return is false both when absent and when invalid; the invalid
// case additionally aborts the request.
func (h *TradeHandler) vendorIDQuery(c *gin.Context) (*int64, bool) {
	raw := c.Query("vendorId")
	if raw == "" {
		return nil, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.Error(c, dto.InvalidQuery("vendorId", raw))
		return nil, false
	}
	return &id, true
}
