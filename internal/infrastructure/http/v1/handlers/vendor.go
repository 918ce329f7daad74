package handlers

import (
	"github.com/gin-gonic/gin"

	"fruitmandi/internal/domain/vendor"
	"fruitmandi/internal/infrastructure/http/v1/dto"
)

// VendorHandler handles HTTP requests for the vendor registry.
type VendorHandler struct {
	*BaseHandler
	service *vendor.Service
}

// NewVendorHandler creates a new vendor handler.
func NewVendorHandler(base *BaseHandler, service *vendor.Service) *VendorHandler {
	return &VendorHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /vendors
func (h *VendorHandler) Create(c *gin.Context) {
	var req dto.CreateVendorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	v, err := h.service.Register(c.Request.Context(), req.Name, req.Contact)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, v.ID)
}

// Get handles GET /vendors/:id
func (h *VendorHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	v, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromVendor(v))
}

// List handles GET /vendors
func (h *VendorHandler) List(c *gin.Context) {
	vendors, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromVendors(vendors)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// RegisterRoutes registers vendor routes.
func (h *VendorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}
