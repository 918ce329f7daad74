package handlers

import (
	"github.com/gin-gonic/gin"

	"fruitmandi/internal/domain/changereq"
	"fruitmandi/internal/infrastructure/http/v1/dto"
)

// ChangeRequestHandler handles HTTP requests for the sale edit workflow.
type ChangeRequestHandler struct {
	*BaseHandler
	service *changereq.Service
}

// NewChangeRequestHandler creates a new change request handler.
func NewChangeRequestHandler(base *BaseHandler, service *changereq.Service) *ChangeRequestHandler {
	return &ChangeRequestHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Submit handles POST /change-requests
func (h *ChangeRequestHandler) Submit(c *gin.Context) {
	var req dto.SubmitChangeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	draft, err := req.Requested.ToDraft()
	if err != nil {
		h.Error(c, err)
		return
	}

	cr, err := h.service.Submit(c.Request.Context(), req.SaleID, draft, req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromChangeRequest(cr))
}

// Get handles GET /change-requests/:id
func (h *ChangeRequestHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	cr, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromChangeRequest(cr))
}

// ListByStatus handles GET /change-requests
//
// Defaults to the pending review queue when no status is given.
func (h *ChangeRequestHandler) ListByStatus(c *gin.Context) {
	status := changereq.Status(c.DefaultQuery("status", string(changereq.StatusPending)))
	switch status {
	case changereq.StatusPending, changereq.StatusApproved, changereq.StatusRejected:
	default:
		h.Error(c, dto.InvalidQuery("status", string(status)))
		return
	}

	requests, err := h.service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromChangeRequests(requests)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// ListMine handles GET /change-requests/mine
func (h *ChangeRequestHandler) ListMine(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 10)

	requests, err := h.service.ListMine(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := dto.FromChangeRequests(requests)
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// Counts handles GET /change-requests/counts
func (h *ChangeRequestHandler) Counts(c *gin.Context) {
	counts, err := h.service.CountByStatus(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCounts(counts))
}

// Approve handles POST /change-requests/:id/approve
func (h *ChangeRequestHandler) Approve(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	// Body is optional; an empty comment gets a default downstream.
	var req dto.ApproveRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Approve(c.Request.Context(), id, req.Comment); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "change request approved")
}

// Reject handles POST /change-requests/:id/reject
func (h *ChangeRequestHandler) Reject(c *gin.Context) {
	id, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RejectRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Reject(c.Request.Context(), id, req.Reason); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "change request rejected")
}
