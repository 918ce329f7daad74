package dto

import (
	"time"

	"fruitmandi/internal/domain/changereq"
)

// SubmitChangeRequest proposes an edit to a sale.
type SubmitChangeRequest struct {
	SaleID    int64            `json:"saleId" binding:"required"`
	Requested SaleDraftRequest `json:"requested" binding:"required"`
	Note      string           `json:"note"`
}

// ApproveRequest carries the optional reviewer comment.
type ApproveRequest struct {
	Comment string `json:"comment"`
}

// RejectRequest carries the mandatory rejection reason.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ChangeRequestResponse contains change request fields with both snapshots.
type ChangeRequestResponse struct {
	ID            int64             `json:"id"`
	SaleID        int64             `json:"saleId"`
	RequestedBy   string            `json:"requestedBy"`
	RequesterName string            `json:"requesterName"`
	CurrentData   SaleDraftResponse `json:"currentData"`
	RequestedData SaleDraftResponse `json:"requestedData"`
	Status        string            `json:"status"`
	Note          string            `json:"note,omitempty"`
	RequestedAt   time.Time         `json:"requestedAt"`
	ReviewedBy    *string           `json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time        `json:"reviewedAt,omitempty"`
	AdminComment  *string           `json:"adminComment,omitempty"`
}

// FromChangeRequest creates ChangeRequestResponse from changereq.ChangeRequest.
func FromChangeRequest(cr *changereq.ChangeRequest) ChangeRequestResponse {
	return ChangeRequestResponse{
		ID:            cr.ID,
		SaleID:        cr.SaleID,
		RequestedBy:   cr.RequestedBy,
		RequesterName: cr.RequesterName,
		CurrentData:   FromDraft(cr.CurrentData),
		RequestedData: FromDraft(cr.RequestedData),
		Status:        string(cr.Status),
		Note:          cr.Note,
		RequestedAt:   cr.RequestedAt,
		ReviewedBy:    cr.ReviewedBy,
		ReviewedAt:    cr.ReviewedAt,
		AdminComment:  cr.AdminComment,
	}
}

// FromChangeRequests maps a change request list.
func FromChangeRequests(requests []*changereq.ChangeRequest) []ChangeRequestResponse {
	out := make([]ChangeRequestResponse, 0, len(requests))
	for _, cr := range requests {
		out = append(out, FromChangeRequest(cr))
	}
	return out
}

// CountsResponse tallies requests per status.
type CountsResponse struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// FromCounts creates CountsResponse from changereq.Counts.
func FromCounts(c changereq.Counts) CountsResponse {
	return CountsResponse{
		Pending:  c.Pending,
		Approved: c.Approved,
		Rejected: c.Rejected,
	}
}
