// Package changereq implements the two-phase edit workflow for historical
// sales: a non-privileged user proposes a change, an admin applies or
// rejects it. The proposal never touches the sale; only approval does.
package changereq

import (
	"time"

	"fruitmandi/internal/domain/trade"
)

// Status is the workflow state of a change request.
// pending is the only mutable state; approved and rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ChangeRequest is a proposed edit to one sale.
//
// CurrentData is the sale's state verbatim at submission time, not re-read
// at review time: the reviewer diffs against what the requester saw, which
// surfaces stale requests. Staleness is not re-validated automatically.
type ChangeRequest struct {
	ID            int64           `db:"id" json:"id"`
	SaleID        int64           `db:"sale_id" json:"saleId"`
	RequestedBy   string          `db:"requested_by" json:"requestedBy"`
	RequesterName string          `db:"requester_name" json:"requesterName"`
	CurrentData   trade.SaleDraft `db:"current_data" json:"currentData"`
	RequestedData trade.SaleDraft `db:"requested_data" json:"requestedData"`
	Status        Status          `db:"status" json:"status"`
	Note          string          `db:"note" json:"note"`
	RequestedAt   time.Time       `db:"requested_at" json:"requestedAt"`
	ReviewedBy    *string         `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time      `db:"reviewed_at" json:"reviewedAt,omitempty"`
	AdminComment  *string         `db:"admin_comment" json:"adminComment,omitempty"`
}

// Counts tallies requests per status.
type Counts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}
