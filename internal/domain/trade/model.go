// Package trade provides the money-moving operations: sales with FIFO
// depletion, returns that re-enter inventory, and cash payments.
package trade

import (
	"context"
	"time"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/core/types"
	"fruitmandi/internal/domain/stock"
)

// Sale is a delivery of boxes to a vendor.
// total_price and box_deposit_collected are derived and recomputed on every
// mutation; stored values are never trusted as inputs.
type Sale struct {
	ID                  int64       `db:"id" json:"id"`
	Date                time.Time   `db:"dt" json:"date"`
	VendorID            int64       `db:"vendor_id" json:"vendorId"`
	Fruit               string      `db:"fruit" json:"fruit"`
	Boxes               int64       `db:"boxes" json:"boxes"`
	PricePerBox         types.Money `db:"price_per_box" json:"pricePerBox"`
	TotalPrice          types.Money `db:"total_price" json:"totalPrice"`
	BoxDepositPerBox    types.Money `db:"box_deposit_per_box" json:"boxDepositPerBox"`
	BoxDepositCollected types.Money `db:"box_deposit_collected" json:"boxDepositCollected"`
	Note                string      `db:"note" json:"note"`
}

// Return is a vendor giving boxes back; the deposit is refunded and the
// boxes re-enter inventory as a new lot.
type Return struct {
	ID                 int64       `db:"id" json:"id"`
	Date               time.Time   `db:"dt" json:"date"`
	VendorID           int64       `db:"vendor_id" json:"vendorId"`
	Fruit              string      `db:"fruit" json:"fruit"`
	BoxesReturned      int64       `db:"boxes_returned" json:"boxesReturned"`
	BoxDepositRefunded types.Money `db:"box_deposit_refunded" json:"boxDepositRefunded"`
	Note               string      `db:"note" json:"note"`
}

// Payment is cash received against a vendor's dues.
type Payment struct {
	ID       int64       `db:"id" json:"id"`
	Date     time.Time   `db:"dt" json:"date"`
	VendorID int64       `db:"vendor_id" json:"vendorId"`
	Amount   types.Money `db:"amount" json:"amount"`
	Note     string      `db:"note" json:"note"`
}

// SaleDraft carries the editable fields of a sale. It is the shape stored in
// change-request snapshots and accepted by direct edits; derived totals are
// deliberately absent and always recomputed.
type SaleDraft struct {
	Date             time.Time   `json:"dt"`
	Fruit            string      `json:"fruit"`
	Boxes            int64       `json:"boxes"`
	PricePerBox      types.Money `json:"price_per_box"`
	BoxDepositPerBox types.Money `json:"box_deposit_per_box"`
	Note             string      `json:"note"`
}

// Validate checks a draft's field-level rules.
func (d SaleDraft) Validate(ctx context.Context) error {
	if stock.NormalizeFruit(d.Fruit) == "" {
		return apperror.NewValidation("fruit is required").WithDetail("field", "fruit")
	}
	if d.Boxes <= 0 {
		return apperror.NewValidation("boxes must be positive").
			WithDetail("field", "boxes").
			WithDetail("value", d.Boxes)
	}
	if d.PricePerBox.IsNegative() {
		return apperror.NewValidation("price per box must not be negative").
			WithDetail("field", "pricePerBox")
	}
	if d.BoxDepositPerBox.IsNegative() {
		return apperror.NewValidation("deposit per box must not be negative").
			WithDetail("field", "boxDepositPerBox")
	}
	return nil
}

// DraftOf captures a sale's editable fields as a draft snapshot.
func DraftOf(s *Sale) SaleDraft {
	return SaleDraft{
		Date:             s.Date,
		Fruit:            s.Fruit,
		Boxes:            s.Boxes,
		PricePerBox:      s.PricePerBox,
		BoxDepositPerBox: s.BoxDepositPerBox,
		Note:             s.Note,
	}
}

// Apply overwrites the sale's editable fields from a draft and recomputes
// the derived totals from boxes, price and deposit.
func (s *Sale) Apply(d SaleDraft) {
	s.Date = d.Date
	s.Fruit = stock.NormalizeFruit(d.Fruit)
	s.Boxes = d.Boxes
	s.PricePerBox = d.PricePerBox
	s.BoxDepositPerBox = d.BoxDepositPerBox
	s.Note = d.Note
	s.TotalPrice = types.MulBoxes(d.PricePerBox, d.Boxes)
	s.BoxDepositCollected = types.MulBoxes(d.BoxDepositPerBox, d.Boxes)
}
