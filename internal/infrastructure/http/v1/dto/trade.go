package dto

import (
	"fruitmandi/internal/core/types"
	"fruitmandi/internal/domain/trade"
)

// CreateSaleRequest for recording a sale.
type CreateSaleRequest struct {
	Date          string      `json:"date" binding:"required"`
	VendorID      int64       `json:"vendorId" binding:"required"`
	Fruit         string      `json:"fruit" binding:"required"`
	Boxes         int64       `json:"boxes" binding:"required"`
	PricePerBox   types.Money `json:"pricePerBox"`
	DepositPerBox types.Money `json:"depositPerBox"`
	Note          string      `json:"note"`
}

// ToInput converts the request to a service input.
func (r CreateSaleRequest) ToInput() (trade.SellInput, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return trade.SellInput{}, err
	}
	return trade.SellInput{
		Date:          date,
		VendorID:      r.VendorID,
		Fruit:         r.Fruit,
		Boxes:         r.Boxes,
		PricePerBox:   r.PricePerBox,
		DepositPerBox: r.DepositPerBox,
		Note:          r.Note,
	}, nil
}

// SaleResponse contains sale fields with derived totals.
type SaleResponse struct {
	ID                  int64       `json:"id"`
	Date                string      `json:"date"`
	VendorID            int64       `json:"vendorId"`
	Fruit               string      `json:"fruit"`
	Boxes               int64       `json:"boxes"`
	PricePerBox         types.Money `json:"pricePerBox"`
	TotalPrice          types.Money `json:"totalPrice"`
	BoxDepositPerBox    types.Money `json:"boxDepositPerBox"`
	BoxDepositCollected types.Money `json:"boxDepositCollected"`
	Note                string      `json:"note,omitempty"`
}

// FromSale creates SaleResponse from trade.Sale.
func FromSale(s *trade.Sale) SaleResponse {
	return SaleResponse{
		ID:                  s.ID,
		Date:                FormatDate(s.Date),
		VendorID:            s.VendorID,
		Fruit:               s.Fruit,
		Boxes:               s.Boxes,
		PricePerBox:         s.PricePerBox,
		TotalPrice:          s.TotalPrice,
		BoxDepositPerBox:    s.BoxDepositPerBox,
		BoxDepositCollected: s.BoxDepositCollected,
		Note:                s.Note,
	}
}

// FromSales maps a sale list.
func FromSales(sales []*trade.Sale) []SaleResponse {
	out := make([]SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, FromSale(s))
	}
	return out
}

// CreateReturnRequest for recording a return.
type CreateReturnRequest struct {
	Date          string      `json:"date" binding:"required"`
	VendorID      int64       `json:"vendorId" binding:"required"`
	Fruit         string      `json:"fruit" binding:"required"`
	BoxesReturned int64       `json:"boxesReturned" binding:"required"`
	DepositPerBox types.Money `json:"depositPerBox"`
	Note          string      `json:"note"`
}

// ToInput converts the request to a service input.
func (r CreateReturnRequest) ToInput() (trade.ReturnInput, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return trade.ReturnInput{}, err
	}
	return trade.ReturnInput{
		Date:          date,
		VendorID:      r.VendorID,
		Fruit:         r.Fruit,
		BoxesReturned: r.BoxesReturned,
		DepositPerBox: r.DepositPerBox,
		Note:          r.Note,
	}, nil
}

// ReturnResponse contains return fields.
type ReturnResponse struct {
	ID                 int64       `json:"id"`
	Date               string      `json:"date"`
	VendorID           int64       `json:"vendorId"`
	Fruit              string      `json:"fruit"`
	BoxesReturned      int64       `json:"boxesReturned"`
	BoxDepositRefunded types.Money `json:"boxDepositRefunded"`
	Note               string      `json:"note,omitempty"`
}

// FromReturn creates ReturnResponse from trade.Return.
func FromReturn(r *trade.Return) ReturnResponse {
	return ReturnResponse{
		ID:                 r.ID,
		Date:               FormatDate(r.Date),
		VendorID:           r.VendorID,
		Fruit:              r.Fruit,
		BoxesReturned:      r.BoxesReturned,
		BoxDepositRefunded: r.BoxDepositRefunded,
		Note:               r.Note,
	}
}

// FromReturns maps a return list.
func FromReturns(returns []*trade.Return) []ReturnResponse {
	out := make([]ReturnResponse, 0, len(returns))
	for _, r := range returns {
		out = append(out, FromReturn(r))
	}
	return out
}

// CreatePaymentRequest for recording a payment.
type CreatePaymentRequest struct {
	Date     string      `json:"date" binding:"required"`
	VendorID int64       `json:"vendorId" binding:"required"`
	Amount   types.Money `json:"amount"`
	Note     string      `json:"note"`
}

// ToInput converts the request to a service input.
func (r CreatePaymentRequest) ToInput() (trade.PaymentInput, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return trade.PaymentInput{}, err
	}
	return trade.PaymentInput{
		Date:     date,
		VendorID: r.VendorID,
		Amount:   r.Amount,
		Note:     r.Note,
	}, nil
}

// PaymentResponse contains payment fields.
type PaymentResponse struct {
	ID       int64       `json:"id"`
	Date     string      `json:"date"`
	VendorID int64       `json:"vendorId"`
	Amount   types.Money `json:"amount"`
	Note     string      `json:"note,omitempty"`
}

// FromPayment creates PaymentResponse from trade.Payment.
func FromPayment(p *trade.Payment) PaymentResponse {
	return PaymentResponse{
		ID:       p.ID,
		Date:     FormatDate(p.Date),
		VendorID: p.VendorID,
		Amount:   p.Amount,
		Note:     p.Note,
	}
}

// FromPayments maps a payment list.
func FromPayments(payments []*trade.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, FromPayment(p))
	}
	return out
}

// SaleDraftRequest carries the editable sale fields for direct edits and
// change-request proposals. Totals are never accepted from the wire.
type SaleDraftRequest struct {
	Date             string      `json:"date" binding:"required"`
	Fruit            string      `json:"fruit" binding:"required"`
	Boxes            int64       `json:"boxes" binding:"required"`
	PricePerBox      types.Money `json:"pricePerBox"`
	BoxDepositPerBox types.Money `json:"boxDepositPerBox"`
	Note             string      `json:"note"`
}

// ToDraft converts the request to a domain draft.
func (r SaleDraftRequest) ToDraft() (trade.SaleDraft, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return trade.SaleDraft{}, err
	}
	return trade.SaleDraft{
		Date:             date,
		Fruit:            r.Fruit,
		Boxes:            r.Boxes,
		PricePerBox:      r.PricePerBox,
		BoxDepositPerBox: r.BoxDepositPerBox,
		Note:             r.Note,
	}, nil
}

// SaleDraftResponse renders a draft snapshot.
type SaleDraftResponse struct {
	Date             string      `json:"date"`
	Fruit            string      `json:"fruit"`
	Boxes            int64       `json:"boxes"`
	PricePerBox      types.Money `json:"pricePerBox"`
	BoxDepositPerBox types.Money `json:"boxDepositPerBox"`
	Note             string      `json:"note,omitempty"`
}

// FromDraft creates SaleDraftResponse from trade.SaleDraft.
func FromDraft(d trade.SaleDraft) SaleDraftResponse {
	return SaleDraftResponse{
		Date:             FormatDate(d.Date),
		Fruit:            d.Fruit,
		Boxes:            d.Boxes,
		PricePerBox:      d.PricePerBox,
		BoxDepositPerBox: d.BoxDepositPerBox,
		Note:             d.Note,
	}
}
