package trade

import (
	"context"
	"time"
)

// SaleFilter narrows sale queries.
// On filters to an exact date; From/To are an inclusive range.
type SaleFilter struct {
	VendorID *int64
	On       *time.Time
	From     *time.Time
	To       *time.Time
}

// DateFilter narrows return and payment queries.
type DateFilter struct {
	VendorID *int64
	On       *time.Time
}

// Repository defines persistence operations for sales, returns and payments.
type Repository interface {
	// Sales

	// CreateSale inserts a sale and assigns its ID.
	CreateSale(ctx context.Context, s *Sale) error

	// GetSaleByID retrieves a sale. Returns apperror.NewNotFound when absent.
	GetSaleByID(ctx context.Context, id int64) (*Sale, error)

	// GetSaleByIDForUpdate retrieves a sale with a row lock.
	// Used by the approval path so concurrent reviews serialize.
	GetSaleByIDForUpdate(ctx context.Context, id int64) (*Sale, error)

	// UpdateSale overwrites a sale's editable and derived fields.
	UpdateSale(ctx context.Context, s *Sale) error

	// ListSales returns sales matching the filter, ordered by (dt, id).
	ListSales(ctx context.Context, f SaleFilter) ([]*Sale, error)

	// Returns

	CreateReturn(ctx context.Context, r *Return) error
	ListReturns(ctx context.Context, f DateFilter) ([]*Return, error)

	// Payments

	CreatePayment(ctx context.Context, p *Payment) error
	ListPayments(ctx context.Context, f DateFilter) ([]*Payment, error)
}
