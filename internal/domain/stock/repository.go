package stock

import (
	"context"
	"time"
)

// Repository defines persistence operations for stock lots.
type Repository interface {
	// CreateLot inserts a new lot and assigns its ID and Seq.
	// Lots are never merged: same-day re-intake of a fruit produces
	// distinct lots.
	CreateLot(ctx context.Context, lot *Lot) error

	// ListOpenLotsForUpdate returns lots with remaining > 0 for a fruit,
	// ordered by (intake_date ASC, seq ASC), with row locks held for the
	// duration of the surrounding transaction. Must be called inside a
	// transaction; two concurrent depleters serialize on these locks.
	ListOpenLotsForUpdate(ctx context.Context, fruit string) ([]*Lot, error)

	// UpdateRemaining sets a lot's remaining count.
	UpdateRemaining(ctx context.Context, lotID int64, remaining int64) error

	// ListLots returns all lots of a fruit (exhausted included) with
	// intake_date <= asOf when asOf is non-nil. Used for valuation.
	ListLots(ctx context.Context, fruit string, asOf *time.Time) ([]*Lot, error)

	// TotalsByFruit sums remaining per fruit, excluding zero totals.
	TotalsByFruit(ctx context.Context) (map[string]int64, error)
}
