package stock

import (
	"context"
	"fmt"
	"time"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/core/types"
	"fruitmandi/pkg/logger"
)

// Engine maintains per-fruit inventory as an ordered set of lots and supports
// FIFO-ordered depletion and weighted-average-cost valuation.
//
// Write operations must run within a transaction managed by the caller
// (the trade service); the engine itself holds no transactional state.
type Engine struct {
	repo Repository
}

// NewEngine creates a new stock engine.
func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// CurrentStock returns total remaining boxes per fruit.
// Fruits with a zero total are excluded. No side effects.
func (e *Engine) CurrentStock(ctx context.Context) (map[string]int64, error) {
	totals, err := e.repo.TotalsByFruit(ctx)
	if err != nil {
		return nil, fmt.Errorf("stock totals: %w", err)
	}
	return totals, nil
}

// AddLot records an intake of boxes as a brand-new lot.
// Lots of the same fruit and date are never merged; the seq tie-break
// depends on every intake being its own lot.
func (e *Engine) AddLot(ctx context.Context, fruit string, quantity int64, costPrice types.Money, intakeDate time.Time) (*Lot, error) {
	fruit = NormalizeFruit(fruit)
	if fruit == "" {
		return nil, apperror.NewValidation("fruit is required").WithDetail("field", "fruit")
	}
	if quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("value", quantity)
	}
	if costPrice.IsNegative() {
		return nil, apperror.NewValidation("cost price must not be negative").
			WithDetail("field", "costPrice")
	}

	lot := &Lot{
		Fruit:      fruit,
		Quantity:   quantity,
		CostPrice:  costPrice,
		IntakeDate: intakeDate,
		Remaining:  quantity,
	}
	if err := e.repo.CreateLot(ctx, lot); err != nil {
		return nil, fmt.Errorf("create lot: %w", err)
	}

	logger.Info(ctx, "stock lot added",
		"lot_id", lot.ID,
		"fruit", lot.Fruit,
		"quantity", lot.Quantity,
	)
	return lot, nil
}

// ReduceFIFO depletes n boxes of a fruit, oldest intake date first,
// seq as the tie-break for same-day lots.
//
// Must be called within a transaction: candidate lots are read under row
// locks and availability is re-validated on the locked rows, so a stale
// pre-check by the caller can never overdraw stock. No lot is written
// unless the whole reduction is satisfiable; on failure every lot's
// remaining is untouched.
func (e *Engine) ReduceFIFO(ctx context.Context, fruit string, n int64) error {
	fruit = NormalizeFruit(fruit)
	if n <= 0 {
		return apperror.NewValidation("boxes to reduce must be positive").
			WithDetail("field", "boxes").
			WithDetail("value", n)
	}

	lots, err := e.repo.ListOpenLotsForUpdate(ctx, fruit)
	if err != nil {
		return fmt.Errorf("lock lots: %w", err)
	}

	var available int64
	for _, lot := range lots {
		available += lot.Remaining
	}
	if available < n {
		return apperror.NewInsufficientStock(fruit, n, available)
	}

	left := n
	for _, lot := range lots {
		if left == 0 {
			break
		}
		take := lot.Remaining
		if take > left {
			take = left
		}
		if err := e.repo.UpdateRemaining(ctx, lot.ID, lot.Remaining-take); err != nil {
			// The surrounding transaction rolls back; no partial depletion
			// ever becomes visible.
			return fmt.Errorf("deplete lot %d: %w", lot.ID, err)
		}
		left -= take
	}

	logger.Debug(ctx, "stock depleted", "fruit", fruit, "boxes", n)
	return nil
}

// WeightedAvgCost returns Σ(quantity × cost_price) / Σ(quantity) over all
// lots of the fruit with intake_date <= asOf (all lots when asOf is nil),
// or zero when the fruit has no lots.
//
// The average is intentionally weighted by total historical intake, not by
// remaining boxes: valuation stays stable regardless of how far FIFO
// depletion has progressed. Do not "fix" this to remaining-weighted.
func (e *Engine) WeightedAvgCost(ctx context.Context, fruit string, asOf *time.Time) (types.Money, error) {
	fruit = NormalizeFruit(fruit)

	lots, err := e.repo.ListLots(ctx, fruit, asOf)
	if err != nil {
		return types.Zero(), fmt.Errorf("list lots: %w", err)
	}
	if len(lots) == 0 {
		return types.Zero(), nil
	}

	totalCost := types.Zero()
	var totalQty int64
	for _, lot := range lots {
		totalCost = totalCost.Add(lot.CostPrice.Mul(types.NewMoneyFromInt(lot.Quantity)))
		totalQty += lot.Quantity
	}
	if totalQty == 0 {
		return types.Zero(), nil
	}

	return totalCost.Div(types.NewMoneyFromInt(totalQty)), nil
}
