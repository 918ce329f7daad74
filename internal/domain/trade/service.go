package trade

import (
	"context"
	"fmt"
	"time"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/core/appctx"
	"fruitmandi/internal/core/tx"
	"fruitmandi/internal/core/types"
	"fruitmandi/internal/domain/audit"
	"fruitmandi/internal/domain/stock"
	"fruitmandi/internal/domain/vendor"
	"fruitmandi/pkg/logger"
)

// Service composes the stock engine and the ledger store into the three
// transaction operations: sell, return, payment. Every multi-write
// operation runs as a single transaction.
type Service struct {
	vendors   vendor.Repository
	repo      Repository
	engine    *stock.Engine
	txManager tx.Manager
	recorder  audit.Recorder
}

// NewService creates a new trade service.
func NewService(
	vendors vendor.Repository,
	repo Repository,
	engine *stock.Engine,
	txManager tx.Manager,
	recorder audit.Recorder,
) *Service {
	return &Service{
		vendors:   vendors,
		repo:      repo,
		engine:    engine,
		txManager: txManager,
		recorder:  recorder,
	}
}

// SellInput carries the fields of a new sale.
type SellInput struct {
	Date          time.Time
	VendorID      int64
	Fruit         string
	Boxes         int64
	PricePerBox   types.Money
	DepositPerBox types.Money
	Note          string
}

// Sell atomically depletes stock FIFO and records the sale.
//
// The availability glance before the transaction is a courtesy fast-fail;
// under concurrent sellers it can be stale, so the depletion step inside the
// transaction re-validates on locked rows and is the only check that counts.
func (s *Service) Sell(ctx context.Context, in SellInput) (*Sale, error) {
	draft := SaleDraft{
		Date:             in.Date,
		Fruit:            in.Fruit,
		Boxes:            in.Boxes,
		PricePerBox:      in.PricePerBox,
		BoxDepositPerBox: in.DepositPerBox,
		Note:             in.Note,
	}
	if err := draft.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.requireVendor(ctx, in.VendorID); err != nil {
		return nil, err
	}

	fruit := stock.NormalizeFruit(in.Fruit)
	totals, err := s.engine.CurrentStock(ctx)
	if err != nil {
		return nil, err
	}
	if totals[fruit] < in.Boxes {
		return nil, apperror.NewInsufficientStock(fruit, in.Boxes, totals[fruit])
	}

	sale := &Sale{VendorID: in.VendorID}
	sale.Apply(draft)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.engine.ReduceFIFO(ctx, fruit, in.Boxes); err != nil {
			return err
		}
		if err := s.repo.CreateSale(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale recorded",
		"sale_id", sale.ID,
		"vendor_id", sale.VendorID,
		"fruit", sale.Fruit,
		"boxes", sale.Boxes,
		"total_price", sale.TotalPrice,
	)
	return sale, nil
}

// ReturnInput carries the fields of a new return.
type ReturnInput struct {
	Date          time.Time
	VendorID      int64
	Fruit         string
	BoxesReturned int64
	DepositPerBox types.Money
	Note          string
}

// RecordReturn persists the return and re-enters the boxes as a new lot
// valued at the fruit's weighted average cost computed before the new lot
// exists. Returns always succeed quantity-wise.
func (s *Service) RecordReturn(ctx context.Context, in ReturnInput) (*Return, error) {
	if in.BoxesReturned <= 0 {
		return nil, apperror.NewValidation("boxes returned must be positive").
			WithDetail("field", "boxesReturned").
			WithDetail("value", in.BoxesReturned)
	}
	if in.DepositPerBox.IsNegative() {
		return nil, apperror.NewValidation("deposit per box must not be negative").
			WithDetail("field", "depositPerBox")
	}
	fruit := stock.NormalizeFruit(in.Fruit)
	if fruit == "" {
		return nil, apperror.NewValidation("fruit is required").WithDetail("field", "fruit")
	}
	if err := s.requireVendor(ctx, in.VendorID); err != nil {
		return nil, err
	}

	ret := &Return{
		Date:               in.Date,
		VendorID:           in.VendorID,
		Fruit:              fruit,
		BoxesReturned:      in.BoxesReturned,
		BoxDepositRefunded: types.MulBoxes(in.DepositPerBox, in.BoxesReturned),
		Note:               in.Note,
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Pre-return historical average: valued before the returned
		// boxes become a lot of their own.
		avgCost, err := s.engine.WeightedAvgCost(ctx, fruit, nil)
		if err != nil {
			return err
		}
		if err := s.repo.CreateReturn(ctx, ret); err != nil {
			return fmt.Errorf("create return: %w", err)
		}
		if _, err := s.engine.AddLot(ctx, fruit, in.BoxesReturned, avgCost, in.Date); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "return recorded",
		"return_id", ret.ID,
		"vendor_id", ret.VendorID,
		"fruit", ret.Fruit,
		"boxes", ret.BoxesReturned,
	)
	return ret, nil
}

// PaymentInput carries the fields of a new payment.
type PaymentInput struct {
	Date     time.Time
	VendorID int64
	Amount   types.Money
	Note     string
}

// RecordPayment records cash received against a vendor's dues.
// Payments never touch the stock engine.
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput) (*Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}
	if err := s.requireVendor(ctx, in.VendorID); err != nil {
		return nil, err
	}

	p := &Payment{
		Date:     in.Date,
		VendorID: in.VendorID,
		Amount:   in.Amount,
		Note:     in.Note,
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	logger.Info(ctx, "payment recorded",
		"payment_id", p.ID,
		"vendor_id", p.VendorID,
		"amount", p.Amount,
	)
	return p, nil
}

// GetSale retrieves a sale by ID.
func (s *Service) GetSale(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.GetSaleByID(ctx, id)
}

// ListSales returns sales matching the filter.
func (s *Service) ListSales(ctx context.Context, f SaleFilter) ([]*Sale, error) {
	return s.repo.ListSales(ctx, f)
}

// ListPayments returns payments matching the filter.
func (s *Service) ListPayments(ctx context.Context, f DateFilter) ([]*Payment, error) {
	return s.repo.ListPayments(ctx, f)
}

// ListReturns returns returns matching the filter.
func (s *Service) ListReturns(ctx context.Context, f DateFilter) ([]*Return, error) {
	return s.repo.ListReturns(ctx, f)
}

// DirectEditSale overwrites a sale immediately, recomputing derived totals.
//
// Admin-only escape hatch around the change-request workflow: it skips the
// propose/review trail and, like approval, does not reconcile stock when
// boxes or fruit change. An audit entry is still written. Prefer the
// change-request path for anything that needs a review record.
func (s *Service) DirectEditSale(ctx context.Context, saleID int64, draft SaleDraft) (*Sale, error) {
	user := appctx.GetUser(ctx)
	if user == nil || !user.Admin {
		return nil, apperror.NewForbidden("direct sale edits require the admin role")
	}
	if err := draft.Validate(ctx); err != nil {
		return nil, err
	}

	var sale *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sale, err = s.repo.GetSaleByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		before := DraftOf(sale)
		sale.Apply(draft)

		if err := s.repo.UpdateSale(ctx, sale); err != nil {
			return fmt.Errorf("update sale: %w", err)
		}

		changes, err := audit.Diff(before, draft)
		if err != nil {
			return fmt.Errorf("encode audit diff: %w", err)
		}
		return s.recorder.Record(ctx, &audit.Entry{
			Entity:   "sale",
			EntityID: saleID,
			Action:   audit.ActionDirectEdit,
			Actor:    user.UserID,
			Changes:  changes,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Warn(ctx, "sale edited directly, bypassing change-request review",
		"sale_id", saleID,
		"actor", user.UserID,
	)
	return sale, nil
}

func (s *Service) requireVendor(ctx context.Context, vendorID int64) error {
	ok, err := s.vendors.Exists(ctx, vendorID)
	if err != nil {
		return fmt.Errorf("check vendor: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("vendor", vendorID)
	}
	return nil
}
