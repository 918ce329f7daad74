package trade_repo

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/domain/trade"
)

var paymentCols = []string{"id", "dt", "vendor_id", "amount", "note"}

// CreatePayment inserts a payment and assigns its ID.
func (r *TradeRepo) CreatePayment(ctx context.Context, p *trade.Payment) error {
	q := r.builder.Insert(paymentsTable).
		Columns("dt", "vendor_id", "amount", "note").
		Values(p.Date, p.VendorID, p.Amount, p.Note).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return apperror.NewStorage("build insert", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&p.ID); err != nil {
		return apperror.NewStorage("insert payment", err)
	}
	return nil
}

// ListPayments returns payments matching the filter in creation order per date.
func (r *TradeRepo) ListPayments(ctx context.Context, f trade.DateFilter) ([]*trade.Payment, error) {
	q := r.builder.Select(paymentCols...).
		From(paymentsTable).
		OrderBy("dt ASC", "id ASC")
	if f.VendorID != nil {
		q = q.Where(squirrel.Eq{"vendor_id": *f.VendorID})
	}
	if f.On != nil {
		q = q.Where(squirrel.Eq{"dt": *f.On})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, apperror.NewStorage("build select", err)
	}

	var payments []*trade.Payment
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &payments, sql, args...); err != nil {
		return nil, apperror.NewStorage("select payments", err)
	}
	return payments, nil
}
