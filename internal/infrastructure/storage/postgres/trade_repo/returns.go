package trade_repo

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/domain/trade"
)

var returnCols = []string{
	"id", "dt", "vendor_id", "fruit", "boxes_returned", "box_deposit_refunded", "note",
}

// CreateReturn inserts a return and assigns its ID.
func (r *TradeRepo) CreateReturn(ctx context.Context, ret *trade.Return) error {
	q := r.builder.Insert(returnsTable).
		Columns("dt", "vendor_id", "fruit", "boxes_returned", "box_deposit_refunded", "note").
		Values(ret.Date, ret.VendorID, ret.Fruit, ret.BoxesReturned, ret.BoxDepositRefunded, ret.Note).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return apperror.NewStorage("build insert", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&ret.ID); err != nil {
		return apperror.NewStorage("insert return", err)
	}
	return nil
}

// ListReturns returns returns matching the filter in creation order per date.
func (r *TradeRepo) ListReturns(ctx context.Context, f trade.DateFilter) ([]*trade.Return, error) {
	q := r.builder.Select(returnCols...).
		From(returnsTable).
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

	var returns []*trade.Return
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &returns, sql, args...); err != nil {
		return nil, apperror.NewStorage("select returns", err)
	}
	return returns, nil
}
