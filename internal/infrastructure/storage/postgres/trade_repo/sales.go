// Package trade_repo provides the PostgreSQL implementation of the trade
// repository (sales, returns, payments).
package trade_repo

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/domain/trade"
	"fruitmandi/internal/infrastructure/storage/postgres"
)

const (
	salesTable    = "sales"
	returnsTable  = "returns"
	paymentsTable = "payments"
)

var saleCols = []string{
	"id", "dt", "vendor_id", "fruit", "boxes",
	"price_per_box", "total_price",
	"box_deposit_per_box", "box_deposit_collected", "note",
}

// Compile-time check that TradeRepo implements trade.Repository.
var _ trade.Repository = (*TradeRepo)(nil)

// TradeRepo implements trade.Repository.
type TradeRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewTradeRepo creates a new trade repository.
func NewTradeRepo(txm *postgres.TxManager) *TradeRepo {
	return &TradeRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateSale inserts a sale and assigns its ID.
func (r *TradeRepo) CreateSale(ctx context.Context, s *trade.Sale) error {
	q := r.builder.Insert(salesTable).
		Columns("dt", "vendor_id", "fruit", "boxes",
			"price_per_box", "total_price",
			"box_deposit_per_box", "box_deposit_collected", "note").
		Values(s.Date, s.VendorID, s.Fruit, s.Boxes,
			s.PricePerBox, s.TotalPrice,
			s.BoxDepositPerBox, s.BoxDepositCollected, s.Note).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return apperror.NewStorage("build insert", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&s.ID); err != nil {
		return apperror.NewStorage("insert sale", err)
	}
	return nil
}

func (r *TradeRepo) getSale(ctx context.Context, id int64, forUpdate bool) (*trade.Sale, error) {
	q := r.builder.Select(saleCols...).
		From(salesTable).
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, apperror.NewStorage("build select", err)
	}

	var s trade.Sale
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("sale", id)
		}
		return nil, apperror.NewStorage("select sale", err)
	}
	return &s, nil
}

// GetSaleByID retrieves a sale by ID.
func (r *TradeRepo) GetSaleByID(ctx context.Context, id int64) (*trade.Sale, error) {
	return r.getSale(ctx, id, false)
}

// GetSaleByIDForUpdate retrieves a sale with a row lock.
func (r *TradeRepo) GetSaleByIDForUpdate(ctx context.Context, id int64) (*trade.Sale, error) {
	return r.getSale(ctx, id, true)
}

// UpdateSale overwrites a sale's editable and derived fields.
func (r *TradeRepo) UpdateSale(ctx context.Context, s *trade.Sale) error {
	q := r.builder.Update(salesTable).
		Set("dt", s.Date).
		Set("fruit", s.Fruit).
		Set("boxes", s.Boxes).
		Set("price_per_box", s.PricePerBox).
		Set("total_price", s.TotalPrice).
		Set("box_deposit_per_box", s.BoxDepositPerBox).
		Set("box_deposit_collected", s.BoxDepositCollected).
		Set("note", s.Note).
		Where(squirrel.Eq{"id": s.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return apperror.NewStorage("build update", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewStorage("update sale", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", s.ID)
	}
	return nil
}

// ListSales returns sales matching the filter in creation order per date.
func (r *TradeRepo) ListSales(ctx context.Context, f trade.SaleFilter) ([]*trade.Sale, error) {
	q := r.builder.Select(saleCols...).
		From(salesTable).
		OrderBy("dt ASC", "id ASC")
	if f.VendorID != nil {
		q = q.Where(squirrel.Eq{"vendor_id": *f.VendorID})
	}
	if f.On != nil {
		q = q.Where(squirrel.Eq{"dt": *f.On})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"dt": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"dt": *f.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, apperror.NewStorage("build select", err)
	}

	var sales []*trade.Sale
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &sales, sql, args...); err != nil {
		return nil, apperror.NewStorage("select sales", err)
	}
	return sales, nil
}
