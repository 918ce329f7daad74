// Package stock_repo provides the PostgreSQL implementation of the stock
// lot repository.
package stock_repo

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/domain/stock"
	"fruitmandi/internal/infrastructure/storage/postgres"
)

const lotsTable = "stock_lots"

var lotCols = []string{"id", "seq", "fruit", "quantity", "cost_price", "intake_date", "remaining"}

// Compile-time check that LotRepo implements stock.Repository.
var _ stock.Repository = (*LotRepo)(nil)

// LotRepo implements stock.Repository.
// Seq is assigned from a dedicated sequence, so FIFO tie-break order does
// not depend on how the primary key happens to be generated.
type LotRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewLotRepo creates a new stock lot repository.
func NewLotRepo(txm *postgres.TxManager) *LotRepo {
	return &LotRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateLot inserts a new lot, assigning its ID and Seq.
func (r *LotRepo) CreateLot(ctx context.Context, lot *stock.Lot) error {
	q := r.builder.Insert(lotsTable).
		Columns("fruit", "quantity", "cost_price", "intake_date", "remaining").
		Values(lot.Fruit, lot.Quantity, lot.CostPrice, lot.IntakeDate, lot.Remaining).
		Suffix("RETURNING id, seq")

	sql, args, err := q.ToSql()
	if err != nil {
		return apperror.NewStorage("build insert", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&lot.ID, &lot.Seq); err != nil {
		return apperror.NewStorage("insert lot", err)
	}
	return nil
}

// ListOpenLotsForUpdate returns depletable lots in FIFO order with row
// locks. Two concurrent sellers of the same fruit serialize here.
func (r *LotRepo) ListOpenLotsForUpdate(ctx context.Context, fruit string) ([]*stock.Lot, error) {
	q := r.builder.Select(lotCols...).
		From(lotsTable).
		Where(squirrel.Eq{"fruit": fruit}).
		Where(squirrel.Gt{"remaining": 0}).
		OrderBy("intake_date ASC", "seq ASC").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, apperror.NewStorage("build select", err)
	}

	var lots []*stock.Lot
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lots, sql, args...); err != nil {
		return nil, apperror.NewStorage("lock lots", err)
	}
	return lots, nil
}

// UpdateRemaining sets a lot's remaining count.
func (r *LotRepo) UpdateRemaining(ctx context.Context, lotID int64, remaining int64) error {
	q := r.builder.Update(lotsTable).
		Set("remaining", remaining).
		Where(squirrel.Eq{"id": lotID})

	sql, args, err := q.ToSql()
	if err != nil {
		return apperror.NewStorage("build update", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewStorage("update lot remaining", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stock lot", lotID)
	}
	return nil
}

// ListLots returns all lots of a fruit for valuation, exhausted included.
func (r *LotRepo) ListLots(ctx context.Context, fruit string, asOf *time.Time) ([]*stock.Lot, error) {
	q := r.builder.Select(lotCols...).
		From(lotsTable).
		Where(squirrel.Eq{"fruit": fruit}).
		OrderBy("intake_date ASC", "seq ASC")
	if asOf != nil {
		q = q.Where(squirrel.LtOrEq{"intake_date": *asOf})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, apperror.NewStorage("build select", err)
	}

	var lots []*stock.Lot
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lots, sql, args...); err != nil {
		return nil, apperror.NewStorage("select lots", err)
	}
	return lots, nil
}

// TotalsByFruit sums remaining boxes per fruit, excluding zero totals.
func (r *LotRepo) TotalsByFruit(ctx context.Context) (map[string]int64, error) {
	sql := `SELECT fruit, SUM(remaining) AS total
	        FROM stock_lots
	        GROUP BY fruit
	        HAVING SUM(remaining) > 0`

	rows, err := r.txm.GetQuerier(ctx).Query(ctx, sql)
	if err != nil {
		return nil, apperror.NewStorage("select stock totals", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var fruit string
		var total int64
		if err := rows.Scan(&fruit, &total); err != nil {
			return nil, apperror.NewStorage("scan stock totals", err)
		}
		totals[fruit] = total
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewStorage("iterate stock totals", err)
	}
	return totals, nil
}
