// Package vendor_repo provides the PostgreSQL implementation of the vendor
// repository.
package vendor_repo

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/domain/vendor"
	"fruitmandi/internal/infrastructure/storage/postgres"
)

const vendorsTable = "vendors"

var vendorCols = []string{"id", "name", "contact", "created_at"}

// Compile-time check that VendorRepo implements vendor.Repository.
var _ vendor.Repository = (*VendorRepo)(nil)

// VendorRepo implements vendor.Repository.
type VendorRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewVendorRepo creates a new vendor repository.
func NewVendorRepo(txm *postgres.TxManager) *VendorRepo {
	return &VendorRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a vendor and assigns its ID.
func (r *VendorRepo) Create(ctx context.Context, v *vendor.Vendor) error {
	q := r.builder.Insert(vendorsTable).
		Columns("name", "contact").
		Values(v.Name, v.Contact).
		Suffix("RETURNING id, created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return apperror.NewStorage("build insert", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&v.ID, &v.CreatedAt); err != nil {
		return apperror.NewStorage("insert vendor", err)
	}
	return nil
}

// GetByID retrieves a vendor by ID.
func (r *VendorRepo) GetByID(ctx context.Context, id int64) (*vendor.Vendor, error) {
	q := r.builder.Select(vendorCols...).
		From(vendorsTable).
		Where(squirrel.Eq{"id": id})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, apperror.NewStorage("build select", err)
	}

	var v vendor.Vendor
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &v, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("vendor", id)
		}
		return nil, apperror.NewStorage("select vendor", err)
	}
	return &v, nil
}

// List returns all vendors ordered by name.
func (r *VendorRepo) List(ctx context.Context) ([]*vendor.Vendor, error) {
	q := r.builder.Select(vendorCols...).
		From(vendorsTable).
		OrderBy("name ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, apperror.NewStorage("build select", err)
	}

	var vendors []*vendor.Vendor
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &vendors, sql, args...); err != nil {
		return nil, apperror.NewStorage("select vendors", err)
	}
	return vendors, nil
}

// Exists reports whether a vendor with the given ID is registered.
func (r *VendorRepo) Exists(ctx context.Context, id int64) (bool, error) {
	sql := "SELECT EXISTS (SELECT 1 FROM vendors WHERE id = $1)"

	var exists bool
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, id).Scan(&exists); err != nil {
		return false, apperror.NewStorage("check vendor exists", err)
	}
	return exists, nil
}
