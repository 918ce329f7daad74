// Package changereq_repo provides the PostgreSQL implementation of the
// change-request repository.
package changereq_repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/domain/changereq"
	"fruitmandi/internal/domain/trade"
	"fruitmandi/internal/infrastructure/storage/postgres"
)

const requestsTable = "change_requests"

var requestCols = []string{
	"id", "sale_id", "requested_by", "requester_name",
	"current_data", "requested_data",
	"status", "note", "requested_at",
	"reviewed_by", "reviewed_at", "admin_comment",
}

// requestRow is the scan target; the JSONB snapshots arrive as raw bytes
// and are decoded into trade.SaleDraft explicitly.
type requestRow struct {
	ID            int64      `db:"id"`
	SaleID        int64      `db:"sale_id"`
	RequestedBy   string     `db:"requested_by"`
	RequesterName string     `db:"requester_name"`
	CurrentData   []byte     `db:"current_data"`
	RequestedData []byte     `db:"requested_data"`
	Status        string     `db:"status"`
	Note          string     `db:"note"`
	RequestedAt   time.Time  `db:"requested_at"`
	ReviewedBy    *string    `db:"reviewed_by"`
	ReviewedAt    *time.Time `db:"reviewed_at"`
	AdminComment  *string    `db:"admin_comment"`
}

func (row *requestRow) toDomain() (*changereq.ChangeRequest, error) {
	cr := &changereq.ChangeRequest{
		ID:            row.ID,
		SaleID:        row.SaleID,
		RequestedBy:   row.RequestedBy,
		RequesterName: row.RequesterName,
		Status:        changereq.Status(row.Status),
		Note:          row.Note,
		RequestedAt:   row.RequestedAt,
		ReviewedBy:    row.ReviewedBy,
		ReviewedAt:    row.ReviewedAt,
		AdminComment:  row.AdminComment,
	}
	if err := json.Unmarshal(row.CurrentData, &cr.CurrentData); err != nil {
		return nil, apperror.NewStorage("decode current snapshot", err)
	}
	if err := json.Unmarshal(row.RequestedData, &cr.RequestedData); err != nil {
		return nil, apperror.NewStorage("decode requested snapshot", err)
	}
	return cr, nil
}

func encodeDraft(d trade.SaleDraft, which string) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, apperror.NewStorage("encode "+which+" snapshot", err)
	}
	return data, nil
}

// Compile-time check that RequestRepo implements changereq.Repository.
var _ changereq.Repository = (*RequestRepo)(nil)

// RequestRepo implements changereq.Repository.
type RequestRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRequestRepo creates a new change-request repository.
func NewRequestRepo(txm *postgres.TxManager) *RequestRepo {
	return &RequestRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a pending request and assigns its ID.
func (r *RequestRepo) Create(ctx context.Context, cr *changereq.ChangeRequest) error {
	current, err := encodeDraft(cr.CurrentData, "current")
	if err != nil {
		return err
	}
	requested, err := encodeDraft(cr.RequestedData, "requested")
	if err != nil {
		return err
	}

	q := r.builder.Insert(requestsTable).
		Columns("sale_id", "requested_by", "requester_name",
			"current_data", "requested_data", "status", "note", "requested_at").
		Values(cr.SaleID, cr.RequestedBy, cr.RequesterName,
			current, requested, string(cr.Status), cr.Note, cr.RequestedAt).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return apperror.NewStorage("build insert", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&cr.ID); err != nil {
		return apperror.NewStorage("insert change request", err)
	}
	return nil
}

func (r *RequestRepo) get(ctx context.Context, id int64, forUpdate bool) (*changereq.ChangeRequest, error) {
	q := r.builder.Select(requestCols...).
		From(requestsTable).
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, apperror.NewStorage("build select", err)
	}

	var row requestRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("change request", id)
		}
		return nil, apperror.NewStorage("select change request", err)
	}
	return row.toDomain()
}

// GetByID retrieves a change request by ID.
func (r *RequestRepo) GetByID(ctx context.Context, id int64) (*changereq.ChangeRequest, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate retrieves a change request with a row lock.
func (r *RequestRepo) GetByIDForUpdate(ctx context.Context, id int64) (*changereq.ChangeRequest, error) {
	return r.get(ctx, id, true)
}

// SetReviewed writes the terminal transition for a request.
func (r *RequestRepo) SetReviewed(ctx context.Context, id int64, review changereq.Review) error {
	q := r.builder.Update(requestsTable).
		Set("status", string(review.Status)).
		Set("reviewed_by", review.ReviewedBy).
		Set("reviewed_at", review.ReviewedAt).
		Set("admin_comment", review.Comment).
		Where(squirrel.Eq{"id": id})

	sql, args, err := q.ToSql()
	if err != nil {
		return apperror.NewStorage("build update", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewStorage("update change request", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("change request", id)
	}
	return nil
}

func (r *RequestRepo) list(ctx context.Context, q squirrel.SelectBuilder) ([]*changereq.ChangeRequest, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, apperror.NewStorage("build select", err)
	}

	var rows []*requestRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, apperror.NewStorage("select change requests", err)
	}

	requests := make([]*changereq.ChangeRequest, 0, len(rows))
	for _, row := range rows {
		cr, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		requests = append(requests, cr)
	}
	return requests, nil
}

// ListByStatus returns requests in a status, newest first.
func (r *RequestRepo) ListByStatus(ctx context.Context, status changereq.Status) ([]*changereq.ChangeRequest, error) {
	q := r.builder.Select(requestCols...).
		From(requestsTable).
		Where(squirrel.Eq{"status": string(status)}).
		OrderBy("requested_at DESC", "id DESC")
	return r.list(ctx, q)
}

// ListByRequester returns a user's requests, newest first.
func (r *RequestRepo) ListByRequester(ctx context.Context, requestedBy string, limit int) ([]*changereq.ChangeRequest, error) {
	q := r.builder.Select(requestCols...).
		From(requestsTable).
		Where(squirrel.Eq{"requested_by": requestedBy}).
		OrderBy("requested_at DESC", "id DESC").
		Limit(uint64(limit))
	return r.list(ctx, q)
}

// CountByStatus tallies requests per status.
func (r *RequestRepo) CountByStatus(ctx context.Context) (changereq.Counts, error) {
	sql := `SELECT status, COUNT(*) FROM change_requests GROUP BY status`

	rows, err := r.txm.GetQuerier(ctx).Query(ctx, sql)
	if err != nil {
		return changereq.Counts{}, apperror.NewStorage("count change requests", err)
	}
	defer rows.Close()

	var counts changereq.Counts
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return changereq.Counts{}, apperror.NewStorage("scan counts", err)
		}
		switch changereq.Status(status) {
		case changereq.StatusPending:
			counts.Pending = n
		case changereq.StatusApproved:
			counts.Approved = n
		case changereq.StatusRejected:
			counts.Rejected = n
		}
	}
	if err := rows.Err(); err != nil {
		return changereq.Counts{}, apperror.NewStorage("iterate counts", err)
	}
	return counts, nil
}
