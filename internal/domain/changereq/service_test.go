package changereq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/core/appctx"
	"fruitmandi/internal/core/types"
	"fruitmandi/internal/domain/audit"
	"fruitmandi/internal/domain/trade"
)

// --- Fakes ---

type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRequestRepo struct {
	requests map[int64]*ChangeRequest
	nextID   int64
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[int64]*ChangeRequest), nextID: 1}
}

func (r *fakeRequestRepo) Create(ctx context.Context, cr *ChangeRequest) error {
	cr.ID = r.nextID
	r.nextID++
	copied := *cr
	r.requests[cr.ID] = &copied
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id int64) (*ChangeRequest, error) {
	cr, ok := r.requests[id]
	if !ok {
		return nil, apperror.NewNotFound("change request", id)
	}
	copied := *cr
	return &copied, nil
}

func (r *fakeRequestRepo) GetByIDForUpdate(ctx context.Context, id int64) (*ChangeRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRequestRepo) SetReviewed(ctx context.Context, id int64, review Review) error {
	cr, ok := r.requests[id]
	if !ok {
		return apperror.NewNotFound("change request", id)
	}
	cr.Status = review.Status
	cr.ReviewedBy = &review.ReviewedBy
	reviewedAt := review.ReviewedAt
	cr.ReviewedAt = &reviewedAt
	comment := review.Comment
	cr.AdminComment = &comment
	return nil
}

func (r *fakeRequestRepo) ListByStatus(ctx context.Context, status Status) ([]*ChangeRequest, error) {
	var out []*ChangeRequest
	for _, cr := range r.requests {
		if cr.Status == status {
			out = append(out, cr)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByRequester(ctx context.Context, requestedBy string, limit int) ([]*ChangeRequest, error) {
	var out []*ChangeRequest
	for _, cr := range r.requests {
		if cr.RequestedBy == requestedBy && len(out) < limit {
			out = append(out, cr)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) CountByStatus(ctx context.Context) (Counts, error) {
	var counts Counts
	for _, cr := range r.requests {
		switch cr.Status {
		case StatusPending:
			counts.Pending++
		case StatusApproved:
			counts.Approved++
		case StatusRejected:
			counts.Rejected++
		}
	}
	return counts, nil
}

type fakeSaleRepo struct {
	sales map[int64]*trade.Sale
}

func (r *fakeSaleRepo) CreateSale(ctx context.Context, s *trade.Sale) error { return nil }

func (r *fakeSaleRepo) GetSaleByID(ctx context.Context, id int64) (*trade.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, apperror.NewNotFound("sale", id)
	}
	return s, nil
}

func (r *fakeSaleRepo) GetSaleByIDForUpdate(ctx context.Context, id int64) (*trade.Sale, error) {
	return r.GetSaleByID(ctx, id)
}

func (r *fakeSaleRepo) UpdateSale(ctx context.Context, s *trade.Sale) error {
	if _, ok := r.sales[s.ID]; !ok {
		return apperror.NewNotFound("sale", s.ID)
	}
	r.sales[s.ID] = s
	return nil
}

func (r *fakeSaleRepo) ListSales(ctx context.Context, f trade.SaleFilter) ([]*trade.Sale, error) {
	return nil, nil
}
func (r *fakeSaleRepo) CreateReturn(ctx context.Context, ret *trade.Return) error { return nil }
func (r *fakeSaleRepo) ListReturns(ctx context.Context, f trade.DateFilter) ([]*trade.Return, error) {
	return nil, nil
}
func (r *fakeSaleRepo) CreatePayment(ctx context.Context, p *trade.Payment) error { return nil }
func (r *fakeSaleRepo) ListPayments(ctx context.Context, f trade.DateFilter) ([]*trade.Payment, error) {
	return nil, nil
}

type fakeRecorder struct {
	entries []*audit.Entry
}

func (r *fakeRecorder) Record(ctx context.Context, entry *audit.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

// --- Helpers ---

func testDay(n int) time.Time {
	return time.Date(2026, 5, n, 0, 0, 0, 0, time.UTC)
}

func baseSale() *trade.Sale {
	s := &trade.Sale{ID: 42, VendorID: 1}
	s.Apply(trade.SaleDraft{
		Date:             testDay(1),
		Fruit:            "MANGO",
		Boxes:            5,
		PricePerBox:      types.MustMoney("700"),
		BoxDepositPerBox: types.MustMoney("50"),
	})
	return s
}

type fixture struct {
	service *Service
	repo    *fakeRequestRepo
	sales   *fakeSaleRepo
	audits  *fakeRecorder
}

func newFixture() *fixture {
	f := &fixture{
		repo:   newFakeRequestRepo(),
		sales:  &fakeSaleRepo{sales: map[int64]*trade.Sale{42: baseSale()}},
		audits: &fakeRecorder{},
	}
	f.service = NewService(f.repo, f.sales, passTx{}, f.audits)
	f.service.now = func() time.Time { return testDay(10) }
	return f
}

func clerkCtx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:      "clerk-1",
		DisplayName: "Clerk One",
	})
}

func adminCtx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:      "admin-1",
		DisplayName: "Admin",
		Admin:       true,
	})
}

func requestedDraft() trade.SaleDraft {
	return trade.SaleDraft{
		Date:             testDay(1),
		Fruit:            "MANGO",
		Boxes:            8,
		PricePerBox:      types.MustMoney("750"),
		BoxDepositPerBox: types.MustMoney("50"),
	}
}

// --- Tests ---

func TestSubmit_RequiresIdentity(t *testing.T) {
	f := newFixture()

	_, err := f.service.Submit(context.Background(), 42, requestedDraft(), "")
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestSubmit_SnapshotsWithoutTouchingSale(t *testing.T) {
	f := newFixture()

	cr, err := f.service.Submit(clerkCtx(), 42, requestedDraft(), "price was agreed higher")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, cr.Status)
	assert.Equal(t, "clerk-1", cr.RequestedBy)
	assert.Equal(t, "Clerk One", cr.RequesterName)
	assert.Equal(t, int64(5), cr.CurrentData.Boxes)
	assert.Equal(t, int64(8), cr.RequestedData.Boxes)

	// The sale itself is untouched until approval.
	sale, _ := f.sales.GetSaleByID(context.Background(), 42)
	assert.Equal(t, int64(5), sale.Boxes)
	assert.Equal(t, "3500", sale.TotalPrice.String())
}

func TestSubmit_UnknownSale(t *testing.T) {
	f := newFixture()

	_, err := f.service.Submit(clerkCtx(), 999, requestedDraft(), "")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestApprove_AppliesAndRecomputesTotals(t *testing.T) {
	f := newFixture()
	cr, err := f.service.Submit(clerkCtx(), 42, requestedDraft(), "")
	require.NoError(t, err)

	require.NoError(t, f.service.Approve(adminCtx(), cr.ID, ""))

	sale, _ := f.sales.GetSaleByID(context.Background(), 42)
	assert.Equal(t, int64(8), sale.Boxes)
	assert.Equal(t, "6000", sale.TotalPrice.String())
	assert.Equal(t, "400", sale.BoxDepositCollected.String())

	reviewed, _ := f.repo.GetByID(context.Background(), cr.ID)
	assert.Equal(t, StatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "admin-1", *reviewed.ReviewedBy)
	require.NotNil(t, reviewed.AdminComment)
	assert.Equal(t, "Approved", *reviewed.AdminComment)

	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, audit.ActionApprove, f.audits.entries[0].Action)
	assert.Equal(t, int64(42), f.audits.entries[0].EntityID)
}

func TestApprove_RequiresAdmin(t *testing.T) {
	f := newFixture()
	cr, _ := f.service.Submit(clerkCtx(), 42, requestedDraft(), "")

	err := f.service.Approve(clerkCtx(), cr.ID, "lgtm")
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestApprove_TwiceFails(t *testing.T) {
	f := newFixture()
	cr, _ := f.service.Submit(clerkCtx(), 42, requestedDraft(), "")

	require.NoError(t, f.service.Approve(adminCtx(), cr.ID, ""))

	err := f.service.Approve(adminCtx(), cr.ID, "")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidStateTransition(err))
}

func TestReject_RequiresReason(t *testing.T) {
	f := newFixture()
	cr, _ := f.service.Submit(clerkCtx(), 42, requestedDraft(), "")

	err := f.service.Reject(adminCtx(), cr.ID, "   ")
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestReject_FreezesWithoutTouchingSale(t *testing.T) {
	f := newFixture()
	cr, _ := f.service.Submit(clerkCtx(), 42, requestedDraft(), "")

	require.NoError(t, f.service.Reject(adminCtx(), cr.ID, "numbers do not match the challan"))

	sale, _ := f.sales.GetSaleByID(context.Background(), 42)
	assert.Equal(t, int64(5), sale.Boxes)

	reviewed, _ := f.repo.GetByID(context.Background(), cr.ID)
	assert.Equal(t, StatusRejected, reviewed.Status)
	require.NotNil(t, reviewed.AdminComment)
	assert.Equal(t, "numbers do not match the challan", *reviewed.AdminComment)

	// Rejecting again hits the terminal state guard.
	err := f.service.Reject(adminCtx(), cr.ID, "again")
	assert.True(t, apperror.IsInvalidStateTransition(err))

	require.Len(t, f.audits.entries, 1)
	assert.Equal(t, audit.ActionReject, f.audits.entries[0].Action)
}

func TestListByStatus_AdminOnly(t *testing.T) {
	f := newFixture()

	_, err := f.service.ListByStatus(clerkCtx(), StatusPending)
	require.Error(t, err)

	_, err = f.service.ListByStatus(adminCtx(), StatusPending)
	assert.NoError(t, err)
}

func TestListMineAndCounts(t *testing.T) {
	f := newFixture()
	_, err := f.service.ListMine(context.Background(), 0)
	require.Error(t, err)

	cr, _ := f.service.Submit(clerkCtx(), 42, requestedDraft(), "")
	_, _ = f.service.Submit(clerkCtx(), 42, requestedDraft(), "second")
	require.NoError(t, f.service.Approve(adminCtx(), cr.ID, "ok"))

	mine, err := f.service.ListMine(clerkCtx(), 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	counts, err := f.service.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Pending)
	assert.Equal(t, int64(1), counts.Approved)
	assert.Equal(t, int64(0), counts.Rejected)
}
