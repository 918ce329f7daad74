package trade

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
	"fruitmandi/internal/domain/stock"
	"fruitmandi/internal/domain/vendor"
)

// --- Fakes ---

// passTx runs the function directly; rollback semantics are covered by the
// repositories never being written on early error returns.
type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeVendorRepo struct {
	vendors map[int64]*vendor.Vendor
}

func newFakeVendorRepo(ids ...int64) *fakeVendorRepo {
	r := &fakeVendorRepo{vendors: make(map[int64]*vendor.Vendor)}
	for _, id := range ids {
		r.vendors[id] = &vendor.Vendor{ID: id, Name: "Vendor", Contact: "9876543210"}
	}
	return r
}

func (r *fakeVendorRepo) Create(ctx context.Context, v *vendor.Vendor) error {
	v.ID = int64(len(r.vendors) + 1)
	r.vendors[v.ID] = v
	return nil
}

func (r *fakeVendorRepo) GetByID(ctx context.Context, id int64) (*vendor.Vendor, error) {
	v, ok := r.vendors[id]
	if !ok {
		return nil, apperror.NewNotFound("vendor", id)
	}
	return v, nil
}

func (r *fakeVendorRepo) List(ctx context.Context) ([]*vendor.Vendor, error) {
	out := make([]*vendor.Vendor, 0, len(r.vendors))
	for _, v := range r.vendors {
		out = append(out, v)
	}
	return out, nil
}

func (r *fakeVendorRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := r.vendors[id]
	return ok, nil
}

type fakeTradeRepo struct {
	sales    []*Sale
	returns  []*Return
	payments []*Payment
	nextID   int64
}

func newFakeTradeRepo() *fakeTradeRepo { return &fakeTradeRepo{nextID: 1} }

func (r *fakeTradeRepo) CreateSale(ctx context.Context, s *Sale) error {
	s.ID = r.nextID
	r.nextID++
	r.sales = append(r.sales, s)
	return nil
}

func (r *fakeTradeRepo) GetSaleByID(ctx context.Context, id int64) (*Sale, error) {
	for _, s := range r.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("sale", id)
}

func (r *fakeTradeRepo) GetSaleByIDForUpdate(ctx context.Context, id int64) (*Sale, error) {
	return r.GetSaleByID(ctx, id)
}

func (r *fakeTradeRepo) UpdateSale(ctx context.Context, s *Sale) error {
	for i, existing := range r.sales {
		if existing.ID == s.ID {
			r.sales[i] = s
			return nil
		}
	}
	return apperror.NewNotFound("sale", s.ID)
}

func (r *fakeTradeRepo) ListSales(ctx context.Context, f SaleFilter) ([]*Sale, error) {
	var out []*Sale
	for _, s := range r.sales {
		if f.VendorID != nil && s.VendorID != *f.VendorID {
			continue
		}
		if f.On != nil && !s.Date.Equal(*f.On) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeTradeRepo) CreateReturn(ctx context.Context, ret *Return) error {
	ret.ID = r.nextID
	r.nextID++
	r.returns = append(r.returns, ret)
	return nil
}

func (r *fakeTradeRepo) ListReturns(ctx context.Context, f DateFilter) ([]*Return, error) {
	return r.returns, nil
}

func (r *fakeTradeRepo) CreatePayment(ctx context.Context, p *Payment) error {
	p.ID = r.nextID
	r.nextID++
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakeTradeRepo) ListPayments(ctx context.Context, f DateFilter) ([]*Payment, error) {
	return r.payments, nil
}

type fakeLotRepo struct {
	lots   []*stock.Lot
	nextID int64
}

func (r *fakeLotRepo) CreateLot(ctx context.Context, lot *stock.Lot) error {
	r.nextID++
	lot.ID = r.nextID
	lot.Seq = r.nextID
	r.lots = append(r.lots, lot)
	return nil
}

func (r *fakeLotRepo) ListOpenLotsForUpdate(ctx context.Context, fruit string) ([]*stock.Lot, error) {
	var out []*stock.Lot
	for _, l := range r.lots {
		if l.Fruit == fruit && l.Remaining > 0 {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLotRepo) UpdateRemaining(ctx context.Context, lotID int64, remaining int64) error {
	for _, l := range r.lots {
		if l.ID == lotID {
			l.Remaining = remaining
			return nil
		}
	}
	return apperror.NewNotFound("stock lot", lotID)
}

func (r *fakeLotRepo) ListLots(ctx context.Context, fruit string, asOf *time.Time) ([]*stock.Lot, error) {
	var out []*stock.Lot
	for _, l := range r.lots {
		if l.Fruit == fruit {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLotRepo) TotalsByFruit(ctx context.Context) (map[string]int64, error) {
	totals := make(map[string]int64)
	for _, l := range r.lots {
		if l.Remaining > 0 {
			totals[l.Fruit] += l.Remaining
		}
	}
	return totals, nil
}

type fakeRecorder struct {
	entries []*audit.Entry
}

func (r *fakeRecorder) Record(ctx context.Context, entry *audit.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

// --- Helpers ---

type fixture struct {
	service *Service
	vendors *fakeVendorRepo
	repo    *fakeTradeRepo
	lots    *fakeLotRepo
	audits  *fakeRecorder
}

func newFixture(vendorIDs ...int64) *fixture {
	f := &fixture{
		vendors: newFakeVendorRepo(vendorIDs...),
		repo:    newFakeTradeRepo(),
		lots:    &fakeLotRepo{},
		audits:  &fakeRecorder{},
	}
	engine := stock.NewEngine(f.lots)
	f.service = NewService(f.vendors, f.repo, engine, passTx{}, f.audits)
	return f
}

func (f *fixture) addLot(fruit string, qty int64, cost string, d time.Time) {
	engine := stock.NewEngine(f.lots)
	if _, err := engine.AddLot(context.Background(), fruit, qty, types.MustMoney(cost), d); err != nil {
		panic(err)
	}
}

func adminCtx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:      "admin-1",
		DisplayName: "Admin",
		Admin:       true,
	})
}

func testDay(n int) time.Time {
	return time.Date(2026, 4, n, 0, 0, 0, 0, time.UTC)
}

// --- Tests ---

func TestSell_ComputesTotalsAndDepletes(t *testing.T) {
	f := newFixture(1)
	f.addLot("MANGO", 10, "500", testDay(1))

	sale, err := f.service.Sell(context.Background(), SellInput{
		Date:          testDay(2),
		VendorID:      1,
		Fruit:         "mango",
		Boxes:         8,
		PricePerBox:   types.MustMoney("700"),
		DepositPerBox: types.MustMoney("50"),
	})
	require.NoError(t, err)

	assert.Equal(t, "MANGO", sale.Fruit)
	assert.Equal(t, "5600", sale.TotalPrice.String())
	assert.Equal(t, "400", sale.BoxDepositCollected.String())

	assert.Equal(t, int64(2), f.lots.lots[0].Remaining)
	require.Len(t, f.repo.sales, 1)
}

func TestSell_InsufficientStockWritesNothing(t *testing.T) {
	f := newFixture(1)
	f.addLot("MANGO", 5, "500", testDay(1))

	_, err := f.service.Sell(context.Background(), SellInput{
		Date:        testDay(2),
		VendorID:    1,
		Fruit:       "MANGO",
		Boxes:       6,
		PricePerBox: types.MustMoney("700"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	assert.Empty(t, f.repo.sales)
	assert.Equal(t, int64(5), f.lots.lots[0].Remaining)
}

func TestSell_UnknownVendor(t *testing.T) {
	f := newFixture()
	f.addLot("MANGO", 5, "500", testDay(1))

	_, err := f.service.Sell(context.Background(), SellInput{
		Date:        testDay(2),
		VendorID:    99,
		Fruit:       "MANGO",
		Boxes:       1,
		PricePerBox: types.MustMoney("700"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSell_ValidatesDraft(t *testing.T) {
	f := newFixture(1)

	_, err := f.service.Sell(context.Background(), SellInput{
		Date:        testDay(2),
		VendorID:    1,
		Fruit:       "MANGO",
		Boxes:       0,
		PricePerBox: types.MustMoney("700"),
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestRecordReturn_ReentersAtPreReturnAvgCost(t *testing.T) {
	f := newFixture(1)
	f.addLot("MANGO", 10, "500", testDay(1))
	f.addLot("MANGO", 5, "600", testDay(2))

	ret, err := f.service.RecordReturn(context.Background(), ReturnInput{
		Date:          testDay(3),
		VendorID:      1,
		Fruit:         "MANGO",
		BoxesReturned: 2,
		DepositPerBox: types.MustMoney("50"),
	})
	require.NoError(t, err)

	assert.Equal(t, "100", ret.BoxDepositRefunded.String())
	require.Len(t, f.repo.returns, 1)

	// New lot valued at (10*500 + 5*600)/15, not at the return day's price.
	require.Len(t, f.lots.lots, 3)
	lot := f.lots.lots[2]
	assert.Equal(t, int64(2), lot.Quantity)
	assert.Equal(t, int64(2), lot.Remaining)
	assert.Equal(t, "533.33", lot.CostPrice.Round(2).String())
}

func TestRecordReturn_Validation(t *testing.T) {
	f := newFixture(1)

	_, err := f.service.RecordReturn(context.Background(), ReturnInput{
		Date: testDay(1), VendorID: 1, Fruit: "MANGO", BoxesReturned: 0,
	})
	assert.Error(t, err)

	_, err = f.service.RecordReturn(context.Background(), ReturnInput{
		Date: testDay(1), VendorID: 1, Fruit: "", BoxesReturned: 2,
	})
	assert.Error(t, err)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(1)

	_, err := f.service.RecordPayment(context.Background(), PaymentInput{
		Date: testDay(1), VendorID: 1, Amount: types.Zero(),
	})
	require.Error(t, err)

	p, err := f.service.RecordPayment(context.Background(), PaymentInput{
		Date: testDay(1), VendorID: 1, Amount: types.MustMoney("3000"), Note: "part payment",
	})
	require.NoError(t, err)
	assert.Equal(t, "3000", p.Amount.String())
	require.Len(t, f.repo.payments, 1)
}

func TestDirectEditSale_RequiresAdmin(t *testing.T) {
	f := newFixture(1)

	_, err := f.service.DirectEditSale(context.Background(), 1, SaleDraft{})
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	clerk := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "clerk-1"})
	_, err = f.service.DirectEditSale(clerk, 1, SaleDraft{})
	require.Error(t, err)
}

func TestDirectEditSale_RecomputesAndAudits(t *testing.T) {
	f := newFixture(1)
	f.addLot("MANGO", 10, "500", testDay(1))

	sale, err := f.service.Sell(context.Background(), SellInput{
		Date:          testDay(2),
		VendorID:      1,
		Fruit:         "MANGO",
		Boxes:         5,
		PricePerBox:   types.MustMoney("700"),
		DepositPerBox: types.MustMoney("50"),
	})
	require.NoError(t, err)

	edited, err := f.service.DirectEditSale(adminCtx(), sale.ID, SaleDraft{
		Date:             testDay(2),
		Fruit:            "MANGO",
		Boxes:            8,
		PricePerBox:      types.MustMoney("750"),
		BoxDepositPerBox: types.MustMoney("50"),
	})
	require.NoError(t, err)

	assert.Equal(t, "6000", edited.TotalPrice.String())
	assert.Equal(t, "400", edited.BoxDepositCollected.String())

	require.Len(t, f.audits.entries, 1)
	entry := f.audits.entries[0]
	assert.Equal(t, audit.ActionDirectEdit, entry.Action)
	assert.Equal(t, "admin-1", entry.Actor)
	assert.Equal(t, sale.ID, entry.EntityID)
	assert.NotEmpty(t, entry.Changes)
}
