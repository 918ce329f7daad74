package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/core/types"
	"fruitmandi/internal/domain/stock"
	"fruitmandi/internal/domain/trade"
	"fruitmandi/internal/domain/vendor"
)

// --- Fakes ---

type fakeVendorRepo struct {
	vendors []*vendor.Vendor
}

func (r *fakeVendorRepo) Create(ctx context.Context, v *vendor.Vendor) error { return nil }

func (r *fakeVendorRepo) GetByID(ctx context.Context, id int64) (*vendor.Vendor, error) {
	for _, v := range r.vendors {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, apperror.NewNotFound("vendor", id)
}

func (r *fakeVendorRepo) List(ctx context.Context) ([]*vendor.Vendor, error) {
	return r.vendors, nil
}

func (r *fakeVendorRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := r.GetByID(ctx, id)
	return err == nil, nil
}

type fakeTradeRepo struct {
	sales    []*trade.Sale
	returns  []*trade.Return
	payments []*trade.Payment
}

func (r *fakeTradeRepo) CreateSale(ctx context.Context, s *trade.Sale) error { return nil }
func (r *fakeTradeRepo) GetSaleByID(ctx context.Context, id int64) (*trade.Sale, error) {
	return nil, apperror.NewNotFound("sale", id)
}
func (r *fakeTradeRepo) GetSaleByIDForUpdate(ctx context.Context, id int64) (*trade.Sale, error) {
	return nil, apperror.NewNotFound("sale", id)
}
func (r *fakeTradeRepo) UpdateSale(ctx context.Context, s *trade.Sale) error { return nil }

func (r *fakeTradeRepo) ListSales(ctx context.Context, f trade.SaleFilter) ([]*trade.Sale, error) {
	var out []*trade.Sale
	for _, s := range r.sales {
		if f.VendorID != nil && s.VendorID != *f.VendorID {
			continue
		}
		if f.On != nil && !s.Date.Equal(*f.On) {
			continue
		}
		if f.From != nil && s.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && s.Date.After(*f.To) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeTradeRepo) CreateReturn(ctx context.Context, ret *trade.Return) error { return nil }

func (r *fakeTradeRepo) ListReturns(ctx context.Context, f trade.DateFilter) ([]*trade.Return, error) {
	var out []*trade.Return
	for _, ret := range r.returns {
		if f.VendorID != nil && ret.VendorID != *f.VendorID {
			continue
		}
		if f.On != nil && !ret.Date.Equal(*f.On) {
			continue
		}
		out = append(out, ret)
	}
	return out, nil
}

func (r *fakeTradeRepo) CreatePayment(ctx context.Context, p *trade.Payment) error { return nil }

func (r *fakeTradeRepo) ListPayments(ctx context.Context, f trade.DateFilter) ([]*trade.Payment, error) {
	var out []*trade.Payment
	for _, p := range r.payments {
		if f.VendorID != nil && p.VendorID != *f.VendorID {
			continue
		}
		if f.On != nil && !p.Date.Equal(*f.On) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeLotRepo struct {
	lots []*stock.Lot
}

func (r *fakeLotRepo) CreateLot(ctx context.Context, lot *stock.Lot) error { return nil }
func (r *fakeLotRepo) ListOpenLotsForUpdate(ctx context.Context, fruit string) ([]*stock.Lot, error) {
	return nil, nil
}
func (r *fakeLotRepo) UpdateRemaining(ctx context.Context, lotID int64, remaining int64) error {
	return nil
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
	return nil, nil
}

// --- Helpers ---

func testDay(n int) time.Time {
	return time.Date(2026, 6, n, 0, 0, 0, 0, time.UTC)
}

func saleOf(id, vendorID int64, d time.Time, fruit string, boxes int64, price, deposit string) *trade.Sale {
	s := &trade.Sale{ID: id, VendorID: vendorID}
	s.Apply(trade.SaleDraft{
		Date:             d,
		Fruit:            fruit,
		Boxes:            boxes,
		PricePerBox:      types.MustMoney(price),
		BoxDepositPerBox: types.MustMoney(deposit),
	})
	return s
}

func newService() (*Service, *fakeTradeRepo) {
	vendors := &fakeVendorRepo{vendors: []*vendor.Vendor{
		{ID: 1, Name: "Ramesh Fruit Traders"},
	}}
	trades := &fakeTradeRepo{
		sales: []*trade.Sale{
			saleOf(1, 1, testDay(1), "MANGO", 8, "700", "50"),
		},
		payments: []*trade.Payment{
			{ID: 2, Date: testDay(1), VendorID: 1, Amount: types.MustMoney("3000")},
		},
		returns: []*trade.Return{
			{ID: 3, Date: testDay(2), VendorID: 1, Fruit: "MANGO", BoxesReturned: 2, BoxDepositRefunded: types.MustMoney("100")},
		},
	}
	lots := &fakeLotRepo{lots: []*stock.Lot{
		{ID: 1, Fruit: "MANGO", Quantity: 10, CostPrice: types.MustMoney("500"), IntakeDate: testDay(1)},
		{ID: 2, Fruit: "MANGO", Quantity: 5, CostPrice: types.MustMoney("600"), IntakeDate: testDay(2)},
	}}
	return NewService(vendors, trades, stock.NewEngine(lots)), trades
}

// --- Tests ---

func TestVendorSummary(t *testing.T) {
	service, _ := newService()

	rows, err := service.VendorSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, int64(1), row.VendorID)
	assert.Equal(t, "5600", row.TotalSales.String())
	assert.Equal(t, "3000", row.Payments.String())
	assert.Equal(t, "2600", row.NetDue.String())
	assert.Equal(t, "400", row.DepositsCollected.String())
	assert.Equal(t, "100", row.DepositsRefunded.String())
	assert.Equal(t, "300", row.NetDepositsHeld.String())

	// 8 boxes at (10*500 + 5*600)/15 per box.
	assert.Equal(t, "4266.67", row.COGS.String())
	assert.Equal(t, "1333.33", row.Profit.String())
	assert.Equal(t, "23.81", row.ProfitMarginPct.String())
}

func TestVendorSummary_NoSalesZeroMargin(t *testing.T) {
	service, trades := newService()
	trades.sales = nil

	rows, err := service.VendorSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].ProfitMarginPct.IsZero())
	assert.Equal(t, "-3000", rows[0].NetDue.String())
}

func TestDailySummary(t *testing.T) {
	service, _ := newService()

	sum, err := service.DailySummary(context.Background(), testDay(1))
	require.NoError(t, err)

	assert.Equal(t, "5600", sum.TotalSales.String())
	assert.Equal(t, int64(8), sum.BoxesSold)
	assert.Equal(t, "3000", sum.PaymentsReceived.String())
	assert.Equal(t, int64(0), sum.BoxesReturned)
	assert.Equal(t, 2, sum.NumTransactions)
	assert.Equal(t, "4266.67", sum.COGS.String())
	assert.Equal(t, "1333.33", sum.Profit.String())
}

func TestVendorLedger(t *testing.T) {
	service, _ := newService()

	entries, err := service.VendorLedger(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Day 1: sale before payment (same date keeps creation order),
	// day 2: the return.
	assert.Equal(t, EntrySale, entries[0].Type)
	assert.Equal(t, "5600", entries[0].RunningDue.String())
	assert.Equal(t, "400", entries[0].RunningDeposits.String())

	assert.Equal(t, EntryPayment, entries[1].Type)
	assert.Equal(t, "2600", entries[1].RunningDue.String())
	assert.Equal(t, "400", entries[1].RunningDeposits.String())

	assert.Equal(t, EntryReturn, entries[2].Type)
	assert.Equal(t, int64(-2), entries[2].Qty)
	assert.Equal(t, "2600", entries[2].RunningDue.String())
	assert.Equal(t, "300", entries[2].RunningDeposits.String())
}

func TestVendorLedger_UnknownVendor(t *testing.T) {
	service, _ := newService()

	_, err := service.VendorLedger(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSalesRange(t *testing.T) {
	service, trades := newService()
	trades.sales = append(trades.sales, saleOf(4, 1, testDay(3), "MANGO", 2, "800", "0"))

	report, err := service.SalesRange(context.Background(), testDay(1), testDay(3))
	require.NoError(t, err)

	assert.Equal(t, "7200", report.Revenue.String())
	assert.Equal(t, int64(10), report.Boxes)
	assert.Equal(t, "720", report.AvgPricePerBox.String())
	assert.Len(t, report.Sales, 2)
}

func TestSalesRange_InvalidRange(t *testing.T) {
	service, _ := newService()

	_, err := service.SalesRange(context.Background(), testDay(3), testDay(1))
	require.Error(t, err)
}
