package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/core/types"
	"fruitmandi/internal/domain/stock"
	"fruitmandi/internal/domain/trade"
	"fruitmandi/internal/domain/vendor"
)

// Service generates reports by composing the read side of the vendor,
// trade and stock repositories.
type Service struct {
	vendors vendor.Repository
	trades  trade.Repository
	engine  *stock.Engine
}

// NewService creates a new reports service.
func NewService(vendors vendor.Repository, trades trade.Repository, engine *stock.Engine) *Service {
	return &Service{
		vendors: vendors,
		trades:  trades,
		engine:  engine,
	}
}

// avgCostCache memoizes weighted average cost per fruit within one report
// run, so a vendor with many sales of the same fruit costs one lookup.
type avgCostCache struct {
	engine *stock.Engine
	costs  map[string]types.Money
}

func newAvgCostCache(engine *stock.Engine) *avgCostCache {
	return &avgCostCache{engine: engine, costs: make(map[string]types.Money)}
}

func (c *avgCostCache) get(ctx context.Context, fruit string) (types.Money, error) {
	if cost, ok := c.costs[fruit]; ok {
		return cost, nil
	}
	cost, err := c.engine.WeightedAvgCost(ctx, fruit, nil)
	if err != nil {
		return types.Zero(), err
	}
	c.costs[fruit] = cost
	return cost, nil
}

// cogsOf values sold boxes at each fruit's weighted average cost.
func cogsOf(ctx context.Context, cache *avgCostCache, sales []*trade.Sale) (types.Money, error) {
	cogs := types.Zero()
	for _, s := range sales {
		cost, err := cache.get(ctx, s.Fruit)
		if err != nil {
			return types.Zero(), err
		}
		cogs = cogs.Add(types.MulBoxes(cost, s.Boxes))
	}
	return cogs, nil
}

// VendorSummary computes every vendor's financial position:
// net_due = Σ total_price − Σ payments, net_deposits_held = Σ collected −
// Σ refunded, COGS at weighted average cost, profit and margin.
func (s *Service) VendorSummary(ctx context.Context) ([]VendorSummaryRow, error) {
	vendors, err := s.vendors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}

	cache := newAvgCostCache(s.engine)
	rows := make([]VendorSummaryRow, 0, len(vendors))
	for _, v := range vendors {
		row, err := s.summarizeVendor(ctx, cache, v)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Service) summarizeVendor(ctx context.Context, cache *avgCostCache, v *vendor.Vendor) (VendorSummaryRow, error) {
	vid := v.ID
	sales, err := s.trades.ListSales(ctx, trade.SaleFilter{VendorID: &vid})
	if err != nil {
		return VendorSummaryRow{}, fmt.Errorf("list sales: %w", err)
	}
	payments, err := s.trades.ListPayments(ctx, trade.DateFilter{VendorID: &vid})
	if err != nil {
		return VendorSummaryRow{}, fmt.Errorf("list payments: %w", err)
	}
	returns, err := s.trades.ListReturns(ctx, trade.DateFilter{VendorID: &vid})
	if err != nil {
		return VendorSummaryRow{}, fmt.Errorf("list returns: %w", err)
	}

	row := VendorSummaryRow{
		VendorID:          v.ID,
		VendorName:        v.Name,
		TotalSales:        types.Zero(),
		Payments:          types.Zero(),
		DepositsCollected: types.Zero(),
		DepositsRefunded:  types.Zero(),
	}
	for _, sale := range sales {
		row.TotalSales = row.TotalSales.Add(sale.TotalPrice)
		row.DepositsCollected = row.DepositsCollected.Add(sale.BoxDepositCollected)
	}
	for _, p := range payments {
		row.Payments = row.Payments.Add(p.Amount)
	}
	for _, r := range returns {
		row.DepositsRefunded = row.DepositsRefunded.Add(r.BoxDepositRefunded)
	}

	cogs, err := cogsOf(ctx, cache, sales)
	if err != nil {
		return VendorSummaryRow{}, err
	}
	row.COGS = cogs
	row.Profit = row.TotalSales.Sub(cogs)
	row.NetDue = row.TotalSales.Sub(row.Payments)
	row.NetDepositsHeld = row.DepositsCollected.Sub(row.DepositsRefunded)

	if row.TotalSales.IsPositive() {
		row.ProfitMarginPct = row.Profit.Mul(types.NewMoneyFromInt(100)).Div(row.TotalSales).Round(2)
	} else {
		row.ProfitMarginPct = types.Zero()
	}
	return row, nil
}

// DailySummary aggregates sales, payments and returns of exactly one date,
// with COGS and profit for that day's sales.
func (s *Service) DailySummary(ctx context.Context, date time.Time) (*DailySummary, error) {
	on := date
	sales, err := s.trades.ListSales(ctx, trade.SaleFilter{On: &on})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	payments, err := s.trades.ListPayments(ctx, trade.DateFilter{On: &on})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	returns, err := s.trades.ListReturns(ctx, trade.DateFilter{On: &on})
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}

	sum := &DailySummary{
		Date:             date,
		TotalSales:       types.Zero(),
		PaymentsReceived: types.Zero(),
		DepositsRefunded: types.Zero(),
		NumTransactions:  len(sales) + len(payments) + len(returns),
	}
	for _, sale := range sales {
		sum.TotalSales = sum.TotalSales.Add(sale.TotalPrice)
		sum.BoxesSold += sale.Boxes
	}
	for _, p := range payments {
		sum.PaymentsReceived = sum.PaymentsReceived.Add(p.Amount)
	}
	for _, r := range returns {
		sum.BoxesReturned += r.BoxesReturned
		sum.DepositsRefunded = sum.DepositsRefunded.Add(r.BoxDepositRefunded)
	}

	cogs, err := cogsOf(ctx, newAvgCostCache(s.engine), sales)
	if err != nil {
		return nil, err
	}
	sum.COGS = cogs
	sum.Profit = sum.TotalSales.Sub(cogs)
	return sum, nil
}

// VendorLedger reconstructs one vendor's chronological ledger with running
// dues and running deposits. Sales add to dues and deposits, payments
// reduce dues, returns reduce deposits (and show negative box quantities).
// Entries sort by date; same-date ties keep creation order.
func (s *Service) VendorLedger(ctx context.Context, vendorID int64) ([]LedgerEntry, error) {
	if _, err := s.vendors.GetByID(ctx, vendorID); err != nil {
		return nil, err
	}

	vid := vendorID
	sales, err := s.trades.ListSales(ctx, trade.SaleFilter{VendorID: &vid})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	payments, err := s.trades.ListPayments(ctx, trade.DateFilter{VendorID: &vid})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	returns, err := s.trades.ListReturns(ctx, trade.DateFilter{VendorID: &vid})
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}

	entries := make([]LedgerEntry, 0, len(sales)+len(payments)+len(returns))
	for _, sale := range sales {
		entries = append(entries, LedgerEntry{
			Date:    sale.Date,
			Type:    EntrySale,
			Fruit:   sale.Fruit,
			Qty:     sale.Boxes,
			Amount:  sale.TotalPrice,
			Deposit: sale.BoxDepositCollected,
			Note:    sale.Note,
		})
	}
	for _, p := range payments {
		entries = append(entries, LedgerEntry{
			Date:   p.Date,
			Type:   EntryPayment,
			Amount: p.Amount,
			Note:   p.Note,
		})
	}
	for _, r := range returns {
		entries = append(entries, LedgerEntry{
			Date:    r.Date,
			Type:    EntryReturn,
			Fruit:   r.Fruit,
			Qty:     -r.BoxesReturned,
			Amount:  types.Zero(),
			Deposit: r.BoxDepositRefunded,
			Note:    r.Note,
		})
	}

	// Stable sort: repositories return each collection in creation order,
	// so same-date ties stay in that order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	due := types.Zero()
	deposits := types.Zero()
	for i := range entries {
		switch entries[i].Type {
		case EntrySale:
			due = due.Add(entries[i].Amount)
			deposits = deposits.Add(entries[i].Deposit)
		case EntryPayment:
			due = due.Sub(entries[i].Amount)
		case EntryReturn:
			deposits = deposits.Sub(entries[i].Deposit)
		}
		entries[i].RunningDue = due
		entries[i].RunningDeposits = deposits
	}
	return entries, nil
}

// SalesRange aggregates sales over an inclusive date range.
func (s *Service) SalesRange(ctx context.Context, from, to time.Time) (*SalesRangeReport, error) {
	if to.Before(from) {
		return nil, apperror.NewValidation("from must not be after to")
	}

	sales, err := s.trades.ListSales(ctx, trade.SaleFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	report := &SalesRangeReport{
		From:    from,
		To:      to,
		Revenue: types.Zero(),
		Sales:   sales,
	}
	for _, sale := range sales {
		report.Revenue = report.Revenue.Add(sale.TotalPrice)
		report.Boxes += sale.Boxes
	}
	if report.Boxes > 0 {
		report.AvgPricePerBox = report.Revenue.Div(types.NewMoneyFromInt(report.Boxes)).Round(2)
	} else {
		report.AvgPricePerBox = types.Zero()
	}
	return report, nil
}
