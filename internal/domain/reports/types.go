// Package reports provides read-only aggregation over the ledger store.
// Nothing in this package mutates data.
package reports

import (
	"time"

	"fruitmandi/internal/core/types"
	"fruitmandi/internal/domain/trade"
)

// VendorSummaryRow is one vendor's financial position.
type VendorSummaryRow struct {
	VendorID          int64       `json:"vendorId"`
	VendorName        string      `json:"vendorName"`
	TotalSales        types.Money `json:"totalSales"`
	COGS              types.Money `json:"cogs"`
	Profit            types.Money `json:"profit"`
	ProfitMarginPct   types.Money `json:"profitMarginPct"`
	Payments          types.Money `json:"payments"`
	NetDue            types.Money `json:"netDue"`
	DepositsCollected types.Money `json:"depositsCollected"`
	DepositsRefunded  types.Money `json:"depositsRefunded"`
	NetDepositsHeld   types.Money `json:"netDepositsHeld"`
}

// DailySummary aggregates one date's activity.
type DailySummary struct {
	Date             time.Time   `json:"date"`
	TotalSales       types.Money `json:"totalSales"`
	BoxesSold        int64       `json:"boxesSold"`
	PaymentsReceived types.Money `json:"paymentsReceived"`
	BoxesReturned    int64       `json:"boxesReturned"`
	DepositsRefunded types.Money `json:"depositsRefunded"`
	COGS             types.Money `json:"cogs"`
	Profit           types.Money `json:"profit"`
	NumTransactions  int         `json:"numTransactions"`
}

// EntryType tags a vendor ledger line.
type EntryType string

const (
	EntrySale    EntryType = "SALE"
	EntryPayment EntryType = "PAYMENT"
	EntryReturn  EntryType = "RETURN"
)

// LedgerEntry is one line of a vendor's chronological ledger.
// Qty is display-only: positive boxes for sales, negative for returns.
type LedgerEntry struct {
	Date            time.Time   `json:"date"`
	Type            EntryType   `json:"type"`
	Fruit           string      `json:"fruit,omitempty"`
	Qty             int64       `json:"qty"`
	Amount          types.Money `json:"amount"`
	Deposit         types.Money `json:"deposit"`
	Note            string      `json:"note,omitempty"`
	RunningDue      types.Money `json:"runningDue"`
	RunningDeposits types.Money `json:"runningDeposits"`
}

// SalesRangeReport aggregates sales over an inclusive date range.
type SalesRangeReport struct {
	From           time.Time     `json:"from"`
	To             time.Time     `json:"to"`
	Revenue        types.Money   `json:"revenue"`
	Boxes          int64         `json:"boxes"`
	AvgPricePerBox types.Money   `json:"avgPricePerBox"`
	Sales          []*trade.Sale `json:"sales"`
}
