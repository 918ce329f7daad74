package dto

import (
	"fruitmandi/internal/core/types"
	"fruitmandi/internal/domain/reports"
)

// DailySummaryResponse aggregates one date's activity.
type DailySummaryResponse struct {
	Date             string      `json:"date"`
	TotalSales       types.Money `json:"totalSales"`
	BoxesSold        int64       `json:"boxesSold"`
	PaymentsReceived types.Money `json:"paymentsReceived"`
	BoxesReturned    int64       `json:"boxesReturned"`
	DepositsRefunded types.Money `json:"depositsRefunded"`
	COGS             types.Money `json:"cogs"`
	Profit           types.Money `json:"profit"`
	NumTransactions  int         `json:"numTransactions"`
}

// FromDailySummary creates DailySummaryResponse from reports.DailySummary.
func FromDailySummary(d *reports.DailySummary) DailySummaryResponse {
	return DailySummaryResponse{
		Date:             FormatDate(d.Date),
		TotalSales:       d.TotalSales,
		BoxesSold:        d.BoxesSold,
		PaymentsReceived: d.PaymentsReceived,
		BoxesReturned:    d.BoxesReturned,
		DepositsRefunded: d.DepositsRefunded,
		COGS:             d.COGS,
		Profit:           d.Profit,
		NumTransactions:  d.NumTransactions,
	}
}

// LedgerEntryResponse is one vendor ledger line with running balances.
type LedgerEntryResponse struct {
	Date            string      `json:"date"`
	Type            string      `json:"type"`
	Fruit           string      `json:"fruit,omitempty"`
	Qty             int64       `json:"qty"`
	Amount          types.Money `json:"amount"`
	Deposit         types.Money `json:"deposit"`
	Note            string      `json:"note,omitempty"`
	RunningDue      types.Money `json:"runningDue"`
	RunningDeposits types.Money `json:"runningDeposits"`
}

// FromLedger maps ledger entries.
func FromLedger(entries []reports.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LedgerEntryResponse{
			Date:            FormatDate(e.Date),
			Type:            string(e.Type),
			Fruit:           e.Fruit,
			Qty:             e.Qty,
			Amount:          e.Amount,
			Deposit:         e.Deposit,
			Note:            e.Note,
			RunningDue:      e.RunningDue,
			RunningDeposits: e.RunningDeposits,
		})
	}
	return out
}

// SalesRangeResponse aggregates sales over an inclusive date range.
type SalesRangeResponse struct {
	From           string         `json:"from"`
	To             string         `json:"to"`
	Revenue        types.Money    `json:"revenue"`
	Boxes          int64          `json:"boxes"`
	AvgPricePerBox types.Money    `json:"avgPricePerBox"`
	Sales          []SaleResponse `json:"sales"`
}

// FromSalesRange creates SalesRangeResponse from reports.SalesRangeReport.
func FromSalesRange(r *reports.SalesRangeReport) SalesRangeResponse {
	return SalesRangeResponse{
		From:           FormatDate(r.From),
		To:             FormatDate(r.To),
		Revenue:        r.Revenue,
		Boxes:          r.Boxes,
		AvgPricePerBox: r.AvgPricePerBox,
		Sales:          FromSales(r.Sales),
	}
}
