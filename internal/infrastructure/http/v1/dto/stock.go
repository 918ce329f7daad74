package dto

import (
	"sort"

	"fruitmandi/internal/core/types"
	"fruitmandi/internal/domain/stock"
)

// IntakeRequest for recording a new stock lot.
type IntakeRequest struct {
	Date      string      `json:"date" binding:"required"`
	Fruit     string      `json:"fruit" binding:"required"`
	Quantity  int64       `json:"quantity" binding:"required"`
	CostPrice types.Money `json:"costPrice"`
}

// LotResponse contains stock lot fields.
type LotResponse struct {
	ID         int64       `json:"id"`
	Seq        int64       `json:"seq"`
	Fruit      string      `json:"fruit"`
	Quantity   int64       `json:"quantity"`
	CostPrice  types.Money `json:"costPrice"`
	IntakeDate string      `json:"intakeDate"`
	Remaining  int64       `json:"remaining"`
}

// FromLot creates LotResponse from stock.Lot.
func FromLot(l *stock.Lot) LotResponse {
	return LotResponse{
		ID:         l.ID,
		Seq:        l.Seq,
		Fruit:      l.Fruit,
		Quantity:   l.Quantity,
		CostPrice:  l.CostPrice,
		IntakeDate: FormatDate(l.IntakeDate),
		Remaining:  l.Remaining,
	}
}

// StockRow is one fruit's remaining total.
type StockRow struct {
	Fruit string `json:"fruit"`
	Boxes int64  `json:"boxes"`
}

// FromStockTotals flattens the per-fruit map into rows sorted by fruit.
func FromStockTotals(totals map[string]int64) []StockRow {
	rows := make([]StockRow, 0, len(totals))
	for fruit, boxes := range totals {
		rows = append(rows, StockRow{Fruit: fruit, Boxes: boxes})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Fruit < rows[j].Fruit })
	return rows
}

// AvgCostResponse is a fruit's weighted average cost, rounded for display.
type AvgCostResponse struct {
	Fruit   string      `json:"fruit"`
	AvgCost types.Money `json:"avgCost"`
}
