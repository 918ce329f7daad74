// Package stock provides FIFO lot tracking and average-cost valuation.
package stock

import (
	"strings"
	"time"

	"fruitmandi/internal/core/types"
)

// Lot is a single intake of boxes of one fruit.
// Remaining only ever decreases (FIFO depletion); an exhausted lot is kept
// because its quantity and cost still feed the weighted-average valuation.
type Lot struct {
	ID int64 `db:"id" json:"id"`

	// Seq is an explicit monotonic sequence number assigned at creation.
	// It breaks FIFO ties between lots with the same intake date, so
	// depletion order is deterministic on any storage backend.
	Seq int64 `db:"seq" json:"seq"`

	Fruit      string      `db:"fruit" json:"fruit"`
	Quantity   int64       `db:"quantity" json:"quantity"`
	CostPrice  types.Money `db:"cost_price" json:"costPrice"`
	IntakeDate time.Time   `db:"intake_date" json:"intakeDate"`
	Remaining  int64       `db:"remaining" json:"remaining"`
}

// NormalizeFruit maps user input to the canonical fruit key (upper-case,
// trimmed). All engine operations expect normalized keys.
func NormalizeFruit(fruit string) string {
	return strings.ToUpper(strings.TrimSpace(fruit))
}
