// Package audit records who changed historical records and how.
// Approvals and direct edits of sales both leave an entry here, so the
// ledger's history can always be reconstructed.
package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Action identifies what kind of mutation produced an entry.
type Action string

const (
	ActionApprove    Action = "approve_change_request"
	ActionReject     Action = "reject_change_request"
	ActionDirectEdit Action = "direct_edit"
)

// Entry is a single audit record.
type Entry struct {
	ID        int64           `db:"id" json:"id"`
	Entity    string          `db:"entity" json:"entity"`
	EntityID  int64           `db:"entity_id" json:"entityId"`
	Action    Action          `db:"action" json:"action"`
	Actor     string          `db:"actor" json:"actor"`
	Changes   json.RawMessage `db:"changes" json:"changes,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// Recorder persists audit entries.
// Implementations must never fail the business operation on their own
// validation; a lost audit write is surfaced as an error by the caller's
// transaction instead.
type Recorder interface {
	Record(ctx context.Context, entry *Entry) error
}

// Diff marshals a before/after pair for an Entry's Changes field.
func Diff(before, after any) (json.RawMessage, error) {
	return json.Marshal(map[string]any{"before": before, "after": after})
}
