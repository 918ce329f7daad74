package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/klauspost/compress/zstd"

	"fruitmandi/internal/domain/audit"
)

const auditLogTable = "audit_log"

// CompressionAlgo identifies how an audit payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// Compile-time check that AuditStore implements audit.Recorder.
var _ audit.Recorder = (*AuditStore)(nil)

// AuditStore persists audit entries. Large change payloads are
// zstd-compressed; small ones stay as plain JSONB for queryability.
type AuditStore struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
	encoder *zstd.Encoder

	compressThreshold int // bytes
}

// NewAuditStore creates a new audit store.
func NewAuditStore(txm *TxManager) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &AuditStore{
		txm:               txm,
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder:           encoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Record inserts an audit entry, joining the caller's transaction when one
// is open so the entry commits or rolls back with the business write.
func (s *AuditStore) Record(ctx context.Context, entry *audit.Entry) error {
	var (
		changes    any
		compressed []byte
		algo       = CompressionNone
	)
	if len(entry.Changes) > 0 {
		if len(entry.Changes) > s.compressThreshold {
			compressed = s.encoder.EncodeAll(entry.Changes, nil)
			algo = CompressionZstd
		} else {
			changes = entry.Changes
		}
	}

	q := s.builder.Insert(auditLogTable).
		Columns("entity", "entity_id", "action", "actor", "changes", "changes_compressed", "compression_algo").
		Values(entry.Entity, entry.EntityID, string(entry.Action), entry.Actor, changes, compressed, string(algo)).
		Suffix("RETURNING id, created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := s.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
