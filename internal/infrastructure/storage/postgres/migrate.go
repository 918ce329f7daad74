package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"fruitmandi/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates the tables and indexes if they do not exist.
// The DDL is idempotent; servers apply it on startup.
func ApplySchema(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info(ctx, "database schema applied")
	return nil
}
