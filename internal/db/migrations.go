package db

import (
	"context"
	"fmt"

	"github.com/j-veylop/yoga-coach-tui/internal/logger"
)

// Migrate brings an existing database file up to schemaVersion.
// Version 0 files predate the updated_at column being populated; their
// timestamps are backfilled so retention queries see a real value.
func (db *DB) Migrate() error {
	ctx := context.Background()

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version >= schemaVersion {
		return nil
	}

	if version < 1 {
		if _, err := db.ExecContext(ctx,
			`UPDATE kv_store SET updated_at = CURRENT_TIMESTAMP WHERE updated_at IS NULL`); err != nil {
			return fmt.Errorf("failed to backfill updated_at: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}

	logger.Debug("database migrated", "from", version, "to", schemaVersion)
	return nil
}
