package db

// SQL statements shared by the key-value queries.
const (
	sqlSelectValue = `SELECT value FROM kv_store WHERE key = ?`

	sqlUpsertValue = `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	sqlDeleteValue = `DELETE FROM kv_store WHERE key = ?`

	// The prefix is matched with substr rather than LIKE so '_' in keys is literal.
	sqlSelectKeysByPrefix = `SELECT key FROM kv_store WHERE substr(key, 1, ?) = ? ORDER BY key`

	sqlTimeFormat = "2006-01-02 15:04:05"
)

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1
