package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/yoga-coach-tui/internal/logger"
)

// Load returns the raw value stored under key. The bool is false when the key
// is absent.
func (db *DB) Load(key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(context.Background(), sqlSelectValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load key %s: %w", key, err)
	}
	return value, true, nil
}

// Save inserts or replaces the value stored under key.
func (db *DB) Save(key, value string) error {
	_, err := db.ExecContext(context.Background(), sqlUpsertValue,
		key,
		value,
		time.Now().UTC().Format(sqlTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to save key %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (db *DB) Delete(key string) error {
	if _, err := db.ExecContext(context.Background(), sqlDeleteValue, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Keys lists every key starting with prefix, sorted.
func (db *DB) Keys(prefix string) ([]string, error) {
	rows, err := db.QueryContext(context.Background(), sqlSelectKeysByPrefix, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query keys: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// Count returns the number of stored keys.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM kv_store").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count keys: %w", err)
	}
	return n, nil
}
