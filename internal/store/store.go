// Package store provides a fault-absorbing JSON key-value store and the
// throttle used to coalesce writes to it.
package store

import (
	"encoding/json"

	"github.com/j-veylop/yoga-coach-tui/internal/logger"
)

// Backend is the raw string storage behind a Store.
type Backend interface {
	Load(key string) (string, bool, error)
	Save(key, value string) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
}

// Store reads and writes JSON values. Every storage or encoding fault is
// logged and absorbed; callers only ever see "absent".
type Store struct {
	backend Backend
}

// New wraps backend. A nil backend produces an unavailable store whose
// operations all no-op.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Available reports whether a backend is attached.
func (s *Store) Available() bool {
	return s != nil && s.backend != nil
}

// Get decodes the value under key into dest. It returns false when the store
// is unavailable, the key is absent or empty, or the value does not decode.
func (s *Store) Get(key string, dest any) bool {
	if !s.Available() {
		return false
	}

	raw, ok, err := s.backend.Load(key)
	if err != nil {
		logger.Warn("store load failed", "key", key, "error", err)
		return false
	}
	if !ok || raw == "" {
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logger.Debug("store value not decodable", "key", key, "error", err)
		return false
	}
	return true
}

// GetOr returns the decoded value under key, or fallback.
func GetOr[T any](s *Store, key string, fallback T) T {
	var v T
	if !s.Get(key, &v) {
		return fallback
	}
	return v
}

// Set encodes value as JSON and writes it under key.
func (s *Store) Set(key string, value any) {
	if !s.Available() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("store encode failed", "key", key, "error", err)
		return
	}

	if err := s.backend.Save(key, string(data)); err != nil {
		logger.Warn("store save failed", "key", key, "error", err)
	}
}

// Remove deletes key.
func (s *Store) Remove(key string) {
	if !s.Available() {
		return
	}
	if err := s.backend.Delete(key); err != nil {
		logger.Warn("store delete failed", "key", key, "error", err)
	}
}

// Keys lists stored keys with the given prefix. Faults yield nil.
func (s *Store) Keys(prefix string) []string {
	if !s.Available() {
		return nil
	}
	keys, err := s.backend.Keys(prefix)
	if err != nil {
		logger.Warn("store key scan failed", "prefix", prefix, "error", err)
		return nil
	}
	return keys
}
