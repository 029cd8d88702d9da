package session

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// Storage is durable string key/value storage for session credentials.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStorage keeps entries for the lifetime of the process.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// SQLStorage persists entries in a SQLite table so they survive restarts.
type SQLStorage struct {
	db *sql.DB
}

// NewSQLStorage creates the backing table if needed.
func NewSQLStorage(db *sql.DB) (*SQLStorage, error) {
	const stmt = `
	CREATE TABLE IF NOT EXISTS session_entries (
		key TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := db.Exec(stmt); err != nil {
		return nil, fmt.Errorf("failed to prepare session storage: %w", err)
	}
	return &SQLStorage{db: db}, nil
}

func (s *SQLStorage) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM session_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLStorage) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO session_entries(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

func (s *SQLStorage) Remove(key string) error {
	_, err := s.db.Exec("DELETE FROM session_entries WHERE key = ?", key)
	return err
}
