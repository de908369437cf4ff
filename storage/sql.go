// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/pollsync/db"
)

// SQLStore keeps keys in the client_state table of a sqlite or postgres
// database.
type SQLStore struct {
	db    *sql.DB
	owned bool
}

// NewSQLStore wraps an existing connection and ensures the table exists. The
// caller keeps ownership of conn.
func NewSQLStore(conn *sql.DB) (*SQLStore, error) {
	if err := db.CreateClientSchema(conn); err != nil {
		return nil, err
	}
	return &SQLStore{db: conn}, nil
}

func (s *SQLStore) Get(key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM client_state WHERE name = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLStore) Set(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO client_state (name, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM client_state WHERE name = $1`, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Close closes the connection if Open created it.
func (s *SQLStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
