// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollsync/db"
)

// Backend kinds accepted by Open
const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

var ErrUnknownKind = errors.New("unknown store kind")

// Store is a durable string-keyed blob store. It plays the role browser
// local storage plays for a web client: a handful of keys, read at start and
// written through on every change.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Open returns a store of the given kind. dsn is a file path for "file", a
// data source name for "sqlite" and "postgres", and ignored for "memory".
// Callers should Close the result when it implements io.Closer.
func Open(kind, dsn string) (Store, error) {
	switch kind {
	case KindMemory:
		return NewMemoryStore(), nil
	case KindFile:
		return NewFileStore(dsn)
	case KindSQLite, KindPostgres:
		conn, err := sql.Open(db.DriverName(kind), dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s store: %w", kind, err)
		}
		if kind == KindSQLite {
			// One writer keeps sqlite from returning SQLITE_BUSY.
			conn.SetMaxOpenConns(1)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to reach %s store: %w", kind, err)
		}
		store, err := NewSQLStore(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		store.owned = true
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
