// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// DriverName maps a database type ("sqlite" or "postgres") to the
// database/sql driver registered for it.
func DriverName(databaseType string) string {
	if databaseType == "postgres" {
		return "postgres"
	}
	return "sqlite"
}

// CreateSchema creates all tables needed by the reference API server.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range serverSchema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// CreateClientSchema creates the key/value table backing the client's
// durable store.
func CreateClientSchema(db *sql.DB) error {
	if _, err := db.Exec(clientSchema); err != nil {
		return fmt.Errorf("failed to create client schema: %w", err)
	}
	return nil
}

// Timestamps are unix milliseconds so the same statements run on sqlite and
// postgres. Statements are executed one at a time for the same reason.
var serverSchema = []string{
	`CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
    created_at BIGINT NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS session_token (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    created_at BIGINT NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    deadline BIGINT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'closed')),
    created_by TEXT NOT NULL,
    created_at BIGINT NOT NULL
)`,

	`CREATE INDEX IF NOT EXISTS idx_poll_status ON poll(status)`,

	`CREATE TABLE IF NOT EXISTS poll_option (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    text TEXT NOT NULL,
    votes INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0)
)`,

	`CREATE INDEX IF NOT EXISTS idx_poll_option_poll_id ON poll_option(poll_id)`,

	`CREATE TABLE IF NOT EXISTS vote (
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    option_id TEXT NOT NULL REFERENCES poll_option(id) ON DELETE CASCADE,
    cast_at BIGINT NOT NULL,
    PRIMARY KEY (poll_id, user_id)
)`,
}

const clientSchema = `
CREATE TABLE IF NOT EXISTS client_state (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at BIGINT NOT NULL
)`
