// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db holds the SQL schemas used by pollsync.

# Server Tables

CreateSchema creates the reference API server's tables:

  - app_user: accounts with bcrypt password hashes and a role
  - session_token: bearer tokens issued at login
  - poll: title, description, deadline, status
  - poll_option: ordered options with running vote counts
  - vote: one row per (poll, user)

# Client Table

CreateClientSchema creates client_state, the key/value table behind the
sqlite and postgres variants of the client's durable store.

Both schemas use plain types and unix-millisecond timestamps so they run
unchanged on sqlite (modernc.org/sqlite) and postgres (lib/pq).

	conn, _ := sql.Open(db.DriverName("sqlite"), "pollsync.db")
	if err := db.CreateSchema(conn); err != nil { ... }
*/
package db
