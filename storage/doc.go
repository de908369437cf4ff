// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package storage provides the client's durable key/value store.

The client persists very little: the vote ledger and the session token and
role. Each lives under one key as an opaque byte value.

# Backends

	storage.Open("memory", "")                      // process lifetime only
	storage.Open("file", "~/.pollsync/state.json")  // one JSON document
	storage.Open("sqlite", "pollsync.db")           // client_state table
	storage.Open("postgres", "postgres://...")      // client_state table

Writes are last-writer-wins. Two processes sharing a backend do not
coordinate beyond that.
*/
package storage
