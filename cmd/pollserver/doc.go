// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Command pollserver runs the reference poll API that the pollsync client talks
to.

# Starting the Server

With no configuration it serves on port 3318 from a local sqlite file:

	go run ./cmd/pollserver

Or against PostgreSQL:

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... go run ./cmd/pollserver

# Configuration

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): connection string (default: file:pollserver.db)

A .env file in the working directory is loaded first when present.
*/
package main
