// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration for
both binaries in this module.

# Server

	cfg, err := cliparse.ParseServerFlags(os.Args[1:])

	-p   Server port            (PORT, default 3318)
	-d   Database URL           (DATABASE_URL, default file:pollserver.db for sqlite)
	-t   sqlite or postgres     (DATABASE_TYPE, default sqlite)

# Client

ParseClientFlags reads the global flags in front of a subcommand and returns
the rest:

	cfg, rest, err := cliparse.ParseClientFlags(os.Args[1:])

	-api        Poll API base URL       (POLLSYNC_API_URL, default http://localhost:3318/api)
	-store      file, sqlite, postgres, memory (POLLSYNC_STORE, default file)
	-store-dsn  path or connection string (POLLSYNC_STORE_DSN)
	-timeout    per-request timeout     (POLLSYNC_TIMEOUT, default 15s)
	-v          debug logging

CLI flags take precedence over environment variables. Both mains load a .env
file into the environment before parsing.
*/
package cliparse
