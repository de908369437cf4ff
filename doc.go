// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Command pollsync is a terminal client for the poll API.

It keeps a local mirror of polls consistent with the server, remembers which
polls this user has voted on so a second vote is refused without a network
call, and renders percentages, leaders, countdowns and CSV exports.

# Usage

	pollsync login -email me@example.com -password secret
	pollsync list -filter pending
	pollsync show <poll-id>
	pollsync vote <poll-id> 2
	pollsync results <poll-id>
	pollsync export <poll-id> -o results.csv
	pollsync watch <poll-id>

Admins can also create and close polls:

	pollsync create -title Lunch -description "Where?" -deadline 48h -option Pizza -option Soup
	pollsync close <poll-id>

# Configuration

Global flags come before the command and fall back to the environment:

  - POLLSYNC_API_URL (-api): API base URL (default: http://localhost:3318/api)
  - POLLSYNC_STORE (-store): file, sqlite, postgres or memory (default: file)
  - POLLSYNC_STORE_DSN (-store-dsn): path or connection string for local state
  - POLLSYNC_TIMEOUT (-timeout): per-request timeout (default: 15s)

A .env file in the working directory is loaded first when present. Logs go to
stderr as text on a terminal and JSON otherwise; -v enables debug output.

# Architecture

  - apiclient: HTTP client for the poll API, response shape decoding
  - pollcache: local poll state, vote submission, dashboard filters
  - ledger: durable record of this user's votes
  - session: bearer token and role
  - storage: file, sqlite and postgres key/value backends
  - aggregate: percentages, leader, durations, CSV export
  - countdown: once-per-second deadline ticker

The reference server lives in cmd/pollserver with handlers, router,
middleware, auth and db.
*/
package main
