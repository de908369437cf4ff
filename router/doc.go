// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the reference poll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db)

# Endpoints

Health:

	GET /health

Accounts:

	POST /api/auth/signup - Create account
	POST /api/auth/login  - Issue bearer token

Polls:

	GET   /api/polls             - List polls
	GET   /api/polls/{id}        - Poll with options and counts
	POST  /api/polls             - Create poll (admin)
	POST  /api/polls/{id}/vote   - Cast a vote
	PATCH /api/polls/{id}/status - Close a poll (admin)

Every /api route is wrapped in middleware.WithLogging, which also assigns
and echoes X-Request-ID.
*/
package router
