// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the reference poll API.

# Handler Types

Each handler is a struct holding the database:

  - AuthHandler: account signup and login
  - PollHandler: listing, fetching, creating, voting, and closing polls

Both are built from an open *sql.DB:

	authHandler := handlers.NewAuthHandler(db)
	pollHandler := handlers.NewPollHandler(db)

# Authentication

Login issues a random session token. Requests that need an identity send
"Authorization: Bearer <token>". Missing or unknown tokens get 401; non-admin
users get 403 on admin routes.

# Endpoints

	POST  /api/auth/signup       → Signup (201, user with role, no token)
	POST  /api/auth/login        → Login (user with role and token)
	GET   /api/polls             → ListPolls ({"polls": [...]})
	GET   /api/polls/{id}        → GetPoll
	POST  /api/polls             → CreatePoll (admin; returns the new poll)
	POST  /api/polls/{id}/vote   → Vote (returns the updated poll)
	PATCH /api/polls/{id}/status → UpdateStatus (admin; {"status": ...})

# Voting Rules

Each user may vote once per poll; a second attempt gets 409 "already voted".
Votes on a closed poll, or after its deadline, get 409 "poll closed". An
option that does not belong to the poll gets 400 "invalid option". The vote
and the option counter are written in one transaction, and totalVotes is the
sum of the option counters.

# Status

Polls start active and may only be closed. Repeating the current status is a
no-op; reopening a closed poll gets 409.

# Error Responses

All errors use the ErrorResponse format:

	{"error": "Conflict", "message": "already voted"}

Clients surface "message" verbatim.
*/
package handlers
