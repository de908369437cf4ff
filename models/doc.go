// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the wire and domain types shared by the client and the
reference API server.

# Request Types

  - SignupRequest: name, email, password, role
  - LoginRequest: email, password
  - CreatePollRequest: title, description, deadline, options
  - VoteRequest: optionId
  - StatusRequest: status

# Response Types

  - AuthResponse: user fields plus token (login only)
  - StatusResponse: status acknowledgement
  - PollsEnvelope: { polls: [...] } wrapper
  - ErrorResponse: error, message

# Domain Types

  - Poll: title, description, deadline, status, ordered options, totalVotes
  - Option: id, text, votes
  - User: id, name, email, role

Poll and Option identifiers decode from either "id" or "_id"; they always
encode as "id".

# Constants

Status values:

	StatusActive = "active"
	StatusClosed = "closed"

Roles:

	RoleUser  = "user"
	RoleAdmin = "admin"
*/
package models
