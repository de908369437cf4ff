// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing and token generation for the
reference poll server.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, attempt) // ErrInvalidCredentials on mismatch

Passwords shorter than MinPasswordLen are rejected with ErrPasswordTooShort.

# Session Tokens

Session tokens are random 24-byte (192-bit) secrets issued on login:

	token, err := auth.GenerateSessionToken()

Clients send them back as "Authorization: Bearer <token>".

# ID Generation

Users and polls get UUIDs; options get short random hex IDs:

	pollID := auth.NewRecordID()
	optionID, err := auth.GenerateID(8) // 16 hex characters
*/
package auth
