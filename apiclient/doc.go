// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apiclient is the HTTP client for the Remote Poll API.

	client := apiclient.New("http://localhost:3318/api", apiclient.WithTokenSource(sess))
	polls, err := client.ListPolls(ctx)

Every request carries an X-Request-ID and, when the token source has one, an
Authorization: Bearer header. Non-2xx responses become *APIError; use
errors.Is(err, ErrNotFound) for 404 and Message(err, fallback) to get the
server's text for display.

The list and create endpoints answer in more than one shape. They are decoded
here into a PollSet tagged KindSingle or KindCollection so callers never
inspect raw JSON.
*/
package apiclient
