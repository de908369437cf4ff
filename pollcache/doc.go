// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package pollcache keeps a local mirror of the remote poll collection and the
focused poll, and runs the vote-submission flow.

# State

A Cache owns one State value. Every change goes through a pure reduce
function (load all, load one, vote, create, status) that returns the next
State; callers only ever see copies.

	cache := pollcache.New(client, ledger.Load(store))
	if err := cache.LoadAll(ctx); err != nil { ... } // old polls kept on error
	polls := cache.Polls()

# Voting

RecordVote refuses locally, before any request, when the ledger already shows
a vote for the poll (ErrAlreadyVoted) or a submission for it is still
outstanding (ErrVoteInFlight). On success the server's poll replaces both the
collection entry and the focused poll, and the ledger records the choice. On
failure the cache is untouched and a *VoteRejected carries the reason.

# Status

SetStatus patches the cached status before the request. If the server
refuses, the previous status is put back and *StatusUpdateFailed is
returned.

# Errors

FetchError, NotFoundError, VoteRejected, CreateFailed and StatusUpdateFailed
all carry the message shown to the user, which is also kept in State.Err.
Nothing is retried.
*/
package pollcache
