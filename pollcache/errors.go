// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pollcache

import "errors"

var (
	ErrAlreadyVoted = errors.New("already voted on this poll")
	ErrVoteInFlight = errors.New("a vote for this poll is already being submitted")
	ErrNoOption     = errors.New("please select an option")
	ErrInvalidPoll  = errors.New("invalid poll")
)

// Default messages shown when the server sent none
const (
	msgFetchAll = "Failed to fetch polls"
	msgFetchOne = "Failed to fetch poll"
	msgCreate   = "Failed to create poll"
	msgVote     = "Failed to submit vote"
	msgStatus   = "Failed to update poll status"
)

// FetchError is a failed read of one or all polls.
type FetchError struct {
	PollID  string // empty for the list
	Message string
	Err     error
}

func (e *FetchError) Error() string { return e.Message }
func (e *FetchError) Unwrap() error { return e.Err }

// NotFoundError means the API answered 404 for PollID.
type NotFoundError struct {
	PollID  string
	Message string
	Err     error
}

func (e *NotFoundError) Error() string { return e.Message }
func (e *NotFoundError) Unwrap() error { return e.Err }

// VoteRejected means the API declined the vote: already voted, poll closed,
// invalid option, or the request never reached it.
type VoteRejected struct {
	PollID string
	Reason string
	Err    error
}

func (e *VoteRejected) Error() string { return e.Reason }
func (e *VoteRejected) Unwrap() error { return e.Err }

type CreateFailed struct {
	Message string
	Err     error
}

func (e *CreateFailed) Error() string { return e.Message }
func (e *CreateFailed) Unwrap() error { return e.Err }

// StatusUpdateFailed is returned after the optimistic status patch has been
// reverted.
type StatusUpdateFailed struct {
	PollID  string
	Status  string
	Message string
	Err     error
}

func (e *StatusUpdateFailed) Error() string { return e.Message }
func (e *StatusUpdateFailed) Unwrap() error { return e.Err }
