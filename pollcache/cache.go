// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pollcache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/danielhkuo/pollsync/apiclient"
	"github.com/danielhkuo/pollsync/ledger"
	"github.com/danielhkuo/pollsync/models"
)

// API is the Remote Poll API as the cache uses it. *apiclient.Client
// satisfies it.
type API interface {
	ListPolls(ctx context.Context) ([]models.Poll, error)
	GetPoll(ctx context.Context, pollID string) (models.Poll, error)
	CreatePoll(ctx context.Context, req models.CreatePollRequest) (apiclient.PollSet, error)
	Vote(ctx context.Context, pollID, optionID string) (models.Poll, error)
	UpdateStatus(ctx context.Context, pollID, status string) (string, error)
}

// Cache mirrors the remote poll collection and the focused poll. It is safe
// for concurrent use; remote calls run without the lock held.
type Cache struct {
	api    API
	ledger *ledger.Ledger

	mu       sync.Mutex
	state    State
	pending  int                 // outstanding remote calls
	inFlight map[string]struct{} // poll IDs with a vote being submitted
}

func New(api API, l *ledger.Ledger) *Cache {
	return &Cache{
		api:      api,
		ledger:   l,
		state:    State{Polls: []models.Poll{}},
		inFlight: make(map[string]struct{}),
	}
}

// LoadAll replaces the collection with the server's. On failure the previous
// collection stays in place.
func (c *Cache) LoadAll(ctx context.Context) error {
	c.begin()

	polls, err := c.api.ListPolls(ctx)
	if err != nil {
		msg := apiclient.Message(err, msgFetchAll)
		c.end(msg, nil)
		slog.Warn("failed to load polls", "error", err)
		return &FetchError{Message: msg, Err: err}
	}

	c.end("", func(s State) State { return reduceLoadAll(s, polls) })
	return nil
}

// LoadOne fetches a poll and focuses it.
func (c *Cache) LoadOne(ctx context.Context, pollID string) error {
	c.begin()

	poll, err := c.api.GetPoll(ctx, pollID)
	if err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			msg := apiclient.Message(err, "Poll not found")
			c.end(msg, nil)
			return &NotFoundError{PollID: pollID, Message: msg, Err: err}
		}
		msg := apiclient.Message(err, msgFetchOne)
		c.end(msg, nil)
		slog.Warn("failed to load poll", "poll_id", pollID, "error", err)
		return &FetchError{PollID: pollID, Message: msg, Err: err}
	}

	c.end("", func(s State) State { return reduceLoadOne(s, poll) })
	return nil
}

// RecordVote submits a vote. It is refused without a network call when the
// ledger already holds a vote for the poll or another submission for it is
// outstanding. On success the server's poll replaces the cached copies and
// the ledger records the choice.
func (c *Cache) RecordVote(ctx context.Context, pollID, optionID string) error {
	if optionID == "" {
		return ErrNoOption
	}
	if c.ledger.HasVoted(pollID) {
		return ErrAlreadyVoted
	}

	c.mu.Lock()
	if c.ledger.HasVoted(pollID) {
		c.mu.Unlock()
		return ErrAlreadyVoted
	}
	if _, busy := c.inFlight[pollID]; busy {
		c.mu.Unlock()
		return ErrVoteInFlight
	}
	c.inFlight[pollID] = struct{}{}
	c.beginLocked()
	c.mu.Unlock()

	poll, err := c.api.Vote(ctx, pollID, optionID)
	if err != nil {
		reason := apiclient.Message(err, msgVote)
		c.finishVote(pollID, "", reason, nil)
		slog.Info("vote rejected", "poll_id", pollID, "reason", reason)
		return &VoteRejected{PollID: pollID, Reason: reason, Err: err}
	}

	if poll.ID == "" {
		poll.ID = pollID
	}
	c.finishVote(pollID, optionID, "", func(s State) State { return reduceVote(s, poll) })

	slog.Info("vote recorded", "poll_id", pollID, "option_id", optionID)
	return nil
}

// finishVote records the ledger entry before the in-flight mark is dropped.
// Both happen under c.mu, and RecordVote checks both under c.mu, so a
// follow-up vote always sees one or the other.
func (c *Cache) finishVote(pollID, optionID, errMsg string, reduce func(State) State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reduce != nil {
		if err := c.ledger.RecordLocalVote(pollID, optionID); err != nil {
			slog.Warn("failed to persist local vote", "poll_id", pollID, "error", err)
		}
	}
	delete(c.inFlight, pollID)
	c.endLocked(errMsg, reduce)
}

// CreatePoll validates req, sends it, and merges whatever shape the server
// answers with.
func (c *Cache) CreatePoll(ctx context.Context, req models.CreatePollRequest) (apiclient.PollSet, error) {
	req, err := NormalizeCreate(req)
	if err != nil {
		return apiclient.PollSet{}, err
	}

	c.begin()

	set, err := c.api.CreatePoll(ctx, req)
	if err != nil {
		msg := apiclient.Message(err, msgCreate)
		c.end(msg, nil)
		slog.Warn("failed to create poll", "title", req.Title, "error", err)
		return apiclient.PollSet{}, &CreateFailed{Message: msg, Err: err}
	}

	if set.Kind == apiclient.KindNone {
		slog.Warn("create poll response carried no poll data", "title", req.Title)
	}
	c.end("", func(s State) State { return reduceCreate(s, set) })
	return set, nil
}

// SetStatus patches the cached status immediately, then asks the server. If
// the server refuses, the previous status is restored unless something else
// changed it in the meantime.
func (c *Cache) SetStatus(ctx context.Context, pollID, status string) error {
	if status != models.StatusActive && status != models.StatusClosed {
		return &StatusUpdateFailed{PollID: pollID, Status: status, Message: "invalid status: " + status, Err: ErrInvalidPoll}
	}

	c.mu.Lock()
	next, prev, found := reduceStatus(c.state, pollID, status)
	c.state = next
	c.beginLocked()
	c.mu.Unlock()

	ack, err := c.api.UpdateStatus(ctx, pollID, status)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		msg := apiclient.Message(err, msgStatus)
		c.endLocked(msg, func(s State) State {
			if !found || currentStatus(s, pollID) != status {
				return s
			}
			reverted, _, _ := reduceStatus(s, pollID, prev)
			return reverted
		})
		slog.Warn("failed to update poll status", "poll_id", pollID, "status", status, "error", err)
		return &StatusUpdateFailed{PollID: pollID, Status: status, Message: msg, Err: err}
	}

	c.endLocked("", func(s State) State {
		if ack == status || !found {
			return s
		}
		patched, _, _ := reduceStatus(s, pollID, ack)
		return patched
	})
	slog.Info("poll status updated", "poll_id", pollID, "status", ack)
	return nil
}

// Select focuses a poll already in hand without a fetch.
func (c *Cache) Select(poll models.Poll) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = reduceLoadOne(c.state, poll)
}

// ClearError drops the last failure message.
func (c *Cache) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Err = ""
}

// State returns a copy of the current state.
func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Polls returns a copy of the cached collection.
func (c *Cache) Polls() []models.Poll {
	return c.State().Polls
}

// Focused returns the focused poll.
func (c *Cache) Focused() (models.Poll, bool) {
	s := c.State()
	if s.Focused == nil {
		return models.Poll{}, false
	}
	return *s.Focused, true
}

// Find returns the cached poll with pollID, checking the focused poll too.
func (c *Cache) Find(pollID string) (models.Poll, bool) {
	s := c.State()
	for _, p := range s.Polls {
		if p.ID == pollID {
			return p, true
		}
	}
	if s.Focused != nil && s.Focused.ID == pollID {
		return *s.Focused, true
	}
	return models.Poll{}, false
}

func (c *Cache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Loading
}

// Err is the last failure message, verbatim from the server when it sent one.
func (c *Cache) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Err
}

// HasVoted reports the ledger's view of pollID.
func (c *Cache) HasVoted(pollID string) bool {
	return c.ledger.HasVoted(pollID)
}

// Ledger exposes the vote ledger the cache gates on.
func (c *Cache) Ledger() *ledger.Ledger {
	return c.ledger
}

func (c *Cache) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.beginLocked()
}

func (c *Cache) beginLocked() {
	c.pending++
	c.state.Loading = true
	c.state.Err = ""
}

func (c *Cache) end(errMsg string, reduce func(State) State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked(errMsg, reduce)
}

func (c *Cache) endLocked(errMsg string, reduce func(State) State) {
	if reduce != nil {
		c.state = reduce(c.state)
	}
	c.pending--
	c.state.Loading = c.pending > 0
	if errMsg != "" {
		c.state.Err = errMsg
	}
}

func currentStatus(s State, pollID string) string {
	for _, p := range s.Polls {
		if p.ID == pollID {
			return p.Status
		}
	}
	if s.Focused != nil && s.Focused.ID == pollID {
		return s.Focused.Status
	}
	return ""
}
