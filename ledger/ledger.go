// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/pollsync/storage"
)

// StorageKey is the durable key holding the JSON-encoded ledger.
const StorageKey = "userVotes"

// ErrAlreadyRecorded is returned when a poll already has a different choice.
var ErrAlreadyRecorded = errors.New("vote already recorded for poll")

// Ledger records which option this client chose per poll. It only gates the
// client's own UI; it is keyed by local storage, not by identity.
type Ledger struct {
	store storage.Store

	mu    sync.RWMutex
	votes map[string]string // poll_id -> option_id
}

// Load reads the ledger from store. Missing, unreadable, or corrupt data
// yields an empty ledger; Load never fails.
func Load(store storage.Store) *Ledger {
	l := &Ledger{store: store, votes: make(map[string]string)}

	data, ok, err := store.Get(StorageKey)
	if err != nil {
		slog.Warn("vote ledger unavailable, starting empty", "error", err)
		return l
	}
	if !ok || len(data) == 0 {
		return l
	}

	var votes map[string]string
	if err := json.Unmarshal(data, &votes); err != nil {
		slog.Warn("vote ledger corrupt, starting empty", "error", err)
		return l
	}
	for pollID, optionID := range votes {
		if pollID != "" {
			l.votes[pollID] = optionID
		}
	}
	return l
}

// HasVoted reports whether a vote for pollID was recorded locally.
func (l *Ledger) HasVoted(pollID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.votes[pollID]
	return ok
}

// Choice returns the option recorded for pollID.
func (l *Ledger) Choice(pollID string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	optionID, ok := l.votes[pollID]
	return optionID, ok
}

// RecordLocalVote records the choice for pollID and persists the whole
// ledger. Recording the same choice twice does not write again. An existing
// entry is never replaced: a different option returns ErrAlreadyRecorded.
// On a persistence failure the in-memory ledger is left unchanged.
func (l *Ledger) RecordLocalVote(pollID, optionID string) error {
	if pollID == "" {
		return fmt.Errorf("poll id is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.votes[pollID]; ok {
		if prev == optionID {
			return nil
		}
		return ErrAlreadyRecorded
	}

	next := make(map[string]string, len(l.votes)+1)
	for k, v := range l.votes {
		next[k] = v
	}
	next[pollID] = optionID

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode vote ledger: %w", err)
	}
	if err := l.store.Set(StorageKey, data); err != nil {
		return fmt.Errorf("failed to persist vote ledger: %w", err)
	}

	l.votes = next
	return nil
}

// Snapshot returns a copy of every recorded vote.
func (l *Ledger) Snapshot() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]string, len(l.votes))
	for k, v := range l.votes {
		out[k] = v
	}
	return out
}

// Len returns the number of polls voted on.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.votes)
}
