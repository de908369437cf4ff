// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/danielhkuo/pollsync/models"
)

// Kind tags which shape a poll response arrived in.
type Kind int

const (
	// KindNone is a 2xx answer carrying no recognisable poll data.
	KindNone Kind = iota
	// KindSingle is one poll document.
	KindSingle
	// KindCollection is the server's complete poll list.
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindCollection:
		return "collection"
	default:
		return "none"
	}
}

// PollSet is a poll response normalised at the API boundary. For KindSingle
// Polls holds exactly one poll.
type PollSet struct {
	Kind  Kind
	Polls []models.Poll
}

// Single returns the poll of a KindSingle set.
func (s PollSet) Single() (models.Poll, bool) {
	if s.Kind != KindSingle || len(s.Polls) != 1 {
		return models.Poll{}, false
	}
	return s.Polls[0], true
}

// decodePollSet accepts an array of polls, a { polls: [...] } envelope, or a
// single poll object identified by "id" or "_id".
func decodePollSet(body []byte) (PollSet, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return PollSet{Kind: KindNone}, nil
	}

	if body[0] == '[' {
		var polls []models.Poll
		if err := json.Unmarshal(body, &polls); err != nil {
			return PollSet{}, fmt.Errorf("failed to decode poll list: %w", err)
		}
		return PollSet{Kind: KindCollection, Polls: nonNil(polls)}, nil
	}

	if body[0] != '{' {
		return PollSet{}, fmt.Errorf("%w: %.20s", ErrUnexpectedShape, body)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return PollSet{}, fmt.Errorf("failed to decode poll response: %w", err)
	}

	if raw, ok := fields["polls"]; ok {
		var polls []models.Poll
		if err := json.Unmarshal(raw, &polls); err != nil {
			return PollSet{}, fmt.Errorf("failed to decode polls envelope: %w", err)
		}
		return PollSet{Kind: KindCollection, Polls: nonNil(polls)}, nil
	}

	_, hasID := fields["id"]
	_, hasLegacyID := fields["_id"]
	if !hasID && !hasLegacyID {
		return PollSet{Kind: KindNone}, nil
	}

	var poll models.Poll
	if err := json.Unmarshal(body, &poll); err != nil {
		return PollSet{}, fmt.Errorf("failed to decode poll: %w", err)
	}
	return PollSet{Kind: KindSingle, Polls: []models.Poll{poll}}, nil
}

// decodePollList is decodePollSet for the list endpoint, where an object
// without a polls field means an empty list.
func decodePollList(body []byte) ([]models.Poll, error) {
	set, err := decodePollSet(body)
	if err != nil {
		return nil, err
	}
	if set.Kind == KindSingle {
		return nil, fmt.Errorf("%w: single poll from list endpoint", ErrUnexpectedShape)
	}
	return nonNil(set.Polls), nil
}

func nonNil(polls []models.Poll) []models.Poll {
	if polls == nil {
		return []models.Poll{}
	}
	return polls
}
