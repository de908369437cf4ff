// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pollcache

import (
	"github.com/danielhkuo/pollsync/apiclient"
	"github.com/danielhkuo/pollsync/models"
)

// State is the cache contents at one point in time.
type State struct {
	Polls   []models.Poll
	Focused *models.Poll
	Loading bool
	Err     string
}

// clone deep-copies s so callers never alias cached option slices.
func (s State) clone() State {
	out := s
	out.Polls = make([]models.Poll, len(s.Polls))
	for i, p := range s.Polls {
		out.Polls[i] = p.Clone()
	}
	if s.Focused != nil {
		f := s.Focused.Clone()
		out.Focused = &f
	}
	return out
}

// The reduce functions below are the only places State changes. Each takes a
// state and returns the next one without touching its input.

func reduceLoadAll(s State, polls []models.Poll) State {
	next := s.clone()
	next.Polls = dedupe(polls)
	return next
}

func reduceLoadOne(s State, poll models.Poll) State {
	next := s.clone()
	p := poll.Clone()
	next.Focused = &p
	return next
}

// reduceVote swaps in the server's copy of the poll wherever it is cached.
func reduceVote(s State, poll models.Poll) State {
	next := s.clone()
	for i := range next.Polls {
		if next.Polls[i].ID == poll.ID {
			next.Polls[i] = poll.Clone()
		}
	}
	if next.Focused != nil && next.Focused.ID == poll.ID {
		p := poll.Clone()
		next.Focused = &p
	}
	return next
}

// reduceCreate merges a create response: a collection replaces the cache, a
// single poll is upserted by ID, anything else is ignored.
func reduceCreate(s State, set apiclient.PollSet) State {
	switch set.Kind {
	case apiclient.KindCollection:
		return reduceLoadAll(s, set.Polls)
	case apiclient.KindSingle:
		poll, _ := set.Single()
		next := s.clone()
		next.Polls = upsert(next.Polls, poll)
		return next
	default:
		return s.clone()
	}
}

// reduceStatus patches the status of pollID. prev is the status it replaced
// in the collection (or focused poll when the collection lacks it); found is
// false when the poll is not cached at all.
func reduceStatus(s State, pollID, status string) (next State, prev string, found bool) {
	next = s.clone()
	for i := range next.Polls {
		if next.Polls[i].ID == pollID {
			if !found {
				prev = next.Polls[i].Status
				found = true
			}
			next.Polls[i].Status = status
		}
	}
	if next.Focused != nil && next.Focused.ID == pollID {
		if !found {
			prev = next.Focused.Status
			found = true
		}
		next.Focused.Status = status
	}
	return next, prev, found
}

// dedupe copies polls keeping the first position of each ID and the last
// document seen for it.
func dedupe(polls []models.Poll) []models.Poll {
	out := make([]models.Poll, 0, len(polls))
	for _, p := range polls {
		out = upsert(out, p)
	}
	return out
}

func upsert(polls []models.Poll, poll models.Poll) []models.Poll {
	for i := range polls {
		if polls[i].ID == poll.ID {
			polls[i] = poll.Clone()
			return polls
		}
	}
	return append(polls, poll.Clone())
}
