// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pollcache

import (
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/pollsync/models"
)

// NormalizeCreate trims the request and drops blank options. Title,
// description, and deadline are required, and at least two options must
// remain.
func NormalizeCreate(req models.CreatePollRequest) (models.CreatePollRequest, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" || req.Deadline.IsZero() {
		return req, fmt.Errorf("%w: title, description and deadline are required", ErrInvalidPoll)
	}

	options := make([]string, 0, len(req.Options))
	for _, opt := range req.Options {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	if len(options) < 2 {
		return req, fmt.Errorf("%w: at least 2 options are required", ErrInvalidPoll)
	}
	req.Options = options
	return req, nil
}

// Filter selects polls for a dashboard tab.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterActive  Filter = "active"  // open for voting now
	FilterVoted   Filter = "voted"   // recorded in the ledger
	FilterPending Filter = "pending" // open and not yet voted on
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterActive, FilterVoted, FilterPending:
		return f, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all, active, voted or pending)", s)
	}
}

// VoteChecker is satisfied by *ledger.Ledger.
type VoteChecker interface {
	HasVoted(pollID string) bool
}

// FilterPolls returns the polls matching f, in their original order.
func FilterPolls(polls []models.Poll, f Filter, votes VoteChecker, now time.Time) []models.Poll {
	out := make([]models.Poll, 0, len(polls))
	for _, p := range polls {
		var keep bool
		switch f {
		case FilterActive:
			keep = p.IsOpen(now)
		case FilterVoted:
			keep = votes.HasVoted(p.ID)
		case FilterPending:
			keep = p.IsOpen(now) && !votes.HasVoted(p.ID)
		default:
			keep = true
		}
		if keep {
			out = append(out, p)
		}
	}
	return out
}

// Summary is the admin dashboard's headline numbers.
type Summary struct {
	Total      int
	Active     int
	TotalVotes int
}

// Summarize counts polls by status and sums their server-reported totals.
func Summarize(polls []models.Poll) Summary {
	var s Summary
	for _, p := range polls {
		s.Total++
		if p.Status == models.StatusActive {
			s.Active++
		}
		s.TotalVotes += p.TotalVotes
	}
	return s
}
