// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"math"

	"github.com/danielhkuo/pollsync/models"
)

// share returns the option's share of the poll in percent, unrounded.
func share(opt models.Option, poll models.Poll) float64 {
	if poll.TotalVotes == 0 {
		return 0
	}
	return float64(opt.Votes) / float64(poll.TotalVotes) * 100
}

// VotingPercent is the whole-number percentage shown next to each choice
// while voting.
func VotingPercent(opt models.Option, poll models.Poll) int {
	return int(math.Round(share(opt, poll)))
}

// ResultsPercent is the one-decimal percentage shown on the results page.
func ResultsPercent(opt models.Option, poll models.Poll) float64 {
	return math.Round(share(opt, poll)*10) / 10
}

// LeadingOption returns the option with the most votes. Ties go to the
// option that appears first. Returns nil when the poll has no options.
func LeadingOption(poll models.Poll) *models.Option {
	if len(poll.Options) == 0 {
		return nil
	}

	lead := poll.Options[0]
	for _, opt := range poll.Options[1:] {
		if opt.Votes > lead.Votes {
			lead = opt
		}
	}
	return &lead
}
