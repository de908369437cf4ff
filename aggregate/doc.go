// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package aggregate derives display values from a poll document.

Every function is pure: it reads a models.Poll and never mutates or
renormalises it. TotalVotes is trusted as sent by the server.

# Percentages

Two independent rounding policies exist because the voting and results views
round differently:

	VotingPercent(opt, poll)  // nearest whole number, e.g. 33
	ResultsPercent(opt, poll) // one decimal, e.g. 33.3

Both are 0 when the poll has no votes.

# Countdowns

Remaining computes the day/hour/minute/second span shared by two formatting
policies:

	VerboseDuration(deadline, now) // "2d 5h", "5h 3m 9s", "3m 9s"
	CompactDuration(deadline, now) // "2d 5h", "5h"

Both return the Ended sentinel once deadline <= now.

# Export

ExportRows builds the CSV layout for a results download and WriteCSV writes it
without quoting. Values containing commas are not escaped.
*/
package aggregate
