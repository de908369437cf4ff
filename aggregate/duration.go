// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"fmt"
	"time"
)

// Ended is returned by the duration formatters once the deadline has passed.
const Ended = "Ended"

// Span is a positive time difference split into whole units.
type Span struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// Remaining splits deadline-now into whole days, hours, minutes and seconds.
// ok is false when deadline <= now.
func Remaining(deadline, now time.Time) (span Span, ok bool) {
	diff := deadline.Sub(now)
	if diff <= 0 {
		return Span{}, false
	}

	span.Days = int(diff / (24 * time.Hour))
	diff -= time.Duration(span.Days) * 24 * time.Hour
	span.Hours = int(diff / time.Hour)
	diff -= time.Duration(span.Hours) * time.Hour
	span.Minutes = int(diff / time.Minute)
	diff -= time.Duration(span.Minutes) * time.Minute
	span.Seconds = int(diff / time.Second)
	return span, true
}

// VerboseDuration is the ticking voting-view countdown. It drops to minute and
// second granularity once less than a day is left.
func VerboseDuration(deadline, now time.Time) string {
	s, ok := Remaining(deadline, now)
	if !ok {
		return Ended
	}

	switch {
	case s.Days > 0:
		return fmt.Sprintf("%dd %dh", s.Days, s.Hours)
	case s.Hours > 0:
		return fmt.Sprintf("%dh %dm %ds", s.Hours, s.Minutes, s.Seconds)
	default:
		return fmt.Sprintf("%dm %ds", s.Minutes, s.Seconds)
	}
}

// CompactDuration is the static results-view countdown.
func CompactDuration(deadline, now time.Time) string {
	s, ok := Remaining(deadline, now)
	if !ok {
		return Ended
	}

	if s.Days > 0 {
		return fmt.Sprintf("%dd %dh", s.Days, s.Hours)
	}
	return fmt.Sprintf("%dh", s.Hours)
}
