// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package countdown drives a once-per-second remaining-time display for a
// poll deadline. The ticker goroutine exits when the deadline passes, when
// Stop is called, or when the context is cancelled.
package countdown
