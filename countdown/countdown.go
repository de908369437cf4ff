// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package countdown

import (
	"context"
	"sync"
	"time"

	"github.com/danielhkuo/pollsync/aggregate"
)

// DefaultInterval is how often the display refreshes.
const DefaultInterval = time.Second

// Format renders the time left until deadline. aggregate.VerboseDuration and
// aggregate.CompactDuration both fit.
type Format func(deadline, now time.Time) string

type Countdown struct {
	deadline time.Time
	format   Format
	interval time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type Option func(*Countdown)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Countdown) { c.now = now }
}

func WithInterval(d time.Duration) Option {
	return func(c *Countdown) {
		if d > 0 {
			c.interval = d
		}
	}
}

// New returns a countdown to deadline. A nil format means
// aggregate.VerboseDuration.
func New(deadline time.Time, format Format, opts ...Option) *Countdown {
	if format == nil {
		format = aggregate.VerboseDuration
	}
	c := &Countdown{
		deadline: deadline,
		format:   format,
		interval: DefaultInterval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start emits the formatted remaining time right away and then once per
// interval. The channel is closed after aggregate.Ended has been sent, or on
// Stop or ctx cancellation. Start should be called once.
func (c *Countdown) Start(ctx context.Context) <-chan string {
	out := make(chan string)
	go c.run(ctx, out)
	return out
}

// Stop ends the countdown. It is safe to call more than once.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Countdown) run(ctx context.Context, out chan<- string) {
	defer close(out)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		text := c.format(c.deadline, c.now())
		select {
		case out <- text:
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		}
		if text == aggregate.Ended {
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		}
	}
}
