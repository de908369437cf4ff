// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/danielhkuo/pollsync/aggregate"
	"github.com/danielhkuo/pollsync/apiclient"
	"github.com/danielhkuo/pollsync/countdown"
	"github.com/danielhkuo/pollsync/models"
	"github.com/danielhkuo/pollsync/pollcache"
)

var errUsage = errors.New("invalid arguments")

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ", ") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// parseWithID parses fs around a single leading positional poll ID so that
// flags may come before or after it.
func parseWithID(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() == 0 {
		return "", fmt.Errorf("%w: %s needs a poll id", errUsage, fs.Name())
	}
	id := fs.Arg(0)
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return "", err
	}
	return id, nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	var req models.SignupRequest
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.StringVar(&req.Name, "name", "", "Display name")
	fs.StringVar(&req.Email, "email", "", "Email address")
	fs.StringVar(&req.Password, "password", "", "Password")
	fs.StringVar(&req.Role, "role", models.RoleUser, "user or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.session.Signup(ctx, a.api, req)
	if err != nil {
		return serverError(err, "signup")
	}
	fmt.Fprintf(a.out, "Account created for %s (%s). Run 'pollsync login' to sign in.\n", user.Email, user.Role)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	var req models.LoginRequest
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.StringVar(&req.Email, "email", "", "Email address")
	fs.StringVar(&req.Password, "password", "", "Password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.session.Login(ctx, a.api, req)
	if err != nil {
		return serverError(err, "login")
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func (a *app) logout() error {
	if err := a.session.Logout(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	filterName := fs.String("filter", "all", "all, active, voted or pending")
	if err := fs.Parse(args); err != nil {
		return err
	}
	filter, err := pollcache.ParseFilter(*filterName)
	if err != nil {
		return err
	}

	if err := a.cache.LoadAll(ctx); err != nil {
		return err
	}

	polls := a.cache.Polls()
	now := time.Now()
	if a.session.IsAdmin() {
		s := pollcache.Summarize(polls)
		fmt.Fprintf(a.out, "%d polls, %d active, %d votes\n\n", s.Total, s.Active, s.TotalVotes)
	}

	shown := pollcache.FilterPolls(polls, filter, a.cache.Ledger(), now)
	if len(shown) == 0 {
		fmt.Fprintln(a.out, "No polls to show.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tTIME LEFT\tVOTES\tYOU")
	for _, p := range shown {
		you := ""
		if a.cache.HasVoted(p.ID) {
			you = "voted"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Title, p.Status, aggregate.CompactDuration(p.Deadline, now), aggregate.VotesCast(p), you)
	}
	return tw.Flush()
}

func (a *app) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: show <poll-id>", errUsage)
	}
	if err := a.cache.LoadOne(ctx, args[0]); err != nil {
		return err
	}
	poll, _ := a.cache.Focused()
	choice, voted := a.cache.Ledger().Choice(poll.ID)

	fmt.Fprintf(a.out, "%s\n%s\n\n", poll.Title, poll.Description)
	fmt.Fprintf(a.out, "Status: %s   Time left: %s   %s\n\n",
		poll.Status, aggregate.VerboseDuration(poll.Deadline, time.Now()), aggregate.VotesCast(poll))

	for i, opt := range poll.Options {
		marker := " "
		if voted && opt.ID == choice {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %d. %-30s %3d%%  (%s)\n", marker, i+1, opt.Text, aggregate.VotingPercent(opt, poll), opt.ID)
	}

	switch {
	case voted:
		fmt.Fprintln(a.out, "\nYou have already voted on this poll.")
	case poll.IsOpen(time.Now()):
		fmt.Fprintf(a.out, "\nVote with: pollsync vote %s <option-number>\n", poll.ID)
	}
	return nil
}

func (a *app) vote(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: vote <poll-id> <option-id | option-number>", errUsage)
	}
	pollID, choice := args[0], args[1]

	optionID := choice
	if a.cache.HasVoted(pollID) {
		return pollcache.ErrAlreadyVoted
	}
	if n, err := strconv.Atoi(choice); err == nil {
		if err := a.cache.LoadOne(ctx, pollID); err != nil {
			return err
		}
		poll, _ := a.cache.Focused()
		if _, isID := poll.Option(choice); !isID {
			if n < 1 || n > len(poll.Options) {
				return fmt.Errorf("option number must be between 1 and %d", len(poll.Options))
			}
			optionID = poll.Options[n-1].ID
		}
	}

	if err := a.cache.RecordVote(ctx, pollID, optionID); err != nil {
		return err
	}

	poll, ok := a.cache.Find(pollID)
	if !ok {
		fmt.Fprintln(a.out, "Vote recorded.")
		return nil
	}
	opt, _ := poll.Option(optionID)
	fmt.Fprintf(a.out, "Vote recorded for %q. %s.\n", opt.Text, aggregate.VotesCast(poll))
	return nil
}

func (a *app) results(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: results <poll-id>", errUsage)
	}
	if err := a.cache.LoadOne(ctx, args[0]); err != nil {
		return err
	}
	poll, _ := a.cache.Focused()

	fmt.Fprintf(a.out, "%s (%s, %s)\n", poll.Title, poll.Status, aggregate.CompactDuration(poll.Deadline, time.Now()))
	fmt.Fprintf(a.out, "%s\n\n", aggregate.VotesCast(poll))

	for _, opt := range poll.Options {
		fmt.Fprintf(a.out, "  %-30s %5d  %5.1f%%\n", opt.Text, opt.Votes, aggregate.ResultsPercent(opt, poll))
	}

	if lead := aggregate.LeadingOption(poll); lead != nil && poll.TotalVotes > 0 {
		fmt.Fprintf(a.out, "\nLeading: %s (%.1f%%)\n", lead.Text, aggregate.ResultsPercent(*lead, poll))
	}
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	outPath := fs.String("o", "", "Output file (default poll-results-<id>.csv, - for stdout)")
	pollID, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	if err := a.cache.LoadOne(ctx, pollID); err != nil {
		return err
	}
	poll, _ := a.cache.Focused()
	rows := aggregate.ExportRows(poll, time.Now())

	if *outPath == "-" {
		return aggregate.WriteCSV(a.out, rows)
	}
	if *outPath == "" {
		*outPath = aggregate.ExportFilename(poll.ID)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := aggregate.WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(a.out, "Exported %s\n", *outPath)
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	var req models.CreatePollRequest
	var options stringList
	var deadline string
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.StringVar(&req.Title, "title", "", "Poll title")
	fs.StringVar(&req.Description, "description", "", "Poll description")
	fs.StringVar(&deadline, "deadline", "", "Deadline as a duration from now (48h) or RFC3339 time")
	fs.Var(&options, "option", "Option text (repeat for each option)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if deadline != "" {
		d, err := parseDeadline(deadline, time.Now())
		if err != nil {
			return err
		}
		req.Deadline = d
	}
	req.Options = options

	set, err := a.cache.CreatePoll(ctx, req)
	if err != nil {
		return err
	}
	if poll, ok := set.Single(); ok {
		fmt.Fprintf(a.out, "Created poll %s (%s)\n", poll.ID, poll.Title)
		return nil
	}
	fmt.Fprintln(a.out, "Poll created.")
	return nil
}

func (a *app) closePoll(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: close <poll-id>", errUsage)
	}
	if err := a.cache.LoadOne(ctx, args[0]); err != nil {
		return err
	}
	if err := a.cache.SetStatus(ctx, args[0], models.StatusClosed); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Poll %s closed\n", args[0])
	return nil
}

// watch prints the ticking countdown until the deadline or Ctrl-C.
func (a *app) watch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: watch <poll-id>", errUsage)
	}
	if err := a.cache.LoadOne(ctx, args[0]); err != nil {
		return err
	}
	poll, _ := a.cache.Focused()

	fmt.Fprintf(a.out, "%s closes at %s\n", poll.Title, poll.Deadline.Local().Format(aggregate.ExportTimeLayout))
	cd := countdown.New(poll.Deadline, aggregate.VerboseDuration)
	defer cd.Stop()

	for text := range cd.Start(ctx) {
		fmt.Fprintf(a.out, "\r%-20s", text)
	}
	fmt.Fprintln(a.out)
	return nil
}

func parseDeadline(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(d), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid deadline %q (use a duration like 48h or an RFC3339 time)", s)
}

// serverError prefers the server's own message over the transport error.
func serverError(err error, action string) error {
	if msg := apiclient.Message(err, ""); msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("%s failed: %w", action, err)
}
