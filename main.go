package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/pollsync/apiclient"
	"github.com/danielhkuo/pollsync/cliparse"
	"github.com/danielhkuo/pollsync/ledger"
	"github.com/danielhkuo/pollsync/pollcache"
	"github.com/danielhkuo/pollsync/session"
	"github.com/danielhkuo/pollsync/storage"
)

const usage = `usage: pollsync [flags] <command> [args]

commands:
  signup   -name N -email E -password P [-role user|admin]
  login    -email E -password P
  logout
  list     [-filter all|active|voted|pending]
  show     <poll-id>
  vote     <poll-id> <option-id | option-number>
  results  <poll-id>
  export   <poll-id> [-o file]
  create   -title T -description D -deadline 48h|RFC3339 -option A -option B ...
  close    <poll-id>
  watch    <poll-id>

flags:
  -api URL  -store file|sqlite|postgres|memory  -store-dsn DSN  -timeout 15s  -v
`

// app wires the client stack for one command invocation.
type app struct {
	cfg     cliparse.ClientConfig
	out     io.Writer
	store   storage.Store
	session *session.Session
	api     *apiclient.Client
	cache   *pollcache.Cache
}

func main() {
	// A missing .env is fine; real environment variables still apply
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: failed to load .env:", err)
	}

	cfg, rest, err := cliparse.ParseClientFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	setupLogging(cfg.Verbose)

	if len(rest) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, os.Stdout)
	if err != nil {
		slog.Error("failed to open local state", "store", cfg.StoreKind, "error", err)
		os.Exit(1)
	}
	defer a.close()

	if err := a.run(ctx, rest[0], rest[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setupLogging writes human-readable logs on a terminal and JSON otherwise.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func newApp(cfg cliparse.ClientConfig, out io.Writer) (*app, error) {
	if cfg.StoreKind == storage.KindSQLite {
		if path := sqlitePath(cfg.StoreDSN); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
	}

	store, err := storage.Open(cfg.StoreKind, cfg.StoreDSN)
	if err != nil {
		return nil, err
	}

	sess := session.New(store)
	api := apiclient.New(cfg.APIURL,
		apiclient.WithTokenSource(sess),
		apiclient.WithHTTPClient(newHTTPClient(cfg.Timeout)),
	)

	return &app{
		cfg:     cfg,
		out:     out,
		store:   store,
		session: sess,
		api:     api,
		cache:   pollcache.New(api, ledger.Load(store)),
	}, nil
}

func (a *app) close() {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close local state", "error", err)
		}
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "signup":
		return a.signup(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout()
	case "list":
		return a.list(ctx, args)
	case "show":
		return a.show(ctx, args)
	case "vote":
		return a.vote(ctx, args)
	case "results":
		return a.results(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "create":
		return a.create(ctx, args)
	case "close":
		return a.closePoll(ctx, args)
	case "watch":
		return a.watch(ctx, args)
	case "help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q (run 'pollsync help')", cmd)
	}
}

// sqlitePath extracts the file path from a sqlite DSN such as
// "file:/tmp/state.db?_pragma=busy_timeout(5000)".
func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}
