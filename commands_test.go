// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/pollsync/cliparse"
	"github.com/danielhkuo/pollsync/models"
	"github.com/danielhkuo/pollsync/pollcache"
	"github.com/danielhkuo/pollsync/router"
	"github.com/danielhkuo/pollsync/testutil"
)

func TestParseDeadline(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseDeadline("48h", now)
	if err != nil || !got.Equal(now.Add(48*time.Hour)) {
		t.Errorf("duration: got %v %v", got, err)
	}

	got, err = parseDeadline("2025-03-05T10:00:00Z", now)
	if err != nil || got.UTC().Day() != 5 {
		t.Errorf("RFC3339: got %v %v", got, err)
	}

	if _, err := parseDeadline("next tuesday", now); err == nil {
		t.Error("expected error for unparseable deadline")
	}
}

func TestSqlitePath(t *testing.T) {
	tests := []struct {
		dsn, want string
	}{
		{"file:/tmp/x/state.db", "/tmp/x/state.db"},
		{"file:/tmp/state.db?_pragma=busy_timeout(5000)", "/tmp/state.db"},
		{"state.db", "state.db"},
		{":memory:", ""},
	}
	for _, tt := range tests {
		if got := sqlitePath(tt.dsn); got != tt.want {
			t.Errorf("sqlitePath(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestParseWithID(t *testing.T) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", "", "")

	id, err := parseWithID(fs, []string{"p1", "-o", "x.csv"})
	if err != nil || id != "p1" || *out != "x.csv" {
		t.Errorf("got id=%q out=%q err=%v", id, *out, err)
	}

	fs = flag.NewFlagSet("export", flag.ContinueOnError)
	if _, err := parseWithID(fs, nil); !errors.Is(err, errUsage) {
		t.Errorf("expected errUsage, got %v", err)
	}
}

// newTestApp points a CLI app with in-memory local state at a live server.
func newTestApp(t *testing.T, baseURL string) (*app, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a, err := newApp(cliparse.ClientConfig{
		APIURL:    baseURL,
		StoreKind: "memory",
		Timeout:   5 * time.Second,
	}, &out)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.close)
	return a, &out
}

func TestCommands_EndToEnd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin, _ := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)
	testutil.CreateTestUser(t, db, "voter", models.RoleUser)
	poll := testutil.CreateTestPoll(t, db, admin.ID, models.StatusActive, time.Now().Add(3*time.Hour), "Red", "Blue")

	srv := httptest.NewServer(router.NewRouter(db))
	defer srv.Close()

	ctx := context.Background()
	a, out := newTestApp(t, srv.URL+"/api")

	if err := a.run(ctx, "login", []string{"-email", "voter@example.com", "-password", "password123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out.String(), "Signed in as voter") {
		t.Errorf("unexpected login output %q", out.String())
	}

	out.Reset()
	if err := a.run(ctx, "vote", []string{poll.ID, "2"}); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if !strings.Contains(out.String(), `"Blue"`) || !strings.Contains(out.String(), "1 vote cast") {
		t.Errorf("unexpected vote output %q", out.String())
	}

	if err := a.run(ctx, "vote", []string{poll.ID, "1"}); !errors.Is(err, pollcache.ErrAlreadyVoted) {
		t.Errorf("expected ErrAlreadyVoted, got %v", err)
	}

	out.Reset()
	if err := a.run(ctx, "list", []string{"-filter", "voted"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), poll.ID) || !strings.Contains(out.String(), "voted") {
		t.Errorf("expected voted poll listed, got %q", out.String())
	}

	out.Reset()
	if err := a.run(ctx, "list", []string{"-filter", "pending"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "No polls to show.") {
		t.Errorf("expected empty pending list, got %q", out.String())
	}

	out.Reset()
	if err := a.run(ctx, "results", []string{poll.ID}); err != nil {
		t.Fatalf("results: %v", err)
	}
	if !strings.Contains(out.String(), "Leading: Blue (100.0%)") {
		t.Errorf("unexpected results output %q", out.String())
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := a.run(ctx, "export", []string{poll.ID, "-o", path}); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Poll Results Export\n") || !strings.HasSuffix(string(data), "Blue,1,100.00%") {
		t.Errorf("unexpected export %q", data)
	}

	if err := a.run(ctx, "close", []string{poll.ID}); err == nil || err.Error() != "admin only" {
		t.Errorf("expected 'admin only', got %v", err)
	}

	if err := a.run(ctx, "frobnicate", nil); err == nil {
		t.Error("expected unknown command error")
	}
}

func TestCommands_AdminCreateAndClose(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)
	srv := httptest.NewServer(router.NewRouter(db))
	defer srv.Close()

	ctx := context.Background()
	a, out := newTestApp(t, srv.URL+"/api")
	if err := a.run(ctx, "login", []string{"-email", "admin@example.com", "-password", "password123"}); err != nil {
		t.Fatal(err)
	}

	err := a.run(ctx, "create", []string{"-title", "Lunch", "-description", "Where", "-deadline", "24h", "-option", "Pizza", "-option", "Soup"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created := a.cache.Polls()
	if len(created) != 1 {
		t.Fatalf("expected created poll cached, got %d", len(created))
	}

	out.Reset()
	if err := a.run(ctx, "list", nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "1 polls, 1 active, 0 votes") {
		t.Errorf("expected admin summary, got %q", out.String())
	}

	if err := a.run(ctx, "close", []string{created[0].ID}); err != nil {
		t.Fatalf("close: %v", err)
	}
	if p, _ := a.cache.Find(created[0].ID); p.Status != models.StatusClosed {
		t.Errorf("expected closed, got %s", p.Status)
	}

	if err := a.run(ctx, "create", []string{"-title", "Bad", "-description", "x", "-deadline", "1h", "-option", "only"}); !errors.Is(err, pollcache.ErrInvalidPoll) {
		t.Errorf("expected ErrInvalidPoll, got %v", err)
	}
}
