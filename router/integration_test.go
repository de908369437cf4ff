// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/pollsync/aggregate"
	"github.com/danielhkuo/pollsync/apiclient"
	"github.com/danielhkuo/pollsync/ledger"
	"github.com/danielhkuo/pollsync/models"
	"github.com/danielhkuo/pollsync/pollcache"
	"github.com/danielhkuo/pollsync/router"
	"github.com/danielhkuo/pollsync/session"
	"github.com/danielhkuo/pollsync/storage"
	"github.com/danielhkuo/pollsync/testutil"
)

type client struct {
	session *session.Session
	api     *apiclient.Client
	cache   *pollcache.Cache
}

func newClient(t *testing.T, baseURL string) *client {
	t.Helper()
	store := storage.NewMemoryStore()
	sess := session.New(store)
	api := apiclient.New(baseURL, apiclient.WithTokenSource(sess))
	return &client{
		session: sess,
		api:     api,
		cache:   pollcache.New(api, ledger.Load(store)),
	}
}

func (c *client) signupAndLogin(t *testing.T, name, role string) {
	t.Helper()
	ctx := context.Background()
	email := name + "@example.com"

	if _, err := c.session.Signup(ctx, c.api, models.SignupRequest{Name: name, Email: email, Password: "password123", Role: role}); err != nil {
		t.Fatalf("signup %s: %v", name, err)
	}
	if _, err := c.session.Login(ctx, c.api, models.LoginRequest{Email: email, Password: "password123"}); err != nil {
		t.Fatalf("login %s: %v", name, err)
	}
}

// TestFullPollLifecycle drives the client stack against the real server:
// admin creates, a voter votes, the ledger blocks a repeat, the admin closes.
func TestFullPollLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	srv := httptest.NewServer(router.NewRouter(db))
	defer srv.Close()
	baseURL := srv.URL + "/api"
	ctx := context.Background()

	admin := newClient(t, baseURL)
	admin.signupAndLogin(t, "admin", models.RoleAdmin)
	if !admin.session.IsAdmin() {
		t.Fatal("Expected admin session")
	}

	// Step 1: admin creates a poll
	set, err := admin.cache.CreatePoll(ctx, models.CreatePollRequest{
		Title:       "Colour",
		Description: "Pick one",
		Deadline:    time.Now().Add(2 * time.Hour),
		Options:     []string{"Red", "Blue"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created, ok := set.Single()
	if !ok {
		t.Fatalf("Expected single poll from create, got %s", set.Kind)
	}
	if len(admin.cache.Polls()) != 1 {
		t.Fatalf("Expected created poll in admin cache")
	}

	// Step 2: a voter loads and votes
	voter := newClient(t, baseURL)
	voter.signupAndLogin(t, "voter", models.RoleUser)

	if err := voter.cache.LoadAll(ctx); err != nil {
		t.Fatalf("load all: %v", err)
	}
	if err := voter.cache.LoadOne(ctx, created.ID); err != nil {
		t.Fatalf("load one: %v", err)
	}
	blue := created.Options[1].ID
	if err := voter.cache.RecordVote(ctx, created.ID, blue); err != nil {
		t.Fatalf("vote: %v", err)
	}

	focused, _ := voter.cache.Focused()
	if focused.TotalVotes != 1 || aggregate.VotingPercent(focused.Options[1], focused) != 100 {
		t.Errorf("Expected Blue at 100%%, got %+v", focused)
	}
	if lead := aggregate.LeadingOption(focused); lead == nil || lead.ID != blue {
		t.Errorf("Expected Blue leading, got %+v", lead)
	}

	// Step 3: the ledger refuses a second vote locally
	if err := voter.cache.RecordVote(ctx, created.ID, created.Options[0].ID); !errors.Is(err, pollcache.ErrAlreadyVoted) {
		t.Errorf("Expected ErrAlreadyVoted, got %v", err)
	}

	// Step 4: a fresh client for the same user has an empty ledger, so the
	// server is the one that refuses
	other := newClient(t, baseURL)
	if _, err := other.session.Login(ctx, other.api, models.LoginRequest{Email: "voter@example.com", Password: "password123"}); err != nil {
		t.Fatal(err)
	}
	err = other.cache.RecordVote(ctx, created.ID, created.Options[0].ID)
	var rejected *pollcache.VoteRejected
	if !errors.As(err, &rejected) || rejected.Reason != "already voted" {
		t.Errorf("Expected server rejection 'already voted', got %v", err)
	}

	// Step 5: non-admin cannot close; the optimistic patch is rolled back
	if err := voter.cache.LoadAll(ctx); err != nil {
		t.Fatal(err)
	}
	err = voter.cache.SetStatus(ctx, created.ID, models.StatusClosed)
	var statusErr *pollcache.StatusUpdateFailed
	if !errors.As(err, &statusErr) || statusErr.Message != "admin only" {
		t.Errorf("Expected 'admin only' status failure, got %v", err)
	}
	if p, _ := voter.cache.Find(created.ID); p.Status != models.StatusActive {
		t.Errorf("Expected rollback to active, got %s", p.Status)
	}

	// Step 6: admin closes, and later votes are refused as closed
	if err := admin.cache.SetStatus(ctx, created.ID, models.StatusClosed); err != nil {
		t.Fatalf("close: %v", err)
	}
	late := newClient(t, baseURL)
	late.signupAndLogin(t, "late", models.RoleUser)
	err = late.cache.RecordVote(ctx, created.ID, blue)
	if !errors.As(err, &rejected) || rejected.Reason != "poll closed" {
		t.Errorf("Expected 'poll closed', got %v", err)
	}

	// Step 7: results reflect the single vote
	if err := admin.cache.LoadOne(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	final, _ := admin.cache.Focused()
	if final.Status != models.StatusClosed || final.TotalVotes != 1 {
		t.Errorf("Unexpected final poll %+v", final)
	}
	rows := aggregate.ExportRows(final, time.Now())
	if last := rows[len(rows)-1]; last[0] != "Blue" || last[2] != "100.00%" {
		t.Errorf("Unexpected export row %v", last)
	}
}

func TestLoadOne_NotFoundThroughServer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	srv := httptest.NewServer(router.NewRouter(db))
	defer srv.Close()

	c := newClient(t, srv.URL+"/api")
	err := c.cache.LoadOne(context.Background(), "missing")

	var nf *pollcache.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError, got %T %v", err, err)
	}
	if c.cache.Err() != "Poll not found" {
		t.Errorf("Expected server message in state, got %q", c.cache.Err())
	}
}

func TestCreatePoll_RequiresAdminThroughServer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	srv := httptest.NewServer(router.NewRouter(db))
	defer srv.Close()

	c := newClient(t, srv.URL+"/api")
	c.signupAndLogin(t, "user", models.RoleUser)

	_, err := c.cache.CreatePoll(context.Background(), models.CreatePollRequest{
		Title: "t", Description: "d", Deadline: time.Now().Add(time.Hour), Options: []string{"a", "b"},
	})
	var cf *pollcache.CreateFailed
	if !errors.As(err, &cf) || cf.Message != "admin only" {
		t.Errorf("Expected CreateFailed 'admin only', got %v", err)
	}
}
