// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/pollsync/models"
	"github.com/danielhkuo/pollsync/storage"
)

type fakeAuth struct {
	resp    models.AuthResponse
	err     error
	gotRole string
}

func (f *fakeAuth) Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error) {
	f.gotRole = req.Role
	return f.resp, f.err
}

func (f *fakeAuth) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	return f.resp, f.err
}

func TestSession_LoginPersists(t *testing.T) {
	store := storage.NewMemoryStore()
	api := &fakeAuth{resp: models.AuthResponse{
		User:  models.User{ID: "u1", Role: models.RoleAdmin},
		Token: "tok-1",
	}}

	s := New(store)
	if s.Token() != "" {
		t.Fatal("Expected no token before login")
	}

	user, err := s.Login(context.Background(), api, models.LoginRequest{Email: "a@b.c", Password: "pw"})
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "u1" {
		t.Errorf("Expected user u1, got %s", user.ID)
	}
	if !s.IsAdmin() {
		t.Error("Expected admin role")
	}

	reloaded := New(store)
	if reloaded.Token() != "tok-1" || reloaded.Role() != models.RoleAdmin {
		t.Errorf("Expected session to survive reload, got token=%q role=%q", reloaded.Token(), reloaded.Role())
	}
}

func TestSession_LoginFailureKeepsPrevious(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Set(TokenKey, []byte("old"))

	s := New(store)
	_, err := s.Login(context.Background(), &fakeAuth{err: errors.New("invalid credentials")}, models.LoginRequest{})
	if err == nil {
		t.Fatal("Expected error")
	}
	if s.Token() != "old" {
		t.Errorf("Expected previous token kept, got %q", s.Token())
	}
}

func TestSession_LoginWithoutToken(t *testing.T) {
	s := New(storage.NewMemoryStore())
	_, err := s.Login(context.Background(), &fakeAuth{resp: models.AuthResponse{User: models.User{Role: "user"}}}, models.LoginRequest{})
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Expected ErrNoToken, got %v", err)
	}
}

func TestSession_SignupDefaultsRole(t *testing.T) {
	api := &fakeAuth{resp: models.AuthResponse{User: models.User{ID: "u2", Role: models.RoleUser}}}
	s := New(storage.NewMemoryStore())

	if _, err := s.Signup(context.Background(), api, models.SignupRequest{Email: "x@y.z"}); err != nil {
		t.Fatal(err)
	}
	if api.gotRole != models.RoleUser {
		t.Errorf("Expected default role user, got %q", api.gotRole)
	}
	if s.Token() != "" {
		t.Error("Signup must not sign in")
	}
}

func TestSession_Logout(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Set(TokenKey, []byte("tok"))
	store.Set(RoleKey, []byte("user"))

	s := New(store)
	if err := s.Logout(); err != nil {
		t.Fatal(err)
	}
	if s.Token() != "" || s.Role() != "" {
		t.Error("Expected empty session after logout")
	}
	if New(store).Token() != "" {
		t.Error("Expected logout to clear persisted token")
	}
}

// roleFailStore refuses writes to the role key.
type roleFailStore struct {
	storage.Store
}

func (s roleFailStore) Set(key string, value []byte) error {
	if key == RoleKey {
		return errors.New("disk full")
	}
	return s.Store.Set(key, value)
}

func TestSession_LoginRoleWriteFailureDropsToken(t *testing.T) {
	store := roleFailStore{Store: storage.NewMemoryStore()}
	api := &fakeAuth{resp: models.AuthResponse{
		User:  models.User{ID: "u1", Role: models.RoleAdmin},
		Token: "tok-1",
	}}

	s := New(store)
	if _, err := s.Login(context.Background(), api, models.LoginRequest{}); err == nil {
		t.Fatal("Expected persistence error")
	}

	if s.Token() != "" {
		t.Errorf("Expected no token in memory, got %q", s.Token())
	}
	if _, ok, _ := store.Get(TokenKey); ok {
		t.Error("Expected token removed from store")
	}
	if New(store).Token() != "" {
		t.Error("Expected reload to be signed out")
	}
}
