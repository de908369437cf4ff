// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package session keeps the signed-in identity (bearer token and role) in
// the client's durable store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/pollsync/models"
	"github.com/danielhkuo/pollsync/storage"
)

// Durable keys
const (
	TokenKey = "token"
	RoleKey  = "role"
)

var ErrNoToken = errors.New("login response carried no token")

// AuthAPI is the part of the Remote Poll API a session needs.
type AuthAPI interface {
	Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error)
}

// Session implements apiclient.TokenSource.
type Session struct {
	store storage.Store

	mu    sync.RWMutex
	token string
	role  string
}

// New loads any persisted token and role from store.
func New(store storage.Store) *Session {
	s := &Session{store: store}
	if v, ok, err := store.Get(TokenKey); err == nil && ok {
		s.token = string(v)
	} else if err != nil {
		slog.Warn("failed to read session token", "error", err)
	}
	if v, ok, err := store.Get(RoleKey); err == nil && ok {
		s.role = string(v)
	}
	return s
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Role returns the signed-in role, or "" when signed out.
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Session) IsAdmin() bool {
	return s.Role() == models.RoleAdmin
}

// Signup creates an account. It does not sign in.
func (s *Session) Signup(ctx context.Context, api AuthAPI, req models.SignupRequest) (models.User, error) {
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	resp, err := api.Signup(ctx, req)
	if err != nil {
		return models.User{}, err
	}
	return resp.User, nil
}

// Login authenticates and persists the returned token and role.
func (s *Session) Login(ctx context.Context, api AuthAPI, req models.LoginRequest) (models.User, error) {
	resp, err := api.Login(ctx, req)
	if err != nil {
		return models.User{}, err
	}
	if resp.Token == "" {
		return models.User{}, ErrNoToken
	}

	if err := s.store.Set(TokenKey, []byte(resp.Token)); err != nil {
		return models.User{}, fmt.Errorf("failed to persist session: %w", err)
	}
	if err := s.store.Set(RoleKey, []byte(resp.Role)); err != nil {
		// A token without its role must not survive a reload.
		s.mu.Lock()
		s.token = ""
		s.role = ""
		s.mu.Unlock()
		return models.User{}, errors.Join(
			fmt.Errorf("failed to persist session: %w", err),
			s.store.Delete(TokenKey),
		)
	}

	s.mu.Lock()
	s.token = resp.Token
	s.role = resp.Role
	s.mu.Unlock()

	return resp.User, nil
}

// Logout forgets the token and role.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.role = ""
	s.mu.Unlock()

	return errors.Join(s.store.Delete(TokenKey), s.store.Delete(RoleKey))
}
