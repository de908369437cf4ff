// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/danielhkuo/pollsync/auth"
	"github.com/danielhkuo/pollsync/middleware"
	"github.com/danielhkuo/pollsync/models"
)

var errUnauthenticated = errors.New("authentication required")

type AuthHandler struct {
	db *sql.DB
}

func NewAuthHandler(db *sql.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusBadRequest, "role must be 'user' or 'admin'")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	var exists int
	err = h.db.QueryRow("SELECT COUNT(*) FROM app_user WHERE email = $1", req.Email).Scan(&exists)
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists > 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "email already registered")
		return
	}

	user := models.User{
		ID:    auth.NewRecordID(),
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}
	_, err = h.db.Exec(`
		INSERT INTO app_user (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Name, user.Email, hash, user.Role, time.Now().UnixMilli())
	if err != nil {
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	slog.Info("user signed up", "user_id", user.ID, "role", user.Role)

	middleware.JSONResponse(w, http.StatusCreated, models.AuthResponse{User: user})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	var user models.User
	var hash string
	err := h.db.QueryRow(`
		SELECT id, name, email, role, password_hash FROM app_user WHERE email = $1
	`, email).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &hash)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.CheckPassword(hash, req.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		slog.Error("failed to generate session token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO session_token (token, user_id, created_at)
		VALUES ($1, $2, $3)
	`, token, user.ID, time.Now().UnixMilli())
	if err != nil {
		slog.Error("failed to insert session token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusOK, models.AuthResponse{User: user, Token: token})
}

// authenticate resolves the bearer token on r to its user.
func authenticate(db *sql.DB, r *http.Request) (models.User, error) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		return models.User{}, errUnauthenticated
	}

	var user models.User
	err := db.QueryRow(`
		SELECT u.id, u.name, u.email, u.role
		FROM session_token s
		JOIN app_user u ON u.id = s.user_id
		WHERE s.token = $1
	`, token).Scan(&user.ID, &user.Name, &user.Email, &user.Role)
	if err == sql.ErrNoRows {
		return models.User{}, errUnauthenticated
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// requireUser writes the error response itself and reports whether the
// handler may continue.
func requireUser(db *sql.DB, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, err := authenticate(db, r)
	if errors.Is(err, errUnauthenticated) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return models.User{}, false
	}
	if err != nil {
		slog.Error("failed to authenticate request", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.User{}, false
	}
	return user, true
}

func requireAdmin(db *sql.DB, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := requireUser(db, w, r)
	if !ok {
		return models.User{}, false
	}
	if user.Role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusForbidden, "admin only")
		return models.User{}, false
	}
	return user, true
}
