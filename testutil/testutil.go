// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/pollsync/auth"
	"github.com/danielhkuo/pollsync/db"
	"github.com/danielhkuo/pollsync/models"
	_ "modernc.org/sqlite"
)

// SetupTestDB opens a private in-memory sqlite database with the full
// server schema. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open(db.DriverName("sqlite"), ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Every connection to :memory: is a separate database
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// CreateTestUser inserts a user with the given role and a live session token.
// The password is always "password123".
func CreateTestUser(t *testing.T, conn *sql.DB, name, role string) (user models.User, token string) {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user = models.User{
		ID:    auth.NewRecordID(),
		Name:  name,
		Email: name + "@example.com",
		Role:  role,
	}
	now := time.Now().UnixMilli()
	_, err = conn.Exec(`
		INSERT INTO app_user (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Name, user.Email, hash, user.Role, now)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	token, _ = auth.GenerateSessionToken()
	_, err = conn.Exec(`
		INSERT INTO session_token (token, user_id, created_at)
		VALUES ($1, $2, $3)
	`, token, user.ID, now)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return user, token
}

// CreateTestPoll inserts a poll with one option per label, all at zero votes.
// status should be "active" or "closed".
func CreateTestPoll(t *testing.T, conn *sql.DB, createdBy, status string, deadline time.Time, labels ...string) models.Poll {
	t.Helper()

	poll := models.Poll{
		ID:          auth.NewRecordID(),
		Title:       "Test Poll",
		Description: "A test poll",
		Deadline:    deadline.UTC().Truncate(time.Millisecond),
		Status:      status,
		Options:     []models.Option{},
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}

	_, err := conn.Exec(`
		INSERT INTO poll (id, title, description, deadline, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, poll.ID, poll.Title, poll.Description, poll.Deadline.UnixMilli(), poll.Status, poll.CreatedBy, poll.CreatedAt.UnixMilli())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, label := range labels {
		optionID, _ := auth.GenerateID(8)
		_, err := conn.Exec(`
			INSERT INTO poll_option (id, poll_id, position, text, votes)
			VALUES ($1, $2, $3, $4, 0)
		`, optionID, poll.ID, i, label)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		poll.Options = append(poll.Options, models.Option{ID: optionID, Text: label})
	}

	return poll
}

// BearerHeader returns the Authorization header for token.
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
