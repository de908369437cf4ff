// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/pollsync/auth"
	"github.com/danielhkuo/pollsync/middleware"
	"github.com/danielhkuo/pollsync/models"
)

var errPollNotFound = errors.New("poll not found")

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

type PollHandler struct {
	db  *sql.DB
	now func() time.Time
}

func NewPollHandler(db *sql.DB) *PollHandler {
	return &PollHandler{db: db, now: time.Now}
}

// ListPolls handles GET /api/polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := loadPolls(h.db)
	if err != nil {
		slog.Error("failed to list polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch polls")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollsEnvelope{Polls: polls})
}

// GetPoll handles GET /api/polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	poll, err := loadPoll(h.db, pollID)
	if errors.Is(err, errPollNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// CreatePoll handles POST /api/polls (admin only)
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	user, ok := requireAdmin(h.db, w, r)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Description == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "description is required")
		return
	}
	if !req.Deadline.After(h.now()) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "deadline must be in the future")
		return
	}

	var options []string
	for _, opt := range req.Options {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	if len(options) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least 2 options are required")
		return
	}

	now := h.now()
	poll := models.Poll{
		ID:          auth.NewRecordID(),
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline.UTC().Truncate(time.Millisecond),
		Status:      models.StatusActive,
		Options:     make([]models.Option, 0, len(options)),
		CreatedBy:   user.ID,
		CreatedAt:   now.UTC().Truncate(time.Millisecond),
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO poll (id, title, description, deadline, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, poll.ID, poll.Title, poll.Description, poll.Deadline.UnixMilli(), poll.Status, poll.CreatedBy, poll.CreatedAt.UnixMilli())
	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	for i, text := range options {
		optionID, err := auth.GenerateID(8)
		if err != nil {
			slog.Error("failed to generate option ID", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
		_, err = tx.Exec(`
			INSERT INTO poll_option (id, poll_id, position, text, votes)
			VALUES ($1, $2, $3, $4, 0)
		`, optionID, poll.ID, i, text)
		if err != nil {
			slog.Error("failed to insert option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
			return
		}
		poll.Options = append(poll.Options, models.Option{ID: optionID, Text: text})
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "created_by", user.ID, "options", len(poll.Options))

	middleware.JSONResponse(w, http.StatusCreated, poll)
}

// Vote handles POST /api/polls/{id}/vote. One vote per user per poll.
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(h.db, w, r)
	if !ok {
		return
	}

	pollID := r.PathValue("id")
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "optionId is required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}
	defer tx.Rollback()

	var status string
	var deadline int64
	err = tx.QueryRow("SELECT status, deadline FROM poll WHERE id = $1", pollID).Scan(&status, &deadline)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if status != models.StatusActive || time.UnixMilli(deadline).Compare(h.now()) <= 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "poll closed")
		return
	}

	var voted int
	err = tx.QueryRow("SELECT COUNT(*) FROM vote WHERE poll_id = $1 AND user_id = $2", pollID, user.ID).Scan(&voted)
	if err != nil {
		slog.Error("failed to query vote", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if voted > 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "already voted")
		return
	}

	res, err := tx.Exec(`
		UPDATE poll_option SET votes = votes + 1 WHERE id = $1 AND poll_id = $2
	`, req.OptionID, pollID)
	if err != nil {
		slog.Error("failed to increment option", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid option")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO vote (poll_id, user_id, option_id, cast_at)
		VALUES ($1, $2, $3, $4)
	`, pollID, user.ID, req.OptionID, h.now().UnixMilli())
	if err != nil {
		// The primary key also rejects a racing second vote
		slog.Warn("failed to insert vote", "poll_id", pollID, "user_id", user.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusConflict, "already voted")
		return
	}

	poll, err := loadPoll(tx, pollID)
	if err != nil {
		slog.Error("failed to reload poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit vote", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit vote")
		return
	}

	slog.Info("vote cast", "poll_id", pollID, "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// UpdateStatus handles PATCH /api/polls/{id}/status (admin only). A poll can
// only move from active to closed; repeating the current status is a no-op.
func (h *PollHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.db, w, r); !ok {
		return
	}

	pollID := r.PathValue("id")
	var req models.StatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Status != models.StatusActive && req.Status != models.StatusClosed {
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be 'active' or 'closed'")
		return
	}

	var current string
	err := h.db.QueryRow("SELECT status FROM poll WHERE id = $1", pollID).Scan(&current)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if current == req.Status {
		middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: current})
		return
	}
	if current == models.StatusClosed {
		middleware.ErrorResponse(w, http.StatusConflict, "closed polls cannot be reopened")
		return
	}

	_, err = h.db.Exec("UPDATE poll SET status = $1 WHERE id = $2", req.Status, pollID)
	if err != nil {
		slog.Error("failed to update poll status", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll status")
		return
	}

	slog.Info("poll status changed", "poll_id", pollID, "from", current, "to", req.Status)

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: req.Status})
}

func loadPoll(q querier, pollID string) (models.Poll, error) {
	var poll models.Poll
	var deadline, createdAt int64
	err := q.QueryRow(`
		SELECT id, title, description, deadline, status, created_by, created_at
		FROM poll WHERE id = $1
	`, pollID).Scan(&poll.ID, &poll.Title, &poll.Description, &deadline, &poll.Status, &poll.CreatedBy, &createdAt)
	if err == sql.ErrNoRows {
		return models.Poll{}, errPollNotFound
	}
	if err != nil {
		return models.Poll{}, err
	}
	poll.Deadline = time.UnixMilli(deadline).UTC()
	poll.CreatedAt = time.UnixMilli(createdAt).UTC()

	rows, err := q.Query(`
		SELECT id, text, votes FROM poll_option WHERE poll_id = $1 ORDER BY position
	`, pollID)
	if err != nil {
		return models.Poll{}, err
	}
	defer rows.Close()

	poll.Options = []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.Text, &opt.Votes); err != nil {
			return models.Poll{}, err
		}
		poll.Options = append(poll.Options, opt)
		poll.TotalVotes += opt.Votes
	}
	return poll, rows.Err()
}

// loadPolls returns every poll, newest first, with options in stored order.
func loadPolls(q querier) ([]models.Poll, error) {
	rows, err := q.Query(`
		SELECT id, title, description, deadline, status, created_by, created_at
		FROM poll ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}

	polls := []models.Poll{}
	index := make(map[string]int)
	for rows.Next() {
		var p models.Poll
		var deadline, createdAt int64
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &deadline, &p.Status, &p.CreatedBy, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		p.Deadline = time.UnixMilli(deadline).UTC()
		p.CreatedAt = time.UnixMilli(createdAt).UTC()
		p.Options = []models.Option{}
		index[p.ID] = len(polls)
		polls = append(polls, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	optRows, err := q.Query(`
		SELECT poll_id, id, text, votes FROM poll_option ORDER BY poll_id, position
	`)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var pollID string
		var opt models.Option
		if err := optRows.Scan(&pollID, &opt.ID, &opt.Text, &opt.Votes); err != nil {
			return nil, err
		}
		i, ok := index[pollID]
		if !ok {
			continue
		}
		polls[i].Options = append(polls[i].Options, opt)
		polls[i].TotalVotes += opt.Votes
	}
	return polls, optRows.Err()
}
