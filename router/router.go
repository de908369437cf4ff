// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/pollsync/handlers"
	"github.com/danielhkuo/pollsync/middleware"
)

func NewRouter(db *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db)
	pollHandler := handlers.NewPollHandler(db)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /api/auth/signup", middleware.WithLogging(authHandler.Signup))
	mux.HandleFunc("POST /api/auth/login", middleware.WithLogging(authHandler.Login))

	// Polls (public reads)
	mux.HandleFunc("GET /api/polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /api/polls/{id}", middleware.WithLogging(pollHandler.GetPoll))

	// Polls (authenticated)
	mux.HandleFunc("POST /api/polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("POST /api/polls/{id}/vote", middleware.WithLogging(pollHandler.Vote))
	mux.HandleFunc("PATCH /api/polls/{id}/status", middleware.WithLogging(pollHandler.UpdateStatus))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollsync API v1"))
	})

	return mux
}
