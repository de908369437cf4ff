// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/pollsync/models"
)

// DefaultTimeout bounds a single API call when the caller's context has no
// deadline of its own.
const DefaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token for outgoing requests. An empty
// token omits the Authorization header.
type TokenSource interface {
	Token() string
}

// Client talks to the Remote Poll API under a base URL such as
// http://localhost:3318/api.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource attaches bearer tokens from ts to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Signup handles POST /auth/signup
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/signup", req, &resp)
	return resp, err
}

// Login handles POST /auth/login
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &resp)
	return resp, err
}

// ListPolls handles GET /polls. Both a bare array and a { polls } envelope
// are accepted.
func (c *Client) ListPolls(ctx context.Context) ([]models.Poll, error) {
	body, err := c.do(ctx, http.MethodGet, "/polls", nil)
	if err != nil {
		return nil, err
	}
	return decodePollList(body)
}

// GetPoll handles GET /polls/:id
func (c *Client) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	var poll models.Poll
	err := c.doJSON(ctx, http.MethodGet, "/polls/"+url.PathEscape(pollID), nil, &poll)
	return poll, err
}

// CreatePoll handles POST /polls. The server may answer with the new poll or
// with the full updated collection; the result says which.
func (c *Client) CreatePoll(ctx context.Context, req models.CreatePollRequest) (PollSet, error) {
	body, err := c.do(ctx, http.MethodPost, "/polls", req)
	if err != nil {
		return PollSet{}, err
	}
	return decodePollSet(body)
}

// Vote handles POST /polls/:id/vote and returns the updated poll.
func (c *Client) Vote(ctx context.Context, pollID, optionID string) (models.Poll, error) {
	var poll models.Poll
	path := "/polls/" + url.PathEscape(pollID) + "/vote"
	err := c.doJSON(ctx, http.MethodPost, path, models.VoteRequest{OptionID: optionID}, &poll)
	return poll, err
}

// UpdateStatus handles PATCH /polls/:id/status
func (c *Client) UpdateStatus(ctx context.Context, pollID, status string) (string, error) {
	var resp models.StatusResponse
	path := "/polls/" + url.PathEscape(pollID) + "/status"
	if err := c.doJSON(ctx, http.MethodPatch, path, models.StatusRequest{Status: status}, &resp); err != nil {
		return "", err
	}
	if resp.Status == "" {
		resp.Status = status
	}
	return resp.Status, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	body, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// do sends one request and returns the raw body of a 2xx response. Anything
// else becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, in interface{}) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("failed to reach API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	slog.Debug("api request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}
