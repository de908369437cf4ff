package models

import (
	"encoding/json"
	"time"
)

// Poll status constants
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Request types

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreatePollRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	Options     []string  `json:"options"`
}

type VoteRequest struct {
	OptionID string `json:"optionId"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

// Response types

// AuthResponse is the flattened `{ role, token, ...user }` body returned by
// signup and login. Signup leaves Token empty.
type AuthResponse struct {
	User
	Token string `json:"token,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// PollsEnvelope is the `{ polls: [...] }` wrapper some endpoints use instead
// of a bare array.
type PollsEnvelope struct {
	Polls []Poll `json:"polls"`
}

// Domain types

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// UnmarshalJSON accepts either "id" or "_id" as the option identifier.
func (o *Option) UnmarshalJSON(data []byte) error {
	type alias Option
	aux := struct {
		*alias
		LegacyID string `json:"_id"`
	}{alias: (*alias)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if o.ID == "" {
		o.ID = aux.LegacyID
	}
	return nil
}

type Poll struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	Status      string    `json:"status"`
	Options     []Option  `json:"options"`
	TotalVotes  int       `json:"totalVotes"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// UnmarshalJSON accepts either "id" or "_id" as the poll identifier.
func (p *Poll) UnmarshalJSON(data []byte) error {
	type alias Poll
	aux := struct {
		*alias
		LegacyID string `json:"_id"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.LegacyID
	}
	return nil
}

// IsOpen reports whether the poll still accepts votes at now.
func (p Poll) IsOpen(now time.Time) bool {
	return p.Status == StatusActive && p.Deadline.After(now)
}

// Option returns the option with the given ID.
func (p Poll) Option(id string) (Option, bool) {
	for _, opt := range p.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Clone returns a deep copy so cached polls never share option slices.
func (p Poll) Clone() Poll {
	c := p
	if p.Options != nil {
		c.Options = make([]Option, len(p.Options))
		copy(c.Options, p.Options)
	}
	return c
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
