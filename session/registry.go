package session

import (
	"errors"
	"fmt"
)

var ErrDuplicateConnection = errors.New("connection already has a session")

// ID identifies one connection for the lifetime of its socket. IDs are never
// reused for a different client.
type ID string

type Session struct {
	ID       ID
	Username string
	Score    int
	Active   bool
	Closed   bool
}

// Player is the public part of an active session.
type Player struct {
	Username string
	Score    int
}

// Result is the identity and score a finished game hands to the leaderboard.
type Result struct {
	Username string
	Score    int
}

// Registry holds one session per connection that has joined. Sessions are
// kept after they finish or disconnect, so the registry only grows for the
// lifetime of the process.
//
// A Registry is not safe for concurrent use; the hub goroutine owns it.
type Registry struct {
	sessions map[ID]*Session
	order    []ID
	active   int
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[ID]*Session),
	}
}

// Join creates an active session with a zero score. A second join on the same
// connection is rejected and leaves the existing session untouched.
func (r *Registry) Join(id ID, username string) (ID, error) {
	if _, ok := r.sessions[id]; ok {
		return "", fmt.Errorf("join %s: %w", id, ErrDuplicateConnection)
	}
	r.sessions[id] = &Session{
		ID:       id,
		Username: username,
		Active:   true,
	}
	r.order = append(r.order, id)
	r.active++
	return id, nil
}

// UpdateScore sets the live score of an active session. Updates for unknown
// or finished sessions are dropped; it reports whether the score was applied.
func (r *Registry) UpdateScore(id ID, score int) bool {
	s, ok := r.sessions[id]
	if !ok || !s.Active {
		return false
	}
	s.Score = score
	return true
}

// MarkGameOver finishes an active session with its final score.
func (r *Registry) MarkGameOver(id ID, score int) (Result, bool) {
	s, ok := r.sessions[id]
	if !ok || !s.Active {
		return Result{}, false
	}
	s.Score = score
	s.Active = false
	r.active--
	return Result{Username: s.Username, Score: score}, true
}

// MarkDisconnected deactivates the session of a closed connection. It is
// idempotent and reports whether the active roster changed. Connections that
// never joined leave nothing behind.
func (r *Registry) MarkDisconnected(id ID) bool {
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.Closed = true
	if !s.Active {
		return false
	}
	s.Active = false
	r.active--
	return true
}

// ActiveSnapshot returns the active sessions in join order.
func (r *Registry) ActiveSnapshot() []Player {
	out := make([]Player, 0, r.active)
	for _, id := range r.order {
		s := r.sessions[id]
		if s.Active {
			out = append(out, Player{Username: s.Username, Score: s.Score})
		}
	}
	return out
}

// Get returns a copy of the session for id.
func (r *Registry) Get(id ID) (Session, bool) {
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

func (r *Registry) Len() int {
	return len(r.sessions)
}

func (r *Registry) ActiveLen() int {
	return r.active
}
