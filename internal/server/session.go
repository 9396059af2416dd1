package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatflowhq/chatflow/internal/chat"
)

// session is one logged-in analyst's state: at most one uploaded
// transcript, replaced on the next upload and discarded when the session
// expires. Nothing here is persisted.
type session struct {
	username   string
	transcript *chat.Transcript
	lastSeen   time.Time
}

// Sessions is an in-memory, token-keyed session registry. Each session's
// transcript is private to its token, so there is no shared mutable state
// between analysts.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
}

// NewSessions creates a session registry whose entries expire after being
// idle for ttl.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		sessions: make(map[string]*session),
		ttl:      ttl,
	}
}

// Create opens a new session for username and returns its bearer token.
func (s *Sessions) Create(username string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = &session{username: username, lastSeen: time.Now()}
	s.mu.Unlock()
	return token
}

// lookup returns the live session for token, refreshing its idle timer.
// Expired sessions are treated as absent.
func (s *Sessions) lookup(token string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	if time.Since(sess.lastSeen) > s.ttl {
		delete(s.sessions, token)
		return nil, false
	}
	sess.lastSeen = time.Now()
	return sess, true
}

// SetTranscript installs a freshly parsed transcript in the session,
// replacing any previous upload.
func (s *Sessions) SetTranscript(token string, t *chat.Transcript) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return false
	}
	sess.transcript = t
	sess.lastSeen = time.Now()
	return true
}

// Transcript returns the session's current transcript, or nil when nothing
// has been uploaded yet.
func (s *Sessions) Transcript(token string) *chat.Transcript {
	sess, ok := s.lookup(token)
	if !ok {
		return nil
	}
	return sess.transcript
}

// Delete removes a session, e.g. on logout.
func (s *Sessions) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Sweep drops sessions idle beyond the TTL and returns how many were
// removed. It is run periodically by the scheduler.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if time.Since(sess.lastSeen) > s.ttl {
			delete(s.sessions, token)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("expired sessions swept", "removed", removed, "active", len(s.sessions))
	}
	return removed
}
