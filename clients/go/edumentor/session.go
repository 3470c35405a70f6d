package edumentor

import "sync"

// Session holds the conversation identity for a sequence of exchanges. A
// fresh session has no identity; the server assigns one on the terminal
// frame of the first completed exchange and the session adopts it exactly
// once. Adoption is the only mutation.
type Session struct {
	mu sync.Mutex
	id string
}

// NewSession creates a session with no conversation identity.
func NewSession() *Session {
	return &Session{}
}

// Resume creates a session bound to a known conversation identity.
func Resume(id string) *Session {
	return &Session{id: id}
}

// Endpoint returns the streaming path for the next exchange: the
// session-less path before adoption, the session-scoped path after.
func (s *Session) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		return "/chat/stream"
	}
	return "/chat/" + s.id + "/stream"
}

// Adopt stores the identity if none is held yet. It reports whether the
// identity was adopted; once a session has an identity every later call is
// a no-op.
func (s *Session) Adopt(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != "" {
		return false
	}
	s.id = id
	return true
}

// ID returns the adopted identity, or "" before adoption.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Known reports whether an identity has been adopted.
func (s *Session) Known() bool {
	return s.ID() != ""
}
