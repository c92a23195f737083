package bridge

import (
	"strconv"
	"sync"
)

// SessionMap keeps native items of navigation sessions (call and type
// hierarchies). Each session maps short base-36 item ids to items; children
// found while navigating are added to the session they were reached from.
type SessionMap[T any] struct {
	mu       sync.Mutex
	pool     int
	sessions map[string]map[string]T
}

// NewSessionMap creates an empty session map.
func NewSessionMap[T any]() *SessionMap[T] {
	return &SessionMap[T]{sessions: make(map[string]map[string]T)}
}

// NewSession starts a session and returns its id.
func (s *SessionMap[T]) NewSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strconv.Itoa(s.pool)
	s.pool++
	s.sessions[id] = make(map[string]T)
	return id
}

// Add stores item in session and returns the item id. The boolean is false
// when the session does not exist.
func (s *SessionMap[T]) Add(session string, item T) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.sessions[session]
	if !ok {
		return "", false
	}
	id := strconv.FormatInt(int64(len(items)), 36)
	items[id] = item
	return id, true
}

// Get returns item id of session.
func (s *SessionMap[T]) Get(session, id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	items, ok := s.sessions[session]
	if !ok {
		return zero, false
	}
	item, ok := items[id]
	return item, ok
}

// Release drops a session and all its items.
func (s *SessionMap[T]) Release(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session)
}

// Clear drops every session.
func (s *SessionMap[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]map[string]T)
}

// Len returns the number of live sessions.
func (s *SessionMap[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
