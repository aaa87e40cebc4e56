// Package moderation holds the process-wide moderation state and the
// blocked-term content filter shared by the chat and admin services.
package moderation

import "sync"

// State is the shared moderation configuration: the global lock flag,
// the live connection count, the admin password, the public-room
// ceiling and the blocked-term list. It is injected into every
// component that needs it rather than accessed as a global.
//
// Each accessor guards its own field; sequences that read then write
// across store calls (the room-cap check, report dedup) are not
// serialized here and can transiently race.
type State struct {
	mu           sync.RWMutex
	locked       bool
	online       int
	password     string
	maxRooms     int
	blockedTerms []string
}

// NewState seeds the moderation state. Terms are normalized once so the
// filter can match against them directly.
func NewState(password string, maxRooms int, blockedTerms []string) *State {
	normalized := make([]string, 0, len(blockedTerms))
	for _, term := range blockedTerms {
		if n := Normalize(term); n != "" {
			normalized = append(normalized, n)
		}
	}

	return &State{
		password:     password,
		maxRooms:     maxRooms,
		blockedTerms: normalized,
	}
}

func (s *State) Locked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locked
}

func (s *State) SetLocked(locked bool) {
	s.mu.Lock()
	s.locked = locked
	s.mu.Unlock()
}

func (s *State) Password() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.password
}

func (s *State) SetPassword(password string) {
	s.mu.Lock()
	s.password = password
	s.mu.Unlock()
}

func (s *State) MaxRooms() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxRooms
}

func (s *State) SetMaxRooms(n int) {
	s.mu.Lock()
	s.maxRooms = n
	s.mu.Unlock()
}

func (s *State) BlockedTerms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blockedTerms
}

// ConnectionOpened increments the online count and returns the new value.
func (s *State) ConnectionOpened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online++
	return s.online
}

// ConnectionClosed decrements the online count and returns the new value.
func (s *State) ConnectionClosed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.online > 0 {
		s.online--
	}
	return s.online
}

func (s *State) Online() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}
