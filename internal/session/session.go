// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package session owns per-user conversation state and the discipline for
// touching it.
//
// A Manager maps user IDs to sessions. A Dispatcher runs every turn of one
// user on that user's mailbox goroutine, in arrival order, while different
// users proceed in parallel:
//
//	err := dispatcher.Do(ctx, userID, func(ctx context.Context) error {
//		s, _ := manager.GetOrCreate(userID)
//		return handle(ctx, s)
//	})
//
// Session fields other than the metadata guarded by the session mutex must
// only be used inside such a function.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/cicerone/internal/metrics"
	"github.com/tomtom215/cicerone/internal/survey"
)

// StateUnknown is the pending state when no multi-turn command is waiting
// for input.
const StateUnknown = "unknown"

// Session is one user's conversation.
type Session struct {
	UserID      int64
	Preferences *Preferences

	// State is the wire token of the pending command, or StateUnknown.
	State string

	mu        sync.RWMutex
	username  string
	createdAt time.Time
	lastSeen  time.Time
}

// Touch records activity and the latest known username.
func (s *Session) Touch(username string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if username != "" {
		s.username = username
	}
	s.lastSeen = now
}

// Username returns the latest username the transport reported.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Summary is a point-in-time view of a session safe to read from any
// goroutine.
type Summary struct {
	UserID        int64
	Username      string
	Configuration int
	CreatedAt     time.Time
	LastSeen      time.Time
}

func (s *Session) summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summary{
		UserID:        s.UserID,
		Username:      s.username,
		Configuration: s.Preferences.Configuration(),
		CreatedAt:     s.createdAt,
		LastSeen:      s.lastSeen,
	}
}

// Manager is the process-wide session store. Sessions are created on a
// user's first message and kept for the life of the process.
type Manager struct {
	definition survey.Definition
	now        func() time.Time

	mu            sync.RWMutex
	sessions      map[int64]*Session
	configuration int
}

// NewManager creates a store whose sessions use def and start with the
// given configuration value.
func NewManager(def survey.Definition, configuration int) *Manager {
	return &Manager{
		definition:    def,
		now:           time.Now,
		sessions:      make(map[int64]*Session),
		configuration: configuration,
	}
}

// GetOrCreate returns the user's session, creating it if needed. The
// boolean is true when the session was created by this call.
func (m *Manager) GetOrCreate(userID int64) (*Session, bool) {
	if s, ok := m.Get(userID); ok {
		return s, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s, false
	}
	now := m.now()
	s := &Session{
		UserID:      userID,
		Preferences: NewPreferences(m.definition, m.configuration),
		State:       StateUnknown,
		createdAt:   now,
		lastSeen:    now,
	}
	m.sessions[userID] = s
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	return s, true
}

// Get returns the user's session if it exists.
func (m *Manager) Get(userID int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Broadcast sets the configuration value on every session and makes it the
// default for sessions created later. It returns the number of sessions
// updated.
func (m *Manager) Broadcast(configuration int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configuration = configuration
	for _, s := range m.sessions {
		s.Preferences.SetConfiguration(configuration)
	}
	return len(m.sessions)
}

// DefaultConfiguration returns the value new sessions start with.
func (m *Manager) DefaultConfiguration() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configuration
}

// Len returns the number of sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Snapshot returns a summary of every session ordered by user ID.
func (m *Manager) Snapshot() []Summary {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.summary())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
