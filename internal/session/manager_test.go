// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package session

import (
	"sync"
	"testing"
	"time"
)

func TestGetOrCreate(t *testing.T) {
	m := NewManager(testDefinition(), 1)

	s, created := m.GetOrCreate(7)
	if !created {
		t.Fatal("expected first call to create the session")
	}
	if s.State != StateUnknown {
		t.Errorf("State = %q, want %q", s.State, StateUnknown)
	}
	if s.Preferences.Configuration() != 1 {
		t.Errorf("Configuration = %d, want 1", s.Preferences.Configuration())
	}

	again, created := m.GetOrCreate(7)
	if created || again != s {
		t.Error("expected the same session on the second call")
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
	if _, ok := m.Get(8); ok {
		t.Error("Get(8) found a session that was never created")
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	m := NewManager(testDefinition(), 0)

	var wg sync.WaitGroup
	results := make([]*Session, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = m.GetOrCreate(99)
		}(i)
	}
	wg.Wait()

	for i, s := range results {
		if s != results[0] {
			t.Fatalf("goroutine %d got a different session", i)
		}
	}
}

func TestBroadcast(t *testing.T) {
	m := NewManager(testDefinition(), 0)
	a, _ := m.GetOrCreate(1)
	b, _ := m.GetOrCreate(2)

	if n := m.Broadcast(2); n != 2 {
		t.Errorf("Broadcast updated %d sessions, want 2", n)
	}
	for _, s := range []*Session{a, b} {
		if got := s.Preferences.Configuration(); got != 2 {
			t.Errorf("user %d configuration = %d, want 2", s.UserID, got)
		}
	}

	c, _ := m.GetOrCreate(3)
	if got := c.Preferences.Configuration(); got != 2 {
		t.Errorf("new session configuration = %d, want 2", got)
	}
	if m.DefaultConfiguration() != 2 {
		t.Errorf("DefaultConfiguration = %d, want 2", m.DefaultConfiguration())
	}
}

func TestSnapshotOrderedByUser(t *testing.T) {
	m := NewManager(testDefinition(), 0)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	for _, id := range []int64{30, 10, 20} {
		s, _ := m.GetOrCreate(id)
		s.Touch("user", fixed.Add(time.Minute))
	}

	snap := m.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len = %d, want 3", len(snap))
	}
	for i, want := range []int64{10, 20, 30} {
		if snap[i].UserID != want {
			t.Errorf("snap[%d].UserID = %d, want %d", i, snap[i].UserID, want)
		}
	}
	if !snap[0].CreatedAt.Equal(fixed) || !snap[0].LastSeen.Equal(fixed.Add(time.Minute)) {
		t.Errorf("timestamps = %v / %v", snap[0].CreatedAt, snap[0].LastSeen)
	}
	if snap[0].Username != "user" {
		t.Errorf("Username = %q", snap[0].Username)
	}
}

func TestTouchKeepsKnownUsername(t *testing.T) {
	m := NewManager(testDefinition(), 0)
	s, _ := m.GetOrCreate(1)
	s.Touch("alice", time.Now())
	s.Touch("", time.Now())
	if s.Username() != "alice" {
		t.Errorf("Username = %q, want alice", s.Username())
	}
}
