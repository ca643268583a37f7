// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package profile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/cicerone/internal/usercontext"
)

type recordingStore struct {
	mu    sync.Mutex
	facts map[int64]usercontext.UserContext
}

func (s *recordingStore) Set(userID int64, facts usercontext.UserContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.facts == nil {
		s.facts = make(map[int64]usercontext.UserContext)
	}
	s.facts[userID] = facts
}

func (s *recordingStore) get(userID int64) (usercontext.UserContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uc, ok := s.facts[userID]
	return uc, ok
}

const sampleProfile = `{
  "username": "mario",
  "affects": {"emotions": [
    {"timestamp": 100, "emotion": "joy", "sentiment": 0.8},
    {"timestamp": 300, "emotion": "sadness", "sentiment": -0.4},
    {"timestamp": 200, "emotion": "calm", "sentiment": 0.1}
  ]},
  "physicalStates": {"sleep": [
    {"timestamp": 50, "minutesAsleep": 300},
    {"timestamp": 90, "minutesAsleep": 480}
  ]}
}`

func testConfig(url string) Config {
	return Config{
		BaseURL:       url,
		Token:         "static-token",
		Timeout:       2 * time.Second,
		Limit:         10,
		Facet:         "Affects",
		RestedMinutes: 420,
		Breaker:       BreakerSettings{MaxRequests: 1, Timeout: time.Minute, FailureThreshold: 2},
	}
}

func TestLoginRequestAndFacts(t *testing.T) {
	var gotPath, gotToken, gotLimit, gotFacet string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get(TokenHeader)
		gotLimit = r.URL.Query().Get("l")
		gotFacet = r.URL.Query().Get("f")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleProfile))
	}))
	defer srv.Close()

	store := &recordingStore{}
	c, err := NewClient(testConfig(srv.URL), store)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	status, err := c.Login(context.Background(), 7, "  mario ")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if status != "Profile loaded (HTTP 200)." {
		t.Errorf("status = %q", status)
	}
	if gotPath != "/api/profile/mario" {
		t.Errorf("path = %q", gotPath)
	}
	if gotToken != "static-token" {
		t.Errorf("token header = %q", gotToken)
	}
	if gotLimit != "10" || gotFacet != "Affects" {
		t.Errorf("query l=%q f=%q", gotLimit, gotFacet)
	}

	facts, ok := store.get(7)
	if !ok {
		t.Fatal("expected facts stored for user 7")
	}
	if facts.Mood == nil || *facts.Mood {
		t.Errorf("expected bad mood from latest sentiment, got %v", facts.Mood)
	}
	if facts.Rested == nil || !*facts.Rested {
		t.Errorf("expected rested from latest sleep, got %v", facts.Rested)
	}
	if facts.Company != nil || facts.Activity != nil {
		t.Error("company and activity must stay unknown")
	}
}

func TestLoginEscapesUsername(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		username string
		wantPath string
	}{
		{"plain", "", "mario", "/api/profile/mario"},
		{"space and slash", "", "a b/c", "/api/profile/a%20b%2Fc"},
		{"percent", "", "100%", "/api/profile/100%25"},
		{"base path", "/v2", "a b", "/v2/api/profile/a%20b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotUser string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.EscapedPath()
				gotUser = r.URL.Path[strings.LastIndex(r.URL.Path, "/api/profile/")+len("/api/profile/"):]
				_, _ = w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			c, err := NewClient(testConfig(srv.URL+tt.base+"/"), &recordingStore{})
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			if _, err := c.Login(context.Background(), 1, tt.username); err != nil {
				t.Fatalf("Login: %v", err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("escaped path = %q, want %q", gotPath, tt.wantPath)
			}
			if gotUser != tt.username {
				t.Errorf("decoded username = %q, want %q", gotUser, tt.username)
			}
		})
	}
}

func TestLoginSignedToken(t *testing.T) {
	const key = "0123456789abcdef0123456789abcdef"
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = r.Header.Get(TokenHeader)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Token = ""
	cfg.SigningKey = key
	cfg.TokenTTL = time.Minute
	c, err := NewClient(cfg, &recordingStore{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Login(context.Background(), 1, "mario"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(key), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer("cicerone"))
	if err != nil || !tok.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	if claims.Subject != "mario" {
		t.Errorf("subject = %q", claims.Subject)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil ||
		claims.ExpiresAt.Sub(claims.IssuedAt.Time) != time.Minute {
		t.Errorf("unexpected lifetime: iat=%v exp=%v", claims.IssuedAt, claims.ExpiresAt)
	}
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		username string
	}{
		{name: "not found", status: http.StatusNotFound, username: "mario"},
		{name: "server error", status: http.StatusInternalServerError, username: "mario"},
		{name: "empty username", status: http.StatusOK, body: "{}", username: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			store := &recordingStore{}
			c, err := NewClient(testConfig(srv.URL), store)
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			_, err = c.Login(context.Background(), 3, tt.username)
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("expected ErrUnavailable, got %v", err)
			}
			if _, ok := store.get(3); ok {
				t.Error("no facts should be stored on failure")
			}
		})
	}
}

func TestLoginUnreadableBodyStoresNoFacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>ok</html>`))
	}))
	defer srv.Close()

	store := &recordingStore{}
	c, err := NewClient(testConfig(srv.URL), store)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	status, err := c.Login(context.Background(), 4, "mario")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !strings.Contains(status, "200") {
		t.Errorf("status = %q", status)
	}
	facts, ok := store.get(4)
	if !ok {
		t.Fatal("expected an entry replacing earlier facts")
	}
	if facts.Mood != nil || facts.Rested != nil {
		t.Errorf("expected no facts, got %+v", facts)
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL), &recordingStore{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := c.Login(context.Background(), 1, "mario"); err == nil {
			t.Fatal("expected failure")
		}
	}
	_, err = c.Login(context.Background(), 1, "mario")
	if !errors.Is(err, ErrUnavailable) || !rejected(err) {
		t.Fatalf("expected breaker rejection, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cfg   Config
		store FactStore
	}{
		{name: "nil store", cfg: Config{BaseURL: "http://x", Token: "t"}},
		{name: "bad scheme", cfg: Config{BaseURL: "ftp://x", Token: "t"}, store: &recordingStore{}},
		{name: "no credentials", cfg: Config{BaseURL: "http://x"}, store: &recordingStore{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewClient(tt.cfg, tt.store); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDocumentFactsEmpty(t *testing.T) {
	t.Parallel()

	var d Document
	facts := d.Facts(420)
	if facts.Mood != nil || facts.Rested != nil {
		t.Errorf("expected unknown facts, got %+v", facts)
	}

	d.Affects.Emotions = []Emotion{{Timestamp: 1, Sentiment: 0}}
	d.PhysicalStates.Sleep = []Sleep{{Timestamp: 1, MinutesAsleep: 419}}
	facts = d.Facts(420)
	if facts.Mood == nil || !*facts.Mood {
		t.Error("neutral sentiment counts as good mood")
	}
	if facts.Rested == nil || *facts.Rested {
		t.Error("419 minutes is below the rested threshold")
	}
}
