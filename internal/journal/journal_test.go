// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package journal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cicerone/internal/conversation"
	"github.com/tomtom215/cicerone/internal/metrics"
)

// startJournal opens an in-memory journal and runs its subscriber until
// the test ends.
func startJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(Config{InMemory: true, Topic: "test.turns"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		<-done
		if err := j.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return j
}

func waitForTurns(t *testing.T, j *Journal, userID int64, want int) []conversation.Turn {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		turns, err := j.Turns(context.Background(), userID, 0)
		if err != nil {
			t.Fatalf("Turns: %v", err)
		}
		if len(turns) >= want {
			return turns
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d turns, have %d", want, len(turns))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func turnAt(userID int64, command string, at time.Time) conversation.Turn {
	return conversation.Turn{
		UserID:    userID,
		Username:  "user" + command,
		Command:   command,
		StateFrom: "",
		StateTo:   "",
		ReplyKind: "text",
		At:        at,
	}
}

func TestRecordPersistsTurnsInOrder(t *testing.T) {
	j := startJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	commands := []string{"begin", "survey", "text", "recommend"}
	for i, c := range commands {
		if err := j.Record(ctx, turnAt(42, c, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Record(%s): %v", c, err)
		}
	}

	turns := waitForTurns(t, j, 42, len(commands))
	for i, c := range commands {
		if turns[i].Command != c {
			t.Errorf("turn %d = %q, want %q", i, turns[i].Command, c)
		}
	}

	latest, err := j.Turns(ctx, 42, 2)
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}
	if len(latest) != 2 || latest[0].Command != "text" || latest[1].Command != "recommend" {
		t.Errorf("unexpected latest turns: %+v", latest)
	}
}

func TestUsersLogAggregates(t *testing.T) {
	j := startJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	records := []conversation.Turn{
		turnAt(7, "begin", base),
		turnAt(3, "begin", base.Add(time.Minute)),
		turnAt(7, "help", base.Add(2*time.Minute)),
		turnAt(12, "begin", base.Add(3*time.Minute)),
	}
	for _, r := range records {
		if err := j.Record(ctx, r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	waitForTurns(t, j, 7, 2)
	waitForTurns(t, j, 3, 1)
	waitForTurns(t, j, 12, 1)

	users, err := j.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	if users[0].UserID != 3 || users[1].UserID != 7 || users[2].UserID != 12 {
		t.Errorf("users not ordered by id: %+v", users)
	}
	u7 := users[1]
	if u7.Turns != 2 || u7.LastCommand != "help" || u7.Username != "userhelp" {
		t.Errorf("unexpected summary for user 7: %+v", u7)
	}
	if !u7.FirstSeen.Equal(base) || !u7.LastSeen.Equal(base.Add(2*time.Minute)) {
		t.Errorf("unexpected seen range: %v .. %v", u7.FirstSeen, u7.LastSeen)
	}

	doc, err := j.UsersLog(ctx)
	if err != nil {
		t.Fatalf("UsersLog: %v", err)
	}
	out := string(doc)
	if !strings.HasPrefix(out, "Users: 3\n") {
		t.Errorf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "7\tuserhelp\tturns=2\tfirst_seen=2026-03-01T10:00:00Z\tlast_seen=2026-03-01T10:02:00Z\tlast_command=help\n") {
		t.Errorf("missing user 7 line: %q", out)
	}
}

func TestSummaryKeepsNewestUsernameOutOfOrder(t *testing.T) {
	j := startJournal(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		id   string
		turn conversation.Turn
	}{
		{"b", conversation.Turn{UserID: 9, Username: "newname", Command: "help", At: base.Add(time.Minute)}},
		{"a", conversation.Turn{UserID: 9, Username: "oldname", Command: "begin", At: base}},
		{"c", conversation.Turn{UserID: 9, Command: "survey", At: base.Add(2 * time.Minute)}},
	}
	for _, tt := range tests {
		turn := tt.turn
		if err := j.store(tt.id, &turn); err != nil {
			t.Fatalf("store(%s): %v", tt.id, err)
		}
	}

	users, err := j.Users(context.Background())
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	got := users[0]
	if got.Username != "newname" {
		t.Errorf("username = %q, want newname", got.Username)
	}
	if got.LastCommand != "survey" || got.Turns != 3 {
		t.Errorf("unexpected summary: %+v", got)
	}
	if !got.FirstSeen.Equal(base) {
		t.Errorf("first seen = %v, want %v", got.FirstSeen, base)
	}
}

func TestSummaryFillsMissingUsernameFromOlderTurn(t *testing.T) {
	j := startJournal(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	newer := conversation.Turn{UserID: 5, Command: "help", At: base.Add(time.Minute)}
	older := conversation.Turn{UserID: 5, Username: "mario", Command: "begin", At: base}
	if err := j.store("n", &newer); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := j.store("o", &older); err != nil {
		t.Fatalf("store: %v", err)
	}

	users, err := j.Users(context.Background())
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 1 || users[0].Username != "mario" || users[0].LastCommand != "help" {
		t.Errorf("unexpected summary: %+v", users)
	}
}

func TestUndecodablePayloadIsCountedAndSkipped(t *testing.T) {
	j := startJournal(t)
	before := testutil.ToFloat64(metrics.JournalEntriesTotal.WithLabelValues("failure"))

	if err := j.pubsub.Publish(j.topic, message.NewMessage("bad", []byte("not json"))); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := j.Record(context.Background(), turnAt(5, "begin", time.Now())); err != nil {
		t.Fatalf("Record: %v", err)
	}
	waitForTurns(t, j, 5, 1)

	// Delivery order between the two messages is not guaranteed.
	deadline := time.Now().Add(5 * time.Second)
	for testutil.ToFloat64(metrics.JournalEntriesTotal.WithLabelValues("failure"))-before < 1 {
		if time.Now().After(deadline) {
			t.Fatal("undecodable payload was never counted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRecordAfterClose(t *testing.T) {
	j, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := j.Record(context.Background(), turnAt(1, "begin", time.Now())); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Error("expected error without path")
	}
}
