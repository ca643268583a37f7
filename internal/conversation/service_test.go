// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tomtom215/cicerone/internal/session"
)

func TestServiceProcess(t *testing.T) {
	hs := newHarness(t, ontology(t, "", "", "", ""))
	d := session.NewDispatcher(session.DefaultMailboxSize)
	defer d.Close(context.Background())
	svc := NewService(hs.h, d, nil)

	reply, err := svc.Process(context.Background(), Inbound{UserID: userID, Text: "begin"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if r, ok := reply.(TextReply); !ok || r.Text != MessageWelcome {
		t.Errorf("reply = %+v", reply)
	}
}

func TestServiceRateLimit(t *testing.T) {
	hs := newHarness(t, ontology(t, "", "", "", ""))
	d := session.NewDispatcher(session.DefaultMailboxSize)
	defer d.Close(context.Background())
	svc := NewService(hs.h, d, session.NewLimiter(0.001, 1))

	if _, err := svc.Process(context.Background(), Inbound{UserID: userID, Text: "help"}); err != nil {
		t.Fatalf("first message: %v", err)
	}
	reply, err := svc.Process(context.Background(), Inbound{UserID: userID, Text: "help"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if r, ok := reply.(TextReply); !ok || r.Text != MessageRateLimited {
		t.Errorf("reply = %+v", reply)
	}

	// Other users have their own budget.
	if _, err := svc.Process(context.Background(), Inbound{UserID: adminID, Text: "help"}); err != nil {
		t.Errorf("other user: %v", err)
	}
}

func TestServiceClosedDispatcher(t *testing.T) {
	hs := newHarness(t, ontology(t, "", "", "", ""))
	d := session.NewDispatcher(session.DefaultMailboxSize)
	if err := d.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	svc := NewService(hs.h, d, nil)

	if _, err := svc.Process(context.Background(), Inbound{UserID: userID, Text: "help"}); !errors.Is(err, session.ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestServiceSubmitDeliversInOrder(t *testing.T) {
	hs := newHarness(t, ontology(t, "", "", "", ""))
	d := session.NewDispatcher(session.DefaultMailboxSize)
	defer d.Close(context.Background())
	svc := NewService(hs.h, d, nil)

	replies := make(chan Reply, 2)
	deliver := func(_ context.Context, r Reply) { replies <- r }

	for _, msg := range []string{"begin", "nonsense"} {
		if err := svc.Submit(context.Background(), Inbound{UserID: userID, Text: msg}, deliver); err != nil {
			t.Fatalf("Submit(%s): %v", msg, err)
		}
	}

	first, second := <-replies, <-replies
	if r, ok := first.(TextReply); !ok || r.Text != MessageWelcome {
		t.Errorf("first reply = %+v", first)
	}
	if r, ok := second.(TextReply); !ok || r.Text != fmt.Sprintf(MessageUnknownCommand, "nonsense") {
		t.Errorf("second reply = %+v", second)
	}
}

func TestServiceSubmitRateLimitedDeliversNotice(t *testing.T) {
	hs := newHarness(t, ontology(t, "", "", "", ""))
	d := session.NewDispatcher(session.DefaultMailboxSize)
	defer d.Close(context.Background())
	svc := NewService(hs.h, d, session.NewLimiter(0.001, 1))

	replies := make(chan Reply, 2)
	deliver := func(_ context.Context, r Reply) { replies <- r }

	if err := svc.Submit(context.Background(), Inbound{UserID: userID, Text: "help"}, deliver); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	<-replies
	err := svc.Submit(context.Background(), Inbound{UserID: userID, Text: "help"}, deliver)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v", err)
	}
	if r, ok := (<-replies).(TextReply); !ok || r.Text != MessageRateLimited {
		t.Errorf("notice = %+v", r)
	}
}
