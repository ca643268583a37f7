// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package survey

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func testCategories() []CategoryDefinition {
	return []CategoryDefinition{
		{Label: "Food", Activities: []string{"restaurant", "pizzeria", "gelato"}},
		{Label: "Outdoor", Activities: []string{"park", "beach", "hiking"}},
	}
}

func TestContextEngineWalk(t *testing.T) {
	t.Parallel()

	e := NewContextEngine(testCategories())
	if e.Status() != NotStarted {
		t.Fatalf("Status() = %s", e.Status())
	}

	c, err := e.NextCategory()
	if err != nil || c.Label != "Food" {
		t.Fatalf("NextCategory() = %v, %v", c, err)
	}
	if err := e.SetActivityFlags(strings.Split("Pizzeria  gelato", " ")); err != nil {
		t.Fatalf("SetActivityFlags() error = %v", err)
	}
	if e.Status() != InProgress {
		t.Errorf("Status() = %s, want in_progress", e.Status())
	}

	c, _ = e.NextCategory()
	if c.Label != "Outdoor" {
		t.Fatalf("expected Outdoor next, got %s", c.Label)
	}
	if err := e.SetActivityFlags([]string{"NONE"}); err != nil {
		t.Fatalf("SetActivityFlags(none) error = %v", err)
	}

	if !e.IsComplete() {
		t.Fatal("expected engine to be complete")
	}
	if _, err := e.NextCategory(); !errors.Is(err, ErrContextsComplete) {
		t.Errorf("NextCategory() error = %v, want ErrContextsComplete", err)
	}
	if err := e.SetActivityFlags([]string{"park"}); !errors.Is(err, ErrContextsComplete) {
		t.Errorf("SetActivityFlags() error = %v, want ErrContextsComplete", err)
	}
	if got := e.SelectedActivities(); !reflect.DeepEqual(got, []string{"pizzeria", "gelato"}) {
		t.Errorf("SelectedActivities() = %v", got)
	}
}

func TestSetActivityFlagsIsAllOrNothing(t *testing.T) {
	t.Parallel()

	e := NewContextEngine(testCategories())
	if err := e.SetActivityFlags([]string{"restaurant"}); err != nil {
		t.Fatalf("SetActivityFlags() error = %v", err)
	}

	before := e.Categories()
	err := e.SetActivityFlags([]string{"park", "parasailing", "beach"})

	var unknown *UnknownActivityError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownActivityError, got %v", err)
	}
	if !errors.Is(err, ErrUnknownActivity) {
		t.Error("expected error to wrap ErrUnknownActivity")
	}
	if !reflect.DeepEqual(unknown.Tokens, []string{"parasailing"}) {
		t.Errorf("Tokens = %v", unknown.Tokens)
	}
	if !reflect.DeepEqual(e.Categories(), before) {
		t.Error("rejected submission changed flags")
	}
	if c, _ := e.NextCategory(); c.Label != "Outdoor" {
		t.Errorf("rejected submission advanced engine to %s", c.Label)
	}
}

func TestSetActivityFlagsEmpty(t *testing.T) {
	t.Parallel()

	e := NewContextEngine(testCategories())
	if err := e.SetActivityFlags([]string{"", " "}); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("SetActivityFlags() error = %v, want ErrEmptySelection", err)
	}
	if e.Status() != NotStarted {
		t.Error("empty submission must not advance")
	}
}

func TestResetFlagsKeepsPosition(t *testing.T) {
	t.Parallel()

	e := NewContextEngine(testCategories())
	_ = e.SetActivityFlags([]string{"gelato"})
	e.ResetFlags()

	if len(e.SelectedActivities()) != 0 {
		t.Errorf("expected no selections after reset, got %v", e.SelectedActivities())
	}
	if c, _ := e.NextCategory(); c.Label != "Outdoor" {
		t.Errorf("reset moved position to %s", c.Label)
	}
}

func TestShowChosen(t *testing.T) {
	t.Parallel()

	e := NewContextEngine(testCategories())
	_ = e.SetActivityFlags([]string{"restaurant", "gelato"})

	want := "*Food*: restaurant, gelato\n*Outdoor*: none\n"
	if got := e.ShowChosen(); got != want {
		t.Errorf("ShowChosen() = %q, want %q", got, want)
	}
}

func TestCategoryString(t *testing.T) {
	t.Parallel()

	e := NewContextEngine(testCategories())
	c, _ := e.NextCategory()
	c.Activities[1].Selected = true

	out := c.String()
	if !strings.HasPrefix(out, "*Food*\n") {
		t.Errorf("unexpected heading: %q", out)
	}
	if !strings.Contains(out, "[x] pizzeria") || !strings.Contains(out, "[ ] restaurant") {
		t.Errorf("unexpected flags rendering: %q", out)
	}
}
