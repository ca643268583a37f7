// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package survey

import (
	"errors"
	"fmt"
	"strings"
)

// NoneToken confirms a category with no activity selected.
const NoneToken = "none"

var (
	// ErrContextsComplete is returned once every category is confirmed.
	ErrContextsComplete = errors.New("all context categories already confirmed")
	// ErrEmptySelection is returned for a submission without tokens.
	ErrEmptySelection = errors.New("no activities submitted")
	// ErrUnknownActivity is wrapped by UnknownActivityError.
	ErrUnknownActivity = errors.New("unknown activity")
)

// UnknownActivityError lists the submitted tokens that matched no activity.
type UnknownActivityError struct {
	Category string
	Tokens   []string
}

func (e *UnknownActivityError) Error() string {
	return fmt.Sprintf("%s in %s: %s", ErrUnknownActivity, e.Category, strings.Join(e.Tokens, ", "))
}

func (e *UnknownActivityError) Unwrap() error {
	return ErrUnknownActivity
}

// Activity is a selectable flag within a category.
type Activity struct {
	Label    string
	Selected bool
}

// Category is a labelled group of activities.
type Category struct {
	Label      string
	Activities []Activity
}

// ResetCheckValues clears every flag of the category.
func (c *Category) ResetCheckValues() {
	for i := range c.Activities {
		c.Activities[i].Selected = false
	}
}

// Selected returns the labels of the flagged activities.
func (c *Category) Selected() []string {
	var out []string
	for _, a := range c.Activities {
		if a.Selected {
			out = append(out, a.Label)
		}
	}
	return out
}

// String renders the category prompt in Telegram markdown.
func (c *Category) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", c.Label)
	b.WriteString("Send the activities you are interested in, separated by spaces, or _none_:\n")
	for _, a := range c.Activities {
		mark := " "
		if a.Selected {
			mark = "x"
		}
		fmt.Fprintf(&b, "[%s] %s\n", mark, a.Label)
	}
	return b.String()
}

// ContextEngine walks the user through the categories once. Flags can be
// cleared later without rewinding the walk.
type ContextEngine struct {
	categories []Category
	confirmed  int
}

// NewContextEngine creates an engine with every flag off.
func NewContextEngine(defs []CategoryDefinition) *ContextEngine {
	cats := make([]Category, len(defs))
	for i, d := range defs {
		acts := make([]Activity, len(d.Activities))
		for j, label := range d.Activities {
			acts[j] = Activity{Label: label}
		}
		cats[i] = Category{Label: d.Label, Activities: acts}
	}
	return &ContextEngine{categories: cats}
}

// Status reports progress through the categories.
func (e *ContextEngine) Status() Status {
	switch {
	case e.confirmed >= len(e.categories):
		return Complete
	case e.confirmed == 0:
		return NotStarted
	default:
		return InProgress
	}
}

// IsComplete reports whether every category has been confirmed once.
func (e *ContextEngine) IsComplete() bool {
	return e.confirmed >= len(e.categories)
}

// NextCategory returns the first category the user has not confirmed.
func (e *ContextEngine) NextCategory() (*Category, error) {
	if e.IsComplete() {
		return nil, ErrContextsComplete
	}
	return &e.categories[e.confirmed], nil
}

// SetActivityFlags applies a submission to the current category and
// advances. Either every token names an activity of the category (case
// insensitive) or the single token "none" is sent; otherwise nothing
// changes and the error lists the offending tokens.
func (e *ContextEngine) SetActivityFlags(tokens []string) error {
	cat, err := e.NextCategory()
	if err != nil {
		return err
	}

	var submitted []string
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			submitted = append(submitted, t)
		}
	}
	if len(submitted) == 0 {
		return ErrEmptySelection
	}

	if len(submitted) == 1 && strings.EqualFold(submitted[0], NoneToken) {
		cat.ResetCheckValues()
		e.confirmed++
		return nil
	}

	matched := make([]int, 0, len(submitted))
	var unknown []string
	for _, t := range submitted {
		idx := -1
		for i, a := range cat.Activities {
			if strings.EqualFold(a.Label, t) {
				idx = i
				break
			}
		}
		if idx < 0 {
			unknown = append(unknown, t)
			continue
		}
		matched = append(matched, idx)
	}
	if len(unknown) > 0 {
		return &UnknownActivityError{Category: cat.Label, Tokens: unknown}
	}

	cat.ResetCheckValues()
	for _, idx := range matched {
		cat.Activities[idx].Selected = true
	}
	e.confirmed++
	return nil
}

// ResetFlags clears the flags of every category. Progress is kept.
func (e *ContextEngine) ResetFlags() {
	for i := range e.categories {
		e.categories[i].ResetCheckValues()
	}
}

// SelectedActivities returns every flagged activity in category order.
func (e *ContextEngine) SelectedActivities() []string {
	var out []string
	for i := range e.categories {
		out = append(out, e.categories[i].Selected()...)
	}
	return out
}

// Categories returns a deep copy of the categories.
func (e *ContextEngine) Categories() []Category {
	out := make([]Category, len(e.categories))
	for i, c := range e.categories {
		out[i] = Category{Label: c.Label, Activities: append([]Activity(nil), c.Activities...)}
	}
	return out
}

// ShowChosen renders every category with its selected activities.
func (e *ContextEngine) ShowChosen() string {
	var b strings.Builder
	for i := range e.categories {
		c := &e.categories[i]
		selected := c.Selected()
		list := "none"
		if len(selected) > 0 {
			list = strings.Join(selected, ", ")
		}
		fmt.Fprintf(&b, "*%s*: %s\n", c.Label, list)
	}
	return b.String()
}
