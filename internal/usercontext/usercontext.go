// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package usercontext models the four situational facts consulted by
// context-aware selection: who the user is with, whether they are rested,
// their mood, and whether they want a physical activity.
//
// Accepted answers are the English reply-keyboard labels:
//
//	company   Alone | Partner | Friends | Family
//	rested    Yes | No          ("Yes" is the only true value)
//	activity  Yes | No          ("Yes" is the only true value)
//	mood      Good mood | Bad mood
//
// Matching ignores case and surrounding spaces. Anything else is rejected
// with ErrInvalidValue.
package usercontext

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidValue is returned for answers outside a field's vocabulary.
var ErrInvalidValue = errors.New("invalid context value")

// Company is who the user is with.
type Company string

const (
	Alone   Company = "Alone"
	Partner Company = "Partner"
	Friends Company = "Friends"
	Family  Company = "Family"
)

// Reply tokens for the boolean fields.
const (
	YesToken      = "Yes"
	NoToken       = "No"
	GoodMoodToken = "Good mood"
	BadMoodToken  = "Bad mood"
)

// Keyboard options, in display order.
var (
	CompanyOptions = []string{string(Alone), string(Partner), string(Friends), string(Family)}
	BooleanOptions = []string{YesToken, NoToken}
	MoodOptions    = []string{GoodMoodToken, BadMoodToken}
)

// Field identifies a context fact. The numeric values are the status
// codes returned by Check.
type Field int

const (
	// FieldNone means every fact is known.
	FieldNone Field = iota
	FieldCompany
	FieldRested
	FieldMood
	FieldActivity
)

func (f Field) String() string {
	switch f {
	case FieldNone:
		return "none"
	case FieldCompany:
		return "company"
	case FieldRested:
		return "rested"
	case FieldMood:
		return "mood"
	case FieldActivity:
		return "activity"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// UserContext holds the facts; nil means unknown.
type UserContext struct {
	Company  *Company `json:"company,omitempty"`
	Rested   *bool    `json:"rested,omitempty"`
	Mood     *bool    `json:"good_mood,omitempty"`
	Activity *bool    `json:"activity,omitempty"`
}

// New builds a user's context from the ontology's defaults.
func New(o Ontology, userID int64) *UserContext {
	uc := o.Defaults(userID)
	return uc.Clone()
}

// Clone returns a deep copy.
func (uc *UserContext) Clone() *UserContext {
	out := &UserContext{}
	if uc.Company != nil {
		c := *uc.Company
		out.Company = &c
	}
	out.Rested = cloneBool(uc.Rested)
	out.Mood = cloneBool(uc.Mood)
	out.Activity = cloneBool(uc.Activity)
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// Merge fills the unknown facts of uc from other.
func (uc *UserContext) Merge(other UserContext) {
	o := other.Clone()
	if uc.Company == nil {
		uc.Company = o.Company
	}
	if uc.Rested == nil {
		uc.Rested = o.Rested
	}
	if uc.Mood == nil {
		uc.Mood = o.Mood
	}
	if uc.Activity == nil {
		uc.Activity = o.Activity
	}
}

// Check returns FieldNone when every fact is known, otherwise the first
// unknown fact in the order company, rested, mood, activity.
func Check(uc *UserContext) Field {
	switch {
	case uc == nil || uc.Company == nil:
		return FieldCompany
	case uc.Rested == nil:
		return FieldRested
	case uc.Mood == nil:
		return FieldMood
	case uc.Activity == nil:
		return FieldActivity
	default:
		return FieldNone
	}
}

// ParseCompany matches text against the company vocabulary.
func ParseCompany(text string) (Company, error) {
	text = strings.TrimSpace(text)
	for _, c := range CompanyOptions {
		if strings.EqualFold(text, c) {
			return Company(c), nil
		}
	}
	return "", fmt.Errorf("%w: company %q", ErrInvalidValue, text)
}

// ParseYesNo maps "Yes" to true and "No" to false.
func ParseYesNo(text string) (bool, error) {
	return parsePair(text, YesToken, NoToken)
}

// ParseMood maps "Good mood" to true and "Bad mood" to false.
func ParseMood(text string) (bool, error) {
	return parsePair(text, GoodMoodToken, BadMoodToken)
}

func parsePair(text, trueToken, falseToken string) (bool, error) {
	text = strings.TrimSpace(text)
	switch {
	case strings.EqualFold(text, trueToken):
		return true, nil
	case strings.EqualFold(text, falseToken):
		return false, nil
	default:
		return false, fmt.Errorf("%w: expected %q or %q, got %q", ErrInvalidValue, trueToken, falseToken, text)
	}
}

// SetCompany validates and stores the company answer.
func (uc *UserContext) SetCompany(text string) error {
	c, err := ParseCompany(text)
	if err != nil {
		return err
	}
	uc.Company = &c
	return nil
}

// SetRested validates and stores the rested answer.
func (uc *UserContext) SetRested(text string) error {
	v, err := ParseYesNo(text)
	if err != nil {
		return err
	}
	uc.Rested = &v
	return nil
}

// SetMood validates and stores the mood answer.
func (uc *UserContext) SetMood(text string) error {
	v, err := ParseMood(text)
	if err != nil {
		return err
	}
	uc.Mood = &v
	return nil
}

// SetActivity validates and stores the activity answer.
func (uc *UserContext) SetActivity(text string) error {
	v, err := ParseYesNo(text)
	if err != nil {
		return err
	}
	uc.Activity = &v
	return nil
}

// String renders the facts for display.
func (uc *UserContext) String() string {
	return fmt.Sprintf("Company: %s\nRested: %s\nMood: %s\nActivity: %s",
		describeCompany(uc.Company),
		describeBool(uc.Rested, YesToken, NoToken),
		describeBool(uc.Mood, GoodMoodToken, BadMoodToken),
		describeBool(uc.Activity, YesToken, NoToken))
}

func describeCompany(c *Company) string {
	if c == nil {
		return "not set"
	}
	return string(*c)
}

func describeBool(b *bool, yes, no string) string {
	switch {
	case b == nil:
		return "not set"
	case *b:
		return yes
	default:
		return no
	}
}
