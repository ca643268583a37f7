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

// SkipAnswer is the answer meaning "no preference"; it contributes no
// search terms.
const SkipAnswer = "any"

var (
	// ErrSurveyComplete is returned when asking or answering past the last question.
	ErrSurveyComplete = errors.New("survey already complete")
	// ErrEmptyAnswer is returned for blank answers.
	ErrEmptyAnswer = errors.New("answer must not be empty")
)

// Status is the progress of a questionnaire.
type Status int

const (
	NotStarted Status = iota
	InProgress
	Complete
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Survey records one answer per question, in order.
type Survey struct {
	questions []Question
	answers   []string
}

// New creates an unanswered survey.
func New(questions []Question) *Survey {
	return &Survey{
		questions: append([]Question(nil), questions...),
		answers:   make([]string, len(questions)),
	}
}

// next returns the index of the first unanswered question, or -1.
func (s *Survey) next() int {
	for i, a := range s.answers {
		if a == "" {
			return i
		}
	}
	return -1
}

// Status reports survey progress.
func (s *Survey) Status() Status {
	switch s.next() {
	case -1:
		return Complete
	case 0:
		return NotStarted
	default:
		return InProgress
	}
}

// IsComplete reports whether every question has an answer.
func (s *Survey) IsComplete() bool {
	return s.next() == -1
}

// NextQuestion returns the first unanswered question.
func (s *Survey) NextQuestion() (Question, error) {
	i := s.next()
	if i < 0 {
		return Question{}, ErrSurveyComplete
	}
	return s.questions[i], nil
}

// SetNextAnswer records text as the answer to the current question.
func (s *Survey) SetNextAnswer(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyAnswer
	}
	i := s.next()
	if i < 0 {
		return ErrSurveyComplete
	}
	s.answers[i] = text
	return nil
}

// Reset clears every answer.
func (s *Survey) Reset() {
	for i := range s.answers {
		s.answers[i] = ""
	}
}

// Answers returns the recorded answers in question order; unanswered
// questions yield "".
func (s *Survey) Answers() []string {
	return append([]string(nil), s.answers...)
}

// Terms returns the answers usable as search terms.
func (s *Survey) Terms() []string {
	terms := make([]string, 0, len(s.answers))
	for _, a := range s.answers {
		if a == "" || strings.EqualFold(a, SkipAnswer) {
			continue
		}
		terms = append(terms, a)
	}
	return terms
}

// String renders the question and answer transcript.
func (s *Survey) String() string {
	var b strings.Builder
	for i, q := range s.questions {
		answer := s.answers[i]
		if answer == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(&b, "%d. %s\n%s\n", i+1, q.Text, answer)
		if i < len(s.questions)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
