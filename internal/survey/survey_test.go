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

func testQuestions() []Question {
	return []Question{
		{Text: "Food?", Options: []string{"Pizza", "Any"}},
		{Text: "Drink?", Options: []string{"Wine", "Any"}},
		{Text: "Place?"},
	}
}

func TestSurveyLifecycle(t *testing.T) {
	t.Parallel()

	s := New(testQuestions())
	if s.Status() != NotStarted {
		t.Fatalf("Status() = %s, want not_started", s.Status())
	}

	answers := []string{"Pizza", "any", "Museum"}
	for i, a := range answers {
		q, err := s.NextQuestion()
		if err != nil {
			t.Fatalf("NextQuestion() error = %v", err)
		}
		if q.Text != testQuestions()[i].Text {
			t.Errorf("question %d = %q", i, q.Text)
		}
		if err := s.SetNextAnswer(a); err != nil {
			t.Fatalf("SetNextAnswer() error = %v", err)
		}
		if i < len(answers)-1 && s.Status() != InProgress {
			t.Errorf("Status() = %s after %d answers", s.Status(), i+1)
		}
	}

	if !s.IsComplete() {
		t.Fatal("expected survey to be complete")
	}
	if _, err := s.NextQuestion(); !errors.Is(err, ErrSurveyComplete) {
		t.Errorf("NextQuestion() error = %v, want ErrSurveyComplete", err)
	}
	if err := s.SetNextAnswer("extra"); !errors.Is(err, ErrSurveyComplete) {
		t.Errorf("SetNextAnswer() error = %v, want ErrSurveyComplete", err)
	}
	if got := s.Terms(); !reflect.DeepEqual(got, []string{"Pizza", "Museum"}) {
		t.Errorf("Terms() = %v", got)
	}
}

func TestSurveyRejectsBlankAnswer(t *testing.T) {
	t.Parallel()

	s := New(testQuestions())
	if err := s.SetNextAnswer("   "); !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("SetNextAnswer() error = %v, want ErrEmptyAnswer", err)
	}
	if s.Status() != NotStarted {
		t.Error("blank answer must not advance the survey")
	}
}

func TestSurveyResetReturnsToFirstQuestion(t *testing.T) {
	t.Parallel()

	for answered := 0; answered <= len(testQuestions()); answered++ {
		s := New(testQuestions())
		for i := 0; i < answered; i++ {
			if err := s.SetNextAnswer("x"); err != nil {
				t.Fatalf("SetNextAnswer() error = %v", err)
			}
		}
		s.Reset()

		q, err := s.NextQuestion()
		if err != nil {
			t.Fatalf("after %d answers: NextQuestion() error = %v", answered, err)
		}
		if q.Text != "Food?" {
			t.Errorf("after %d answers: first question = %q", answered, q.Text)
		}
		if s.Status() != NotStarted {
			t.Errorf("after %d answers: Status() = %s", answered, s.Status())
		}
	}
}

func TestSurveyString(t *testing.T) {
	t.Parallel()

	s := New(testQuestions())
	_ = s.SetNextAnswer("Pizza")

	out := s.String()
	if !strings.HasPrefix(out, "1. Food?\nPizza\n") {
		t.Errorf("unexpected transcript start: %q", out)
	}
	if !strings.Contains(out, "2. Drink?\n(no answer)") {
		t.Errorf("expected unanswered marker, got %q", out)
	}
	if strings.Index(out, "Food?") > strings.Index(out, "Place?") {
		t.Error("expected questions in original order")
	}
}

func TestDefaultDefinition(t *testing.T) {
	t.Parallel()

	def := DefaultDefinition()
	if len(def.Questions) == 0 || len(def.Categories) == 0 {
		t.Fatal("expected built-in questions and categories")
	}
	if err := def.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParseDefinitionValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"valid", "questions: [{text: Q}]\ncategories: [{label: C, activities: [a, b]}]", false},
		{"no questions", "categories: [{label: C, activities: [a]}]", true},
		{"blank question", "questions: [{text: ' '}]\ncategories: [{label: C, activities: [a]}]", true},
		{"no categories", "questions: [{text: Q}]", true},
		{"activity with space", "questions: [{text: Q}]\ncategories: [{label: C, activities: [wine bar]}]", true},
		{"reserved none", "questions: [{text: Q}]\ncategories: [{label: C, activities: [None]}]", true},
		{"duplicate activity", "questions: [{text: Q}]\ncategories: [{label: C, activities: [pub, PUB]}]", true},
		{"malformed", "questions: [", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseDefinition([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDefinition() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
