// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package search

import (
	"reflect"
	"testing"
)

func TestAnalyze(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"diacritics and punctuation", "Caffè, Pâtisserie & Wine-Bar", []string{"caffe", "patisserie", "wine", "bar"}},
		{"stop words removed", "The best pizza in town", []string{"best", "pizza", "town"}},
		{"upper case", "ÉCOLE", []string{"ecole"}},
		{"digits kept", "open 24h", []string{"open", "24h"}},
		{"only stop words", "the and of", []string{}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Analyze(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Analyze(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeKeepsStopWordPositions(t *testing.T) {
	t.Parallel()

	got := tokenize("pizza and beer")
	want := []token{
		{term: "pizza", pos: 0, start: 0, end: 5},
		{term: "beer", pos: 2, start: 10, end: 14},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokenize() = %#v, want %#v", got, want)
	}
}

func TestFoldingTokenizerStream(t *testing.T) {
	t.Parallel()

	stream := foldingTokenizer{}.Tokenize([]byte("Caffè and Pasticceria"))
	if len(stream) != 2 {
		t.Fatalf("len(stream) = %d, want 2", len(stream))
	}
	tests := []struct {
		term     string
		position int
	}{
		{"caffe", 1},
		{"pasticceria", 3},
	}
	for i, tt := range tests {
		if got := string(stream[i].Term); got != tt.term {
			t.Errorf("stream[%d].Term = %q, want %q", i, got, tt.term)
		}
		if stream[i].Position != tt.position {
			t.Errorf("stream[%d].Position = %d, want %d", i, stream[i].Position, tt.position)
		}
	}
}
