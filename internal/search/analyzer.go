// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package search

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopWords are dropped from both indexed text and queries.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {},
	"by": {}, "for": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "no": {},
	"not": {}, "of": {}, "on": {}, "or": {}, "such": {}, "that": {}, "the": {},
	"their": {}, "then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "to": {},
	"was": {}, "will": {}, "with": {},
}

// foldPool holds transformers that strip combining marks (è -> e) and
// lower-case. transform.Transformer values are stateful, hence the pool.
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
			cases.Lower(language.Und),
		)
	},
}

// fold returns s lower-cased with diacritics removed.
func fold(s string) string {
	t := foldPool.Get().(transform.Transformer) //nolint:errcheck // pool only holds transformers
	defer foldPool.Put(t)
	t.Reset()
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

type token struct {
	term       string
	pos        int
	start, end int
}

// tokenize returns the normalized terms of text with their positions and
// byte offsets into the folded text. Removed stop words still consume a
// position so phrases do not match across them.
func tokenize(text string) []token {
	folded := fold(text)
	var tokens []token
	pos, start := 0, -1
	emit := func(end int) {
		term := folded[start:end]
		if _, stop := stopWords[term]; !stop {
			tokens = append(tokens, token{term: term, pos: pos, start: start, end: end})
		}
		pos++
		start = -1
	}
	for i, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			emit(i)
		}
	}
	if start >= 0 {
		emit(len(folded))
	}
	return tokens
}

// Analyze splits text into normalized index terms. Letters and digits form
// terms; everything else separates them. Stop words are removed.
func Analyze(text string) []string {
	tokens := tokenize(text)
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.term
	}
	return terms
}
