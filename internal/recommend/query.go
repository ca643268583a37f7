// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package recommend

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/tomtom215/cicerone/internal/catalog"
	"github.com/tomtom215/cicerone/internal/search"
	"github.com/tomtom215/cicerone/internal/usercontext"
)

// BuildQuery turns preference terms into query text for the index.
//
// Content-based queries match any preference term:
//
//	tags:(pizza OR wine OR museum)
//
// Context-aware queries require a preference term when there is one, add
// boosted situational terms and prohibit terms that do not fit:
//
//	+tags:(pizza OR wine) tags:(pub^2 OR bar^2) -tags:(hiking OR gym)
//
// Terms are reduced to letters and digits so answers typed by users
// cannot change the query structure. The result is empty when nothing
// searchable remains.
func BuildQuery(t catalog.RecommendType, terms []string, uc *usercontext.UserContext, boost float64) string {
	words := sanitize(terms)
	if t != catalog.ContextAware {
		if len(words) == 0 {
			return ""
		}
		return group(words, "")
	}

	boosted, prohibited := situationalTerms(uc)
	words = without(words, prohibited)

	var parts []string
	switch {
	case len(words) > 0 && len(boosted) > 0:
		parts = append(parts, "+"+group(words, ""), group(boosted, "^"+formatBoost(boost)))
	case len(words) > 0:
		parts = append(parts, group(words, ""))
	case len(boosted) > 0:
		parts = append(parts, group(boosted, "^"+formatBoost(boost)))
	default:
		return ""
	}
	if len(prohibited) > 0 {
		parts = append(parts, "-"+group(prohibited, ""))
	}
	return strings.Join(parts, " ")
}

func group(words []string, suffix string) string {
	var b strings.Builder
	b.WriteString(search.DefaultField)
	b.WriteString(":(")
	for i, w := range words {
		if i > 0 {
			b.WriteString(" OR ")
		}
		b.WriteString(w)
		b.WriteString(suffix)
	}
	b.WriteByte(')')
	return b.String()
}

func formatBoost(b float64) string {
	if b <= 0 {
		b = 1
	}
	return strconv.FormatFloat(b, 'f', -1, 64)
}

// sanitize splits terms into lower-case words of letters and digits and
// drops duplicates. Operators are upper case, so lower-casing also keeps
// words like "or" literal.
func sanitize(terms []string) []string {
	var words []string
	for _, t := range terms {
		for _, w := range strings.FieldsFunc(t, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			words = append(words, strings.ToLower(w))
		}
	}
	return dedupe(words)
}

func dedupe(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := words[:0:0]
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

func without(words, drop []string) []string {
	if len(drop) == 0 {
		return words
	}
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	out := words[:0:0]
	for _, w := range words {
		if !skip[w] {
			out = append(out, w)
		}
	}
	return out
}
