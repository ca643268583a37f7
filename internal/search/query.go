// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrBadQuery is wrapped by every query syntax error.
var ErrBadQuery = errors.New("bad query")

// DefaultField is the only searchable field; other venue fields are
// stored but not indexed.
const DefaultField = "tags"

// Occur says how a clause participates in a boolean query.
type Occur int

const (
	// Should clauses add to the score; at least one must match when there
	// are no Must clauses.
	Should Occur = iota
	// Must clauses are required.
	Must
	// MustNot clauses exclude matching documents.
	MustNot
)

// Query is a parsed query tree.
type Query interface {
	fmt.Stringer
	isQuery()
}

// TermQuery matches one analyzed term.
type TermQuery struct {
	Term  string
	Boost float64
}

// PhraseQuery matches terms at fixed relative positions.
type PhraseQuery struct {
	Terms   []string
	Offsets []int
	Boost   float64
}

// BooleanQuery combines clauses.
type BooleanQuery struct {
	Clauses []Clause
	Boost   float64
}

// Clause is one member of a BooleanQuery.
type Clause struct {
	Query Query
	Occur Occur
}

func (*TermQuery) isQuery()    {}
func (*PhraseQuery) isQuery()  {}
func (*BooleanQuery) isQuery() {}

func boostSuffix(b float64) string {
	if b == 1 {
		return ""
	}
	return "^" + strconv.FormatFloat(b, 'g', -1, 64)
}

func (q *TermQuery) String() string {
	return DefaultField + ":" + q.Term + boostSuffix(q.Boost)
}

func (q *PhraseQuery) String() string {
	return DefaultField + ":\"" + strings.Join(q.Terms, " ") + "\"" + boostSuffix(q.Boost)
}

func (q *BooleanQuery) String() string {
	parts := make([]string, len(q.Clauses))
	for i, c := range q.Clauses {
		prefix := ""
		switch c.Occur {
		case Must:
			prefix = "+"
		case MustNot:
			prefix = "-"
		}
		inner := c.Query.String()
		if _, nested := c.Query.(*BooleanQuery); nested {
			inner = "(" + inner + ")"
		}
		parts[i] = prefix + inner
	}
	s := strings.Join(parts, " ")
	if q.Boost != 1 {
		s = "(" + s + ")" + boostSuffix(q.Boost)
	}
	return s
}

type lexKind int

const (
	lexEOF lexKind = iota
	lexWord
	lexPhrase
	lexLParen
	lexRParen
	lexColon
	lexCaret
	lexPlus
	lexMinus
	lexAnd
	lexOr
	lexNot
)

type lexeme struct {
	kind lexKind
	text string
	pos  int
}

func badQuery(pos int, format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrBadQuery, fmt.Sprintf(format, args...), pos)
}

func isTermStart(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	switch r {
	case '+', '-', '!', '(', ')', ':', '^', '[', ']', '"', '{', '}', '~', '*', '?', '\\', '/':
		return false
	}
	return true
}

func isTermChar(r rune) bool {
	return isTermStart(r) || r == '-' || r == '+'
}

func lex(input string) ([]lexeme, error) {
	src := []rune(input)
	var out []lexeme
	for i := 0; i < len(src); {
		r := src[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			out = append(out, lexeme{kind: lexLParen, pos: i})
			i++
		case r == ')':
			out = append(out, lexeme{kind: lexRParen, pos: i})
			i++
		case r == ':':
			out = append(out, lexeme{kind: lexColon, pos: i})
			i++
		case r == '^':
			out = append(out, lexeme{kind: lexCaret, pos: i})
			i++
		case r == '+':
			out = append(out, lexeme{kind: lexPlus, pos: i})
			i++
		case r == '-' || r == '!':
			out = append(out, lexeme{kind: lexMinus, pos: i})
			i++
		case r == '"':
			end := i + 1
			for end < len(src) && src[end] != '"' {
				if src[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(src) {
				return nil, badQuery(i, "unterminated phrase")
			}
			out = append(out, lexeme{kind: lexPhrase, text: unescape(string(src[i+1 : end])), pos: i})
			i = end + 1
		case r == '\\' || isTermStart(r):
			start := i
			var b strings.Builder
			for i < len(src) && (src[i] == '\\' || isTermChar(src[i])) {
				if src[i] == '\\' {
					if i+1 >= len(src) {
						return nil, badQuery(i, "dangling escape")
					}
					i++
				}
				b.WriteRune(src[i])
				i++
			}
			word := b.String()
			kind := lexWord
			switch word {
			case "AND", "&&":
				kind = lexAnd
			case "OR", "||":
				kind = lexOr
			case "NOT":
				kind = lexNot
			}
			out = append(out, lexeme{kind: kind, text: word, pos: start})
		default:
			return nil, badQuery(i, "unsupported syntax %q", r)
		}
	}
	return append(out, lexeme{kind: lexEOF, pos: len(src)}), nil
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

type parser struct {
	lexemes []lexeme
	next    int
}

func (p *parser) peek() lexeme { return p.lexemes[p.next] }

func (p *parser) take() lexeme {
	l := p.lexemes[p.next]
	if l.kind != lexEOF {
		p.next++
	}
	return l
}

// Parse parses query text. Bare terms are optional (OR); AND makes both
// neighbours required; NOT, '-' and '!' prohibit the next clause; '+'
// requires it. A query whose terms are all stop words parses to nil.
func Parse(text string) (Query, error) {
	if strings.TrimSpace(text) == "" {
		return nil, badQuery(0, "empty query")
	}
	lexemes, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{lexemes: lexemes}
	q, err := p.parseBoolean(0)
	if err != nil {
		return nil, err
	}
	if l := p.peek(); l.kind != lexEOF {
		return nil, badQuery(l.pos, "unexpected ')'")
	}
	return q, nil
}

// maxDepth bounds parenthesis nesting.
const maxDepth = 32

func (p *parser) parseBoolean(depth int) (Query, error) {
	if depth > maxDepth {
		return nil, badQuery(p.peek().pos, "nesting deeper than %d", maxDepth)
	}
	var clauses []Clause
	first := true
	for {
		l := p.peek()
		if l.kind == lexEOF || l.kind == lexRParen {
			break
		}

		conj := lexOr
		hasConj := false
		if l.kind == lexAnd || l.kind == lexOr {
			if first {
				return nil, badQuery(l.pos, "query cannot start with %s", l.text)
			}
			conj = p.take().kind
			hasConj = true
		}

		occur := Should
		switch p.peek().kind {
		case lexPlus:
			p.take()
			occur = Must
		case lexMinus, lexNot:
			p.take()
			occur = MustNot
		}
		if occur != MustNot && hasConj && conj == lexAnd {
			occur = Must
		}

		q, err := p.parseClause(depth)
		if err != nil {
			return nil, err
		}
		first = false

		if hasConj && conj == lexAnd && len(clauses) > 0 {
			if prev := &clauses[len(clauses)-1]; prev.Occur == Should {
				prev.Occur = Must
			}
		}
		if q != nil {
			clauses = append(clauses, Clause{Query: q, Occur: occur})
		}
	}

	switch len(clauses) {
	case 0:
		return nil, nil
	case 1:
		if clauses[0].Occur != MustNot {
			return clauses[0].Query, nil
		}
	}
	return &BooleanQuery{Clauses: clauses, Boost: 1}, nil
}

func (p *parser) parseClause(depth int) (Query, error) {
	l := p.take()

	if l.kind == lexWord && p.peek().kind == lexColon {
		if l.text != DefaultField {
			return nil, badQuery(l.pos, "field %q is not searchable", l.text)
		}
		p.take()
		l = p.take()
	}

	var (
		q   Query
		err error
	)
	switch l.kind {
	case lexWord:
		q = termsQuery(l.text)
	case lexPhrase:
		q = phraseQuery(l.text)
	case lexLParen:
		q, err = p.parseBoolean(depth + 1)
		if err != nil {
			return nil, err
		}
		if closing := p.take(); closing.kind != lexRParen {
			return nil, badQuery(closing.pos, "missing ')'")
		}
	case lexEOF:
		return nil, badQuery(l.pos, "missing term at end of query")
	default:
		return nil, badQuery(l.pos, "unexpected token %q", l.text)
	}

	if p.peek().kind == lexCaret {
		caret := p.take()
		num := p.take()
		if num.kind != lexWord {
			return nil, badQuery(caret.pos, "boost requires a number")
		}
		boost, perr := strconv.ParseFloat(num.text, 64)
		if perr != nil || boost <= 0 {
			return nil, badQuery(num.pos, "invalid boost %q", num.text)
		}
		applyBoost(q, boost)
	}
	return q, nil
}

func applyBoost(q Query, boost float64) {
	switch v := q.(type) {
	case *TermQuery:
		v.Boost *= boost
	case *PhraseQuery:
		v.Boost *= boost
	case *BooleanQuery:
		v.Boost *= boost
	}
}

// termsQuery analyzes a bare word. Words that split into several terms
// (wine-bar) become optional clauses of their own.
func termsQuery(word string) Query {
	terms := Analyze(word)
	switch len(terms) {
	case 0:
		return nil
	case 1:
		return &TermQuery{Term: terms[0], Boost: 1}
	}
	clauses := make([]Clause, len(terms))
	for i, t := range terms {
		clauses[i] = Clause{Query: &TermQuery{Term: t, Boost: 1}, Occur: Should}
	}
	return &BooleanQuery{Clauses: clauses, Boost: 1}
}

func phraseQuery(text string) Query {
	tokens := tokenize(text)
	switch len(tokens) {
	case 0:
		return nil
	case 1:
		return &TermQuery{Term: tokens[0].term, Boost: 1}
	}
	pq := &PhraseQuery{Boost: 1}
	for _, t := range tokens {
		pq.Terms = append(pq.Terms, t.term)
		pq.Offsets = append(pq.Offsets, t.pos-tokens[0].pos)
	}
	return pq
}
