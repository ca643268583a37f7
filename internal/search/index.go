// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package search is the in-memory relevance index over venue tags.
//
// Venues live in a memory-only bleve index whose tags field is analyzed by
// a registered tokenizer wrapping Analyze. Queries are parsed by Parse and
// compiled to bleve term, phrase and boolean queries, so ranking is bleve's
// TF-IDF with coord over disjunctions.
package search

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	bq "github.com/blevesearch/bleve/v2/search/query"

	"github.com/tomtom215/cicerone/internal/catalog"
)

// DefaultMaxResults caps result lists when the caller passes no limit.
const DefaultMaxResults = 50

// Index is immutable after Build and safe for concurrent searches.
type Index struct {
	docs []catalog.Venue
	idx  bleve.Index
}

// Build indexes the tags of every venue. Calling Build again with the same
// venues yields an equivalent index.
func Build(venues []catalog.Venue) (*Index, error) {
	m, err := newMapping()
	if err != nil {
		return nil, fmt.Errorf("index mapping: %w", err)
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	ix := &Index{docs: make([]catalog.Venue, len(venues)), idx: idx}
	batch := idx.NewBatch()
	for doc, v := range venues {
		if !v.Point().Valid() {
			_ = idx.Close()
			return nil, fmt.Errorf("index venue %q: invalid coordinates %s", v.Name, v.Point())
		}
		v.Score = 0
		ix.docs[doc] = v
		if err := batch.Index(strconv.Itoa(doc), map[string]interface{}{DefaultField: v.Tags}); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("index venue %q: %w", v.Name, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("index batch: %w", err)
	}
	return ix, nil
}

// Len returns the number of indexed venues.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Close releases the underlying bleve index.
func (ix *Index) Close() error {
	return ix.idx.Close()
}

// Search returns up to limit venues matching query, best first, each with
// its Score set. A limit of zero or less means DefaultMaxResults. Syntax
// errors wrap ErrBadQuery; no matches is an empty slice.
func (ix *Index) Search(query string, limit int) ([]catalog.Venue, error) {
	q, err := Parse(query)
	if err != nil {
		return nil, err
	}
	return ix.SearchQuery(q, limit)
}

// SearchQuery runs an already parsed query.
func (ix *Index) SearchQuery(q Query, limit int) ([]catalog.Venue, error) {
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	if q == nil || len(ix.docs) == 0 {
		return []catalog.Venue{}, nil
	}

	// Every hit is fetched so catalog.Sort decides ties, not bleve's doc order.
	req := bleve.NewSearchRequestOptions(compile(q), len(ix.docs), 0, false)
	res, err := ix.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q, err)
	}

	results := make([]catalog.Venue, 0, len(res.Hits))
	for _, hit := range res.Hits {
		doc, err := strconv.Atoi(hit.ID)
		if err != nil || doc < 0 || doc >= len(ix.docs) {
			return nil, fmt.Errorf("search %q: unknown document %q", q, hit.ID)
		}
		v := ix.docs[doc]
		v.Score = hit.Score
		results = append(results, v)
	}
	catalog.Sort(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// compile translates a parsed query into bleve's query tree. A boolean with
// nothing but prohibited clauses matches nothing.
func compile(q Query) bq.Query {
	switch v := q.(type) {
	case *TermQuery:
		tq := bq.NewTermQuery(v.Term)
		tq.SetField(DefaultField)
		tq.SetBoost(v.Boost)
		return tq
	case *PhraseQuery:
		if len(v.Terms) == 0 || len(v.Offsets) != len(v.Terms) {
			return bq.NewMatchNoneQuery()
		}
		// Empty slots stand for removed stop words.
		terms := make([]string, v.Offsets[len(v.Offsets)-1]+1)
		for i, term := range v.Terms {
			terms[v.Offsets[i]] = term
		}
		pq := bq.NewPhraseQuery(terms, DefaultField)
		pq.SetBoost(v.Boost)
		return pq
	case *BooleanQuery:
		var must, should, mustNot []bq.Query
		for _, c := range v.Clauses {
			sub := compile(c.Query)
			switch c.Occur {
			case Must:
				must = append(must, sub)
			case MustNot:
				mustNot = append(mustNot, sub)
			default:
				should = append(should, sub)
			}
		}
		if len(must)+len(should) == 0 {
			return bq.NewMatchNoneQuery()
		}
		b := bq.NewBooleanQuery(must, should, mustNot)
		if len(must) == 0 {
			b.SetMinShould(1)
		}
		b.SetBoost(v.Boost)
		return b
	default:
		return bq.NewMatchNoneQuery()
	}
}
