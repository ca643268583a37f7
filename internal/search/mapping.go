// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
)

const (
	tokenizerName = "cicerone_folding"
	analyzerName  = "cicerone_tags"
)

func init() {
	registry.RegisterTokenizer(tokenizerName, //nolint:errcheck // name is unique to this package
		func(map[string]interface{}, *registry.Cache) (analysis.Tokenizer, error) {
			return foldingTokenizer{}, nil
		})
}

// foldingTokenizer feeds the output of tokenize to bleve, so indexed terms
// and parsed query terms share one normalization.
type foldingTokenizer struct{}

func (foldingTokenizer) Tokenize(input []byte) analysis.TokenStream {
	tokens := tokenize(string(input))
	stream := make(analysis.TokenStream, len(tokens))
	for i, t := range tokens {
		stream[i] = &analysis.Token{
			Term:     []byte(t.term),
			Start:    t.start,
			End:      t.end,
			Position: t.pos + 1,
			Type:     analysis.AlphaNumeric,
		}
	}
	return stream
}

// newMapping indexes only the tags field. Term vectors are kept because
// phrase queries need positions.
func newMapping() (mapping.IndexMapping, error) {
	m := bleve.NewIndexMapping()
	if err := m.AddCustomAnalyzer(analyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": tokenizerName,
	}); err != nil {
		return nil, err
	}
	m.DefaultAnalyzer = analyzerName

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = analyzerName
	tags.Store = false
	tags.IncludeInAll = false
	tags.IncludeTermVectors = true

	doc := bleve.NewDocumentStaticMapping()
	doc.AddFieldMappingsAt(DefaultField, tags)
	m.DefaultMapping = doc
	return m, nil
}
