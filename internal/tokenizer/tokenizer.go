// Package tokenizer turns free text into normalized search terms.
//
// Terms are maximal runs of Unicode letters and digits, lowercased, at least
// three runes long, and not in the stop-word list. The chain is built from
// bleve analysis components so query and index text share one pipeline.
package tokenizer

import (
	"regexp"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/length"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/stop"
	regexptokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/regexp"
)

// MinTermLength is the shortest term kept.
const MinTermLength = 3

// StopWords are dropped from both indexed content and queries.
var StopWords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
	"is", "are", "was", "were", "be", "been", "have", "has", "had", "do", "does", "did",
	"will", "would", "could", "should", "may", "might", "must", "can",
	"this", "that", "these", "those",
}

var termPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Tokenizer is stateless after construction and safe for concurrent use.
type Tokenizer struct {
	tokenizer analysis.Tokenizer
	filters   []analysis.TokenFilter
}

// New builds the default chain.
func New() *Tokenizer {
	stopWords := analysis.NewTokenMap()
	for _, w := range StopWords {
		stopWords.AddToken(w)
	}
	return &Tokenizer{
		tokenizer: regexptokenizer.NewRegexpTokenizer(termPattern),
		filters: []analysis.TokenFilter{
			lowercase.NewLowerCaseFilter(),
			length.NewLengthFilter(MinTermLength, -1),
			stop.NewStopTokensFilter(stopWords),
		},
	}
}

// Tokenize returns the terms of text in order of appearance, duplicates kept.
func (t *Tokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	stream := t.tokenizer.Tokenize([]byte(text))
	for _, f := range t.filters {
		stream = f.Filter(stream)
	}
	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		terms = append(terms, string(tok.Term))
	}
	return terms
}

// Counts returns term frequencies for text.
func (t *Tokenizer) Counts(text string) map[string]int {
	counts := make(map[string]int)
	for _, term := range t.Tokenize(text) {
		counts[term]++
	}
	return counts
}

var defaultTokenizer = New()

// Tokenize runs the default chain.
func Tokenize(text string) []string {
	return defaultTokenizer.Tokenize(text)
}
