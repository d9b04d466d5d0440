// Package keyword provides the term-frequency inverted index used for lexical candidate search.
package keyword

// KeywordIndex defines keyword search operations.
type KeywordIndex interface {
	Index(id, content string)
	Search(query string, k int) []*KeywordResult
	Remove(id string)
	Clear()
	// TermCount returns the number of distinct indexed terms.
	TermCount() int
}

// KeywordResult is a single keyword search hit. Score is the raw summed term count.
type KeywordResult struct {
	ID    string
	Score float64
}

// OrderFunc reports the tie-breaking position of a document id; lower sorts first.
type OrderFunc func(id string) (int, bool)
