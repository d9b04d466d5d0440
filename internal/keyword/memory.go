package keyword

import (
	"sort"
	"sync"

	"github.com/hyperjump/shortlist/internal/tokenizer"
)

// MemoryIndex is an in-memory inverted index: term -> document id -> occurrence count.
// A term entry exists only while at least one document contains it.
type MemoryIndex struct {
	mu       sync.RWMutex
	tok      *tokenizer.Tokenizer
	postings map[string]map[string]int
	// terms remembers what each document contributed so re-indexing can drop stale postings.
	terms map[string]map[string]int
	seen  map[string]int
	order OrderFunc
}

// Option configures a MemoryIndex.
type Option func(*MemoryIndex)

// WithOrder sets the tie-breaking order. Defaults to first-indexed order.
func WithOrder(fn OrderFunc) Option {
	return func(m *MemoryIndex) { m.order = fn }
}

// WithTokenizer replaces the default tokenizer.
func WithTokenizer(t *tokenizer.Tokenizer) Option {
	return func(m *MemoryIndex) { m.tok = t }
}

// NewMemoryIndex returns an empty index.
func NewMemoryIndex(opts ...Option) *MemoryIndex {
	m := &MemoryIndex{
		postings: make(map[string]map[string]int),
		terms:    make(map[string]map[string]int),
		seen:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tok == nil {
		m.tok = tokenizer.New()
	}
	if m.order == nil {
		m.order = m.insertionOrder
	}
	return m
}

func (m *MemoryIndex) insertionOrder(id string) (int, bool) {
	n, ok := m.seen[id]
	return n, ok
}

// Index replaces every posting of id with the terms of content.
func (m *MemoryIndex) Index(id, content string) {
	counts := m.tok.Counts(content)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
	if _, ok := m.seen[id]; !ok {
		m.seen[id] = len(m.seen)
	}
	for term, n := range counts {
		docs, ok := m.postings[term]
		if !ok {
			docs = make(map[string]int)
			m.postings[term] = docs
		}
		docs[id] = n
	}
	m.terms[id] = counts
}

// Remove drops all postings of id.
func (m *MemoryIndex) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
}

func (m *MemoryIndex) removeLocked(id string) {
	for term := range m.terms[id] {
		docs := m.postings[term]
		delete(docs, id)
		if len(docs) == 0 {
			delete(m.postings, term)
		}
	}
	delete(m.terms, id)
}

// Search scores documents by the summed counts of every query term occurrence.
// Ties keep document order. A query without terms returns nil.
func (m *MemoryIndex) Search(query string, k int) []*KeywordResult {
	queryTerms := m.tok.Tokenize(query)
	if len(queryTerms) == 0 || k == 0 {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	scores := make(map[string]float64)
	for _, term := range queryTerms {
		for id, n := range m.postings[term] {
			scores[id] += float64(n)
		}
	}
	results := make([]*KeywordResult, 0, len(scores))
	for id, s := range scores {
		results = append(results, &KeywordResult{ID: id, Score: s})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return m.less(results[i].ID, results[j].ID)
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

func (m *MemoryIndex) less(a, b string) bool {
	oa, okA := m.order(a)
	ob, okB := m.order(b)
	switch {
	case okA && okB && oa != ob:
		return oa < ob
	case okA != okB:
		return okA
	}
	return a < b
}

// Postings returns a copy of the posting list for term.
func (m *MemoryIndex) Postings(term string) map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(m.postings[term]))
	for id, n := range m.postings[term] {
		out[id] = n
	}
	return out
}

// TermCount returns the number of distinct terms.
func (m *MemoryIndex) TermCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.postings)
}

// DocCount returns the number of indexed documents.
func (m *MemoryIndex) DocCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.terms)
}

// Clear empties the index.
func (m *MemoryIndex) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postings = make(map[string]map[string]int)
	m.terms = make(map[string]map[string]int)
	m.seen = make(map[string]int)
}
