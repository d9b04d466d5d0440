package storage

import (
	"fmt"
	"sync"

	"github.com/hyperjump/shortlist/internal/models"
)

// MemoryStore keeps documents in insertion order with unique ids.
// A replaced document keeps the ordinal of its first insertion.
type MemoryStore struct {
	mu      sync.RWMutex
	docs    map[string]*models.Document
	ordinal map[string]int
	order   []string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:    make(map[string]*models.Document),
		ordinal: make(map[string]int),
	}
}

// Put inserts doc or replaces the document with the same id.
func (s *MemoryStore) Put(doc *models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; !ok {
		s.ordinal[doc.ID] = len(s.order)
		s.order = append(s.order, doc.ID)
	}
	s.docs[doc.ID] = doc
}

// Get returns the document for id or ErrNotFound.
func (s *MemoryStore) Get(id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, nil
}

// Ordinal returns the insertion position of id.
func (s *MemoryStore) Ordinal(id string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.ordinal[id]
	return n, ok
}

// Kind returns the kind of the stored document, or "" when absent.
func (s *MemoryStore) Kind(id string) models.DocumentKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc, ok := s.docs[id]; ok {
		return doc.Kind
	}
	return ""
}

// All returns the documents in insertion order.
func (s *MemoryStore) All() []*models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id])
	}
	return out
}

// Count returns the number of distinct documents.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// CountKind returns the number of documents of the given kind.
func (s *MemoryStore) CountKind(kind models.DocumentKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, doc := range s.docs {
		if doc.Kind == kind {
			n++
		}
	}
	return n
}

// Clear removes every document.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]*models.Document)
	s.ordinal = make(map[string]int)
	s.order = nil
}
