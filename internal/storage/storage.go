// Package storage holds the documents of one retrieval corpus and persists
// candidate records between runs.
package storage

import (
	"errors"

	"github.com/hyperjump/shortlist/internal/models"
)

// ErrNotFound is returned when a document or record id is unknown.
var ErrNotFound = errors.New("not found")

// DocumentStore is the canonical record store for one corpus.
type DocumentStore interface {
	Put(doc *models.Document)
	Get(id string) (*models.Document, error)
	Ordinal(id string) (int, bool)
	All() []*models.Document
	Count() int
	Clear()
}
