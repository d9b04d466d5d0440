// Package vector provides exact inner-product search over L2-normalized embeddings.
package vector

import "errors"

// ErrDimensionMismatch is returned when a vector does not match the index dimensionality.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// VectorIndex defines vector storage and similarity search.
type VectorIndex interface {
	Upsert(id string, vec []float32) error
	Search(query []float32, k int) ([]*VectorResult, error)
	Remove(id string)
	Clear()
	Size() int
	Dimensions() int
}

// VectorResult is a single vector search hit.
type VectorResult struct {
	ID    string
	Score float64 // Cosine similarity in [-1, 1]
}
