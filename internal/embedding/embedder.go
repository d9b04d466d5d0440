// Package embedding turns text into dense vectors for semantic retrieval.
package embedding

import (
	"context"
	"errors"
)

// ErrProvider wraps every failure reported by an embedding backend.
var ErrProvider = errors.New("embedding provider error")

// Embedder produces vector embeddings for text.
// EmbedBatch returns one vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
