package embedding

import (
	"context"
	"hash/fnv"

	"github.com/hyperjump/shortlist/internal/tokenizer"
	"github.com/hyperjump/shortlist/pkg/utils"
)

// MockEmbedder is the offline "mock" provider. It hashes each term of the text into
// one of a fixed number of buckets (the hashing trick) and returns the L2-normalized
// bucket counts, so texts sharing vocabulary get a positive cosine similarity.
// Output is deterministic and every vector has unit length.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns a hashing embedder; dimensions <= 0 selects 384.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

func (e *MockEmbedder) bucket(s string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(e.dimensions))
}

// Embed returns the hashed term-count vector of text. A text with no indexable
// terms maps to a single bucket chosen by hashing the raw text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, e.dimensions)
	terms := tokenizer.Tokenize(text)
	for _, term := range terms {
		vec[e.bucket(term)]++
	}
	if len(terms) == 0 {
		vec[e.bucket(text)] = 1
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Dimensions returns the vector length.
func (e *MockEmbedder) Dimensions() int { return e.dimensions }

// Close releases nothing.
func (e *MockEmbedder) Close() error { return nil }
