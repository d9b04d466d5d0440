package retriever

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/shortlist/internal/search"
)

// DefaultOverFetch is how many times topK each sub-search fetches before fusion.
const DefaultOverFetch = 2

// Option configures a Retriever.
type Option func(*Retriever) error

// WithWeights sets the fusion weights.
func WithWeights(w search.Weights) Option {
	return func(r *Retriever) error {
		if err := w.Validate(); err != nil {
			return err
		}
		r.weights = w
		return nil
	}
}

// WithOverFetch sets the sub-search over-fetch factor. It must be at least 2.
func WithOverFetch(n int) Option {
	return func(r *Retriever) error {
		if n < 2 {
			return fmt.Errorf("over-fetch factor must be at least 2, got %d", n)
		}
		r.overFetch = n
		return nil
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Retriever) error {
		if l != nil {
			r.logger = l
		}
		return nil
	}
}

// WithIDGenerator replaces the job id suffix generator. Defaults to random UUIDs.
func WithIDGenerator(fn func() string) Option {
	return func(r *Retriever) error {
		if fn == nil {
			return fmt.Errorf("id generator must not be nil")
		}
		r.newID = fn
		return nil
	}
}

func defaultID() string {
	return uuid.NewString()
}
