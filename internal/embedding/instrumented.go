package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/shortlist/internal/metrics"
)

// InstrumentedEmbedder wraps an Embedder with logging and request metrics.
type InstrumentedEmbedder struct {
	inner    Embedder
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps inner. A nil logger disables logging.
func NewInstrumentedEmbedder(inner Embedder, provider, model string, logger *zap.Logger) *InstrumentedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedEmbedder{inner: inner, provider: provider, model: model, logger: logger}
}

// Embed delegates to the inner embedder.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.observe(ctx, []string{text}, func() ([][]float32, error) {
		v, err := p.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		return [][]float32{v}, nil
	})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch delegates to the inner embedder.
func (p *InstrumentedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return p.observe(ctx, texts, func() ([][]float32, error) {
		return p.inner.EmbedBatch(ctx, texts)
	})
}

func (p *InstrumentedEmbedder) observe(ctx context.Context, texts []string, call func() ([][]float32, error)) ([][]float32, error) {
	start := time.Now()
	vecs, err := call()
	duration := time.Since(start)

	metrics.EmbeddingTextsTotal.WithLabelValues(p.provider, p.model).Add(float64(len(texts)))
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(p.provider, p.model, "error").Inc()
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Int("batch_size", len(texts)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("embed: %w", err)
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues(p.provider, p.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(p.provider, p.model).Observe(duration.Seconds())

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Int("batch_size", len(texts)),
		zap.Duration("duration", duration),
		zap.Int("dimensions", p.inner.Dimensions()),
	)
	return vecs, nil
}

// Dimensions returns the inner embedder's dimension.
func (p *InstrumentedEmbedder) Dimensions() int {
	return p.inner.Dimensions()
}

// Close closes the inner embedder.
func (p *InstrumentedEmbedder) Close() error {
	return p.inner.Close()
}
