package embedding

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/shortlist/internal/config"
)

// New builds the configured embedder wrapped with instrumentation and, when cache_size > 0, an LRU cache.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	var (
		base  Embedder
		model string
		err   error
	)
	switch cfg.Provider {
	case config.ProviderMock, "":
		base = NewMockEmbedder(cfg.Dimensions)
		model = "hash"
	case config.ProviderONNX:
		base, err = NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		model = cfg.ModelPath
	case config.ProviderOpenAI:
		base, err = NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
		model = cfg.Model
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: mock, onnx, openai)", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s embedder: %w", cfg.Provider, err)
	}

	var emb Embedder = NewInstrumentedEmbedder(base, providerName(cfg.Provider), model, logger)
	if cfg.CacheSize > 0 {
		emb = NewCachedEmbedder(emb, cfg.CacheSize)
	}
	return emb, nil
}

func providerName(p string) string {
	if p == "" {
		return config.ProviderMock
	}
	return p
}
