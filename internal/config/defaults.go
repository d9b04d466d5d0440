package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".shortlist/candidates.db"
	}
	if cfg.Retrieval.KeywordWeight == 0 && cfg.Retrieval.VectorWeight == 0 {
		cfg.Retrieval.KeywordWeight = 0.3
		cfg.Retrieval.VectorWeight = 0.7
	}
	if cfg.Retrieval.OverFetch == 0 {
		cfg.Retrieval.OverFetch = 2
	}
	if cfg.Retrieval.DefaultTopK == 0 {
		cfg.Retrieval.DefaultTopK = 20
	}
	if cfg.Retrieval.MaxTopK == 0 {
		cfg.Retrieval.MaxTopK = 100
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderMock
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Screening.Workers == 0 {
		cfg.Screening.Workers = 2
	}
	if cfg.Screening.MaxAttempts == 0 {
		cfg.Screening.MaxAttempts = 3
	}
	if cfg.Screening.BaseDelay == 0 {
		cfg.Screening.BaseDelay = 5 * time.Second
	}
	if cfg.Screening.Model == "" {
		cfg.Screening.Model = "llama-3.1-8b-instant"
	}
	if cfg.Screening.BaseURL == "" {
		cfg.Screening.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Screening.Temperature == 0 {
		cfg.Screening.Temperature = 0.3
	}
	if cfg.Screening.MaxTokens == 0 {
		cfg.Screening.MaxTokens = 2000
	}
	if cfg.Screening.RetrievalK == 0 {
		cfg.Screening.RetrievalK = cfg.Retrieval.DefaultTopK
	}
}
