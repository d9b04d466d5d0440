// Package retriever narrows a corpus of resumes to the candidates most relevant to a
// job description by fusing keyword and vector search.
//
// A Retriever owns one corpus. Create one per screening job (or Reset between jobs)
// so candidates never leak across unrelated jobs.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/shortlist/internal/embedding"
	"github.com/hyperjump/shortlist/internal/keyword"
	"github.com/hyperjump/shortlist/internal/metrics"
	"github.com/hyperjump/shortlist/internal/models"
	"github.com/hyperjump/shortlist/internal/search"
	"github.com/hyperjump/shortlist/internal/storage"
	"github.com/hyperjump/shortlist/internal/vector"
)

var (
	// ErrRetrievalUnavailable means the embedding provider failed; callers should fall back to the unfiltered candidate set.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrInvalidTopK is returned when topK is not positive.
	ErrInvalidTopK = errors.New("top_k must be positive")
)

// JobIDPrefix prefixes every generated job description id.
const JobIDPrefix = "job_"

// State is the corpus lifecycle state.
type State int

const (
	StateEmpty State = iota
	StatePopulated
)

func (s State) String() string {
	if s == StatePopulated {
		return "populated"
	}
	return "empty"
}

// Retriever is safe for concurrent use. Indexing embeds outside the lock and then
// commits under the write lock, so readers never observe a partially indexed batch.
type Retriever struct {
	mu        sync.RWMutex
	embedder  embedding.Embedder
	store     *storage.MemoryStore
	keywords  *keyword.MemoryIndex
	vectors   *vector.MemoryIndex
	weights   search.Weights
	overFetch int
	logger    *zap.Logger
	newID     func() string
}

// New creates an empty Retriever whose vector dimensionality is fixed by embedder.
func New(embedder embedding.Embedder, opts ...Option) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	vectors, err := vector.NewMemoryIndex(embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("create vector index: %w", err)
	}
	store := storage.NewMemoryStore()
	r := &Retriever{
		embedder:  embedder,
		store:     store,
		keywords:  keyword.NewMemoryIndex(keyword.WithOrder(store.Ordinal)),
		vectors:   vectors,
		weights:   search.DefaultWeights,
		overFetch: DefaultOverFetch,
		logger:    zap.NewNop(),
		newID:     defaultID,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// IndexResumes indexes a batch of resumes with a single embedding call. Either every
// resume is committed or, on error, none is.
func (r *Retriever) IndexResumes(ctx context.Context, resumes []models.ResumeRecord) error {
	if len(resumes) == 0 {
		return nil
	}
	start := time.Now()
	docs := make([]*models.Document, len(resumes))
	texts := make([]string, len(resumes))
	for i := range resumes {
		if err := resumes[i].Validate(); err != nil {
			return fmt.Errorf("resume %d: %w", i, err)
		}
		texts[i] = ResumeContent(resumes[i])
		docs[i] = models.NewResumeDocument(resumes[i], texts[i])
	}

	vecs, err := r.embedAll(ctx, texts)
	if err != nil {
		r.logger.Warn("Resume indexing failed", zap.Int("resumes", len(resumes)), zap.Error(err))
		return err
	}
	r.commit(docs, vecs)

	metrics.IndexedDocumentsTotal.WithLabelValues(string(models.KindResume)).Add(float64(len(docs)))
	metrics.RetrievalDuration.WithLabelValues("index_resumes").Observe(time.Since(start).Seconds())
	r.logger.Info("Indexed resumes",
		zap.Int("resumes", len(docs)),
		zap.Int("documents", r.Count()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// IndexJobDescription indexes a job description and returns its generated id.
func (r *Retriever) IndexJobDescription(ctx context.Context, job models.JobDescriptionRecord) (string, error) {
	if err := job.Validate(); err != nil {
		return "", err
	}
	content := JobContent(job)
	vecs, err := r.embedAll(ctx, []string{content})
	if err != nil {
		return "", err
	}
	id := JobIDPrefix + r.newID()
	r.commit([]*models.Document{models.NewJobDocument(id, job, content)}, vecs)

	metrics.IndexedDocumentsTotal.WithLabelValues(string(models.KindJobDescription)).Inc()
	r.logger.Info("Indexed job description", zap.String("job_id", id), zap.String("title", job.Title))
	return id, nil
}

// embedAll embeds texts in one batch and checks the result shape.
func (r *Retriever) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalUnavailable, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrRetrievalUnavailable, len(vecs), len(texts))
	}
	dims := r.vectors.Dimensions()
	for i, v := range vecs {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: embedding %d: %w: got %d, expected %d",
				ErrRetrievalUnavailable, i, vector.ErrDimensionMismatch, len(v), dims)
		}
	}
	return vecs, nil
}

// commit applies a fully embedded batch. Dimensions were checked by embedAll.
func (r *Retriever) commit(docs []*models.Document, vecs [][]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, doc := range docs {
		r.store.Put(doc)
		r.keywords.Index(doc.ID, doc.Content)
		_ = r.vectors.Upsert(doc.ID, vecs[i])
	}
}

// RetrieveCandidates returns the topK resumes best matching job, using the configured weights.
// The result has exactly min(topK, ResumeCount()) entries.
func (r *Retriever) RetrieveCandidates(ctx context.Context, job models.JobDescriptionRecord, topK int) ([]models.Candidate, error) {
	return r.RetrieveCandidatesWeighted(ctx, job, topK, r.weights)
}

// RetrieveCandidatesWeighted is RetrieveCandidates with per-call fusion weights.
func (r *Retriever) RetrieveCandidatesWeighted(ctx context.Context, job models.JobDescriptionRecord, topK int, w search.Weights) ([]models.Candidate, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if r.ResumeCount() == 0 {
		return []models.Candidate{}, nil
	}
	start := time.Now()
	query := JobContent(job)
	qvec, err := r.embedAll(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Non-resume documents can occupy slots in either sub-search; fetch enough to still fill topK.
	resumes := r.store.CountKind(models.KindResume)
	fetch := r.overFetch*topK + (r.store.Count() - resumes)
	kw := r.keywords.Search(query, fetch)
	vec, err := r.vectors.Search(qvec[0], fetch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalUnavailable, err)
	}
	fused := search.Fuse(kw, vec, 0, w, r.store.Ordinal)

	candidates := make([]models.Candidate, 0, min(topK, resumes))
	for _, f := range fused {
		if len(candidates) == topK {
			break
		}
		doc, err := r.store.Get(f.DocumentID)
		if err != nil || doc.Kind != models.KindResume || doc.Resume == nil {
			continue
		}
		candidates = append(candidates, models.Candidate{
			Resume:       doc.Resume.Clone(),
			FusedScore:   f.Score,
			KeywordScore: f.KeywordScore,
			VectorScore:  f.VectorScore,
			Rank:         len(candidates) + 1,
		})
	}

	metrics.RetrievalDuration.WithLabelValues("retrieve").Observe(time.Since(start).Seconds())
	r.logger.Debug("Retrieved candidates",
		zap.String("job", job.Title),
		zap.Int("top_k", topK),
		zap.Int("keyword_hits", len(kw)),
		zap.Int("vector_hits", len(vec)),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// Reset clears the store and both indexes together, returning the corpus to StateEmpty.
func (r *Retriever) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.Clear()
	r.keywords.Clear()
	r.vectors.Clear()
	r.logger.Debug("Retriever reset")
}

// State reports whether the corpus holds any documents.
func (r *Retriever) State() State {
	if r.Count() == 0 {
		return StateEmpty
	}
	return StatePopulated
}

// Count returns the number of indexed documents of every kind.
func (r *Retriever) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.Count()
}

// ResumeCount returns the number of indexed resumes.
func (r *Retriever) ResumeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.CountKind(models.KindResume)
}

// Document returns the indexed document for id.
func (r *Retriever) Document(id string) (*models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.Get(id)
}

// Weights returns the default fusion weights.
func (r *Retriever) Weights() search.Weights {
	return r.weights
}

// Dimensions returns the vector dimensionality of the corpus.
func (r *Retriever) Dimensions() int {
	return r.vectors.Dimensions()
}
