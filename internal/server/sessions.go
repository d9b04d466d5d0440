package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/shortlist/internal/config"
	"github.com/hyperjump/shortlist/internal/embedding"
	"github.com/hyperjump/shortlist/internal/metrics"
	"github.com/hyperjump/shortlist/internal/retriever"
	"github.com/hyperjump/shortlist/internal/search"
)

var errSessionNotFound = errors.New("session not found")

// session is one isolated corpus, usually scoped to a single job opening.
type session struct {
	ID        string
	Retriever *retriever.Retriever
	CreatedAt time.Time
}

type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	embedder embedding.Embedder
	cfg      config.RetrievalConfig
	logger   *zap.Logger
}

func newSessionRegistry(embedder embedding.Embedder, cfg config.RetrievalConfig, logger *zap.Logger) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*session),
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// create starts a session. Zero weights fall back to the configured defaults.
func (reg *sessionRegistry) create(w search.Weights) (*session, error) {
	if w == (search.Weights{}) {
		w = search.Weights{Keyword: reg.cfg.KeywordWeight, Vector: reg.cfg.VectorWeight}
	}
	opts := []retriever.Option{
		retriever.WithWeights(w),
		retriever.WithLogger(reg.logger),
	}
	if reg.cfg.OverFetch != 0 {
		opts = append(opts, retriever.WithOverFetch(reg.cfg.OverFetch))
	}
	r, err := retriever.New(reg.embedder, opts...)
	if err != nil {
		return nil, err
	}
	sess := &session{ID: uuid.NewString(), Retriever: r, CreatedAt: time.Now().UTC()}

	reg.mu.Lock()
	reg.sessions[sess.ID] = sess
	reg.mu.Unlock()
	metrics.ActiveSessions.Inc()
	reg.logger.Info("Session created", zap.String("session_id", sess.ID))
	return sess, nil
}

func (reg *sessionRegistry) get(id string) (*session, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	sess, ok := reg.sessions[id]
	if !ok {
		return nil, errSessionNotFound
	}
	return sess, nil
}

func (reg *sessionRegistry) remove(id string) error {
	reg.mu.Lock()
	sess, ok := reg.sessions[id]
	delete(reg.sessions, id)
	reg.mu.Unlock()
	if !ok {
		return errSessionNotFound
	}
	sess.Retriever.Reset()
	metrics.ActiveSessions.Dec()
	reg.logger.Info("Session deleted", zap.String("session_id", id))
	return nil
}

func (reg *sessionRegistry) closeAll() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for id, sess := range reg.sessions {
		sess.Retriever.Reset()
		delete(reg.sessions, id)
		metrics.ActiveSessions.Dec()
	}
}

func (reg *sessionRegistry) count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.sessions)
}
