// Package screening scores retrieved candidates against a job description with a
// bounded worker pool and assembles the ranked shortlist.
package screening

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/shortlist/internal/metrics"
	"github.com/hyperjump/shortlist/internal/models"
)

// Scorer evaluates one resume against one job description.
type Scorer interface {
	Score(ctx context.Context, resume models.ResumeRecord, job models.JobDescriptionRecord) (*models.Score, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, resume models.ResumeRecord, job models.JobDescriptionRecord) (*models.Score, error)

// Score calls f.
func (f ScorerFunc) Score(ctx context.Context, resume models.ResumeRecord, job models.JobDescriptionRecord) (*models.Score, error) {
	return f(ctx, resume, job)
}

// Task is one (resume, job) pair to score.
type Task struct {
	Resume models.ResumeRecord
	Job    models.JobDescriptionRecord
}

// Pool runs scoring tasks on a fixed number of workers. Each task is retried
// independently; a task that keeps failing yields a zero NOT_RECOMMENDED score
// instead of failing the batch.
type Pool struct {
	workers     *ants.Pool
	scorer      Scorer
	maxAttempts int
	baseDelay   time.Duration
	logger      *zap.Logger
}

// PoolOption configures a Pool.
type PoolOption func(*Pool) error

// WithWorkers sets the number of concurrent scoring workers. Default is 2.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) error {
		if n <= 0 {
			return fmt.Errorf("workers must be positive, got %d", n)
		}
		p.workers.Tune(n)
		return nil
	}
}

// WithRetry sets the attempt limit and the first backoff delay. Defaults are 3 and 5s.
func WithRetry(maxAttempts int, baseDelay time.Duration) PoolOption {
	return func(p *Pool) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		if baseDelay < 0 {
			return fmt.Errorf("base delay must not be negative")
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithPoolLogger sets the logger.
func WithPoolLogger(l *zap.Logger) PoolOption {
	return func(p *Pool) error {
		if l != nil {
			p.logger = l
		}
		return nil
	}
}

// NewPool creates a worker pool around scorer. Call Release when done.
func NewPool(scorer Scorer, opts ...PoolOption) (*Pool, error) {
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	workers, err := ants.NewPool(2)
	if err != nil {
		return nil, err
	}
	p := &Pool{
		workers:     workers,
		scorer:      scorer,
		maxAttempts: 3,
		baseDelay:   5 * time.Second,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}
	return p, nil
}

// Run scores every task and returns the scores in task order.
func (p *Pool) Run(ctx context.Context, tasks []Task) []*models.Score {
	scores := make([]*models.Score, len(tasks))
	var wg sync.WaitGroup
	for i := range tasks {
		i := i
		wg.Add(1)
		err := p.workers.Submit(func() {
			defer wg.Done()
			scores[i] = p.score(ctx, tasks[i])
		})
		if err != nil {
			wg.Done()
			scores[i] = p.failed(tasks[i], fmt.Errorf("submit: %w", err))
		}
	}
	wg.Wait()
	return scores
}

func (p *Pool) score(ctx context.Context, t Task) *models.Score {
	var result *models.Score
	err := RetryWithBackoff(ctx, func(attempt int) error {
		s, err := p.scorer.Score(ctx, t.Resume, t.Job)
		if err != nil {
			if !IsPermanent(err) && attempt < p.maxAttempts {
				p.logger.Warn("Scoring attempt failed, retrying",
					zap.String("resume_id", t.Resume.ID),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
			}
			return err
		}
		result = s
		return nil
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		return p.failed(t, err)
	}
	if result == nil {
		return p.failed(t, fmt.Errorf("scorer returned no score"))
	}
	if result.ResumeID == "" {
		result.ResumeID = t.Resume.ID
	}
	if result.CandidateName == "" {
		result.CandidateName = t.Resume.Name
	}
	metrics.ScreeningTasksTotal.WithLabelValues("success").Inc()
	return result
}

func (p *Pool) failed(t Task, err error) *models.Score {
	metrics.ScreeningTasksTotal.WithLabelValues("failed").Inc()
	p.logger.Error("Scoring failed", zap.String("resume_id", t.Resume.ID), zap.Error(err))
	return models.FailedScore(t.Resume, fmt.Sprintf("Error during screening: %v", err))
}

// Release stops the workers.
func (p *Pool) Release() {
	p.workers.Release()
}
