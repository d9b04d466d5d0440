package screening

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/shortlist/internal/embedding"
	"github.com/hyperjump/shortlist/internal/models"
	"github.com/hyperjump/shortlist/internal/retriever"
	"github.com/hyperjump/shortlist/internal/search"
)

// Options controls one screening run.
type Options struct {
	// UseRetrieval narrows the candidates with hybrid retrieval before scoring.
	UseRetrieval bool
	// RetrievalK is the number of candidates kept by retrieval.
	RetrievalK int
	// Weights overrides the fusion weights; zero means defaults.
	Weights search.Weights
	// OverFetch overrides the retriever over-fetch factor; zero means default.
	OverFetch int
}

// Report is the outcome of one screening run. Scores are sorted by OverallScore descending.
type Report struct {
	Job        models.JobDescriptionRecord
	JobID      string
	Scores     []*models.Score
	Candidates []models.Candidate
	// Resumes is the number of resumes submitted, before retrieval narrowed them.
	Resumes int
	// FellBack is set when retrieval was requested but unavailable and every resume was scored.
	FellBack bool
	Duration time.Duration
}

// Session returns the history entry recorded for this run.
func (r *Report) Session() models.ScreeningSession {
	return models.ScreeningSession{
		JobID:      r.JobID,
		JobTitle:   r.Job.Title,
		Company:    r.Job.Company,
		NumResumes: r.Resumes,
		NumScored:  len(r.Scores),
		FellBack:   r.FellBack,
		Duration:   r.Duration,
	}
}

// Screener runs retrieval followed by scoring.
type Screener struct {
	embedder embedding.Embedder
	pool     *Pool
	logger   *zap.Logger
}

// NewScreener creates a screener. embedder may be nil when retrieval is never used.
func NewScreener(embedder embedding.Embedder, pool *Pool, logger *zap.Logger) *Screener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Screener{embedder: embedder, pool: pool, logger: logger}
}

// Screen scores resumes against job. With UseRetrieval a fresh Retriever is built for
// this job only; if the embedding provider fails, every resume is scored instead.
func (s *Screener) Screen(ctx context.Context, resumes []models.ResumeRecord, job models.JobDescriptionRecord, opts Options) (*Report, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	report := &Report{Job: job, Scores: []*models.Score{}, Resumes: len(resumes)}
	if len(resumes) == 0 {
		return report, nil
	}

	selected := resumes
	var similarity []float64
	if opts.UseRetrieval {
		candidates, jobID, err := s.retrieve(ctx, resumes, job, opts)
		switch {
		case errors.Is(err, retriever.ErrRetrievalUnavailable):
			s.logger.Warn("Retrieval unavailable, scoring all candidates",
				zap.Int("resumes", len(resumes)),
				zap.Error(err),
			)
			report.FellBack = true
		case err != nil:
			return nil, err
		default:
			report.JobID = jobID
			report.Candidates = candidates
			selected = make([]models.ResumeRecord, len(candidates))
			similarity = make([]float64, len(candidates))
			for i, c := range candidates {
				selected[i] = c.Resume
				similarity[i] = c.FusedScore
			}
		}
	}

	tasks := make([]Task, len(selected))
	for i, r := range selected {
		tasks[i] = Task{Resume: r, Job: job}
	}
	// Run keeps task order, so scores[i] belongs to selected[i].
	scores := s.pool.Run(ctx, tasks)
	for i := range similarity {
		scores[i].SimilarityScore = similarity[i]
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].OverallScore > scores[j].OverallScore })
	report.Scores = scores
	report.Duration = time.Since(start)

	s.logger.Info("Screening completed",
		zap.String("job", job.Title),
		zap.Int("resumes", len(resumes)),
		zap.Int("scored", len(scores)),
		zap.Bool("fell_back", report.FellBack),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Screener) retrieve(ctx context.Context, resumes []models.ResumeRecord, job models.JobDescriptionRecord, opts Options) ([]models.Candidate, string, error) {
	if s.embedder == nil {
		return nil, "", fmt.Errorf("%w: no embedder configured", retriever.ErrRetrievalUnavailable)
	}
	ropts := []retriever.Option{retriever.WithLogger(s.logger)}
	if opts.Weights != (search.Weights{}) {
		ropts = append(ropts, retriever.WithWeights(opts.Weights))
	}
	if opts.OverFetch != 0 {
		ropts = append(ropts, retriever.WithOverFetch(opts.OverFetch))
	}
	r, err := retriever.New(s.embedder, ropts...)
	if err != nil {
		return nil, "", err
	}
	if err := r.IndexResumes(ctx, resumes); err != nil {
		return nil, "", err
	}
	jobID, err := r.IndexJobDescription(ctx, job)
	if err != nil {
		return nil, "", err
	}
	k := opts.RetrievalK
	if k <= 0 {
		k = len(resumes)
	}
	candidates, err := r.RetrieveCandidates(ctx, job, k)
	if err != nil {
		return nil, "", err
	}
	return candidates, jobID, nil
}
