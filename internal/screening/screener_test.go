package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/shortlist/internal/embedding"
	"github.com/hyperjump/shortlist/internal/models"
)

// skillScorer scores by the number of required skills listed on the resume.
func skillScorer() Scorer {
	return ScorerFunc(func(_ context.Context, r models.ResumeRecord, j models.JobDescriptionRecord) (*models.Score, error) {
		matched := 0
		for _, req := range j.RequiredSkills {
			for _, s := range r.Skills {
				if strings.EqualFold(req, s) {
					matched++
				}
			}
		}
		return &models.Score{OverallScore: float64(matched * 10), Recommendation: models.Maybe}, nil
	})
}

func newTestPool(t *testing.T, scorer Scorer, opts ...PoolOption) *Pool {
	t.Helper()
	opts = append([]PoolOption{WithRetry(3, time.Millisecond)}, opts...)
	p, err := NewPool(scorer, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

type failingEmbedder struct{ *embedding.MockEmbedder }

func (failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embedding service down")
}

func TestPool_RunKeepsTaskOrder(t *testing.T) {
	p := newTestPool(t, skillScorer(), WithWorkers(4))
	job := models.JobDescriptionRecord{Title: "x", RequiredSkills: []string{"go"}}
	var tasks []Task
	for i := 0; i < 10; i++ {
		tasks = append(tasks, Task{Resume: models.ResumeRecord{ID: fmt.Sprintf("r%d", i), Name: "N"}, Job: job})
	}
	scores := p.Run(context.Background(), tasks)
	require.Len(t, scores, 10)
	for i, s := range scores {
		assert.Equal(t, fmt.Sprintf("r%d", i), s.ResumeID)
		assert.Equal(t, "N", s.CandidateName)
	}
}

func TestPool_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	scorer := ScorerFunc(func(context.Context, models.ResumeRecord, models.JobDescriptionRecord) (*models.Score, error) {
		if calls.Add(1) < 3 {
			return nil, errors.New("rate limited")
		}
		return &models.Score{OverallScore: 80, Recommendation: models.Recommended}, nil
	})
	p := newTestPool(t, scorer)
	scores := p.Run(context.Background(), []Task{{Resume: models.ResumeRecord{ID: "r1"}, Job: models.JobDescriptionRecord{Title: "x"}}})
	require.Len(t, scores, 1)
	assert.Equal(t, 80.0, scores[0].OverallScore)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPool_ExhaustedTaskYieldsZeroScore(t *testing.T) {
	scorer := ScorerFunc(func(_ context.Context, r models.ResumeRecord, _ models.JobDescriptionRecord) (*models.Score, error) {
		if r.ID == "bad" {
			return nil, Permanent(errors.New("malformed response"))
		}
		return &models.Score{OverallScore: 50}, nil
	})
	p := newTestPool(t, scorer)
	scores := p.Run(context.Background(), []Task{
		{Resume: models.ResumeRecord{ID: "good"}, Job: models.JobDescriptionRecord{Title: "x"}},
		{Resume: models.ResumeRecord{ID: "bad", Name: "Bob"}, Job: models.JobDescriptionRecord{Title: "x"}},
	})
	require.Len(t, scores, 2)
	assert.Equal(t, 50.0, scores[0].OverallScore)
	assert.Equal(t, "bad", scores[1].ResumeID)
	assert.Equal(t, "Bob", scores[1].CandidateName)
	assert.Zero(t, scores[1].OverallScore)
	assert.Equal(t, models.NotRecommended, scores[1].Recommendation)
	assert.Contains(t, scores[1].Reasoning, "malformed response")
}

func TestPool_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	var mu sync.Mutex
	scorer := ScorerFunc(func(context.Context, models.ResumeRecord, models.JobDescriptionRecord) (*models.Score, error) {
		n := inFlight.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return &models.Score{}, nil
	})
	p := newTestPool(t, scorer, WithWorkers(2))
	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = Task{Resume: models.ResumeRecord{ID: fmt.Sprint(i)}, Job: models.JobDescriptionRecord{Title: "x"}}
	}
	p.Run(context.Background(), tasks)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestNewPool_Validation(t *testing.T) {
	_, err := NewPool(nil)
	assert.Error(t, err)
	_, err = NewPool(skillScorer(), WithWorkers(0))
	assert.Error(t, err)
	_, err = NewPool(skillScorer(), WithRetry(0, time.Second))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func screeningResumes() []models.ResumeRecord {
	return []models.ResumeRecord{
		{ID: "r1", Name: "Ada", Summary: "Go backend engineer", Skills: []string{"go", "postgres"}},
		{ID: "r2", Name: "Brian", Summary: "Frontend designer", Skills: []string{"css"}},
		{ID: "r3", Name: "Cleo", Summary: "Go and Kubernetes platform engineer", Skills: []string{"go", "kubernetes", "postgres"}},
	}
}

func TestScreener_SortsByOverallScore(t *testing.T) {
	s := NewScreener(embedding.NewMockEmbedder(16), newTestPool(t, skillScorer()), nil)
	job := models.JobDescriptionRecord{Title: "Backend", RequiredSkills: []string{"go", "kubernetes", "postgres"}}
	report, err := s.Screen(context.Background(), screeningResumes(), job, Options{})
	require.NoError(t, err)
	require.Len(t, report.Scores, 3)
	assert.Equal(t, []string{"r3", "r1", "r2"}, []string{report.Scores[0].ResumeID, report.Scores[1].ResumeID, report.Scores[2].ResumeID})
	assert.False(t, report.FellBack)
	assert.Empty(t, report.Candidates)
}

func TestScreener_RetrievalLimitsCandidates(t *testing.T) {
	s := NewScreener(embedding.NewMockEmbedder(16), newTestPool(t, skillScorer()), nil)
	job := models.JobDescriptionRecord{Title: "Backend", RequiredSkills: []string{"go"}}
	report, err := s.Screen(context.Background(), screeningResumes(), job, Options{UseRetrieval: true, RetrievalK: 2})
	require.NoError(t, err)
	assert.Len(t, report.Candidates, 2)
	assert.Len(t, report.Scores, 2)
	assert.True(t, strings.HasPrefix(report.JobID, "job_"))
	fused := map[string]float64{}
	for _, c := range report.Candidates {
		fused[c.Resume.ID] = c.FusedScore
	}
	for _, sc := range report.Scores {
		want, ok := fused[sc.ResumeID]
		require.True(t, ok, "scored resume %s was not retrieved", sc.ResumeID)
		assert.Equal(t, want, sc.SimilarityScore)
	}
}

func TestScreener_FallsBackWhenRetrievalUnavailable(t *testing.T) {
	s := NewScreener(failingEmbedder{embedding.NewMockEmbedder(16)}, newTestPool(t, skillScorer()), nil)
	job := models.JobDescriptionRecord{Title: "Backend", RequiredSkills: []string{"go"}}
	report, err := s.Screen(context.Background(), screeningResumes(), job, Options{UseRetrieval: true, RetrievalK: 1})
	require.NoError(t, err)
	assert.True(t, report.FellBack)
	assert.Len(t, report.Scores, 3)
}

func TestScreener_InvalidInput(t *testing.T) {
	s := NewScreener(embedding.NewMockEmbedder(16), newTestPool(t, skillScorer()), nil)
	_, err := s.Screen(context.Background(), screeningResumes(), models.JobDescriptionRecord{}, Options{})
	assert.ErrorIs(t, err, models.ErrInvalidRecord)

	report, err := s.Screen(context.Background(), nil, models.JobDescriptionRecord{Title: "x"}, Options{UseRetrieval: true})
	require.NoError(t, err)
	assert.Empty(t, report.Scores)

	_, err = s.Screen(context.Background(), []models.ResumeRecord{{Name: "no id"}}, models.JobDescriptionRecord{Title: "x"}, Options{UseRetrieval: true})
	assert.ErrorIs(t, err, models.ErrInvalidRecord)
}

func TestScreener_NoEmbedderFallsBack(t *testing.T) {
	s := NewScreener(nil, newTestPool(t, skillScorer()), nil)
	report, err := s.Screen(context.Background(), screeningResumes(), models.JobDescriptionRecord{Title: "x"}, Options{UseRetrieval: true})
	require.NoError(t, err)
	assert.True(t, report.FellBack)
	assert.Len(t, report.Scores, 3)
}

func TestScreener_SimilarityFollowsTaskWhenScorerRenamesID(t *testing.T) {
	scorer := ScorerFunc(func(_ context.Context, r models.ResumeRecord, _ models.JobDescriptionRecord) (*models.Score, error) {
		return &models.Score{ResumeID: "ext-" + r.ID, OverallScore: float64(len(r.Skills)), Recommendation: models.Maybe}, nil
	})
	s := NewScreener(embedding.NewMockEmbedder(16), newTestPool(t, scorer), nil)
	job := models.JobDescriptionRecord{Title: "Backend", RequiredSkills: []string{"go"}}
	report, err := s.Screen(context.Background(), screeningResumes(), job, Options{UseRetrieval: true, RetrievalK: 3})
	require.NoError(t, err)
	require.Len(t, report.Scores, 3)

	fused := map[string]float64{}
	for _, c := range report.Candidates {
		fused[c.Resume.ID] = c.FusedScore
	}
	for _, sc := range report.Scores {
		want, ok := fused[strings.TrimPrefix(sc.ResumeID, "ext-")]
		require.True(t, ok, "unexpected score for %s", sc.ResumeID)
		assert.Equal(t, want, sc.SimilarityScore)
	}
}

func TestReport_Session(t *testing.T) {
	s := NewScreener(embedding.NewMockEmbedder(16), newTestPool(t, skillScorer()), nil)
	job := models.JobDescriptionRecord{Title: "Backend", Company: "Acme", RequiredSkills: []string{"go"}}
	report, err := s.Screen(context.Background(), screeningResumes(), job, Options{UseRetrieval: true, RetrievalK: 2})
	require.NoError(t, err)

	session := report.Session()
	assert.Equal(t, report.JobID, session.JobID)
	assert.Equal(t, "Backend", session.JobTitle)
	assert.Equal(t, "Acme", session.Company)
	assert.Equal(t, 3, session.NumResumes)
	assert.Equal(t, 2, session.NumScored)
	assert.False(t, session.FellBack)
	assert.Equal(t, report.Duration, session.Duration)
}
