package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/shortlist/internal/models"
)

func newTestRepo(t *testing.T) *CandidateRepository {
	t.Helper()
	repo, err := NewCandidateRepository(filepath.Join(t.TempDir(), "sub", "shortlist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestCandidateRepository_Resumes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	resumes := []models.ResumeRecord{
		{ID: "r1", Name: "Ada", Skills: []string{"go", "kubernetes"}},
		{ID: "r2", Name: "Linus", Experience: []models.Experience{{Title: "Engineer", Company: "Acme"}}},
	}
	require.NoError(t, repo.SaveResumes(ctx, resumes))

	n, err := repo.CountResumes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := repo.ListResumes(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, []string{"go", "kubernetes"}, got[0].Skills)
	assert.Equal(t, "Acme", got[1].Experience[0].Company)

	one, err := repo.GetResume(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, "Linus", one.Name)
}

func TestCandidateRepository_UpsertAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveResumes(ctx, []models.ResumeRecord{{ID: "r1", Name: "Old"}}))
	require.NoError(t, repo.SaveResumes(ctx, []models.ResumeRecord{{ID: "r1", Name: "New"}}))

	got, err := repo.GetResume(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	require.NoError(t, repo.DeleteResume(ctx, "r1"))
	_, err = repo.GetResume(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteResume(ctx, "r1"), ErrNotFound)
}

func TestCandidateRepository_InvalidBatchIsRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.SaveResumes(ctx, []models.ResumeRecord{{ID: "ok"}, {Name: "no id"}})
	assert.ErrorIs(t, err, models.ErrInvalidRecord)

	n, err := repo.CountResumes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCandidateRepository_Jobs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	job := models.JobDescriptionRecord{Title: "Backend Engineer", RequiredSkills: []string{"go"}, ExperienceYears: 3}
	require.NoError(t, repo.SaveJob(ctx, "job_1", job))

	got, err := repo.GetJob(ctx, "job_1")
	require.NoError(t, err)
	assert.Equal(t, job, *got)

	_, err = repo.GetJob(ctx, "job_2")
	assert.ErrorIs(t, err, ErrNotFound)
}
