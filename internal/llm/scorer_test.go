package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/shortlist/internal/config"
	"github.com/hyperjump/shortlist/internal/models"
	"github.com/hyperjump/shortlist/internal/screening"
)

func completion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"model":   "test-model",
		"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"}},
	}
}

func newTestScorer(t *testing.T, handler http.HandlerFunc) *Scorer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s, err := NewScorer(config.ScreeningConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Model:       "test-model",
		Temperature: 0.3,
		MaxTokens:   2000,
	}, nil)
	require.NoError(t, err)
	return s
}

var (
	testResume = models.ResumeRecord{ID: "r1", Name: "Ada", Skills: []string{"go"}}
	testJob    = models.JobDescriptionRecord{Title: "Backend Engineer", RequiredSkills: []string{"go"}}
)

func TestScorer_Score(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	s := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion("```json\n{\"overall_score\": 82.5, \"skills_match_score\": 90, \"recommendation\": \"RECOMMENDED\", \"strengths\": [\"Go\"]}\n```"))
	})

	score, err := s.Score(context.Background(), testResume, testJob)
	require.NoError(t, err)
	assert.Equal(t, "r1", score.ResumeID)
	assert.Equal(t, "Ada", score.CandidateName)
	assert.Equal(t, 82.5, score.OverallScore)
	assert.Equal(t, 90.0, score.SkillsMatchScore)
	assert.Equal(t, models.Recommended, score.Recommendation)
	assert.Equal(t, []string{"Go"}, score.Strengths)
	assert.Equal(t, []string{}, score.Weaknesses)

	assert.Equal(t, "test-model", got.Model)
	assert.InDelta(t, 0.3, got.Temperature, 1e-6)
	assert.Equal(t, 2000, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "JOB TITLE: Backend Engineer")
	assert.Contains(t, got.Messages[1].Content, "Name: Ada")
}

func TestScorer_RateLimitIsRetryable(t *testing.T) {
	s := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"tokens","code":"rate_limit_exceeded"}}`))
	})
	_, err := s.Score(context.Background(), testResume, testJob)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.False(t, screening.IsPermanent(err))
}

func TestScorer_OtherErrorsArePermanent(t *testing.T) {
	s := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	})
	_, err := s.Score(context.Background(), testResume, testJob)
	require.Error(t, err)
	assert.True(t, screening.IsPermanent(err))
	assert.Contains(t, err.Error(), "model not found")
}

func TestScorer_MalformedCompletion(t *testing.T) {
	s := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion("I think this candidate is great"))
	})
	_, err := s.Score(context.Background(), testResume, testJob)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.True(t, screening.IsPermanent(err))
}

func TestScorer_InPool(t *testing.T) {
	calls := 0
	s := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","code":"rate_limit_exceeded"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(completion(`{"overall_score": 70, "recommendation": "MAYBE"}`))
	})
	pool, err := screening.NewPool(s, screening.WithWorkers(1), screening.WithRetry(3, 0))
	require.NoError(t, err)
	defer pool.Release()

	scores := pool.Run(context.Background(), []screening.Task{{Resume: testResume, Job: testJob}})
	require.Len(t, scores, 1)
	assert.Equal(t, 70.0, scores[0].OverallScore)
	assert.Equal(t, models.Maybe, scores[0].Recommendation)
	assert.Equal(t, 2, calls)
}

func TestNewScorer_Validation(t *testing.T) {
	_, err := NewScorer(config.ScreeningConfig{Model: "m"}, nil)
	assert.Error(t, err)
	_, err = NewScorer(config.ScreeningConfig{APIKey: "k"}, nil)
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"bare", `  {"a":1} `, `{"a":1}`},
		{"json fence", "Here you go:\n```json\n{\"a\":1}\n```\nThanks", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestParseScore_UnknownRecommendation(t *testing.T) {
	s, err := ParseScore(`{"overall_score": 10, "recommendation": "HIRE NOW"}`)
	require.NoError(t, err)
	assert.Equal(t, models.NotRecommended, s.Recommendation)

	_, err = ParseScore("")
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(models.ResumeRecord{
		Name:       "Ada",
		Experience: []models.Experience{{Title: "Engineer", Company: "Acme"}},
		Education:  []models.Education{{Degree: "BSc"}},
	}, models.JobDescriptionRecord{Title: "Dev", ExperienceYears: 3, Responsibilities: []string{"ship"}})
	assert.Contains(t, p, "MINIMUM EXPERIENCE: 3 years")
	assert.Contains(t, p, "• ship")
	assert.Contains(t, p, "• Engineer at Acme (N/A)")
	assert.Contains(t, p, "• BSc in N/A from N/A (N/A)")
	assert.True(t, strings.HasSuffix(p, "Return ONLY valid JSON."))
}
