// Package llm scores resumes against job descriptions with an OpenAI-compatible
// chat completions endpoint.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hyperjump/shortlist/internal/config"
	"github.com/hyperjump/shortlist/internal/models"
	"github.com/hyperjump/shortlist/internal/screening"
	"github.com/hyperjump/shortlist/pkg/utils"
)

// ErrRateLimited is returned when the provider throttles the request. It is retryable.
var ErrRateLimited = errors.New("rate limit exceeded")

// ErrMalformedResponse is returned when the completion is not the expected JSON.
var ErrMalformedResponse = errors.New("malformed completion")

// Scorer implements screening.Scorer on top of a chat completions API.
type Scorer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

var _ screening.Scorer = (*Scorer)(nil)

// NewScorer creates a scorer from the screening config.
func NewScorer(cfg config.ScreeningConfig, logger *zap.Logger) (*Scorer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm api key is required (set %s)", config.EnvLLMAPIKey)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Scorer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      utils.OrNop(logger),
	}, nil
}

// Score asks the model to evaluate resume against job. Rate limits come back as
// ErrRateLimited; every other failure is marked permanent.
func (s *Scorer) Score(ctx context.Context, resume models.ResumeRecord, job models.JobDescriptionRecord) (*models.Score, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(resume, job)},
		},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, screening.Permanent(fmt.Errorf("%w: no choices", ErrMalformedResponse))
	}

	score, err := ParseScore(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Debug("Unparseable completion",
			zap.String("resume_id", resume.ID),
			zap.String("content", utils.TruncateRunes(resp.Choices[0].Message.Content, 200)),
		)
		return nil, screening.Permanent(err)
	}
	score.ResumeID = resume.ID
	score.CandidateName = resume.Name
	return score, nil
}

type scoreJSON struct {
	OverallScore     float64  `json:"overall_score"`
	SkillsMatchScore float64  `json:"skills_match_score"`
	ExperienceScore  float64  `json:"experience_score"`
	EducationScore   float64  `json:"education_score"`
	Reasoning        string   `json:"reasoning"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Recommendation   string   `json:"recommendation"`
}

// ParseScore decodes a completion, accepting a bare object or one wrapped in a
// markdown code fence.
func ParseScore(content string) (*models.Score, error) {
	var v scoreJSON
	if err := json.Unmarshal([]byte(ExtractJSON(content)), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if v.Strengths == nil {
		v.Strengths = []string{}
	}
	if v.Weaknesses == nil {
		v.Weaknesses = []string{}
	}
	return &models.Score{
		OverallScore:     v.OverallScore,
		SkillsMatchScore: v.SkillsMatchScore,
		ExperienceScore:  v.ExperienceScore,
		EducationScore:   v.EducationScore,
		Reasoning:        v.Reasoning,
		Strengths:        v.Strengths,
		Weaknesses:       v.Weaknesses,
		Recommendation:   models.ParseRecommendation(v.Recommendation),
	}, nil
}

// ExtractJSON strips a ```json (or bare ```) fence around the payload.
func ExtractJSON(content string) string {
	text := strings.TrimSpace(content)
	if _, after, ok := strings.Cut(text, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, ok := strings.Cut(text, "```"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return text
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || isRateLimitCode(apiErr.Code) ||
			strings.Contains(apiErr.Message, "rate_limit_exceeded") {
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		}
		return screening.Permanent(fmt.Errorf("llm API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests || strings.Contains(string(reqErr.Body), "rate_limit_exceeded") {
			return fmt.Errorf("%w: status %d", ErrRateLimited, reqErr.HTTPStatusCode)
		}
		return screening.Permanent(fmt.Errorf("llm request failed with status %d: %w", reqErr.HTTPStatusCode, reqErr))
	}

	if strings.Contains(err.Error(), "rate_limit_exceeded") {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return screening.Permanent(fmt.Errorf("llm request failed: %w", err))
}

func isRateLimitCode(code any) bool {
	s, ok := code.(string)
	return ok && s == "rate_limit_exceeded"
}
