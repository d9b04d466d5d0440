// Package search fuses keyword and vector rankings into one hybrid ranking.
package search

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hyperjump/shortlist/internal/keyword"
	"github.com/hyperjump/shortlist/internal/vector"
	"github.com/hyperjump/shortlist/pkg/utils"
)

// Weights are the linear blend factors of the two modalities.
type Weights struct {
	Keyword float64 `yaml:"keyword_weight" json:"keyword_weight"`
	Vector  float64 `yaml:"vector_weight" json:"vector_weight"`
}

// DefaultWeights favours semantic similarity.
var DefaultWeights = Weights{Keyword: 0.3, Vector: 0.7}

// ErrInvalidWeights is returned by Weights.Validate.
var ErrInvalidWeights = errors.New("invalid fusion weights")

// Validate rejects negative weights and an all-zero pair.
func (w Weights) Validate() error {
	if w.Keyword < 0 || w.Vector < 0 {
		return fmt.Errorf("%w: keyword=%v vector=%v must not be negative", ErrInvalidWeights, w.Keyword, w.Vector)
	}
	if w.Keyword == 0 && w.Vector == 0 {
		return fmt.Errorf("%w: at least one weight must be positive", ErrInvalidWeights)
	}
	return nil
}

// FusedResult holds a document ID with its combined and normalized per-modality scores.
type FusedResult struct {
	DocumentID   string
	Score        float64
	KeywordScore float64
	VectorScore  float64
}

// OrderFunc reports the insertion position of a document id for tie-breaking.
type OrderFunc func(id string) (int, bool)

// NormalizeKeywordScores divides every score by the maximum. A non-positive maximum is treated as 1.
func NormalizeKeywordScores(results []*keyword.KeywordResult) map[string]float64 {
	maxScore := 0.0
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	if maxScore <= 0 {
		maxScore = 1
	}
	normalized := make(map[string]float64, len(results))
	for _, r := range results {
		normalized[r.ID] = r.Score / maxScore
	}
	return normalized
}

// NormalizeVectorScores divides every similarity by the maximum and clamps the
// result into [0,1]; negative cosine similarities contribute nothing.
func NormalizeVectorScores(results []*vector.VectorResult) map[string]float64 {
	maxScore := 0.0
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	if maxScore <= 0 {
		maxScore = 1
	}
	normalized := make(map[string]float64, len(results))
	for _, r := range results {
		normalized[r.ID] = utils.Clamp01(r.Score / maxScore)
	}
	return normalized
}

// Fuse merges the two rankings: each id scores w.Keyword*normK + w.Vector*normV,
// where a modality that did not return the id contributes 0. Results are sorted
// by score descending, ties by order (then id), and truncated to k; k <= 0 keeps all.
func Fuse(keywordResults []*keyword.KeywordResult, vectorResults []*vector.VectorResult, k int, w Weights, order OrderFunc) []*FusedResult {
	keywordScores := NormalizeKeywordScores(keywordResults)
	vectorScores := NormalizeVectorScores(vectorResults)

	scoreMap := make(map[string]*FusedResult, len(keywordScores)+len(vectorScores))
	for id, score := range keywordScores {
		scoreMap[id] = &FusedResult{DocumentID: id, KeywordScore: score}
	}
	for id, score := range vectorScores {
		if result, exists := scoreMap[id]; exists {
			result.VectorScore = score
		} else {
			scoreMap[id] = &FusedResult{DocumentID: id, VectorScore: score}
		}
	}
	results := make([]*FusedResult, 0, len(scoreMap))
	for _, result := range scoreMap {
		result.Score = (w.Keyword * result.KeywordScore) + (w.Vector * result.VectorScore)
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return less(order, results[i].DocumentID, results[j].DocumentID)
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

func less(order OrderFunc, a, b string) bool {
	if order != nil {
		oa, okA := order(a)
		ob, okB := order(b)
		switch {
		case okA && okB && oa != ob:
			return oa < ob
		case okA != okB:
			return okA
		}
	}
	return a < b
}
