package models

import "fmt"

// RetrieveRequest asks for the top candidates for a job description.
// Zero weights mean "use the configured defaults".
type RetrieveRequest struct {
	Job           JobDescriptionRecord `json:"job"`
	TopK          int                  `json:"top_k,omitempty"`
	KeywordWeight float64              `json:"keyword_weight,omitempty"`
	VectorWeight  float64              `json:"vector_weight,omitempty"`
}

// Validate applies defaults: TopK falls back to defaultTopK and is capped at maxTopK.
// The job is not checked; a job with no searchable terms ranks by vector similarity alone.
func (q *RetrieveRequest) Validate(defaultTopK, maxTopK int) error {
	if q.TopK < 0 {
		return fmt.Errorf("top_k must be positive, got %d", q.TopK)
	}
	if q.TopK == 0 {
		q.TopK = defaultTopK
	}
	if maxTopK > 0 && q.TopK > maxTopK {
		q.TopK = maxTopK
	}
	if q.KeywordWeight < 0 || q.VectorWeight < 0 {
		return fmt.Errorf("weights must not be negative")
	}
	return nil
}
