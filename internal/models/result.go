package models

// Candidate is a retrieved resume annotated with its fused hybrid score.
// KeywordScore and VectorScore are the normalized per-modality inputs to the fusion.
type Candidate struct {
	Resume       ResumeRecord `json:"resume"`
	FusedScore   float64      `json:"fused_score"`
	KeywordScore float64      `json:"keyword_score"`
	VectorScore  float64      `json:"vector_score"`
	Rank         int          `json:"rank"`
}

// RetrieveResponse is the response for a retrieval request.
type RetrieveResponse struct {
	JobTitle   string      `json:"job_title"`
	Candidates []Candidate `json:"candidates"`
	Total      int         `json:"total"`
	Corpus     int         `json:"corpus_resumes"`
	QueryTime  int64       `json:"query_time_ms"`
}
