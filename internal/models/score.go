package models

// Recommendation is the hiring verdict attached to a scored candidate.
type Recommendation string

const (
	HighlyRecommended Recommendation = "HIGHLY_RECOMMENDED"
	Recommended       Recommendation = "RECOMMENDED"
	Maybe             Recommendation = "MAYBE"
	NotRecommended    Recommendation = "NOT_RECOMMENDED"
)

// ParseRecommendation maps free text onto a Recommendation, defaulting to NotRecommended.
func ParseRecommendation(s string) Recommendation {
	switch Recommendation(s) {
	case HighlyRecommended, Recommended, Maybe, NotRecommended:
		return Recommendation(s)
	}
	return NotRecommended
}

// Score is the per-candidate evaluation produced by the scoring stage. Sub-scores are 0-100.
type Score struct {
	ResumeID         string         `json:"resume_id"`
	CandidateName    string         `json:"candidate_name"`
	OverallScore     float64        `json:"overall_score"`
	SkillsMatchScore float64        `json:"skills_match_score"`
	ExperienceScore  float64        `json:"experience_score"`
	EducationScore   float64        `json:"education_score"`
	Reasoning        string         `json:"reasoning"`
	Strengths        []string       `json:"strengths"`
	Weaknesses       []string       `json:"weaknesses"`
	Recommendation   Recommendation `json:"recommendation"`
	SimilarityScore  float64        `json:"similarity_score"`
}

// FailedScore is the zero evaluation recorded when scoring a candidate fails.
func FailedScore(r ResumeRecord, reason string) *Score {
	return &Score{
		ResumeID:       r.ID,
		CandidateName:  r.Name,
		Reasoning:      reason,
		Strengths:      []string{},
		Weaknesses:     []string{"Error during automated screening"},
		Recommendation: NotRecommended,
	}
}
