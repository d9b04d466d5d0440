package models

import "time"

// ScreeningSession summarizes one stored screening run. Its per-candidate
// scores are stored alongside and listed by session id.
type ScreeningSession struct {
	ID         int64         `json:"id"`
	JobID      string        `json:"job_id,omitempty"`
	JobTitle   string        `json:"job_title"`
	Company    string        `json:"company,omitempty"`
	NumResumes int           `json:"num_resumes"`
	NumScored  int           `json:"num_scored"`
	FellBack   bool          `json:"fell_back"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}
