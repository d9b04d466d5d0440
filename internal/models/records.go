package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRecord is returned when a resume or job description fails validation.
var ErrInvalidRecord = errors.New("invalid record")

// Experience is one work history entry.
type Experience struct {
	Title       string `json:"title" yaml:"title"`
	Company     string `json:"company" yaml:"company"`
	Duration    string `json:"duration,omitempty" yaml:"duration"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// Education is one degree entry.
type Education struct {
	Degree      string `json:"degree" yaml:"degree"`
	Field       string `json:"field,omitempty" yaml:"field"`
	Institution string `json:"institution,omitempty" yaml:"institution"`
	Year        string `json:"year,omitempty" yaml:"year"`
}

// ResumeRecord is a parsed candidate resume. ID is required; everything else is optional.
type ResumeRecord struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	Skills     []string     `json:"skills,omitempty"`
	Experience []Experience `json:"experience,omitempty"`
	Education  []Education  `json:"education,omitempty"`
	Summary    string       `json:"summary,omitempty"`
}

// Validate checks required fields.
func (r *ResumeRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("resume %q: id is required: %w", r.Name, ErrInvalidRecord)
	}
	return nil
}

// Clone returns a deep copy so indexed payloads never alias caller slices.
func (r ResumeRecord) Clone() ResumeRecord {
	out := r
	out.Skills = append([]string(nil), r.Skills...)
	out.Experience = append([]Experience(nil), r.Experience...)
	out.Education = append([]Education(nil), r.Education...)
	return out
}

// JobDescriptionRecord is a parsed job posting used as the retrieval query.
type JobDescriptionRecord struct {
	Title            string   `json:"title"`
	Company          string   `json:"company,omitempty"`
	RequiredSkills   []string `json:"required_skills,omitempty"`
	PreferredSkills  []string `json:"preferred_skills,omitempty"`
	ExperienceYears  int      `json:"experience_years,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Qualifications   []string `json:"qualifications,omitempty"`
	Description      string   `json:"description,omitempty"`
}

// Validate requires at least one field that contributes query text.
func (j *JobDescriptionRecord) Validate() error {
	if j.ExperienceYears < 0 {
		return fmt.Errorf("job %q: experience_years must not be negative: %w", j.Title, ErrInvalidRecord)
	}
	if strings.TrimSpace(j.Title) == "" && strings.TrimSpace(j.Company) == "" &&
		strings.TrimSpace(j.Description) == "" && len(j.RequiredSkills) == 0 &&
		len(j.PreferredSkills) == 0 && len(j.Responsibilities) == 0 && len(j.Qualifications) == 0 {
		return fmt.Errorf("job description has no content: %w", ErrInvalidRecord)
	}
	return nil
}

// Clone returns a deep copy.
func (j JobDescriptionRecord) Clone() JobDescriptionRecord {
	out := j
	out.RequiredSkills = append([]string(nil), j.RequiredSkills...)
	out.PreferredSkills = append([]string(nil), j.PreferredSkills...)
	out.Responsibilities = append([]string(nil), j.Responsibilities...)
	out.Qualifications = append([]string(nil), j.Qualifications...)
	return out
}
