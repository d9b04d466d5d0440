package retriever

import (
	"strings"

	"github.com/hyperjump/shortlist/internal/models"
)

// ResumeContent builds the canonical indexed text of a resume: name, summary,
// skills, experience and education in that order. Empty parts are skipped.
func ResumeContent(r models.ResumeRecord) string {
	var parts []string
	parts = appendNonEmpty(parts, r.Name)
	parts = appendNonEmpty(parts, r.Summary)
	parts = appendNonEmpty(parts, joinNonEmpty(r.Skills, ", "))

	exps := make([]string, 0, len(r.Experience))
	for _, e := range r.Experience {
		s := e.Title + " at " + e.Company
		if e.Description != "" {
			s += " - " + e.Description
		}
		exps = append(exps, s)
	}
	parts = appendNonEmpty(parts, strings.Join(exps, "; "))

	edus := make([]string, 0, len(r.Education))
	for _, e := range r.Education {
		edus = append(edus, e.Degree+" in "+e.Field+" from "+e.Institution)
	}
	parts = appendNonEmpty(parts, strings.Join(edus, "; "))

	return strings.Join(parts, ". ")
}

// JobContent builds the canonical text of a job description, used both for
// indexing and as the retrieval query.
func JobContent(j models.JobDescriptionRecord) string {
	var parts []string
	parts = appendNonEmpty(parts, j.Title)
	parts = appendNonEmpty(parts, j.Company)
	parts = appendNonEmpty(parts, j.Description)
	parts = appendNonEmpty(parts, joinNonEmpty(j.RequiredSkills, ", "))
	parts = appendNonEmpty(parts, joinNonEmpty(j.PreferredSkills, ", "))
	parts = appendNonEmpty(parts, joinNonEmpty(j.Responsibilities, "; "))
	parts = appendNonEmpty(parts, joinNonEmpty(j.Qualifications, "; "))
	return strings.Join(parts, ". ")
}

func appendNonEmpty(parts []string, s string) []string {
	if strings.TrimSpace(s) == "" {
		return parts
	}
	return append(parts, s)
}

func joinNonEmpty(items []string, sep string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			kept = append(kept, it)
		}
	}
	return strings.Join(kept, sep)
}
