// Package cli provides input loading and output formatting for the shortlist command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/shortlist/internal/models"
	"github.com/hyperjump/shortlist/internal/screening"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json".
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

// WriteCandidates writes a retrieval response to w in the given format.
func WriteCandidates(w io.Writer, response *models.RetrieveResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nTop %d of %d candidates for %q (%dms)\n\n",
		response.Total, response.Corpus, response.JobTitle, response.QueryTime)
	for _, c := range response.Candidates {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f (Keyword: %.4f, Vector: %.4f)\n",
			c.Rank, c.FusedScore, c.KeywordScore, c.VectorScore)
		fmt.Fprintf(w, "ID: %s\n", c.Resume.ID)
		if c.Resume.Name != "" {
			fmt.Fprintf(w, "Name: %s\n", c.Resume.Name)
		}
		if len(c.Resume.Skills) > 0 {
			fmt.Fprintf(w, "Skills: %s\n", strings.Join(c.Resume.Skills, ", "))
		}
		if c.Resume.Summary != "" {
			fmt.Fprintf(w, "\n%s\n", TruncateWords(c.Resume.Summary, 40))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteReport writes a screening report to w in the given format.
func WriteReport(w io.Writer, report *screening.Report, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "\nScreened %d candidates for %q in %s\n", len(report.Scores), report.Job.Title, report.Duration.Round(1e6))
	if report.FellBack {
		fmt.Fprintln(w, "Retrieval was unavailable; every resume was scored.")
	}
	fmt.Fprintln(w)
	writeScores(w, report.Scores)
	return nil
}

// WriteSessions lists stored screening runs.
func WriteSessions(w io.Writer, sessions []models.ScreeningSession, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No screening history.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "#%d  %s  %q", s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.JobTitle)
		if s.Company != "" {
			fmt.Fprintf(w, " at %s", s.Company)
		}
		fmt.Fprintf(w, "  scored %d of %d", s.NumScored, s.NumResumes)
		if s.FellBack {
			fmt.Fprint(w, " (no retrieval)")
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteSessionResults writes the stored scores of one screening run.
func WriteSessionResults(w io.Writer, session *models.ScreeningSession, scores []*models.Score, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, struct {
			Session *models.ScreeningSession `json:"session"`
			Scores  []*models.Score          `json:"scores"`
		}{session, scores})
	}
	fmt.Fprintf(w, "\nSession #%d: %q, %d candidates scored in %s\n\n",
		session.ID, session.JobTitle, len(scores), session.Duration.Round(1e6))
	writeScores(w, scores)
	return nil
}

func writeScores(w io.Writer, scores []*models.Score) {
	for i, s := range scores {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "#%d %s (%s) | Overall: %.1f | Skills: %.1f | Experience: %.1f | Education: %.1f\n",
			i+1, s.CandidateName, s.ResumeID, s.OverallScore, s.SkillsMatchScore, s.ExperienceScore, s.EducationScore)
		fmt.Fprintf(w, "Recommendation: %s", s.Recommendation)
		if s.SimilarityScore > 0 {
			fmt.Fprintf(w, " | Similarity: %.4f", s.SimilarityScore)
		}
		fmt.Fprintln(w)
		if len(s.Strengths) > 0 {
			fmt.Fprintf(w, "Strengths: %s\n", strings.Join(s.Strengths, "; "))
		}
		if len(s.Weaknesses) > 0 {
			fmt.Fprintf(w, "Weaknesses: %s\n", strings.Join(s.Weaknesses, "; "))
		}
		if s.Reasoning != "" {
			fmt.Fprintf(w, "\n%s\n", TruncateWords(s.Reasoning, 60))
		}
		fmt.Fprintln(w)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
