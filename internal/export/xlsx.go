// Package export writes screening shortlists to spreadsheet files.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/shortlist/internal/models"
)

const (
	SummarySheet    = "Summary"
	CandidatesSheet = "Candidates"
)

var candidateHeader = []interface{}{
	"Rank", "Resume ID", "Name", "Email",
	"Fused Score", "Keyword Score", "Vector Score",
	"Overall Score", "Skills Match", "Experience", "Education",
	"Recommendation", "Strengths", "Weaknesses", "Reasoning",
}

// row is one candidate line; either side may be missing.
type row struct {
	resume    models.ResumeRecord
	candidate *models.Candidate
	score     *models.Score
}

// WriteShortlistXLSX writes a workbook with a summary sheet and one candidate row per
// entry. Rows follow scores when present (already sorted by overall score), otherwise
// the retrieval order of candidates.
func WriteShortlistXLSX(w io.Writer, job models.JobDescriptionRecord, candidates []models.Candidate, scores []*models.Score) error {
	f := excelize.NewFile()
	defer f.Close()

	rows := mergeRows(candidates, scores)

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSummary(f, job, rows); err != nil {
		return err
	}
	if _, err := f.NewSheet(CandidatesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeCandidates(f, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func mergeRows(candidates []models.Candidate, scores []*models.Score) []row {
	byID := make(map[string]*models.Candidate, len(candidates))
	for i := range candidates {
		byID[candidates[i].Resume.ID] = &candidates[i]
	}
	if len(scores) == 0 {
		rows := make([]row, len(candidates))
		for i := range candidates {
			rows[i] = row{resume: candidates[i].Resume, candidate: &candidates[i]}
		}
		return rows
	}
	rows := make([]row, 0, len(scores))
	for _, s := range scores {
		r := row{score: s, resume: models.ResumeRecord{ID: s.ResumeID, Name: s.CandidateName}}
		if c, ok := byID[s.ResumeID]; ok {
			r.candidate = c
			r.resume = c.Resume
		}
		rows = append(rows, r)
	}
	return rows
}

func writeSummary(f *excelize.File, job models.JobDescriptionRecord, rows []row) error {
	lines := [][]interface{}{
		{"Resume Screening Report"},
		{"Job Title", job.Title},
		{"Company", job.Company},
		{"Date", time.Now().Format("2006-01-02 15:04")},
		{"Total Candidates", len(rows)},
	}

	var scored []*models.Score
	for _, r := range rows {
		if r.score != nil {
			scored = append(scored, r.score)
		}
	}
	if len(scored) > 0 {
		var sum float64
		top := scored[0]
		for _, s := range scored {
			sum += s.OverallScore
			if s.OverallScore > top.OverallScore {
				top = s
			}
		}
		lines = append(lines,
			[]interface{}{"Average Score", round(sum / float64(len(scored)))},
			[]interface{}{"Top Candidate", top.CandidateName},
			[]interface{}{"Top Score", round(top.OverallScore)},
		)
	}

	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &line); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(1, len(lines))
	if err := f.SetCellStyle(SummarySheet, "A1", last, bold); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "A", "B", 24)
}

func writeCandidates(f *excelize.File, rows []row) error {
	if err := f.SetSheetRow(CandidatesSheet, "A1", &candidateHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"6366F1"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(candidateHeader), 1)
	if err := f.SetCellStyle(CandidatesSheet, "A1", lastHeader, header); err != nil {
		return err
	}

	for i, r := range rows {
		values := []interface{}{i + 1, r.resume.ID, r.resume.Name, r.resume.Email}
		if c := r.candidate; c != nil {
			values = append(values, round(c.FusedScore), round(c.KeywordScore), round(c.VectorScore))
		} else {
			values = append(values, "", "", "")
		}
		if s := r.score; s != nil {
			values = append(values,
				round(s.OverallScore), round(s.SkillsMatchScore), round(s.ExperienceScore), round(s.EducationScore),
				string(s.Recommendation), strings.Join(s.Strengths, "; "), strings.Join(s.Weaknesses, "; "), s.Reasoning,
			)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(CandidatesSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(CandidatesSheet, "B", "D", 22); err != nil {
		return err
	}
	return f.SetPanes(CandidatesSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
