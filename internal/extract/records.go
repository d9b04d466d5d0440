package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hyperjump/shortlist/internal/fileid"
	"github.com/hyperjump/shortlist/internal/models"
	"github.com/hyperjump/shortlist/pkg/utils"
)

// SummaryRunes is how much of the raw text becomes the summary of a parsed resume.
const SummaryRunes = 500

// ResumeFromText builds a resume record from unstructured text. Only the summary
// is populated; structured fields are left for the scorer to infer.
func ResumeFromText(id, text string) models.ResumeRecord {
	return models.ResumeRecord{
		ID:      id,
		Name:    "Candidate",
		Summary: utils.TruncateRunes(text, SummaryRunes),
	}
}

// JobFromText builds a job description whose only content is the raw text.
func JobFromText(text string) models.JobDescriptionRecord {
	return models.JobDescriptionRecord{
		Title:       "Position",
		Company:     "Company",
		Description: text,
	}
}

// ResumeFromFile extracts path and wraps the text with ResumeFromText.
func (e *Extractor) ResumeFromFile(path string) (models.ResumeRecord, error) {
	text, err := e.Extract(path)
	if err != nil {
		return models.ResumeRecord{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return ResumeFromText(fileid.ResumeID(path), text), nil
}

// ResumesFromDir reads every supported file directly under dir, in name order.
// Unsupported files are skipped; a file that fails to parse fails the whole call.
func (e *Extractor) ResumesFromDir(dir string) ([]models.ResumeRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []models.ResumeRecord
	for _, entry := range entries {
		if entry.IsDir() || !Supported(entry.Name()) {
			continue
		}
		r, err := e.ResumeFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
