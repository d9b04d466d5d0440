package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/shortlist/internal/extract"
	"github.com/hyperjump/shortlist/internal/models"
)

// LoadResumes reads resumes from a JSON file (an array of records, or an object with
// a "resumes" array) or from a directory of resume documents.
func LoadResumes(path string) ([]models.ResumeRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return extract.NewExtractor().ResumesFromDir(path)
	}
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		r, err := extract.NewExtractor().ResumeFromFile(path)
		if err != nil {
			return nil, err
		}
		return []models.ResumeRecord{r}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []models.ResumeRecord
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Resumes []models.ResumeRecord `json:"resumes"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return wrapped.Resumes, nil
}

// LoadJob reads a job description from a JSON file, or from any document the
// extractor supports, in which case the text becomes the description.
func LoadJob(path string) (models.JobDescriptionRecord, error) {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		data, err := os.ReadFile(path)
		if err != nil {
			return models.JobDescriptionRecord{}, err
		}
		var job models.JobDescriptionRecord
		if err := json.Unmarshal(data, &job); err != nil {
			return models.JobDescriptionRecord{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
		return job, nil
	}
	text, err := extract.NewExtractor().Extract(path)
	if err != nil {
		return models.JobDescriptionRecord{}, err
	}
	return extract.JobFromText(text), nil
}
