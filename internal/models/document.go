// Package models defines core data structures for candidate records, indexed documents, and retrieval results.
package models

// DocumentKind tells resumes and job descriptions apart inside one corpus.
type DocumentKind string

const (
	KindResume         DocumentKind = "resume"
	KindJobDescription DocumentKind = "job_description"
)

// Document is the canonical record for one indexed item. Exactly one of
// Resume and Job is set, matching Kind.
type Document struct {
	ID      string                `json:"id"`
	Content string                `json:"content"`
	Kind    DocumentKind          `json:"kind"`
	Resume  *ResumeRecord         `json:"resume,omitempty"`
	Job     *JobDescriptionRecord `json:"job,omitempty"`
}

// NewResumeDocument wraps a resume record with its composed content.
func NewResumeDocument(r ResumeRecord, content string) *Document {
	rec := r.Clone()
	return &Document{ID: r.ID, Content: content, Kind: KindResume, Resume: &rec}
}

// NewJobDocument wraps a job description with its composed content.
func NewJobDocument(id string, j JobDescriptionRecord, content string) *Document {
	rec := j.Clone()
	return &Document{ID: id, Content: content, Kind: KindJobDescription, Job: &rec}
}
