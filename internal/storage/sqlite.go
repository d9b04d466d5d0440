package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/shortlist/internal/models"
)

// CandidateRepository persists resumes, job descriptions and screening history in SQLite.
// Records are stored as JSON blobs keyed by id.
type CandidateRepository struct {
	db *sqlx.DB
}

type recordRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Data      string    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewCandidateRepository opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewCandidateRepository(dbPath string) (*CandidateRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &CandidateRepository{db: db}, nil
}

func initSchema(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS resumes (
		id TEXT PRIMARY KEY,
		name TEXT,
		data TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_resumes_created_at ON resumes(created_at);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		name TEXT,
		data TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT,
		job_title TEXT NOT NULL,
		company TEXT,
		num_resumes INTEGER NOT NULL,
		num_scored INTEGER NOT NULL,
		fell_back INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS results (
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		resume_id TEXT NOT NULL,
		candidate_name TEXT,
		overall_score REAL NOT NULL,
		recommendation TEXT NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (session_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_results_resume ON results(resume_id);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveResumes upserts resumes in one transaction. Invalid records abort the whole batch.
func (r *CandidateRepository) SaveResumes(ctx context.Context, resumes []models.ResumeRecord) error {
	rows := make([]recordRow, 0, len(resumes))
	now := time.Now()
	for i := range resumes {
		if err := resumes[i].Validate(); err != nil {
			return err
		}
		data, err := json.Marshal(resumes[i])
		if err != nil {
			return fmt.Errorf("failed to marshal resume %s: %w", resumes[i].ID, err)
		}
		rows = append(rows, recordRow{ID: resumes[i].ID, Name: resumes[i].Name, Data: string(data), CreatedAt: now, UpdatedAt: now})
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, row := range rows {
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO resumes (id, name, data, created_at, updated_at)
			 VALUES (:id, :name, :data, :created_at, :updated_at)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = excluded.updated_at`,
			row)
		if err != nil {
			return fmt.Errorf("failed to save resume %s: %w", row.ID, err)
		}
	}
	return tx.Commit()
}

// ListResumes returns stored resumes in insertion order. limit <= 0 means all.
func (r *CandidateRepository) ListResumes(ctx context.Context, offset, limit int) ([]models.ResumeRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []recordRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, name, data, created_at, updated_at FROM resumes
		 ORDER BY created_at, rowid LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	out := make([]models.ResumeRecord, 0, len(rows))
	for _, row := range rows {
		var rec models.ResumeRecord
		if err := json.Unmarshal([]byte(row.Data), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal resume %s: %w", row.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetResume returns one resume by id.
func (r *CandidateRepository) GetResume(ctx context.Context, id string) (*models.ResumeRecord, error) {
	var row recordRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, name, data, created_at, updated_at FROM resumes WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var rec models.ResumeRecord
	if err := json.Unmarshal([]byte(row.Data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resume %s: %w", id, err)
	}
	return &rec, nil
}

// DeleteResume removes a resume. Unknown ids return ErrNotFound.
func (r *CandidateRepository) DeleteResume(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM resumes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}
	return nil
}

// CountResumes returns the number of stored resumes.
func (r *CandidateRepository) CountResumes(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM resumes`)
	return n, err
}

// SaveJob upserts a job description under id.
func (r *CandidateRepository) SaveJob(ctx context.Context, id string, job models.JobDescriptionRecord) error {
	if err := job.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", id, err)
	}
	now := time.Now()
	_, err = r.db.NamedExecContext(ctx,
		`INSERT INTO jobs (id, name, data, created_at, updated_at)
		 VALUES (:id, :name, :data, :created_at, :updated_at)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = excluded.updated_at`,
		recordRow{ID: id, Name: job.Title, Data: string(data), CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", id, err)
	}
	return nil
}

// GetJob returns the job description stored under id.
func (r *CandidateRepository) GetJob(ctx context.Context, id string) (*models.JobDescriptionRecord, error) {
	var data string
	err := r.db.GetContext(ctx, &data, `SELECT data FROM jobs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var job models.JobDescriptionRecord
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", id, err)
	}
	return &job, nil
}

// Close closes the database.
func (r *CandidateRepository) Close() error {
	return r.db.Close()
}
