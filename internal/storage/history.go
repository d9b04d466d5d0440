package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/shortlist/internal/models"
)

type sessionRow struct {
	ID         int64          `db:"id"`
	JobID      sql.NullString `db:"job_id"`
	JobTitle   string         `db:"job_title"`
	Company    sql.NullString `db:"company"`
	NumResumes int            `db:"num_resumes"`
	NumScored  int            `db:"num_scored"`
	FellBack   bool           `db:"fell_back"`
	DurationMS int64          `db:"duration_ms"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (row sessionRow) session() models.ScreeningSession {
	return models.ScreeningSession{
		ID:         row.ID,
		JobID:      row.JobID.String,
		JobTitle:   row.JobTitle,
		Company:    row.Company.String,
		NumResumes: row.NumResumes,
		NumScored:  row.NumScored,
		FellBack:   row.FellBack,
		Duration:   time.Duration(row.DurationMS) * time.Millisecond,
		CreatedAt:  row.CreatedAt,
	}
}

type resultRow struct {
	SessionID      int64   `db:"session_id"`
	Position       int     `db:"position"`
	ResumeID       string  `db:"resume_id"`
	CandidateName  string  `db:"candidate_name"`
	OverallScore   float64 `db:"overall_score"`
	Recommendation string  `db:"recommendation"`
	Data           string  `db:"data"`
}

const sessionColumns = `id, job_id, job_title, company, num_resumes, num_scored, fell_back, duration_ms, created_at`

// SaveSession stores a screening run and its scores in one transaction and returns the new session id.
// Scores keep their order; position 1 is the first score. NumScored is taken from len(scores).
func (r *CandidateRepository) SaveSession(ctx context.Context, session models.ScreeningSession, scores []*models.Score) (int64, error) {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	results := make([]resultRow, 0, len(scores))
	for i, sc := range scores {
		data, err := json.Marshal(sc)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal score for %s: %w", sc.ResumeID, err)
		}
		results = append(results, resultRow{
			Position:       i + 1,
			ResumeID:       sc.ResumeID,
			CandidateName:  sc.CandidateName,
			OverallScore:   sc.OverallScore,
			Recommendation: string(sc.Recommendation),
			Data:           string(data),
		})
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.NamedExecContext(ctx,
		`INSERT INTO sessions (job_id, job_title, company, num_resumes, num_scored, fell_back, duration_ms, created_at)
		 VALUES (:job_id, :job_title, :company, :num_resumes, :num_scored, :fell_back, :duration_ms, :created_at)`,
		sessionRow{
			JobID:      sql.NullString{String: session.JobID, Valid: session.JobID != ""},
			JobTitle:   session.JobTitle,
			Company:    sql.NullString{String: session.Company, Valid: session.Company != ""},
			NumResumes: session.NumResumes,
			NumScored:  len(scores),
			FellBack:   session.FellBack,
			DurationMS: session.Duration.Milliseconds(),
			CreatedAt:  session.CreatedAt,
		})
	if err != nil {
		return 0, fmt.Errorf("failed to save session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read session id: %w", err)
	}

	for _, row := range results {
		row.SessionID = id
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO results (session_id, position, resume_id, candidate_name, overall_score, recommendation, data)
			 VALUES (:session_id, :position, :resume_id, :candidate_name, :overall_score, :recommendation, :data)`,
			row)
		if err != nil {
			return 0, fmt.Errorf("failed to save result for %s: %w", row.ResumeID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return id, nil
}

// ListSessions returns stored screening runs, newest first. limit <= 0 means all.
func (r *CandidateRepository) ListSessions(ctx context.Context, limit int) ([]models.ScreeningSession, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []sessionRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	out := make([]models.ScreeningSession, len(rows))
	for i, row := range rows {
		out[i] = row.session()
	}
	return out, nil
}

// GetSession returns one screening run by id.
func (r *CandidateRepository) GetSession(ctx context.Context, id int64) (*models.ScreeningSession, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	s := row.session()
	return &s, nil
}

// SessionResults returns the scores of a screening run in stored order.
// Unknown session ids return ErrNotFound.
func (r *CandidateRepository) SessionResults(ctx context.Context, sessionID int64) ([]*models.Score, error) {
	if _, err := r.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	var rows []resultRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT session_id, position, resume_id, candidate_name, overall_score, recommendation, data
		 FROM results WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for session %d: %w", sessionID, err)
	}
	out := make([]*models.Score, 0, len(rows))
	for _, row := range rows {
		var sc models.Score
		if err := json.Unmarshal([]byte(row.Data), &sc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result %d/%d: %w", sessionID, row.Position, err)
		}
		out = append(out, &sc)
	}
	return out, nil
}

// ClearHistory deletes every stored screening run. Resumes and jobs are kept.
func (r *CandidateRepository) ClearHistory(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM results`); err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return tx.Commit()
}
