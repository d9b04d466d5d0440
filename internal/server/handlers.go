package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/shortlist/internal/models"
	"github.com/hyperjump/shortlist/internal/retriever"
	"github.com/hyperjump/shortlist/internal/search"
	"github.com/hyperjump/shortlist/internal/storage"
)

// maxRepositoryResumes bounds a single load from the candidate repository.
const maxRepositoryResumes = 10000

type sessionResponse struct {
	ID        string         `json:"id"`
	State     string         `json:"state"`
	Documents int            `json:"documents"`
	Resumes   int            `json:"resumes"`
	Weights   search.Weights `json:"weights"`
	CreatedAt time.Time      `json:"created_at"`
}

type indexResumesRequest struct {
	Resumes        []models.ResumeRecord `json:"resumes"`
	FromRepository bool                  `json:"from_repository,omitempty"`
}

func toSessionResponse(sess *session) sessionResponse {
	return sessionResponse{
		ID:        sess.ID,
		State:     sess.Retriever.State().String(),
		Documents: sess.Retriever.Count(),
		Resumes:   sess.Retriever.ResumeCount(),
		Weights:   sess.Retriever.Weights(),
		CreatedAt: sess.CreatedAt,
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var weights search.Weights
	if err := json.NewDecoder(r.Body).Decode(&weights); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := s.sessions.create(weights)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.remove(chi.URLParam(r, "id")); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleIndexResumes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req indexResumesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resumes := req.Resumes
	if req.FromRepository {
		if s.repo == nil {
			s.respondError(w, http.StatusBadRequest, "candidate repository is not configured")
			return
		}
		stored, err := s.repo.ListResumes(r.Context(), 0, maxRepositoryResumes)
		if err != nil {
			s.logger.Error("list resumes failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resumes = append(resumes, stored...)
	}
	if len(resumes) == 0 {
		s.respondError(w, http.StatusBadRequest, "no resumes given")
		return
	}

	s.logger.Debug("index resumes request", zap.String("session_id", sess.ID), zap.Int("resumes", len(resumes)))
	if err := sess.Retriever.IndexResumes(r.Context(), resumes); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{
		"indexed": len(resumes),
		"resumes": sess.Retriever.ResumeCount(),
	})
}

func (s *Server) handleIndexJob(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var job models.JobDescriptionRecord
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := sess.Retriever.IndexJobDescription(r.Context(), job)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	if s.repo != nil {
		if err := s.repo.SaveJob(r.Context(), id, job); err != nil {
			s.logger.Warn("failed to persist job description", zap.String("job_id", id), zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req models.RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(s.config.Retrieval.DefaultTopK, s.config.Retrieval.MaxTopK); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	weights := sess.Retriever.Weights()
	if req.KeywordWeight != 0 || req.VectorWeight != 0 {
		weights = search.Weights{Keyword: req.KeywordWeight, Vector: req.VectorWeight}
	}

	start := time.Now()
	candidates, err := sess.Retriever.RetrieveCandidatesWeighted(r.Context(), req.Job, req.TopK, weights)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.RetrieveResponse{
		JobTitle:   req.Job.Title,
		Candidates: candidates,
		Total:      len(candidates),
		Corpus:     sess.Retriever.ResumeCount(),
		QueryTime:  time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Retriever.Reset()
	s.respondJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.count(),
	}
	if s.repo != nil {
		if n, err := s.repo.CountResumes(r.Context()); err == nil {
			resp["stored_resumes"] = n
		}
		if bytes, err := storage.DiskUsageBytes(storage.SQLiteFiles(s.config.Storage.DatabasePath)...); err == nil {
			resp["disk_usage_bytes"] = bytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// session resolves the {id} URL parameter, writing a 404 when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, err := s.sessions.get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, err)
		return nil, false
	}
	return sess, true
}

// respondFailure maps domain errors onto HTTP status codes.
func (s *Server) respondFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errSessionNotFound), errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, retriever.ErrRetrievalUnavailable):
		s.logger.Warn("retrieval unavailable", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, "retrieval unavailable")
	case errors.Is(err, models.ErrInvalidRecord), errors.Is(err, retriever.ErrInvalidTopK),
		errors.Is(err, search.ErrInvalidWeights):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
