package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/texgraph/internal/analysis"
	"github.com/dgallion1/texgraph/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type analyzeRequest struct {
	Root     string   `json:"root"`
	Chapters []string `json:"chapters"`
	Kinds    []string `json:"kinds"`
	Reduce   *bool    `json:"reduce"` // default true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Root == "" {
		jsonError(w, "root is required", http.StatusBadRequest)
		return
	}

	root, err := s.resolveRoot(req.Root)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	reduce := true
	if req.Reduce != nil {
		reduce = *req.Reduce
	}

	now := time.Now()
	job := &pipeline.Job{
		ID: uuid.NewString(),
		Options: analysis.Options{
			Root:         root,
			Chapters:     req.Chapters,
			Kinds:        req.Kinds,
			Reduce:       reduce,
			CategoryFile: s.cfg.CategoryFile,
		},
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/analyze/%s/status", job.ID),
	})
}

func (s *Server) handleAnalyzeStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// resolveRoot confines requested roots to the configured project directory.
func (s *Server) resolveRoot(root string) (string, error) {
	if !filepath.IsAbs(root) {
		root = filepath.Join(s.cfg.ProjectDir, root)
	}
	root = filepath.Clean(root)
	if root != s.cfg.ProjectDir &&
		!strings.HasPrefix(root, s.cfg.ProjectDir+string(filepath.Separator)) {
		return "", fmt.Errorf("root is outside the project directory")
	}
	return root, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
