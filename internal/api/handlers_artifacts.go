package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/dgallion1/texgraph/internal/analysis"
	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// completedResult fetches a job's finished result, writing the appropriate
// error response when the job is absent or not done.
func (s *Server) completedResult(w http.ResponseWriter, r *http.Request) *analysis.Result {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil
	}
	res := job.Result()
	if res == nil {
		snap := job.Snapshot()
		msg := fmt.Sprintf("job is %s", snap.Status)
		if snap.ErrMsg != "" {
			msg = snap.ErrMsg
		}
		jsonError(w, msg, http.StatusConflict)
		return nil
	}
	return res
}

func (s *Server) handleGraphDOT(w http.ResponseWriter, r *http.Request) {
	res := s.completedResult(w, r)
	if res == nil {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Write([]byte(res.DOT))
}

func (s *Server) handleGraphTikZ(w http.ResponseWriter, r *http.Request) {
	res := s.completedResult(w, r)
	if res == nil {
		return
	}
	w.Header().Set("Content-Type", "application/x-tex; charset=utf-8")
	w.Write([]byte(res.TikZ))
}

// handleReport renders the run's Markdown summary to HTML.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res := s.completedResult(w, r)
	if res == nil {
		return
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(res.Report), &buf); err != nil {
		jsonError(w, "report rendering failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
