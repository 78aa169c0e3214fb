package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dgallion1/texgraph/internal/category"
	"github.com/dgallion1/texgraph/internal/config"
	"github.com/dgallion1/texgraph/internal/pipeline"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	src := `\chapter{Rings}
\begin{definition}\label{def:ring}\end{definition}
\begin{lemma}\label{lem:unit}\uses{def:ring}\end{lemma}
\begin{theorem}\label{thm:unit}\uses{lem:unit}\end{theorem}
\begin{proof}\uses{def:ring}\end{proof}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tex"), []byte(src), 0o644))

	cfg := config.Config{
		Port:         "0",
		APIKey:       testAPIKey,
		ProjectDir:   dir,
		WorkerCount:  1,
		MaxQueueSize: 4,
		JobTTL:       time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	orch := pipeline.NewOrchestrator(cfg, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	ts := httptest.NewServer(NewServer(orch, category.Default(), log, cfg))
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, method, url string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

// startAnalysis submits a job and waits for it to finish.
func startAnalysis(t *testing.T, ts *httptest.Server, reqBody string) string {
	t.Helper()
	resp := doRequest(t, http.MethodPost, ts.URL+"/api/analyze", []byte(reqBody))
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var accepted struct {
		JobID   string `json:"job_id"`
		Status  string `json:"status"`
		PollURL string `json:"poll_url"`
	}
	decodeJSON(t, resp, &accepted)
	require.NotEmpty(t, accepted.JobID)
	require.Equal(t, "/api/analyze/"+accepted.JobID+"/status", accepted.PollURL)

	require.Eventually(t, func() bool {
		req, err := http.NewRequest(http.MethodGet, ts.URL+accepted.PollURL, nil)
		if err != nil {
			return false
		}
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var snap pipeline.JobSnapshot
		if json.NewDecoder(resp.Body).Decode(&snap) != nil {
			return false
		}
		return snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed
	}, 5*time.Second, 10*time.Millisecond)
	return accepted.JobID
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/categories")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Equal(t, "missing bearer token", body["error"])

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/categories", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	decodeJSON(t, resp, &body)
	assert.Equal(t, "invalid api key", body["error"])
}

func TestAnalyzeFlow(t *testing.T) {
	ts := newTestServer(t)
	jobID := startAnalysis(t, ts, `{"root":"main.tex"}`)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/analyze/"+jobID+"/status", nil)
	var snap pipeline.JobSnapshot
	decodeJSON(t, resp, &snap)
	require.Equal(t, pipeline.StatusCompleted, snap.Status)
	assert.Equal(t, 3, snap.Statements)
	// The proof's def:ring dependency is redundant through lem:unit.
	assert.Equal(t, 2, snap.Edges)
	assert.True(t, snap.Reduced)

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/analyze/"+jobID+"/graph.dot", nil)
	dot, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "text/vnd.graphviz; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(dot), "digraph dependencies")
	assert.Contains(t, string(dot), `"def:ring" -> "lem:unit"`)
	assert.NotContains(t, string(dot), `"def:ring" -> "thm:unit"`)

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/analyze/"+jobID+"/graph.tex", nil)
	tikz, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "application/x-tex; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(tikz), `\begin{tikzpicture}`)
}

func TestAnalyzeNonreduced(t *testing.T) {
	ts := newTestServer(t)
	jobID := startAnalysis(t, ts, `{"root":"main.tex","reduce":false}`)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/analyze/"+jobID+"/status", nil)
	var snap pipeline.JobSnapshot
	decodeJSON(t, resp, &snap)
	require.Equal(t, pipeline.StatusCompleted, snap.Status)
	assert.Equal(t, 3, snap.Edges)
	assert.False(t, snap.Reduced)
}

func TestAnalyzeFailureSurfacesErrorKind(t *testing.T) {
	ts := newTestServer(t)
	jobID := startAnalysis(t, ts, `{"root":"absent.tex"}`)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/analyze/"+jobID+"/status", nil)
	var snap pipeline.JobSnapshot
	decodeJSON(t, resp, &snap)
	assert.Equal(t, pipeline.StatusFailed, snap.Status)
	assert.Equal(t, "missing_file", string(snap.ErrKind))

	// Artifacts of a failed job answer 409 with the failure message.
	resp = doRequest(t, http.MethodGet, ts.URL+"/api/analyze/"+jobID+"/graph.dot", nil)
	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "missing_file")
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"empty root", `{}`},
		{"escaping root", `{"root":"../../etc/passwd"}`},
		{"malformed json", `{"root":`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := doRequest(t, http.MethodPost, ts.URL+"/api/analyze", []byte(c.body))
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestUnknownJob(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/status", "/graph.dot", "/graph.tex", "/report"} {
		resp := doRequest(t, http.MethodGet, ts.URL+"/api/analyze/nope"+path, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestReportRendersHTML(t *testing.T) {
	ts := newTestServer(t)
	jobID := startAnalysis(t, ts, `{"root":"main.tex"}`)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/analyze/"+jobID+"/report", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	doc, err := html.Parse(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "Dependency analysis", textOf(findElement(doc, "h1")))
	require.NotNil(t, findElement(doc, "table"), "category table should render as an HTML table")
}

func TestCategoriesLegend(t *testing.T) {
	ts := newTestServer(t)
	resp := doRequest(t, http.MethodGet, ts.URL+"/api/categories", nil)

	var legend struct {
		Categories []struct {
			Kind    category.Kind  `json:"kind"`
			Aliases []string       `json:"aliases"`
			Style   category.Style `json:"style"`
		} `json:"categories"`
	}
	decodeJSON(t, resp, &legend)

	require.Len(t, legend.Categories, 8)
	assert.Equal(t, category.Definition, legend.Categories[0].Kind)
	assert.Contains(t, legend.Categories[1].Aliases, "thm")
	assert.Equal(t, "doublecircle", legend.Categories[1].Style.Shape)
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
