package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/texgraph/internal/analysis"
	"github.com/dgallion1/texgraph/internal/texdoc"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks one queued analysis run. Options are fixed at submission; the
// result appears once the run completes.
type Job struct {
	mu sync.Mutex

	ID      string
	Options analysis.Options

	Status JobStatus
	Phase  string

	ErrKind texdoc.ErrorKind
	ErrMsg  string

	CreatedAt time.Time
	UpdatedAt time.Time

	result *analysis.Result
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail marks the job failed with the structured error surface the caller
// displays: taxonomy kind plus rendered message.
func (j *Job) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.ErrKind = texdoc.KindOf(err)
	j.ErrMsg = err.Error()
	j.UpdatedAt = time.Now()
}

// Complete stores the finished result.
func (j *Job) Complete(res *analysis.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusCompleted
	j.Phase = "done"
	j.result = res
	j.UpdatedAt = time.Now()
}

// Result returns the finished result, or nil while the job is pending or
// after a failure.
func (j *Job) Result() *analysis.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string           `json:"job_id"`
	Root       string           `json:"root"`
	Status     JobStatus        `json:"status"`
	Phase      string           `json:"phase"`
	Reduced    bool             `json:"reduced"`
	ErrKind    texdoc.ErrorKind `json:"error_kind,omitempty"`
	ErrMsg     string           `json:"error,omitempty"`
	Statements int              `json:"statements"`
	Edges      int              `json:"edges"`
	Cycles     [][]string       `json:"cycles,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := JobSnapshot{
		ID:      j.ID,
		Root:    j.Options.Root,
		Status:  j.Status,
		Phase:   j.Phase,
		Reduced: j.Options.Reduce,
		ErrKind: j.ErrKind,
		ErrMsg:  j.ErrMsg,
	}
	if j.result != nil {
		snap.Statements = j.result.Graph.Len()
		snap.Edges = len(j.result.Graph.Edges)
		snap.Cycles = j.result.Cycles
	}
	return snap
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		stale := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if stale {
			delete(s.jobs, id)
		}
	}
}
