package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/texgraph/internal/analysis"
)

// Worker runs queued analysis jobs one at a time. Each run owns its own
// resolver/scanner/builder state, so workers never share anything mutable.
type Worker struct {
	log *slog.Logger
}

func NewWorker(log *slog.Logger) *Worker {
	return &Worker{log: log}
}

// Process runs the full analysis pipeline for a job. The run itself is
// synchronous; ctx only gates whether the worker starts it at all.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "root", job.Options.Root)

	if ctx.Err() != nil {
		job.Fail(ctx.Err())
		return
	}

	opts := job.Options
	opts.OnPhase = func(phase string) {
		job.SetStatus(StatusRunning, phase)
		log.Debug("phase", "phase", phase)
	}

	res, err := analysis.Run(opts)
	if err != nil {
		log.Error("analysis failed", "error", err)
		job.Fail(err)
		return
	}

	job.Complete(res)
	log.Info("analysis complete",
		"statements", res.Graph.Len(),
		"edges", len(res.Graph.Edges),
		"cycles", len(res.Cycles),
	)
}
