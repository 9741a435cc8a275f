package pipeline

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// BatchResult reports one batch pass over the job table.
type BatchResult struct {
	Processed   int    `json:"processed"`
	TotalQueued int    `json:"total_queued"`
	Message     string `json:"message,omitempty"`
}

// RunBatch reads the job table and processes up to limit runnable jobs in
// authoring order, one at a time. Individual job failures mark the row
// FAILED and the batch moves on; only structural store errors abort the
// pass. Processed counts jobs that reached DONE; TotalQueued reports the
// full runnable backlog, not just the slice processed this pass.
func (p *Pipeline) RunBatch(ctx context.Context, limit int) (BatchResult, error) {
	if limit < 1 {
		limit = 1
	}

	jobs, err := p.store.ReadJobs(ctx)
	if err != nil {
		return BatchResult{}, eris.Wrap(err, "pipeline: read jobs")
	}

	var queued []model.Job
	for _, j := range jobs {
		if j.Runnable() {
			queued = append(queued, j)
		}
	}
	if len(queued) == 0 {
		return BatchResult{Message: "No queued rows"}, nil
	}

	result := BatchResult{TotalQueued: len(queued)}
	if len(queued) > limit {
		queued = queued[:limit]
	}

	for _, job := range queued {
		if err := p.limiter.Wait(ctx); err != nil {
			return result, eris.Wrap(err, "pipeline: batch throttle")
		}

		// A row we cannot mark RUNNING means the store itself is broken,
		// so the whole pass stops rather than double-running rows later.
		if err := p.store.UpdateJob(ctx, job.Row, model.JobStatusRunning, "Starting..."); err != nil {
			return result, eris.Wrapf(err, "pipeline: mark job %s running", job.Row)
		}

		out, err := p.runJob(ctx, job, true)
		if err != nil {
			zap.L().Warn("job failed",
				zap.String("query", job.Query()),
				zap.Error(err),
			)
			if uerr := p.store.UpdateJob(ctx, job.Row, model.JobStatusFailed, err.Error()); uerr != nil {
				return result, eris.Wrapf(uerr, "pipeline: mark job %s failed", job.Row)
			}
			continue
		}

		note := fmt.Sprintf("Saved %d new (deduped), added %d jobs", out.saved, out.added)
		if err := p.store.UpdateJob(ctx, job.Row, model.JobStatusDone, note); err != nil {
			return result, eris.Wrapf(err, "pipeline: mark job %s done", job.Row)
		}
		result.Processed++
	}

	return result, nil
}
