// Package jobstore persists search jobs (the INPUT table) and captured leads
// (the RESULTS table) behind a tabular, row-addressable contract.
package jobstore

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Store defines the job store contract. Jobs are returned in stable row
// order (FIFO authoring order); each job carries an opaque row handle used
// for in-place status updates. The store owns all durable state — callers
// never cache reads across batch passes.
type Store interface {
	// ReadJobs returns every job row in authoring order.
	ReadJobs(ctx context.Context) ([]model.Job, error)

	// AppendJobs adds new job rows after the existing ones.
	AppendJobs(ctx context.Context, jobs []model.Job) error

	// UpdateJob sets status and note on the row identified by the opaque
	// handle and stamps its last-run timestamp.
	UpdateJob(ctx context.Context, row string, status model.JobStatus, note string) error

	// ReadExistingPlaceIDs returns the set of non-empty place IDs already
	// present in RESULTS. This is the sole dedup source.
	ReadExistingPlaceIDs(ctx context.Context) (map[string]struct{}, error)

	// AppendResults adds captured lead rows to RESULTS.
	AppendResults(ctx context.Context, rows []model.ResultRow) error

	// ReadResults returns every captured lead row in capture order.
	ReadResults(ctx context.Context) ([]model.ResultRow, error)

	// Migrate creates or upgrades the backing tables where applicable.
	Migrate(ctx context.Context) error

	Close() error
}
