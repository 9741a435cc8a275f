package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

// jobOutcome summarizes a single job pass.
type jobOutcome struct {
	saved   int
	added   int
	skipped int
	leads   []model.EnrichedLead
	fresh   []model.EnrichedLead
}

// runJob executes the full pipeline for one job: search, enrich, dedupe
// against the freshly-read capture set, (optionally) enqueue expansion jobs
// for areas observed in the results, then persist the fresh leads.
func (p *Pipeline) runJob(ctx context.Context, job model.Job, expand bool) (jobOutcome, error) {
	var out jobOutcome

	query := job.Query()
	candidates, err := resilience.DoVal(ctx, p.searchRetry, func(ctx context.Context) ([]places.Place, error) {
		return p.places.TextSearch(ctx, query)
	})
	if err != nil {
		return out, eris.Wrapf(err, "pipeline: search %q", query)
	}

	leads := p.enrich(ctx, candidates)
	out.leads = leads

	existing, err := p.store.ReadExistingPlaceIDs(ctx)
	if err != nil {
		return out, eris.Wrap(err, "pipeline: read existing place ids")
	}

	fresh, skipped := dedupe(leads, existing)
	out.fresh = fresh
	out.skipped = skipped

	// Follow-up jobs go in before results so a failed enqueue leaves the
	// capture set untouched.
	if expand {
		added, err := p.expandJob(ctx, job, leads)
		if err != nil {
			return out, err
		}
		out.added = added
	}

	capturedAt := time.Now().UTC()
	rows := make([]model.ResultRow, 0, len(fresh))
	for _, lead := range fresh {
		rows = append(rows, model.NewResultRow(job, lead, capturedAt))
	}
	if err := p.store.AppendResults(ctx, rows); err != nil {
		return out, eris.Wrap(err, "pipeline: append results")
	}
	out.saved = len(rows)

	zap.L().Info("job finished",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
		zap.Int("saved", out.saved),
		zap.Int("skipped", out.skipped),
		zap.Int("added", out.added),
	)
	return out, nil
}

// expandJob enqueues follow-up jobs for new areas. Known keys are re-read
// from the store so concurrent authoring between jobs is respected.
func (p *Pipeline) expandJob(ctx context.Context, job model.Job, leads []model.EnrichedLead) (int, error) {
	all, err := p.store.ReadJobs(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read jobs for expansion")
	}
	knownKeys := make(map[string]struct{}, len(all))
	for _, j := range all {
		knownKeys[j.Key()] = struct{}{}
	}

	newJobs := expandAreas(job, leads, knownKeys, p.maxNewJobs)
	if len(newJobs) == 0 {
		return 0, nil
	}
	if err := p.store.AppendJobs(ctx, newJobs); err != nil {
		return 0, eris.Wrap(err, "pipeline: append expansion jobs")
	}
	return len(newJobs), nil
}
