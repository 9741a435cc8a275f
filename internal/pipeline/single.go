package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SearchResult reports an ad-hoc single-query run.
type SearchResult struct {
	Query             string               `json:"query"`
	Count             int                  `json:"count"`
	SkippedDuplicates int                  `json:"skipped_duplicates"`
	Leads             []model.EnrichedLead `json:"leads"`
}

// Search runs one ad-hoc query outside the job table: results are captured
// and deduplicated like a batch job, but no expansion jobs are enqueued and
// no job row is touched. Returned leads are the fresh ones only.
func (p *Pipeline) Search(ctx context.Context, profession, city, country string) (SearchResult, error) {
	if profession == "" || city == "" {
		return SearchResult{}, eris.New("pipeline: profession and city are required")
	}

	job := model.Job{Profession: profession, City: city, Country: country}
	out, err := p.runJob(ctx, job, false)
	if err != nil {
		return SearchResult{Query: job.Query()}, err
	}

	return SearchResult{
		Query:             job.Query(),
		Count:             out.saved,
		SkippedDuplicates: out.skipped,
		Leads:             out.fresh,
	}, nil
}
