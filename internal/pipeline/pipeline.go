// Package pipeline runs profession/location lead discovery: text search,
// concurrent enrichment, dedup against prior captures, and area expansion
// that feeds narrower follow-up jobs back into the job table.
package pipeline

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/jobstore"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/internal/scrape"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

const (
	defaultMaxCandidates = 60
	defaultMaxNewJobs    = 10
	defaultJobInterval   = time.Second
)

// ContactFinder extracts contact details from a lead's website.
type ContactFinder interface {
	Contacts(ctx context.Context, rawURL string) scrape.Contact
}

// Config tunes pipeline behavior.
type Config struct {
	// MaxCandidates caps how many search hits are enriched per job.
	MaxCandidates int

	// MaxNewJobs caps how many expansion jobs one job may enqueue.
	MaxNewJobs int

	// JobInterval throttles consecutive jobs within a batch.
	JobInterval time.Duration
}

// Pipeline wires the places client, contact scraper, and job store together.
type Pipeline struct {
	store    jobstore.Store
	places   places.Client
	contacts ContactFinder
	limiter  *rate.Limiter

	searchRetry resilience.RetryConfig
	detailRetry resilience.RetryConfig

	maxCandidates int
	maxNewJobs    int
}

// New creates a Pipeline. Zero config fields fall back to defaults.
func New(store jobstore.Store, placesClient places.Client, contacts ContactFinder, cfg Config) *Pipeline {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = defaultMaxCandidates
	}
	if cfg.MaxNewJobs <= 0 {
		cfg.MaxNewJobs = defaultMaxNewJobs
	}
	if cfg.JobInterval <= 0 {
		cfg.JobInterval = defaultJobInterval
	}

	searchRetry := resilience.DefaultRetryConfig()
	searchRetry.OnRetry = resilience.RetryLogger("places", "search")
	detailRetry := resilience.DefaultRetryConfig()
	detailRetry.OnRetry = resilience.RetryLogger("places", "details")

	return &Pipeline{
		store:         store,
		places:        placesClient,
		contacts:      contacts,
		limiter:       rate.NewLimiter(rate.Every(cfg.JobInterval), 1),
		searchRetry:   searchRetry,
		detailRetry:   detailRetry,
		maxCandidates: cfg.MaxCandidates,
		maxNewJobs:    cfg.MaxNewJobs,
	}
}
