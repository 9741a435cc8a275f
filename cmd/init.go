package main

import (
	"context"
	"os"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/jobstore"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/scrape"
	"github.com/sells-group/leadgen-cli/pkg/notion"
	"github.com/sells-group/leadgen-cli/pkg/places"
	sfpkg "github.com/sells-group/leadgen-cli/pkg/salesforce"
)

// pipelineEnv holds the initialized store, clients, and pipeline used by the
// batch/search/serve commands.
type pipelineEnv struct {
	Store    jobstore.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (jobstore.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "leadgen.db"
		}
		return jobstore.NewSQLite(path)
	case "postgres":
		return jobstore.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "notion":
		client := notion.NewClient(cfg.Notion.Token)
		return jobstore.NewNotion(client, cfg.Notion.JobsDB, cfg.Notion.ResultsDB), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store and API clients and builds the Pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	placesClient := places.NewClient(cfg.Places.Key,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithPageDelay(time.Duration(cfg.Places.PageDelaySecs)*time.Second),
	)

	scraper := scrape.New(
		time.Duration(cfg.Scrape.TimeoutSecs)*time.Second,
		cfg.Scrape.UserAgent,
	)

	p := pipeline.New(st, placesClient, scraper, pipeline.Config{
		MaxCandidates: cfg.Batch.MaxCandidates,
		MaxNewJobs:    cfg.Batch.MaxNewJobs,
		JobInterval:   time.Duration(cfg.Batch.JobIntervalSecs) * time.Second,
	})

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}

func initSalesforce() (sfpkg.Client, error) {
	if err := cfg.ValidateSalesforce(); err != nil {
		return nil, err
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}
