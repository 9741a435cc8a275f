package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config.yaml present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leadgen.db", cfg.Store.Path)
	assert.Equal(t, "https://maps.googleapis.com/maps/api/place", cfg.Places.BaseURL)
	assert.Equal(t, 2, cfg.Places.PageDelaySecs)
	assert.Equal(t, 8, cfg.Scrape.TimeoutSecs)
	assert.Equal(t, "Mozilla/5.0", cfg.Scrape.UserAgent)
	assert.Equal(t, 5, cfg.Batch.Limit)
	assert.Equal(t, 1, cfg.Batch.JobIntervalSecs)
	assert.Equal(t, 60, cfg.Batch.MaxCandidates)
	assert.Equal(t, 10, cfg.Batch.MaxNewJobs)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEADGEN_PLACES_KEY", "env-key")
	t.Setenv("LEADGEN_BATCH_LIMIT", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Places.Key)
	assert.Equal(t, 3, cfg.Batch.Limit)
}

func TestValidate_MissingPlacesKey(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "sqlite", Path: "x.db"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "places API key")
}

func TestValidate_Drivers(t *testing.T) {
	cfg := &Config{
		Places: PlacesConfig{Key: "k"},
		Store:  StoreConfig{Driver: "postgres"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL")

	cfg.Store = StoreConfig{Driver: "notion"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion")

	cfg.Store = StoreConfig{Driver: "dynamo"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")

	cfg.Store = StoreConfig{Driver: "sqlite", Path: "leads.db"}
	assert.NoError(t, cfg.Validate())
}

func TestValidateSalesforce(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.ValidateSalesforce())

	cfg.Salesforce = SalesforceConfig{ClientID: "id", Username: "u", KeyPath: "key.pem"}
	assert.NoError(t, cfg.ValidateSalesforce())
}
