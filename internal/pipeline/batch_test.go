package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

func queuedJob(profession, city, country string) model.Job {
	return model.Job{Profession: profession, City: city, Country: country, Status: model.JobStatusQueued}
}

func TestRunBatch_NoQueuedRows(t *testing.T) {
	store := newFakeStore()
	store.addJob(model.Job{Profession: "Electrician", City: "Cebu City", Status: model.JobStatusDone})

	p := newTestPipeline(store, newFakePlaces(), newFakeContacts())
	res, err := p.RunBatch(context.Background(), 5)
	require.NoError(t, err)
	assert.Zero(t, res.Processed)
	assert.Zero(t, res.TotalQueued)
	assert.Equal(t, "No queued rows", res.Message)
}

func TestRunBatch_ProcessesFIFOUpToLimit(t *testing.T) {
	store := newFakeStore()
	fp := newFakePlaces()
	rows := []string{
		store.addJob(queuedJob("Electrician", "City1", "")),
		store.addJob(queuedJob("Electrician", "City2", "")),
		store.addJob(queuedJob("Electrician", "City3", "")),
	}
	fp.searches["Electrician in City1"] = []places.Place{{PlaceID: "p1", Name: "A"}}
	fp.details["p1"] = &places.PlaceDetails{Name: "A"}

	p := newTestPipeline(store, fp, newFakeContacts())
	res, err := p.RunBatch(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 3, res.TotalQueued)
	assert.Equal(t, []string{"Electrician in City1", "Electrician in City2"}, fp.searchCalls)

	j1, _ := store.jobByRow(rows[0])
	j2, _ := store.jobByRow(rows[1])
	j3, _ := store.jobByRow(rows[2])
	assert.Equal(t, model.JobStatusDone, j1.Status)
	assert.Equal(t, "Saved 1 new (deduped), added 0 jobs", j1.Note)
	assert.Equal(t, model.JobStatusDone, j2.Status)
	assert.Equal(t, model.JobStatusQueued, j3.Status, "third job untouched this pass")
}

func TestRunBatch_EmptyStatusRowsAreRunnable(t *testing.T) {
	store := newFakeStore()
	store.addJob(model.Job{Profession: "Electrician", City: "Cebu City"})

	p := newTestPipeline(store, newFakePlaces(), newFakeContacts())
	res, err := p.RunBatch(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.TotalQueued)
}

func TestRunBatch_FailedJobDoesNotAbortBatch(t *testing.T) {
	store := newFakeStore()
	fp := newFakePlaces()
	rows := []string{
		store.addJob(queuedJob("Electrician", "Broken", "")),
		store.addJob(queuedJob("Electrician", "Fine", "")),
	}
	fp.searchErr["Electrician in Broken"] = eris.New("places: unexpected status 500")
	fp.searches["Electrician in Fine"] = []places.Place{{PlaceID: "p1", Name: "A"}}
	fp.details["p1"] = &places.PlaceDetails{Name: "A"}

	p := newTestPipeline(store, fp, newFakeContacts())
	res, err := p.RunBatch(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed, "only the job that reached DONE counts")
	assert.Equal(t, 2, res.TotalQueued)

	j1, _ := store.jobByRow(rows[0])
	assert.Equal(t, model.JobStatusFailed, j1.Status)
	assert.Contains(t, j1.Note, "status 500")

	j2, _ := store.jobByRow(rows[1])
	assert.Equal(t, model.JobStatusDone, j2.Status)
}

func TestRunBatch_AllFailedReportsZeroProcessed(t *testing.T) {
	store := newFakeStore()
	fp := newFakePlaces()
	row := store.addJob(queuedJob("Electrician", "Broken", ""))
	fp.searchErr["Electrician in Broken"] = eris.New("places: unexpected status 500")

	p := newTestPipeline(store, fp, newFakeContacts())
	res, err := p.RunBatch(context.Background(), 5)
	require.NoError(t, err)
	assert.Zero(t, res.Processed)
	assert.Equal(t, 1, res.TotalQueued)

	j, _ := store.jobByRow(row)
	assert.Equal(t, model.JobStatusFailed, j.Status)
}

func TestRunBatch_RetriesTransientSearchFailure(t *testing.T) {
	store := newFakeStore()
	fp := newFakePlaces()
	row := store.addJob(queuedJob("Electrician", "Cebu City", ""))
	fp.searchErrOnce["Electrician in Cebu City"] = eris.New("places: unexpected status 503")
	fp.searches["Electrician in Cebu City"] = []places.Place{{PlaceID: "p1", Name: "A"}}
	fp.details["p1"] = &places.PlaceDetails{Name: "A"}

	p := newTestPipeline(store, fp, newFakeContacts())
	p.searchRetry.MaxAttempts = 2
	p.searchRetry.InitialBackoff = time.Microsecond

	res, err := p.RunBatch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Len(t, fp.searchCalls, 2, "first attempt fails, retry succeeds")

	j, _ := store.jobByRow(row)
	assert.Equal(t, model.JobStatusDone, j.Status)
}

func TestRunBatch_ExpansionFailureLeavesResultsUnpersisted(t *testing.T) {
	store := newFakeStore()
	fp := newFakePlaces()
	row := store.addJob(queuedJob("Electrician", "Cebu City", ""))
	fp.searches["Electrician in Cebu City"] = []places.Place{{PlaceID: "p1", Name: "A"}}
	fp.details["p1"] = &places.PlaceDetails{Name: "A", FormattedAddress: "Lahug, Cebu City"}
	store.appendJobsErr = eris.New("store gone")

	p := newTestPipeline(store, fp, newFakeContacts())
	res, err := p.RunBatch(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, res.Processed)

	j, _ := store.jobByRow(row)
	assert.Equal(t, model.JobStatusFailed, j.Status)

	results, rerr := store.ReadResults(context.Background())
	require.NoError(t, rerr)
	assert.Empty(t, results, "nothing captured when follow-up enqueue fails")
}

func TestRunBatch_MarkRunningFailureAbortsBatch(t *testing.T) {
	store := newFakeStore()
	row := store.addJob(queuedJob("Electrician", "Cebu City", ""))
	store.addJob(queuedJob("Electrician", "Davao", ""))
	store.failUpdateRows[row] = eris.New("store gone")

	p := newTestPipeline(store, newFakePlaces(), newFakeContacts())
	_, err := p.RunBatch(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mark job")
}

func TestRunBatch_LimitFloorsToOne(t *testing.T) {
	store := newFakeStore()
	store.addJob(queuedJob("Electrician", "City1", ""))
	store.addJob(queuedJob("Electrician", "City2", ""))

	p := newTestPipeline(store, newFakePlaces(), newFakeContacts())
	res, err := p.RunBatch(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 2, res.TotalQueued)
}

func TestRunBatch_ExpansionEnqueuesFollowUpJobs(t *testing.T) {
	store := newFakeStore()
	fp := newFakePlaces()
	store.addJob(queuedJob("Electrician", "Cebu City", "Philippines"))
	fp.searches["Electrician in Cebu City, Philippines"] = []places.Place{
		{PlaceID: "p1", Name: "A"},
		{PlaceID: "p2", Name: "B"},
	}
	fp.details["p1"] = &places.PlaceDetails{Name: "A", FormattedAddress: "Lahug, Cebu City"}
	fp.details["p2"] = &places.PlaceDetails{Name: "B", FormattedAddress: "Banilad, Cebu City"}

	p := newTestPipeline(store, fp, newFakeContacts())
	res, err := p.RunBatch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)

	jobs, err := store.ReadJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, model.JobStatusDone, jobs[0].Status)
	assert.Equal(t, "Saved 2 new (deduped), added 2 jobs", jobs[0].Note)
	assert.Equal(t, "Lahug, Cebu City", jobs[1].City)
	assert.Equal(t, "Banilad, Cebu City", jobs[2].City)
	assert.Equal(t, model.JobStatusQueued, jobs[1].Status)
	assert.Equal(t, expansionNote, jobs[1].Note)
}

func TestRunBatch_ExpansionSkipsExistingJobKeys(t *testing.T) {
	store := newFakeStore()
	fp := newFakePlaces()
	store.addJob(queuedJob("Electrician", "Cebu City", ""))
	// Already authored, differently cased: key match must still hit.
	store.addJob(model.Job{Profession: "electrician", City: "LAHUG, cebu city", Status: model.JobStatusDone})

	fp.searches["Electrician in Cebu City"] = []places.Place{{PlaceID: "p1", Name: "A"}}
	fp.details["p1"] = &places.PlaceDetails{Name: "A", FormattedAddress: "Lahug, Cebu City"}

	p := newTestPipeline(store, fp, newFakeContacts())
	_, err := p.RunBatch(context.Background(), 1)
	require.NoError(t, err)

	jobs, _ := store.ReadJobs(context.Background())
	assert.Len(t, jobs, 2, "no duplicate expansion job added")
}

func TestRunBatch_DedupesAgainstPriorCaptures(t *testing.T) {
	store := newFakeStore()
	fp := newFakePlaces()
	job := model.Job{Profession: "Electrician", City: "Cebu City"}
	store.results = append(store.results, model.NewResultRow(job, model.EnrichedLead{Name: "Old", PlaceID: "p1"}, time.Now().UTC()))

	store.addJob(queuedJob("Electrician", "Cebu City", ""))
	fp.searches["Electrician in Cebu City"] = []places.Place{
		{PlaceID: "p1", Name: "Old again"},
		{PlaceID: "p2", Name: "New"},
	}
	fp.details["p1"] = &places.PlaceDetails{Name: "Old again"}
	fp.details["p2"] = &places.PlaceDetails{Name: "New"}

	p := newTestPipeline(store, fp, newFakeContacts())
	_, err := p.RunBatch(context.Background(), 1)
	require.NoError(t, err)

	results, _ := store.ReadResults(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, "New", results[1].Lead.Name)

	jobs, _ := store.ReadJobs(context.Background())
	assert.Equal(t, "Saved 1 new (deduped), added 0 jobs", jobs[0].Note)
}

func TestRunBatch_ReadJobsErrorIsStructural(t *testing.T) {
	store := newFakeStore()
	store.readJobsErr = eris.New("store down")

	p := newTestPipeline(store, newFakePlaces(), newFakeContacts())
	_, err := p.RunBatch(context.Background(), 5)
	require.Error(t, err)
}
