package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/jobstore"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/scrape"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

// fakeStore is an in-memory jobstore.Store with error injection hooks.
type fakeStore struct {
	mu      sync.Mutex
	jobs    []model.Job
	results []model.ResultRow
	nextRow int

	readJobsErr    error
	appendJobsErr  error
	updateJobErr   error
	readIDsErr     error
	appendResErr   error
	failUpdateRows map[string]error
}

var _ jobstore.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{failUpdateRows: make(map[string]error)}
}

func (s *fakeStore) addJob(j model.Job) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRow++
	j.Row = fmt.Sprintf("row-%d", s.nextRow)
	s.jobs = append(s.jobs, j)
	return j.Row
}

func (s *fakeStore) ReadJobs(context.Context) ([]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readJobsErr != nil {
		return nil, s.readJobsErr
	}
	out := make([]model.Job, len(s.jobs))
	copy(out, s.jobs)
	return out, nil
}

func (s *fakeStore) AppendJobs(_ context.Context, jobs []model.Job) error {
	if s.appendJobsErr != nil {
		return s.appendJobsErr
	}
	for _, j := range jobs {
		s.addJob(j)
	}
	return nil
}

func (s *fakeStore) UpdateJob(_ context.Context, row string, status model.JobStatus, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateJobErr != nil {
		return s.updateJobErr
	}
	if err, ok := s.failUpdateRows[row]; ok {
		return err
	}
	for i := range s.jobs {
		if s.jobs[i].Row == row {
			now := time.Now().UTC()
			s.jobs[i].Status = status
			s.jobs[i].Note = note
			s.jobs[i].LastRun = &now
			return nil
		}
	}
	return eris.Errorf("job %s not found", row)
}

func (s *fakeStore) ReadExistingPlaceIDs(context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readIDsErr != nil {
		return nil, s.readIDsErr
	}
	ids := make(map[string]struct{})
	for _, r := range s.results {
		if r.Lead.PlaceID != "" {
			ids[r.Lead.PlaceID] = struct{}{}
		}
	}
	return ids, nil
}

func (s *fakeStore) AppendResults(_ context.Context, rows []model.ResultRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendResErr != nil {
		return s.appendResErr
	}
	s.results = append(s.results, rows...)
	return nil
}

func (s *fakeStore) ReadResults(context.Context) ([]model.ResultRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ResultRow, len(s.results))
	copy(out, s.results)
	return out, nil
}

func (s *fakeStore) Migrate(context.Context) error { return nil }
func (s *fakeStore) Close() error                  { return nil }

func (s *fakeStore) jobByRow(row string) (model.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.Row == row {
			return j, true
		}
	}
	return model.Job{}, false
}

// fakePlaces maps queries to candidates and place IDs to details.
type fakePlaces struct {
	mu            sync.Mutex
	searches      map[string][]places.Place
	details       map[string]*places.PlaceDetails
	searchErr     map[string]error
	searchErrOnce map[string]error
	detailsErr    map[string]error
	searchCalls   []string
}

var _ places.Client = (*fakePlaces)(nil)

func newFakePlaces() *fakePlaces {
	return &fakePlaces{
		searches:      make(map[string][]places.Place),
		details:       make(map[string]*places.PlaceDetails),
		searchErr:     make(map[string]error),
		searchErrOnce: make(map[string]error),
		detailsErr:    make(map[string]error),
	}
}

func (f *fakePlaces) TextSearch(_ context.Context, query string) ([]places.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, query)
	if err, ok := f.searchErrOnce[query]; ok {
		delete(f.searchErrOnce, query)
		return nil, err
	}
	if err, ok := f.searchErr[query]; ok {
		return nil, err
	}
	return f.searches[query], nil
}

func (f *fakePlaces) Details(_ context.Context, placeID string) (*places.PlaceDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.detailsErr[placeID]; ok {
		return nil, err
	}
	if d, ok := f.details[placeID]; ok {
		return d, nil
	}
	return nil, eris.Errorf("places: details status NOT_FOUND for %s", placeID)
}

// fakeContacts maps websites to contact details.
type fakeContacts struct {
	contacts map[string]scrape.Contact
	calls    []string
	mu       sync.Mutex
}

var _ ContactFinder = (*fakeContacts)(nil)

func newFakeContacts() *fakeContacts {
	return &fakeContacts{contacts: make(map[string]scrape.Contact)}
}

func (f *fakeContacts) Contacts(_ context.Context, rawURL string) scrape.Contact {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rawURL)
	return f.contacts[rawURL]
}

// fastConfig keeps batch throttling out of test runtime.
func fastConfig() Config {
	return Config{JobInterval: time.Microsecond}
}

func newTestPipeline(store *fakeStore, fp *fakePlaces, fc *fakeContacts) *Pipeline {
	p := New(store, fp, fc, fastConfig())
	// No backoff sleeps in tests.
	p.searchRetry.MaxAttempts = 1
	p.detailRetry.MaxAttempts = 1
	return p
}
