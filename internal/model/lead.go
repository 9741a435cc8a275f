package model

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// JobStatus represents the lifecycle state of a search job.
type JobStatus string

const (
	// JobStatusEmpty marks a freshly authored row that has never run.
	JobStatusEmpty   JobStatus = ""
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusDone    JobStatus = "DONE"
	JobStatusFailed  JobStatus = "FAILED"
)

// ParseJobStatus normalizes a raw status cell into a JobStatus.
func ParseJobStatus(s string) JobStatus {
	return JobStatus(strings.ToUpper(strings.TrimSpace(s)))
}

// Job is one profession+location search task. Row is the store-assigned
// opaque handle used for in-place status updates; it is never interpreted
// by the pipeline.
type Job struct {
	Row        string     `json:"row"`
	Profession string     `json:"profession"`
	City       string     `json:"city"`
	Country    string     `json:"country,omitempty"`
	Status     JobStatus  `json:"status"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	Note       string     `json:"note,omitempty"`
}

// keyFolder performs Unicode case folding for job identity comparison.
var keyFolder = cases.Fold()

// Key returns the normalized logical identity of the job: the folded,
// trimmed (profession, city, country) triple. Two jobs with equal keys are
// duplicates regardless of row handle.
func (j Job) Key() string {
	return JobKey(j.Profession, j.City, j.Country)
}

// JobKey builds the normalized job identity key from its parts.
func JobKey(profession, city, country string) string {
	return fmt.Sprintf("%s|%s|%s",
		keyFolder.String(strings.TrimSpace(profession)),
		keyFolder.String(strings.TrimSpace(city)),
		keyFolder.String(strings.TrimSpace(country)),
	)
}

// Query builds the provider text query for the job.
func (j Job) Query() string {
	if j.Country != "" {
		return fmt.Sprintf("%s in %s, %s", j.Profession, j.City, j.Country)
	}
	return fmt.Sprintf("%s in %s", j.Profession, j.City)
}

// Runnable reports whether the job qualifies for a batch pass: both
// profession and city present, and status queued or never run.
func (j Job) Runnable() bool {
	return j.Profession != "" && j.City != "" &&
		(j.Status == JobStatusQueued || j.Status == JobStatusEmpty)
}

// EnrichedLead merges a raw search hit with its detail lookup and website
// scrape.
// Detail-lookup values win over candidate values; missing fields stay empty.
type EnrichedLead struct {
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Phone    string  `json:"phone"`
	Website  string  `json:"website"`
	MapsURL  string  `json:"maps_url"`
	PlaceID  string  `json:"place_id"`
	Rating   float64 `json:"rating"`
	Email    string  `json:"email"`
	Facebook string  `json:"facebook"`
}

// ResultSource identifies the provider that produced a persisted result row.
const ResultSource = "google_places"

// ResultRow is an EnrichedLead as persisted to the RESULTS table, stamped
// with the originating job query and capture time. PlaceID is the sole
// dedup key: no two persisted rows may share a non-empty PlaceID.
type ResultRow struct {
	Profession string       `json:"profession"`
	City       string       `json:"city"`
	Country    string       `json:"country,omitempty"`
	Lead       EnrichedLead `json:"lead"`
	Source     string       `json:"source"`
	CapturedAt time.Time    `json:"captured_at"`
}

// NewResultRow stamps a lead with its job context.
func NewResultRow(job Job, lead EnrichedLead, capturedAt time.Time) ResultRow {
	return ResultRow{
		Profession: job.Profession,
		City:       job.City,
		Country:    job.Country,
		Lead:       lead,
		Source:     ResultSource,
		CapturedAt: capturedAt,
	}
}
