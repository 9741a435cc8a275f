package jobstore

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/notion"
)

// Notion property names for the jobs database.
const (
	propProfession = "Profession"
	propCity       = "City"
	propCountry    = "Country"
	propStatus     = "Status"
	propLastRun    = "Last Run"
	propNote       = "Note"
)

// Notion property names for the results database.
const (
	propName       = "Name"
	propPhone      = "Phone"
	propEmail      = "Email"
	propWebsite    = "Website"
	propFacebook   = "Facebook"
	propAddress    = "Address"
	propMapsURL    = "Maps URL"
	propRating     = "Rating"
	propSource     = "Source"
	propCapturedAt = "Captured At"
	propPlaceID    = "Place ID"
)

// NotionStore implements Store on top of two Notion databases: one holding
// job rows and one holding captured leads. Page IDs serve as row handles.
// Schema lives in Notion, so Migrate only verifies both databases respond.
type NotionStore struct {
	client    notion.Client
	jobsDB    string
	resultsDB string
}

// NewNotion creates a NotionStore over the given databases.
func NewNotion(client notion.Client, jobsDB, resultsDB string) *NotionStore {
	return &NotionStore{client: client, jobsDB: jobsDB, resultsDB: resultsDB}
}

// createdAscending orders query results by page creation time, matching the
// authoring order of a spreadsheet-style table.
func createdAscending() *notionapi.DatabaseQueryRequest {
	return &notionapi.DatabaseQueryRequest{
		Sorts: []notionapi.SortObject{
			{Timestamp: notionapi.TimestampCreated, Direction: notionapi.SortOrderASC},
		},
	}
}

func (s *NotionStore) Migrate(ctx context.Context) error {
	for _, dbID := range []string{s.jobsDB, s.resultsDB} {
		req := &notionapi.DatabaseQueryRequest{PageSize: 1}
		if _, err := s.client.QueryDatabase(ctx, dbID, req); err != nil {
			return eris.Wrapf(err, "notion store: verify database %s", dbID)
		}
	}
	return nil
}

func (s *NotionStore) Close() error {
	return nil
}

func (s *NotionStore) ReadJobs(ctx context.Context) ([]model.Job, error) {
	pages, err := notion.QueryAll(ctx, s.client, s.jobsDB, createdAscending())
	if err != nil {
		return nil, eris.Wrap(err, "notion store: read jobs")
	}

	jobs := make([]model.Job, 0, len(pages))
	for _, p := range pages {
		jobs = append(jobs, model.Job{
			Row:        string(p.ID),
			Profession: notion.TitleValue(p.Properties, propProfession),
			City:       notion.TextValue(p.Properties, propCity),
			Country:    notion.TextValue(p.Properties, propCountry),
			Status:     model.ParseJobStatus(notion.SelectValue(p.Properties, propStatus)),
			LastRun:    notion.DateValue(p.Properties, propLastRun),
			Note:       notion.TextValue(p.Properties, propNote),
		})
	}
	return jobs, nil
}

func (s *NotionStore) AppendJobs(ctx context.Context, jobs []model.Job) error {
	for _, j := range jobs {
		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(s.jobsDB),
			},
			Properties: notionapi.Properties{
				propProfession: notion.Title(j.Profession),
				propCity:       notion.Text(j.City),
				propCountry:    notion.Text(j.Country),
				propStatus:     notion.Select(string(j.Status)),
				propNote:       notion.Text(j.Note),
			},
		}
		if _, err := s.client.CreatePage(ctx, req); err != nil {
			return eris.Wrapf(err, "notion store: append job %s", j.Key())
		}
	}
	return nil
}

func (s *NotionStore) UpdateJob(ctx context.Context, row string, status model.JobStatus, note string) error {
	req := &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			propStatus:  notion.Select(string(status)),
			propNote:    notion.Text(note),
			propLastRun: notion.Date(time.Now().UTC()),
		},
	}
	if _, err := s.client.UpdatePage(ctx, row, req); err != nil {
		return eris.Wrapf(err, "notion store: update job %s", row)
	}
	return nil
}

func (s *NotionStore) ReadExistingPlaceIDs(ctx context.Context) (map[string]struct{}, error) {
	pages, err := notion.QueryAll(ctx, s.client, s.resultsDB, nil)
	if err != nil {
		return nil, eris.Wrap(err, "notion store: read existing place ids")
	}

	ids := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		if id := notion.TextValue(p.Properties, propPlaceID); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

func (s *NotionStore) AppendResults(ctx context.Context, results []model.ResultRow) error {
	for _, r := range results {
		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(s.resultsDB),
			},
			Properties: notionapi.Properties{
				propName:       notion.Title(r.Lead.Name),
				propProfession: notion.Text(r.Profession),
				propCity:       notion.Text(r.City),
				propCountry:    notion.Text(r.Country),
				propPhone:      notion.Text(r.Lead.Phone),
				propEmail:      notion.Text(r.Lead.Email),
				propWebsite:    notion.URL(r.Lead.Website),
				propFacebook:   notion.URL(r.Lead.Facebook),
				propAddress:    notion.Text(r.Lead.Address),
				propMapsURL:    notion.URL(r.Lead.MapsURL),
				propRating:     notion.Number(r.Lead.Rating),
				propSource:     notion.Select(r.Source),
				propCapturedAt: notion.Date(r.CapturedAt),
				propPlaceID:    notion.Text(r.Lead.PlaceID),
			},
		}
		if _, err := s.client.CreatePage(ctx, req); err != nil {
			return eris.Wrapf(err, "notion store: append result %s", r.Lead.Name)
		}
	}
	return nil
}

func (s *NotionStore) ReadResults(ctx context.Context) ([]model.ResultRow, error) {
	pages, err := notion.QueryAll(ctx, s.client, s.resultsDB, createdAscending())
	if err != nil {
		return nil, eris.Wrap(err, "notion store: read results")
	}

	out := make([]model.ResultRow, 0, len(pages))
	for _, p := range pages {
		r := model.ResultRow{
			Profession: notion.TextValue(p.Properties, propProfession),
			City:       notion.TextValue(p.Properties, propCity),
			Country:    notion.TextValue(p.Properties, propCountry),
			Source:     notion.SelectValue(p.Properties, propSource),
			Lead: model.EnrichedLead{
				Name:     notion.TitleValue(p.Properties, propName),
				Phone:    notion.TextValue(p.Properties, propPhone),
				Email:    notion.TextValue(p.Properties, propEmail),
				Website:  notion.URLValue(p.Properties, propWebsite),
				Facebook: notion.URLValue(p.Properties, propFacebook),
				Address:  notion.TextValue(p.Properties, propAddress),
				MapsURL:  notion.URLValue(p.Properties, propMapsURL),
				Rating:   notion.NumberValue(p.Properties, propRating),
				PlaceID:  notion.TextValue(p.Properties, propPlaceID),
			},
		}
		if ts := notion.DateValue(p.Properties, propCapturedAt); ts != nil {
			r.CapturedAt = *ts
		}
		out = append(out, r)
	}
	return out, nil
}
