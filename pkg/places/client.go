// Package places provides a client for the Google Places Text Search and
// Place Details APIs.
package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

	// defaultPageDelay is how long a next_page_token takes to become valid.
	defaultPageDelay = 2 * time.Second

	// detailFields selects the subset of detail fields the pipeline uses.
	detailFields = "name,formatted_address,formatted_phone_number,international_phone_number,website,url"
)

// Client performs Google Places API operations.
type Client interface {
	// TextSearch runs a text query and concatenates all result pages.
	TextSearch(ctx context.Context, query string) ([]Place, error)
	// Details fetches the selected detail fields for one place.
	Details(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// Place is a single text-search hit.
type Place struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address"`
	Rating           float64 `json:"rating"`
}

// PlaceDetails holds the enrichment fields from a details lookup.
type PlaceDetails struct {
	Name                     string `json:"name"`
	FormattedAddress         string `json:"formatted_address"`
	FormattedPhoneNumber     string `json:"formatted_phone_number"`
	InternationalPhoneNumber string `json:"international_phone_number"`
	Website                  string `json:"website"`
	URL                      string `json:"url"`
}

type textSearchResponse struct {
	Results       []Place `json:"results"`
	NextPageToken string  `json:"next_page_token"`
	Status        string  `json:"status"`
	ErrorMessage  string  `json:"error_message"`
}

type detailsResponse struct {
	Result       PlaceDetails `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithPageDelay overrides the wait before a pagination token is used.
func WithPageDelay(d time.Duration) Option {
	return func(c *httpClient) {
		c.pageDelay = d
	}
}

type httpClient struct {
	apiKey    string
	baseURL   string
	pageDelay time.Duration
	http      *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:    apiKey,
		baseURL:   defaultBaseURL,
		pageDelay: defaultPageDelay,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TextSearch pages through all results for the query. The API requires a
// short pause before a next_page_token becomes valid, so pages are fetched
// sequentially with pageDelay between them.
func (c *httpClient) TextSearch(ctx context.Context, query string) ([]Place, error) {
	var (
		all       []Place
		pageToken string
	)

	for {
		params := url.Values{}
		params.Set("query", query)
		params.Set("key", c.apiKey)
		if pageToken != "" {
			params.Set("pagetoken", pageToken)
		}

		var page textSearchResponse
		if err := c.get(ctx, "/textsearch/json", params, &page); err != nil {
			return nil, err
		}

		if page.Status != "OK" && page.Status != "ZERO_RESULTS" {
			return nil, eris.Errorf("places: text search status %s: %s", page.Status, page.ErrorMessage)
		}

		all = append(all, page.Results...)

		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken

		timer := time.NewTimer(c.pageDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return all, eris.Wrap(ctx.Err(), "places: page delay")
		case <-timer.C:
		}
	}
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("key", c.apiKey)
	params.Set("fields", detailFields)

	var resp detailsResponse
	if err := c.get(ctx, "/details/json", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "OK" {
		return nil, eris.Errorf("places: details status %s: %s", resp.Status, resp.ErrorMessage)
	}

	return &resp.Result, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "places: unmarshal response")
	}

	return nil
}
