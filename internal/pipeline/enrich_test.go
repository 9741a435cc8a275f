package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/scrape"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

func TestEnrich_DetailsPreferredOverSearchData(t *testing.T) {
	fp := newFakePlaces()
	fc := newFakeContacts()
	fp.details["p1"] = &places.PlaceDetails{
		Name:                 "Sparky Co (official)",
		FormattedAddress:     "Unit 4, Lahug, Cebu City",
		FormattedPhoneNumber: "032 123 4567",
		Website:              "https://sparky.example",
		URL:                  "https://maps.google.com/?cid=1",
	}
	fc.contacts["https://sparky.example"] = scrape.Contact{
		Email:    "hello@sparky.example",
		Facebook: "https://facebook.com/sparkyco",
	}

	p := newTestPipeline(newFakeStore(), fp, fc)
	leads := p.enrich(context.Background(), []places.Place{
		{PlaceID: "p1", Name: "Sparky Co", FormattedAddress: "Lahug, Cebu City", Rating: 4.5},
	})

	require.Len(t, leads, 1)
	lead := leads[0]
	assert.Equal(t, "Sparky Co (official)", lead.Name)
	assert.Equal(t, "Unit 4, Lahug, Cebu City", lead.Address)
	assert.Equal(t, "032 123 4567", lead.Phone)
	assert.Equal(t, "https://sparky.example", lead.Website)
	assert.Equal(t, "https://maps.google.com/?cid=1", lead.MapsURL)
	assert.Equal(t, "p1", lead.PlaceID)
	assert.Equal(t, 4.5, lead.Rating)
	assert.Equal(t, "hello@sparky.example", lead.Email)
	assert.Equal(t, "https://facebook.com/sparkyco", lead.Facebook)
}

func TestEnrich_DetailFailureDegradesToSearchData(t *testing.T) {
	fp := newFakePlaces()
	fc := newFakeContacts()
	// No details registered for p1: lookup fails.

	p := newTestPipeline(newFakeStore(), fp, fc)
	leads := p.enrich(context.Background(), []places.Place{
		{PlaceID: "p1", Name: "Sparky Co", FormattedAddress: "Lahug, Cebu City", Rating: 4.0},
	})

	require.Len(t, leads, 1)
	lead := leads[0]
	assert.Equal(t, "Sparky Co", lead.Name)
	assert.Equal(t, "Lahug, Cebu City", lead.Address)
	assert.Empty(t, lead.Phone)
	assert.Empty(t, lead.Website)
	assert.Equal(t, "p1", lead.PlaceID)
	assert.Empty(t, fc.calls, "no website, no scrape")
}

func TestEnrich_InternationalPhoneFallback(t *testing.T) {
	fp := newFakePlaces()
	fp.details["p1"] = &places.PlaceDetails{
		Name:                     "Sparky Co",
		InternationalPhoneNumber: "+63 32 123 4567",
	}

	p := newTestPipeline(newFakeStore(), fp, newFakeContacts())
	leads := p.enrich(context.Background(), []places.Place{{PlaceID: "p1", Name: "Sparky Co"}})

	require.Len(t, leads, 1)
	assert.Equal(t, "+63 32 123 4567", leads[0].Phone)
}

func TestEnrich_PreservesCandidateOrder(t *testing.T) {
	fp := newFakePlaces()
	var candidates []places.Place
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		candidates = append(candidates, places.Place{PlaceID: id, Name: "biz-" + id})
		fp.details[id] = &places.PlaceDetails{Name: "detail-" + id}
	}

	p := newTestPipeline(newFakeStore(), fp, newFakeContacts())
	leads := p.enrich(context.Background(), candidates)

	require.Len(t, leads, 5)
	for i, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		assert.Equal(t, "detail-"+id, leads[i].Name)
		assert.Equal(t, id, leads[i].PlaceID)
	}
}

func TestEnrich_CapsCandidates(t *testing.T) {
	fp := newFakePlaces()
	var candidates []places.Place
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		candidates = append(candidates, places.Place{PlaceID: id})
		fp.details[id] = &places.PlaceDetails{}
	}

	p := New(newFakeStore(), fp, newFakeContacts(), Config{MaxCandidates: 3, JobInterval: 1})
	p.searchRetry.MaxAttempts = 1
	p.detailRetry.MaxAttempts = 1
	leads := p.enrich(context.Background(), candidates)
	assert.Len(t, leads, 3)
}
