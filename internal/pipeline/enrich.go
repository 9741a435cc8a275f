package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/places"
)

// enrich looks up details and website contacts for each candidate
// concurrently, preserving candidate order. Enrichment failures degrade the
// individual lead rather than failing the job: a candidate whose detail
// lookup fails still yields a lead from search data alone.
func (p *Pipeline) enrich(ctx context.Context, candidates []places.Place) []model.EnrichedLead {
	if len(candidates) > p.maxCandidates {
		candidates = candidates[:p.maxCandidates]
	}

	leads := make([]model.EnrichedLead, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, cand := range candidates {
		g.Go(func() error {
			leads[i] = p.enrichOne(gctx, cand)
			return nil // don't abort batch on individual failure
		})
	}
	g.Wait() //nolint:errcheck

	return leads
}

func (p *Pipeline) enrichOne(ctx context.Context, cand places.Place) model.EnrichedLead {
	lead := model.EnrichedLead{
		Name:    cand.Name,
		Address: cand.FormattedAddress,
		PlaceID: cand.PlaceID,
		Rating:  cand.Rating,
	}

	details, err := resilience.DoVal(ctx, p.detailRetry, func(ctx context.Context) (*places.PlaceDetails, error) {
		return p.places.Details(ctx, cand.PlaceID)
	})
	if err != nil {
		zap.L().Debug("detail lookup failed, keeping search data",
			zap.String("place_id", cand.PlaceID),
			zap.Error(err),
		)
	} else if details != nil {
		if details.Name != "" {
			lead.Name = details.Name
		}
		if details.FormattedAddress != "" {
			lead.Address = details.FormattedAddress
		}
		lead.Phone = details.FormattedPhoneNumber
		if lead.Phone == "" {
			lead.Phone = details.InternationalPhoneNumber
		}
		lead.Website = details.Website
		lead.MapsURL = details.URL
	}

	if lead.Website != "" {
		contact := p.contacts.Contacts(ctx, lead.Website)
		lead.Email = contact.Email
		lead.Facebook = contact.Facebook
	}

	return lead
}
