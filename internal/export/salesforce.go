package export

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/jobstore"
	"github.com/sells-group/leadgen-cli/pkg/salesforce"
)

// SalesforceResult summarizes a Lead export run.
type SalesforceResult struct {
	Inserted int
	Failed   int
}

// PushLeads inserts all captured leads into Salesforce as Lead records.
// Company carries the business name; Salesforce requires LastName on Lead,
// so it is stubbed for records without a contact person. Per-record insert
// failures are logged and counted, not fatal.
func PushLeads(ctx context.Context, store jobstore.Store, client salesforce.Client) (SalesforceResult, error) {
	results, err := store.ReadResults(ctx)
	if err != nil {
		return SalesforceResult{}, eris.Wrap(err, "export: read results")
	}
	if len(results) == 0 {
		return SalesforceResult{}, nil
	}

	records := make([]map[string]any, 0, len(results))
	for _, r := range results {
		rec := map[string]any{
			"Company":    r.Lead.Name,
			"LastName":   "Unknown",
			"LeadSource": "Google Places",
			"Phone":      r.Lead.Phone,
			"Email":      r.Lead.Email,
			"Website":    r.Lead.Website,
			"Street":     r.Lead.Address,
			"City":       r.City,
			"Country":    r.Country,
		}
		if r.Profession != "" {
			rec["Industry"] = r.Profession
		}
		records = append(records, rec)
	}

	inserted, err := client.InsertCollection(ctx, "Lead", records)
	if err != nil {
		return SalesforceResult{}, eris.Wrap(err, "export: insert leads")
	}

	var out SalesforceResult
	for i, res := range inserted {
		if res.Success {
			out.Inserted++
			continue
		}
		out.Failed++
		zap.L().Warn("lead insert rejected",
			zap.String("company", results[i].Lead.Name),
			zap.Strings("errors", res.Errors),
		)
	}
	return out, nil
}
