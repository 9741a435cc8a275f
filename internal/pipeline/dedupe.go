package pipeline

import "github.com/sells-group/leadgen-cli/internal/model"

// dedupe splits enriched leads into fresh ones and a skipped count. A lead is
// fresh only when it carries a non-empty place ID not already captured.
// Leads without a place ID are dropped entirely, since they could never be
// deduplicated on later runs.
func dedupe(leads []model.EnrichedLead, existing map[string]struct{}) (fresh []model.EnrichedLead, skipped int) {
	seen := make(map[string]struct{}, len(leads))
	for _, lead := range leads {
		if lead.PlaceID == "" {
			skipped++
			continue
		}
		if _, ok := existing[lead.PlaceID]; ok {
			skipped++
			continue
		}
		if _, ok := seen[lead.PlaceID]; ok {
			skipped++
			continue
		}
		seen[lead.PlaceID] = struct{}{}
		fresh = append(fresh, lead)
	}
	return fresh, skipped
}
