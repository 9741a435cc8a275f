package pipeline

import (
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// expansionNote marks jobs enqueued automatically from captured addresses.
const expansionNote = "Auto-added from results"

// extractArea pulls the neighborhood-level area from a formatted address:
// the text before the first comma, or the whole address when it has none.
// Returns empty when the area is missing or just restates the city being
// searched.
func extractArea(address, city string) string {
	area, _, _ := strings.Cut(address, ",")
	area = strings.TrimSpace(area)
	if area == "" {
		return ""
	}
	lowArea := strings.ToLower(area)
	lowCity := strings.ToLower(city)
	if lowArea == lowCity || strings.Contains(lowArea, lowCity) {
		return ""
	}
	return area
}

// expandAreas derives narrower follow-up jobs from the areas observed in
// this job's leads. Areas are collected in first-observed order with exact
// string dedup, capped, then filtered against already-known job keys. Each
// accepted job registers its key immediately so one expansion pass never
// enqueues the same area twice.
func expandAreas(job model.Job, leads []model.EnrichedLead, knownKeys map[string]struct{}, maxNew int) []model.Job {
	var areas []string
	seen := make(map[string]struct{})
	for _, lead := range leads {
		area := extractArea(lead.Address, job.City)
		if area == "" {
			continue
		}
		if _, ok := seen[area]; ok {
			continue
		}
		seen[area] = struct{}{}
		areas = append(areas, area)
	}
	if len(areas) > maxNew {
		areas = areas[:maxNew]
	}

	var newJobs []model.Job
	for _, area := range areas {
		city := area + ", " + job.City
		key := model.JobKey(job.Profession, city, job.Country)
		if _, ok := knownKeys[key]; ok {
			continue
		}
		knownKeys[key] = struct{}{}
		newJobs = append(newJobs, model.Job{
			Profession: job.Profession,
			City:       city,
			Country:    job.Country,
			Status:     model.JobStatusQueued,
			Note:       expansionNote,
		})
	}
	return newJobs
}
