// Package export ships captured leads to downstream destinations: XLSX
// workbooks for manual review and Salesforce for CRM handoff.
package export

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/jobstore"
)

// resultColumns is the workbook header, matching the results table layout.
var resultColumns = []string{
	"profession", "city", "country", "name", "phone", "email", "website",
	"facebook", "address", "maps_url", "rating", "source", "captured_at",
	"place_id",
}

// WriteXLSX reads all captured leads from the store and writes them to an
// XLSX workbook at path. Returns the number of lead rows written.
func WriteXLSX(ctx context.Context, store jobstore.Store, path string) (int, error) {
	results, err := store.ReadResults(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "export: read results")
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return 0, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range resultColumns {
		header.AddCell().SetString(col)
	}

	for _, r := range results {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Profession)
		row.AddCell().SetString(r.City)
		row.AddCell().SetString(r.Country)
		row.AddCell().SetString(r.Lead.Name)
		row.AddCell().SetString(r.Lead.Phone)
		row.AddCell().SetString(r.Lead.Email)
		row.AddCell().SetString(r.Lead.Website)
		row.AddCell().SetString(r.Lead.Facebook)
		row.AddCell().SetString(r.Lead.Address)
		row.AddCell().SetString(r.Lead.MapsURL)
		row.AddCell().SetFloat(r.Lead.Rating)
		row.AddCell().SetString(r.Source)
		row.AddCell().SetString(r.CapturedAt.UTC().Format(time.RFC3339))
		row.AddCell().SetString(r.Lead.PlaceID)
	}

	if err := f.Save(path); err != nil {
		return 0, eris.Wrapf(err, "export: save %s", path)
	}
	return len(results), nil
}
