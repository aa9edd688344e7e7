// Package writer serializes query results to CSV and JSON.
//
// The column order and key names are a compatibility surface shared with
// downstream report tooling and must stay stable; they come straight from
// the Row and Map methods of the model types.
package writer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/chalu/neos/internal/models"
)

// csvHeader is the fixed column order of CSV output.
var csvHeader = []string{
	"datetime_utc",
	"distance_au",
	"velocity_km_s",
	"designation",
	"name",
	"diameter_km",
	"potentially_hazardous",
}

// WriteCSV writes the results as CSV. The header row is written even when
// the sequence is empty.
func WriteCSV(w io.Writer, results iter.Seq[*models.CloseApproach]) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for ca := range results {
		if err := cw.Write(ca.Row()); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// WriteJSON writes the results as an indented JSON array of objects. An
// empty sequence produces an empty array, not null.
func WriteJSON(w io.Writer, results iter.Seq[*models.CloseApproach]) error {
	rows := make([]map[string]any, 0)
	for ca := range results {
		rows = append(rows, ca.Map())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
