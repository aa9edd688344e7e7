// Package extract reads the NASA source feeds into model records.
//
// Near-Earth objects come from the JPL small-bodies CSV export (one object
// per row); close approaches come from the CNEOS close-approach JSON export,
// a column-oriented envelope of a "fields" header and a "data" array of
// rows. Field-level quirks (missing names, unknown diameters, blank
// numbers) are absorbed by the model constructors; only I/O and envelope
// shape problems are errors here.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/chalu/neos/internal/metrics"
	"github.com/chalu/neos/internal/models"
)

// json decodes the close-approach payload. The full export is tens of
// megabytes, which is why this uses json-iterator rather than encoding/json.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Loader reads the source feeds from disk.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader that logs diagnostics to the given logger.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadNEOs reads near-Earth objects from a CSV file. The file must carry the
// pdes, name, pha and diameter columns; all other columns are ignored.
func (l *Loader) LoadNEOs(path string) ([]*models.NearEarthObject, error) {
	f, err := os.Open(path)
	if err != nil {
		l.logger.Error("opening NEO feed", "path", path, "error", err)
		return nil, fmt.Errorf("loading NEOs from %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	neos, err := l.readNEOs(f)
	if err != nil {
		l.logger.Error("reading NEO feed", "path", path, "error", err)
		return nil, fmt.Errorf("loading NEOs from %s: %w", path, err)
	}

	metrics.Add(metrics.NEOsLoaded, int64(len(neos)))
	l.logger.Info("loaded NEOs", "path", path, "count", len(neos))
	return neos, nil
}

func (l *Loader) readNEOs(r io.Reader) ([]*models.NearEarthObject, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"pdes", "name", "pha", "diameter"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("feed is missing the %q column", required)
		}
	}

	var neos []*models.NearEarthObject
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		neos = append(neos, models.NewNearEarthObject(
			row[cols["pdes"]],
			row[cols["name"]],
			row[cols["diameter"]],
			row[cols["pha"]],
		))
	}
	return neos, nil
}

// cadEnvelope is the shape of the CNEOS close-approach export: a list of
// column names and a list of rows. Null cells decode to the empty string.
type cadEnvelope struct {
	Fields []string   `json:"fields"`
	Data   [][]string `json:"data"`
}

// LoadApproaches reads close approaches from a JSON file, preserving the
// file's row order.
func (l *Loader) LoadApproaches(path string) ([]*models.CloseApproach, error) {
	return l.loadCAD(path)
}

// LoadApproachesGrouped reads close approaches from a JSON file into a
// mapping keyed by normalized (lowercased) designation. Row order is
// preserved inside each group. This is the input form for
// database.NewGrouped.
func (l *Loader) LoadApproachesGrouped(path string) (map[string][]*models.CloseApproach, error) {
	rows, err := l.loadCAD(path)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]*models.CloseApproach)
	for _, ca := range rows {
		key := models.NormalizeKey(ca.Designation)
		grouped[key] = append(grouped[key], ca)
	}
	return grouped, nil
}

func (l *Loader) loadCAD(path string) ([]*models.CloseApproach, error) {
	f, err := os.Open(path)
	if err != nil {
		l.logger.Error("opening close-approach feed", "path", path, "error", err)
		return nil, fmt.Errorf("loading approaches from %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var envelope cadEnvelope
	if err := json.NewDecoder(f).Decode(&envelope); err != nil {
		l.logger.Error("decoding close-approach feed", "path", path, "error", err)
		return nil, fmt.Errorf("loading approaches from %s: %w", path, err)
	}

	cols := make(map[string]int, len(envelope.Fields))
	for i, name := range envelope.Fields {
		cols[name] = i
	}
	for _, required := range []string{"des", "cd", "dist", "v_rel"} {
		if _, ok := cols[required]; !ok {
			err := fmt.Errorf("loading approaches from %s: feed is missing the %q field", path, required)
			l.logger.Error("decoding close-approach feed", "path", path, "error", err)
			return nil, err
		}
	}

	approaches := make([]*models.CloseApproach, 0, len(envelope.Data))
	for _, row := range envelope.Data {
		if len(row) < len(envelope.Fields) {
			// Short rows do occur in partial exports; skip rather than fail.
			continue
		}
		approaches = append(approaches, models.NewCloseApproach(
			row[cols["des"]],
			row[cols["cd"]],
			row[cols["dist"]],
			row[cols["v_rel"]],
		))
	}

	metrics.Add(metrics.ApproachesLoaded, int64(len(approaches)))
	l.logger.Info("loaded close approaches", "path", path, "count", len(approaches))
	return approaches, nil
}
