// Package models holds the two record types of the close-approach dataset:
// near-Earth objects and the close approaches they make to Earth.
//
// Both types are built once during ingestion from raw string fields and are
// mutated exactly once afterwards, by the database linking step. The
// constructors absorb the quirks of the NASA feeds (missing names, unknown
// diameters, blank hazard flags) so that downstream code never has to.
package models

import (
	"math"
	"strconv"
	"strings"
)

// NearEarthObject is a single near-Earth object record.
//
// Designation is the unique primary designation and is required; Name is
// optional and empty when the object has no IAU name. Diameter is in
// kilometers and is NaN when unknown. Approaches starts empty and is
// populated by database linking.
type NearEarthObject struct {
	Designation string
	Name        string
	Diameter    float64
	Hazardous   bool
	Approaches  []*CloseApproach
}

// NewNearEarthObject builds a NearEarthObject from raw feed fields.
//
// The designation and name are trimmed; a blank name stays empty. An
// unparseable or missing diameter becomes NaN. The hazard flag is true only
// for "Y"; blank, missing and "N" all mean not hazardous.
func NewNearEarthObject(designation, name, diameter, hazardous string) *NearEarthObject {
	d := math.NaN()
	if diameter != "" {
		if v, err := strconv.ParseFloat(diameter, 64); err == nil {
			d = v
		}
	}

	return &NearEarthObject{
		Designation: strings.TrimSpace(designation),
		Name:        strings.TrimSpace(name),
		Diameter:    d,
		Hazardous:   hazardous == "Y",
	}
}

// HasName reports whether the object carries an IAU name.
func (n *NearEarthObject) HasName() bool {
	return n.Name != ""
}

// Fullname is the designation, followed by the name when one exists.
func (n *NearEarthObject) Fullname() string {
	if n.Name == "" {
		return n.Designation
	}
	return n.Designation + " " + n.Name
}

// Row returns the object's fields in the fixed order used for row-oriented
// output: designation, name, diameter, hazardous. An unknown diameter
// renders as "NaN".
func (n *NearEarthObject) Row() []string {
	return []string{
		n.Designation,
		n.Name,
		formatFloat(n.Diameter),
		strconv.FormatBool(n.Hazardous),
	}
}

// Map returns the object's fields keyed for structured output. The key set
// is a compatibility surface consumed by the writers and the HTTP API and
// must stay stable. An unknown diameter is emitted as nil so the result is
// always encodable as JSON.
func (n *NearEarthObject) Map() map[string]any {
	var diameter any
	if !math.IsNaN(n.Diameter) {
		diameter = n.Diameter
	}
	return map[string]any{
		"designation":           n.Designation,
		"name":                  n.Name,
		"diameter_km":           diameter,
		"potentially_hazardous": n.Hazardous,
	}
}

// formatFloat renders a measurement without trailing zeros. NaN renders as
// the literal "NaN".
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// NormalizeKey is the canonical form of a designation or name for matching:
// trimmed and lowercased. Linking, grouping and the lookup indexes all use
// it so that the same key always lands in the same bucket.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
