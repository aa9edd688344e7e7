package models

import (
	"strconv"
	"strings"
	"time"
)

const (
	// feedTimeLayout is the compact calendar format used by the NASA
	// close-approach feed, e.g. "2020-Jan-01 12:30".
	feedTimeLayout = "2006-Jan-02 15:04"

	// outputTimeLayout is the format used when serializing approach times.
	// The feed carries no seconds, so none are emitted.
	outputTimeLayout = "2006-01-02 15:04"
)

// CloseApproach is a single close approach of a near-Earth object to Earth.
//
// Designation is the raw foreign key to the owning object's primary
// designation; it is kept after linking for diagnostics. Time is the moment
// of closest approach (UTC, naive in the feed). Distance is the nominal
// approach distance in astronomical units and Velocity the relative velocity
// in km/s. NEO is nil until database linking resolves it, and stays nil for
// approaches whose designation matches no known object.
type CloseApproach struct {
	Designation string
	Time        time.Time
	Distance    float64
	Velocity    float64
	NEO         *NearEarthObject
}

// NewCloseApproach builds a CloseApproach from raw feed fields.
//
// The feed is known to have gaps, so malformed values coerce to defaults
// instead of failing: an unparseable time stays the zero time, and
// unparseable distance or velocity become 0.0.
func NewCloseApproach(designation, timestamp, distance, velocity string) *CloseApproach {
	ca := &CloseApproach{
		Designation: strings.TrimSpace(designation),
	}

	if t, err := time.Parse(feedTimeLayout, timestamp); err == nil {
		ca.Time = t
	}
	if v, err := strconv.ParseFloat(distance, 64); err == nil {
		ca.Distance = v
	}
	if v, err := strconv.ParseFloat(velocity, 64); err == nil {
		ca.Velocity = v
	}

	return ca
}

// TimeStr renders the approach time without seconds, matching the precision
// of the source data.
func (ca *CloseApproach) TimeStr() string {
	return ca.Time.Format(outputTimeLayout)
}

// Row returns the approach's fields in the fixed order used for row-oriented
// output: timestamp, distance, velocity, then the owning object's fields.
// An unlinked approach pads the object columns with empty values.
func (ca *CloseApproach) Row() []string {
	row := []string{
		ca.TimeStr(),
		formatFloat(ca.Distance),
		formatFloat(ca.Velocity),
	}
	if ca.NEO != nil {
		return append(row, ca.NEO.Row()...)
	}
	return append(row, "", "", "", "")
}

// Map returns the approach's fields keyed for structured output, with the
// owning object embedded under "neo" (nil when unlinked). The key set is a
// stable compatibility surface.
func (ca *CloseApproach) Map() map[string]any {
	var neo any
	if ca.NEO != nil {
		neo = ca.NEO.Map()
	}
	return map[string]any{
		"datetime_utc":  ca.TimeStr(),
		"distance_au":   ca.Distance,
		"velocity_km_s": ca.Velocity,
		"neo":           neo,
	}
}
