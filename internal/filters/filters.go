// Package filters provides the predicate abstraction used to query close
// approaches.
//
// A Filter is an immutable comparison of one attribute of a close approach
// (or of its linked near-Earth object) against a fixed reference value.
// Filters compose only by conjunction: a query matches when every filter in
// the set matches. The Build factory turns the criteria accepted at the
// outer surfaces (CLI flags, HTTP query parameters) into the minimal filter
// set implementing them.
//
// Evaluation policy for unlinked approaches: a filter whose attribute lives
// on the near-Earth object (diameter, hazardous) treats an approach with no
// linked object as non-matching. Unmatched approaches are an expected data
// condition and must never abort a query stream.
package filters

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/chalu/neos/internal/models"
)

// ErrUnsupportedCriterion is returned when a filter is constructed with an
// attribute selector or operator the engine does not implement.
var ErrUnsupportedCriterion = errors.New("unsupported filter criterion")

// Field selects the attribute of a close approach that a filter compares.
// Date, Distance and Velocity read the approach itself; Diameter and
// Hazardous read its linked near-Earth object.
type Field int

const (
	Date Field = iota
	Distance
	Velocity
	Diameter
	Hazardous
)

// String returns the attribute name as used in criteria surfaces.
func (f Field) String() string {
	switch f {
	case Date:
		return "date"
	case Distance:
		return "distance"
	case Velocity:
		return "velocity"
	case Diameter:
		return "diameter"
	case Hazardous:
		return "hazardous"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Op is the comparison a filter applies between the selected attribute and
// its reference value.
type Op int

const (
	Eq Op = iota
	Le
	Ge
)

// String returns the operator in infix notation.
func (o Op) String() string {
	switch o {
	case Eq:
		return "=="
	case Le:
		return "<="
	case Ge:
		return ">="
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Filter is one comparison test over a close approach. The zero value is not
// usable; construct filters with New or Build.
type Filter struct {
	field Field
	op    Op
	date  time.Time
	num   float64
	flag  bool
}

// New builds a filter from an attribute selector, an operator and a
// reference value. The value type must match the selector: time.Time for
// Date, float64 for Distance, Velocity and Diameter, bool for Hazardous
// (which only supports Eq). Anything else fails with
// ErrUnsupportedCriterion, so a bad criterion can never reach evaluation.
func New(field Field, op Op, value any) (Filter, error) {
	switch op {
	case Eq, Le, Ge:
	default:
		return Filter{}, fmt.Errorf("%w: operator %s", ErrUnsupportedCriterion, op)
	}

	f := Filter{field: field, op: op}
	switch field {
	case Date:
		t, ok := value.(time.Time)
		if !ok {
			return Filter{}, fmt.Errorf("%w: %s wants a time.Time, got %T", ErrUnsupportedCriterion, field, value)
		}
		f.date = t
	case Distance, Velocity, Diameter:
		n, ok := value.(float64)
		if !ok {
			return Filter{}, fmt.Errorf("%w: %s wants a float64, got %T", ErrUnsupportedCriterion, field, value)
		}
		f.num = n
	case Hazardous:
		b, ok := value.(bool)
		if !ok {
			return Filter{}, fmt.Errorf("%w: %s wants a bool, got %T", ErrUnsupportedCriterion, field, value)
		}
		if op != Eq {
			return Filter{}, fmt.Errorf("%w: %s only supports equality", ErrUnsupportedCriterion, field)
		}
		f.flag = b
	default:
		return Filter{}, fmt.Errorf("%w: %s", ErrUnsupportedCriterion, field)
	}

	return f, nil
}

// Field returns the attribute selector this filter compares.
func (f Filter) Field() Field { return f.field }

// Op returns the comparison operator this filter applies.
func (f Filter) Op() Op { return f.op }

// Matches reports whether the close approach satisfies this filter.
//
// Date filters compare the calendar date only, discarding time of day.
// Diameter and Hazardous filters return false when the approach has no
// linked near-Earth object. Comparisons against an unknown (NaN) diameter
// are false for every reference value.
func (f Filter) Matches(ca *models.CloseApproach) bool {
	switch f.field {
	case Date:
		return compareDates(f.op, ca.Time, f.date)
	case Distance:
		return compareFloats(f.op, ca.Distance, f.num)
	case Velocity:
		return compareFloats(f.op, ca.Velocity, f.num)
	case Diameter:
		if ca.NEO == nil {
			return false
		}
		return compareFloats(f.op, ca.NEO.Diameter, f.num)
	case Hazardous:
		if ca.NEO == nil {
			return false
		}
		return ca.NEO.Hazardous == f.flag
	default:
		return false
	}
}

// String renders the filter for logs, e.g. "distance <= 0.2".
func (f Filter) String() string {
	switch f.field {
	case Date:
		return fmt.Sprintf("%s %s %s", f.field, f.op, f.date.Format("2006-01-02"))
	case Hazardous:
		return fmt.Sprintf("%s %s %t", f.field, f.op, f.flag)
	default:
		return fmt.Sprintf("%s %s %v", f.field, f.op, f.num)
	}
}

func compareFloats(op Op, got, want float64) bool {
	switch op {
	case Eq:
		return got == want
	case Le:
		return got <= want
	case Ge:
		return got >= want
	}
	return false
}

// compareDates compares calendar dates only. Both sides are truncated to
// midnight before applying the operator.
func compareDates(op Op, got, want time.Time) bool {
	g := time.Date(got.Year(), got.Month(), got.Day(), 0, 0, 0, 0, time.UTC)
	w := time.Date(want.Year(), want.Month(), want.Day(), 0, 0, 0, 0, time.UTC)
	switch op {
	case Eq:
		return g.Equal(w)
	case Le:
		return !g.After(w)
	case Ge:
		return !g.Before(w)
	}
	return false
}

// Criteria is the set of optional query constraints accepted at the outer
// surfaces. A nil field means no constraint on that attribute; the zero
// Criteria matches everything.
type Criteria struct {
	Date        *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
	DistanceMin *float64
	DistanceMax *float64
	VelocityMin *float64
	VelocityMax *float64
	DiameterMin *float64
	DiameterMax *float64
	Hazardous   *bool
}

// Build maps criteria to the minimal conjunctive filter set implementing
// them. Supplying no criteria yields an empty set, which matches every
// close approach.
func Build(c Criteria) []Filter {
	var fs []Filter

	add := func(field Field, op Op, value any) {
		f, err := New(field, op, value)
		if err != nil {
			// Criteria fields are typed, so construction cannot fail here.
			panic(err)
		}
		fs = append(fs, f)
	}

	if c.Date != nil {
		add(Date, Eq, *c.Date)
	}
	if c.StartDate != nil {
		add(Date, Ge, *c.StartDate)
	}
	if c.EndDate != nil {
		add(Date, Le, *c.EndDate)
	}
	if c.DistanceMin != nil {
		add(Distance, Ge, *c.DistanceMin)
	}
	if c.DistanceMax != nil {
		add(Distance, Le, *c.DistanceMax)
	}
	if c.VelocityMin != nil {
		add(Velocity, Ge, *c.VelocityMin)
	}
	if c.VelocityMax != nil {
		add(Velocity, Le, *c.VelocityMax)
	}
	if c.DiameterMin != nil {
		add(Diameter, Ge, *c.DiameterMin)
	}
	if c.DiameterMax != nil {
		add(Diameter, Le, *c.DiameterMax)
	}
	if c.Hazardous != nil {
		add(Hazardous, Eq, *c.Hazardous)
	}

	return fs
}

// Limit yields at most n elements from the front of seq. A cap of zero or
// less means unlimited and returns seq unchanged. The wrapped sequence never
// pulls more than n elements from the underlying one.
func Limit(seq iter.Seq[*models.CloseApproach], n int) iter.Seq[*models.CloseApproach] {
	if n <= 0 {
		return seq
	}
	return func(yield func(*models.CloseApproach) bool) {
		taken := 0
		for ca := range seq {
			if !yield(ca) {
				return
			}
			taken++
			if taken == n {
				return
			}
		}
	}
}
