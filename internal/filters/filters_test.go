package filters_test

import (
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalu/neos/internal/filters"
	"github.com/chalu/neos/internal/models"
)

func linkedApproach(t *testing.T) *models.CloseApproach {
	t.Helper()
	neo := models.NewNearEarthObject("433", "Eros", "16.84", "N")
	ca := models.NewCloseApproach("433", "2020-Jan-01 12:30", "0.15", "5.0")
	ca.NEO = neo
	neo.Approaches = append(neo.Approaches, ca)
	return ca
}

func TestNewRejectsUnsupportedCriteria(t *testing.T) {
	tests := []struct {
		name  string
		field filters.Field
		op    filters.Op
		value any
	}{
		{"unknown field", filters.Field(99), filters.Eq, 1.0},
		{"unknown operator", filters.Distance, filters.Op(99), 1.0},
		{"date wants time", filters.Date, filters.Eq, 1.0},
		{"distance wants float", filters.Distance, filters.Le, "0.2"},
		{"hazardous wants bool", filters.Hazardous, filters.Eq, 1.0},
		{"hazardous only eq", filters.Hazardous, filters.Ge, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := filters.New(tc.field, tc.op, tc.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, filters.ErrUnsupportedCriterion)
		})
	}
}

func TestFilterMatchesNumericFields(t *testing.T) {
	ca := linkedApproach(t)

	mustNew := func(f filters.Field, op filters.Op, v any) filters.Filter {
		flt, err := filters.New(f, op, v)
		require.NoError(t, err)
		return flt
	}

	assert.True(t, mustNew(filters.Distance, filters.Le, 0.2).Matches(ca))
	assert.False(t, mustNew(filters.Distance, filters.Ge, 1.0).Matches(ca))
	assert.True(t, mustNew(filters.Distance, filters.Eq, 0.15).Matches(ca))

	assert.True(t, mustNew(filters.Velocity, filters.Ge, 5.0).Matches(ca))
	assert.False(t, mustNew(filters.Velocity, filters.Le, 4.9).Matches(ca))

	assert.True(t, mustNew(filters.Diameter, filters.Ge, 10.0).Matches(ca))
	assert.False(t, mustNew(filters.Diameter, filters.Le, 10.0).Matches(ca))
}

func TestFilterMatchesDateComparesCalendarDateOnly(t *testing.T) {
	ca := linkedApproach(t) // 2020-01-01 12:30

	day := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	eq, err := filters.New(filters.Date, filters.Eq, day)
	require.NoError(t, err)
	assert.True(t, eq.Matches(ca), "time of day must be discarded")

	after, err := filters.New(filters.Date, filters.Ge, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, after.Matches(ca))

	before, err := filters.New(filters.Date, filters.Le, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, before.Matches(ca))
}

func TestFilterMatchesHazardous(t *testing.T) {
	ca := linkedApproach(t) // Eros, not hazardous

	wantSafe, err := filters.New(filters.Hazardous, filters.Eq, false)
	require.NoError(t, err)
	assert.True(t, wantSafe.Matches(ca))

	wantHazardous, err := filters.New(filters.Hazardous, filters.Eq, true)
	require.NoError(t, err)
	assert.False(t, wantHazardous.Matches(ca))
}

func TestEntityScopedFiltersOnUnlinkedApproach(t *testing.T) {
	ca := models.NewCloseApproach("99942", "2029-Apr-13 21:46", "0.00025", "7.42")
	require.Nil(t, ca.NEO)

	diameter, err := filters.New(filters.Diameter, filters.Ge, 0.0)
	require.NoError(t, err)
	assert.False(t, diameter.Matches(ca), "unlinked approaches are non-matching, never a failure")

	hazardous, err := filters.New(filters.Hazardous, filters.Eq, false)
	require.NoError(t, err)
	assert.False(t, hazardous.Matches(ca))

	// Approach-scoped filters still evaluate normally.
	distance, err := filters.New(filters.Distance, filters.Le, 0.1)
	require.NoError(t, err)
	assert.True(t, distance.Matches(ca))
}

func TestFilterMatchesUnknownDiameterNeverMatches(t *testing.T) {
	neo := models.NewNearEarthObject("2020 BZ", "", "", "N")
	ca := models.NewCloseApproach("2020 BZ", "2020-Jan-02 00:00", "0.3", "9.1")
	ca.NEO = neo

	ge, err := filters.New(filters.Diameter, filters.Ge, 0.0)
	require.NoError(t, err)
	assert.False(t, ge.Matches(ca))

	le, err := filters.New(filters.Diameter, filters.Le, 1e9)
	require.NoError(t, err)
	assert.False(t, le.Matches(ca))
}

func TestBuildEmptyCriteriaYieldsNoFilters(t *testing.T) {
	assert.Empty(t, filters.Build(filters.Criteria{}))
}

func TestBuildMapsEveryCriterion(t *testing.T) {
	day := time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)
	f := 1.5
	b := true
	c := filters.Criteria{
		Date:        &day,
		StartDate:   &day,
		EndDate:     &day,
		DistanceMin: &f,
		DistanceMax: &f,
		VelocityMin: &f,
		VelocityMax: &f,
		DiameterMin: &f,
		DiameterMax: &f,
		Hazardous:   &b,
	}

	fs := filters.Build(c)
	require.Len(t, fs, 10)

	byField := map[filters.Field]int{}
	for _, flt := range fs {
		byField[flt.Field()]++
	}
	assert.Equal(t, 3, byField[filters.Date])
	assert.Equal(t, 2, byField[filters.Distance])
	assert.Equal(t, 2, byField[filters.Velocity])
	assert.Equal(t, 2, byField[filters.Diameter])
	assert.Equal(t, 1, byField[filters.Hazardous])
}

func TestBuildPartialCriteria(t *testing.T) {
	max := 0.2
	fs := filters.Build(filters.Criteria{DistanceMax: &max})
	require.Len(t, fs, 1)
	assert.Equal(t, filters.Distance, fs[0].Field())
	assert.Equal(t, filters.Le, fs[0].Op())
}

func approachSeq(cas ...*models.CloseApproach) iter.Seq[*models.CloseApproach] {
	return func(yield func(*models.CloseApproach) bool) {
		for _, ca := range cas {
			if !yield(ca) {
				return
			}
		}
	}
}

func collect(seq iter.Seq[*models.CloseApproach]) []*models.CloseApproach {
	var out []*models.CloseApproach
	for ca := range seq {
		out = append(out, ca)
	}
	return out
}

func TestLimitZeroIsPassThrough(t *testing.T) {
	a := models.NewCloseApproach("a", "2020-Jan-01 00:00", "1", "1")
	b := models.NewCloseApproach("b", "2020-Jan-02 00:00", "1", "1")

	assert.Equal(t, []*models.CloseApproach{a, b}, collect(filters.Limit(approachSeq(a, b), 0)))
	assert.Equal(t, []*models.CloseApproach{a, b}, collect(filters.Limit(approachSeq(a, b), -1)))
}

func TestLimitTakesFirstK(t *testing.T) {
	a := models.NewCloseApproach("a", "2020-Jan-01 00:00", "1", "1")
	b := models.NewCloseApproach("b", "2020-Jan-02 00:00", "1", "1")
	c := models.NewCloseApproach("c", "2020-Jan-03 00:00", "1", "1")

	got := collect(filters.Limit(approachSeq(a, b, c), 2))
	assert.Equal(t, []*models.CloseApproach{a, b}, got)

	got = collect(filters.Limit(approachSeq(a, b, c), 5))
	assert.Equal(t, []*models.CloseApproach{a, b, c}, got)
}

func TestLimitDoesNotOverPull(t *testing.T) {
	pulled := 0
	endless := func(yield func(*models.CloseApproach) bool) {
		for {
			pulled++
			if !yield(models.NewCloseApproach("x", "2020-Jan-01 00:00", "1", "1")) {
				return
			}
		}
	}

	got := collect(filters.Limit(endless, 3))
	assert.Len(t, got, 3)
	assert.Equal(t, 3, pulled)
}
