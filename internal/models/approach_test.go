package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalu/neos/internal/models"
)

func TestNewCloseApproachParsesFeedFields(t *testing.T) {
	ca := models.NewCloseApproach("433", "2020-Jan-01 12:30", "0.15", "5.0")

	assert.Equal(t, "433", ca.Designation)
	assert.True(t, ca.Time.Equal(time.Date(2020, time.January, 1, 12, 30, 0, 0, time.UTC)))
	assert.InDelta(t, 0.15, ca.Distance, 1e-9)
	assert.InDelta(t, 5.0, ca.Velocity, 1e-9)
	assert.Nil(t, ca.NEO)
}

func TestNewCloseApproachCoercesMalformedFields(t *testing.T) {
	ca := models.NewCloseApproach(" 433 ", "garbage", "", "x")

	assert.Equal(t, "433", ca.Designation)
	assert.True(t, ca.Time.IsZero())
	assert.Zero(t, ca.Distance)
	assert.Zero(t, ca.Velocity)
}

func TestCloseApproachTimeStr(t *testing.T) {
	ca := models.NewCloseApproach("433", "2020-Jan-01 12:30", "0.15", "5.0")
	assert.Equal(t, "2020-01-01 12:30", ca.TimeStr())
}

func TestCloseApproachRowAndMapLinked(t *testing.T) {
	neo := models.NewNearEarthObject("433", "Eros", "16.84", "N")
	ca := models.NewCloseApproach("433", "2020-Jan-01 12:30", "0.15", "5.0")
	ca.NEO = neo

	row := ca.Row()
	require.Len(t, row, 7)
	assert.Equal(t, []string{"2020-01-01 12:30", "0.15", "5", "433", "Eros", "16.84", "false"}, row)

	m := ca.Map()
	assert.Equal(t, "2020-01-01 12:30", m["datetime_utc"])
	assert.Equal(t, 0.15, m["distance_au"])
	assert.Equal(t, 5.0, m["velocity_km_s"])

	embedded, ok := m["neo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "433", embedded["designation"])
}

func TestCloseApproachRowAndMapUnlinked(t *testing.T) {
	ca := models.NewCloseApproach("99942", "2029-Apr-13 21:46", "0.00025", "7.42")

	row := ca.Row()
	require.Len(t, row, 7)
	assert.Equal(t, []string{"", "", "", ""}, row[3:])

	m := ca.Map()
	assert.Nil(t, m["neo"])
}
