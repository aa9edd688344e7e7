package extract_test

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalu/neos/internal/extract"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLoadNEOs(t *testing.T) {
	loader := extract.NewLoader(quietLogger())

	neos, err := loader.LoadNEOs(filepath.Join("testdata", "neos.csv"))
	require.NoError(t, err)
	require.Len(t, neos, 3)

	eros := neos[0]
	assert.Equal(t, "433", eros.Designation)
	assert.Equal(t, "Eros", eros.Name)
	assert.InDelta(t, 16.84, eros.Diameter, 1e-9)
	assert.False(t, eros.Hazardous)

	icarus := neos[1]
	assert.Equal(t, "1566", icarus.Designation)
	assert.True(t, icarus.Hazardous)

	anonymous := neos[2]
	assert.Equal(t, "2020 BZ", anonymous.Designation)
	assert.False(t, anonymous.HasName())
	assert.True(t, math.IsNaN(anonymous.Diameter))
	assert.False(t, anonymous.Hazardous)
}

func TestLoadNEOsMissingFile(t *testing.T) {
	loader := extract.NewLoader(quietLogger())

	_, err := loader.LoadNEOs(filepath.Join("testdata", "does-not-exist.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadNEOsMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("pdes,name,pha\n433,Eros,N\n"), 0o644))

	loader := extract.NewLoader(quietLogger())
	_, err := loader.LoadNEOs(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diameter")
}

func TestLoadApproaches(t *testing.T) {
	loader := extract.NewLoader(quietLogger())

	approaches, err := loader.LoadApproaches(filepath.Join("testdata", "cad.json"))
	require.NoError(t, err)
	// The short trailing row is skipped.
	require.Len(t, approaches, 4)

	first := approaches[0]
	assert.Equal(t, "433", first.Designation)
	assert.Equal(t, "2020-01-01 12:30", first.TimeStr())
	assert.InDelta(t, 0.15, first.Distance, 1e-9)
	assert.InDelta(t, 5.0, first.Velocity, 1e-9)
	assert.Nil(t, first.NEO)

	// Row order is the file's row order.
	assert.Equal(t, "2020 bz", approaches[1].Designation)
	assert.Equal(t, "2020 BZ", approaches[2].Designation)
	assert.Equal(t, "99942", approaches[3].Designation)
}

func TestLoadApproachesGrouped(t *testing.T) {
	loader := extract.NewLoader(quietLogger())

	grouped, err := loader.LoadApproachesGrouped(filepath.Join("testdata", "cad.json"))
	require.NoError(t, err)
	require.Len(t, grouped, 3)

	// The two case variants of "2020 BZ" land in the same group, in row order.
	group := grouped["2020 bz"]
	require.Len(t, group, 2)
	assert.Equal(t, "2020-01-31 16:05", group[0].TimeStr())
	assert.Equal(t, "2020-03-01 09:00", group[1].TimeStr())

	assert.Len(t, grouped["433"], 1)
	assert.Len(t, grouped["99942"], 1)
}

func TestLoadApproachesMissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	payload := `{"fields":["des","cd","dist"],"data":[["433","2020-Jan-01 12:30","0.15"]]}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	loader := extract.NewLoader(quietLogger())
	_, err := loader.LoadApproaches(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "v_rel")
}

func TestLoadApproachesMissingFile(t *testing.T) {
	loader := extract.NewLoader(quietLogger())

	_, err := loader.LoadApproaches(filepath.Join("testdata", "does-not-exist.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
