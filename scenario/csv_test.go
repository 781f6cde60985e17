package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L4rsG/SESMG/errors"
)

func writeScenarioDir(t *testing.T, streets, buildings, buses string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StreetsFile), []byte(streets), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, BuildingsFile), []byte(buildings), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, BusesFile), []byte(buses), 0o644))
	return dir
}

const (
	streetsCSV = `label,active,lat. 1st intersection,lon. 1st intersection,lat. 2nd intersection,lon. 2nd intersection
main-street,1,0,0,0,10
side-street,1,0,10,6,10
closed-road,0,5,5,9,9
`
	buildingsCSV = `label,active,lat,lon,district heating conn.,demand
house-1,1,3,5,1,12.5
house-2,1,1,8,main-street-2,
warehouse,1,2,2,0,
`
	busesCSV = `label,active,lat,lon,district heating conn.
heat-plant,1,1,1,dh-system
grid,1,4,4,0
`
)

func TestLoadCSV(t *testing.T) {
	dir := writeScenarioDir(t, streetsCSV, buildingsCSV, busesCSV)

	scen, err := LoadCSV(dir)
	require.NoError(t, err)

	require.Len(t, scen.Streets, 3)
	assert.Equal(t, "main-street", scen.Streets[0].Label)
	assert.True(t, scen.Streets[0].Active)
	assert.Equal(t, 10.0, scen.Streets[0].To.Lon)
	assert.False(t, scen.Streets[2].Active)

	require.Len(t, scen.Buildings, 3)
	assert.Equal(t, ConnPerpendicular, scen.Buildings[0].Connection.Mode)
	assert.Equal(t, 12.5, scen.Buildings[0].Demand)
	assert.Equal(t, Connection{Mode: ConnStreetEnd, Street: "main-street", End: 2},
		scen.Buildings[1].Connection)
	assert.Equal(t, 1.0, scen.Buildings[1].Demand, "missing demand defaults to the placeholder")
	assert.Equal(t, ConnNone, scen.Buildings[2].Connection.Mode)

	require.Len(t, scen.Buses, 2)
	assert.True(t, scen.Buses[0].DHSystem)
	assert.False(t, scen.Buses[1].DHSystem)
}

func TestLoadCSV_SkipsBlankRows(t *testing.T) {
	dir := writeScenarioDir(t,
		streetsCSV+"\n,,,,,\n",
		buildingsCSV,
		busesCSV,
	)

	scen, err := LoadCSV(dir)
	require.NoError(t, err)
	assert.Len(t, scen.Streets, 3)
}

func TestLoadCSV_MissingColumn(t *testing.T) {
	badStreets := `label,active,lat. 1st intersection,lon. 1st intersection
main-street,1,0,0
`
	dir := writeScenarioDir(t, badStreets, buildingsCSV, busesCSV)

	_, err := LoadCSV(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingColumn)
	assert.True(t, errors.IsInvalid(err))
}

func TestLoadCSV_BadCoordinate(t *testing.T) {
	badBuildings := `label,active,lat,lon,district heating conn.
house-1,1,north,5,1
`
	dir := writeScenarioDir(t, streetsCSV, badBuildings, busesCSV)

	_, err := LoadCSV(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBadCoordinate)
}

func TestLoadCSV_BadConnection(t *testing.T) {
	badBuildings := `label,active,lat,lon,district heating conn.
house-1,1,3,5,sideways
`
	dir := writeScenarioDir(t, streetsCSV, badBuildings, busesCSV)

	_, err := LoadCSV(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownConnection)
}

func TestLoadCSV_BadBusConnection(t *testing.T) {
	badBuses := `label,active,lat,lon,district heating conn.
heat-plant,1,1,1,sometimes
`
	dir := writeScenarioDir(t, streetsCSV, buildingsCSV, badBuses)

	_, err := LoadCSV(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownConnection)
}

func TestLoadCSV_MissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCSV(dir)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestParseActive_FloatFlag(t *testing.T) {
	// Spreadsheet exports render flags as floats.
	active, err := parseActive("1.0")
	require.NoError(t, err)
	assert.True(t, active)

	inactive, err := parseActive("0.0")
	require.NoError(t, err)
	assert.False(t, inactive)

	_, err = parseActive("maybe")
	require.Error(t, err)
}
