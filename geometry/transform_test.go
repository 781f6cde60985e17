package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity_RoundTrip(t *testing.T) {
	tr := Identity{}
	p := Point{Lat: 52.5, Lon: 13.4}

	pl := tr.Forward(p)
	assert.Equal(t, 13.4, pl.X)
	assert.Equal(t, 52.5, pl.Y)

	back := tr.Inverse(pl)
	assert.Equal(t, p, back)
}

func TestMercator_KnownValues(t *testing.T) {
	tr := Mercator{}

	// Equator origin maps to the plane origin.
	origin := tr.Forward(Point{Lat: 0, Lon: 0})
	assert.InDelta(t, 0, origin.X, 1e-6)
	assert.InDelta(t, 0, origin.Y, 1e-6)

	// The antimeridian sits at pi * earth radius.
	edge := tr.Forward(Point{Lat: 0, Lon: 180})
	assert.InDelta(t, math.Pi*earthRadius, edge.X, 1e-3)
}

func TestMercator_RoundTrip(t *testing.T) {
	tr := Mercator{}
	pts := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 52.52, Lon: 13.405},
		{Lat: -33.86, Lon: 151.21},
		{Lat: 60.17, Lon: 24.94},
	}

	for _, p := range pts {
		back := tr.Inverse(tr.Forward(p))
		assert.InDelta(t, p.Lat, back.Lat, 1e-9)
		assert.InDelta(t, p.Lon, back.Lon, 1e-9)
	}
}

func TestMercator_MetersAtEquator(t *testing.T) {
	// One degree of longitude at the equator is about 111.3 km.
	tr := Mercator{}
	a := tr.Forward(Point{Lat: 0, Lon: 0})
	b := tr.Forward(Point{Lat: 0, Lon: 1})

	assert.InDelta(t, 111319.49, a.Distance(b), 1.0)
}

func TestTransformByName(t *testing.T) {
	tests := []struct {
		name     string
		arg      string
		wantName string
		wantOK   bool
	}{
		{"default", "", "identity", true},
		{"identity", "identity", "identity", true},
		{"mercator", "mercator", "mercator", true},
		{"unknown", "gauss-krueger", "", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tr, ok := TransformByName(test.arg)
			require.Equal(t, test.wantOK, ok)
			if ok {
				assert.Equal(t, test.wantName, tr.Name())
			}
		})
	}
}

func TestPoint_IsFinite(t *testing.T) {
	assert.True(t, Point{Lat: 1, Lon: 2}.IsFinite())
	assert.False(t, Point{Lat: math.NaN(), Lon: 2}.IsFinite())
	assert.False(t, Point{Lat: 1, Lon: math.Inf(1)}.IsFinite())
}
