package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L4rsG/SESMG/errors"
)

func TestProjector_Project_Perpendicular(t *testing.T) {
	// Street along y=0 from x=0 to x=10, request at (5,3): the
	// perpendicular lands at (5,0), three units away, halfway along.
	pr := NewProjector(Identity{})
	seg := Segment{
		Label: "main-street",
		From:  Point{Lat: 0, Lon: 0},
		To:    Point{Lat: 0, Lon: 10},
	}

	fp := pr.Project(Point{Lat: 3, Lon: 5}, seg)

	assert.InDelta(t, 5.0, fp.Pos.Lon, 1e-9)
	assert.InDelta(t, 0.0, fp.Pos.Lat, 1e-9)
	assert.InDelta(t, 3.0, fp.Distance, 1e-9)
	assert.InDelta(t, 0.5, fp.T, 1e-9)
	assert.Equal(t, "main-street", fp.Street)
	assert.True(t, fp.Interior)
}

func TestProjector_Project_EndpointFallback(t *testing.T) {
	pr := NewProjector(Identity{})
	seg := Segment{
		Label: "main-street",
		From:  Point{Lat: 0, Lon: 0},
		To:    Point{Lat: 0, Lon: 10},
	}

	tests := []struct {
		name     string
		request  Point
		wantPos  Point
		wantT    float64
		wantDist float64
	}{
		{
			name:     "beyond second endpoint",
			request:  Point{Lat: 4, Lon: 12},
			wantPos:  Point{Lat: 0, Lon: 10},
			wantT:    1,
			wantDist: math.Sqrt(4*4 + 2*2),
		},
		{
			name:     "before first endpoint",
			request:  Point{Lat: 1, Lon: -3},
			wantPos:  Point{Lat: 0, Lon: 0},
			wantT:    0,
			wantDist: math.Sqrt(1 + 9),
		},
		{
			name:     "exactly above first endpoint",
			request:  Point{Lat: 2, Lon: 0},
			wantPos:  Point{Lat: 0, Lon: 0},
			wantT:    0,
			wantDist: 2,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fp := pr.Project(test.request, seg)
			assert.InDelta(t, test.wantPos.Lat, fp.Pos.Lat, 1e-9)
			assert.InDelta(t, test.wantPos.Lon, fp.Pos.Lon, 1e-9)
			assert.InDelta(t, test.wantT, fp.T, 1e-9)
			assert.InDelta(t, test.wantDist, fp.Distance, 1e-9)
			assert.False(t, fp.Interior, "endpoint fallback must not be interior")
		})
	}
}

func TestProjector_Project_DegenerateSegment(t *testing.T) {
	// Both endpoints coincide: the segment contributes its single point
	// instead of dividing by zero.
	pr := NewProjector(Identity{})
	seg := Segment{
		Label: "stub",
		From:  Point{Lat: 2, Lon: 2},
		To:    Point{Lat: 2, Lon: 2},
	}

	fp := pr.Project(Point{Lat: 2, Lon: 5}, seg)

	assert.Equal(t, Point{Lat: 2, Lon: 2}, fp.Pos)
	assert.InDelta(t, 3.0, fp.Distance, 1e-9)
	assert.Zero(t, fp.T)
	assert.False(t, fp.Interior)
}

func TestProjector_NearestFootPoint_PicksClosest(t *testing.T) {
	pr := NewProjector(Identity{})
	segs := []Segment{
		{Label: "far", From: Point{Lat: 10, Lon: 0}, To: Point{Lat: 10, Lon: 10}},
		{Label: "near", From: Point{Lat: 1, Lon: 0}, To: Point{Lat: 1, Lon: 10}},
	}

	fp, err := pr.NearestFootPoint(Point{Lat: 0, Lon: 5}, segs)
	require.NoError(t, err)

	assert.Equal(t, "near", fp.Street)
	assert.InDelta(t, 1.0, fp.Distance, 1e-9)
}

func TestProjector_NearestFootPoint_TieKeepsFirst(t *testing.T) {
	// Request sits exactly between two parallel streets; the street
	// earlier in iteration order wins the tie.
	pr := NewProjector(Identity{})
	segs := []Segment{
		{Label: "north", From: Point{Lat: 6, Lon: 0}, To: Point{Lat: 6, Lon: 10}},
		{Label: "south", From: Point{Lat: 0, Lon: 0}, To: Point{Lat: 0, Lon: 10}},
	}

	fp, err := pr.NearestFootPoint(Point{Lat: 3, Lon: 5}, segs)
	require.NoError(t, err)

	assert.Equal(t, "north", fp.Street)
	assert.InDelta(t, 3.0, fp.Distance, 1e-9)
}

func TestProjector_NearestFootPoint_NoStreets(t *testing.T) {
	pr := NewProjector(Identity{})

	_, err := pr.NearestFootPoint(Point{Lat: 1, Lon: 1}, nil)

	require.Error(t, err)
	assert.True(t, errors.IsGeometry(err))
	assert.ErrorIs(t, err, errors.ErrNoActiveStreets)
}

func TestProjector_Length(t *testing.T) {
	pr := NewProjector(Identity{})

	length := pr.Length(Point{Lat: 0, Lon: 0}, Point{Lat: 3, Lon: 4})

	assert.InDelta(t, 5.0, length, 1e-9)
}
