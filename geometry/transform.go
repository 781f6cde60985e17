package geometry

import "math"

// Transform maps WGS84 coordinates into a plane suitable for Euclidean
// distance math and back. Implementations must be pure: the same input
// always yields the same output, with no internal state.
type Transform interface {
	// Forward maps a WGS84 point into the projection plane.
	Forward(p Point) Planar
	// Inverse maps a planar coordinate back to WGS84.
	Inverse(pl Planar) Point
	// Name identifies the transform in logs and checkpoints.
	Name() string
}

// Identity maps longitude to X and latitude to Y without scaling. Distances
// come out in coordinate units, which keeps synthetic scenarios exact; real
// lat/lon scenarios should use Mercator instead.
type Identity struct{}

// Forward implements Transform.
func (Identity) Forward(p Point) Planar {
	return Planar{X: p.Lon, Y: p.Lat}
}

// Inverse implements Transform.
func (Identity) Inverse(pl Planar) Point {
	return Point{Lat: pl.Y, Lon: pl.X}
}

// Name implements Transform.
func (Identity) Name() string { return "identity" }

// earthRadius is the WGS84 equatorial radius in meters.
const earthRadius = 6378137.0

// Mercator is a spherical-mercator projection yielding coordinates in
// meters. Pipe lengths computed under it are slightly stretched away from
// the equator, which is acceptable for the street-scale distances the
// builder works at.
type Mercator struct{}

// Forward implements Transform.
func (Mercator) Forward(p Point) Planar {
	x := earthRadius * p.Lon * math.Pi / 180
	y := earthRadius * math.Log(math.Tan(math.Pi/4+p.Lat*math.Pi/360))
	return Planar{X: x, Y: y}
}

// Inverse implements Transform.
func (Mercator) Inverse(pl Planar) Point {
	lon := pl.X / earthRadius * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(pl.Y/earthRadius)) - math.Pi/2) * 180 / math.Pi
	return Point{Lat: lat, Lon: lon}
}

// Name implements Transform.
func (Mercator) Name() string { return "mercator" }

// TransformByName returns the transform registered under name, defaulting
// to Identity for an empty name.
func TransformByName(name string) (Transform, bool) {
	switch name {
	case "", "identity":
		return Identity{}, true
	case "mercator":
		return Mercator{}, true
	default:
		return nil, false
	}
}
