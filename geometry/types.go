// Package geometry provides the planar projection layer for the
// district-heating topology builder: WGS84 point types, coordinate
// transforms, and the perpendicular foot-point search that attaches
// buildings and producers to street segments.
package geometry

import "math"

// Point is a WGS84 coordinate as stored in the scenario and network tables.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0)
}

// Planar is a coordinate in the projection plane. All distance and
// foot-point math runs on Planar values; Points only enter and leave
// through a Transform.
type Planar struct {
	X float64
	Y float64
}

// Sub returns the vector from o to p.
func (p Planar) Sub(o Planar) Planar {
	return Planar{X: p.X - o.X, Y: p.Y - o.Y}
}

// Dot returns the dot product of two planar vectors.
func (p Planar) Dot(o Planar) float64 {
	return p.X*o.X + p.Y*o.Y
}

// Distance returns the Euclidean distance between two planar points.
func (p Planar) Distance(o Planar) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Segment is a named street axis between two WGS84 endpoints. The builder
// treats every street as a single straight segment; polyline streets are
// split into one segment per piece by the ingest layer.
type Segment struct {
	Label string
	From  Point
	To    Point
}
