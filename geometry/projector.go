package geometry

import (
	"github.com/L4rsG/SESMG/errors"
)

// FootPoint is the result of dropping a request coordinate onto a street:
// the attachment position for the fork that will carry the connection.
type FootPoint struct {
	// Pos is the foot point in WGS84.
	Pos Point
	// Distance is the planar distance from the request to the foot point,
	// used as the length of the connecting pipe.
	Distance float64
	// T is the relative position of the foot point along the street axis,
	// in [0, 1] from the first to the second endpoint.
	T float64
	// Street is the label of the street the foot point lies on.
	Street string
	// Interior reports whether the perpendicular landed strictly between
	// the endpoints. When false the foot point is the nearer endpoint.
	Interior bool
}

// Projector drops request coordinates onto street segments. All math runs
// in the plane of the configured transform.
type Projector struct {
	transform Transform
}

// NewProjector creates a Projector using the given transform.
func NewProjector(transform Transform) *Projector {
	return &Projector{transform: transform}
}

// Transform returns the transform the projector computes in.
func (pr *Projector) Transform() Transform {
	return pr.transform
}

// Project drops p onto the segment and returns the foot point. When the
// perpendicular from p misses the open interval between the endpoints, the
// nearer endpoint is returned instead, with T clamped to 0 or 1 and the
// distance measured to that endpoint. A degenerate segment with coinciding
// endpoints yields its endpoint at T=0.
func (pr *Projector) Project(p Point, seg Segment) FootPoint {
	pp := pr.transform.Forward(p)
	a := pr.transform.Forward(seg.From)
	b := pr.transform.Forward(seg.To)

	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den == 0 {
		return FootPoint{
			Pos:      seg.From,
			Distance: pp.Distance(a),
			T:        0,
			Street:   seg.Label,
		}
	}

	t := pp.Sub(a).Dot(ab) / den
	switch {
	case t <= 0:
		return FootPoint{
			Pos:      seg.From,
			Distance: pp.Distance(a),
			T:        0,
			Street:   seg.Label,
		}
	case t >= 1:
		return FootPoint{
			Pos:      seg.To,
			Distance: pp.Distance(b),
			T:        1,
			Street:   seg.Label,
		}
	}

	foot := Planar{X: a.X + t*ab.X, Y: a.Y + t*ab.Y}
	return FootPoint{
		Pos:      pr.transform.Inverse(foot),
		Distance: pp.Distance(foot),
		T:        t,
		Street:   seg.Label,
		Interior: true,
	}
}

// NearestFootPoint projects p onto every segment in order and returns the
// foot point with the smallest distance. Comparison is strict, so when two
// streets are exactly equidistant the one earlier in the slice wins. An
// empty segment slice is a geometry error: there is nothing to project
// onto.
func (pr *Projector) NearestFootPoint(p Point, segs []Segment) (FootPoint, error) {
	if len(segs) == 0 {
		return FootPoint{}, errors.WrapGeometry(
			errors.ErrNoActiveStreets, "Projector", "NearestFootPoint", "select street")
	}

	best := pr.Project(p, segs[0])
	for _, seg := range segs[1:] {
		fp := pr.Project(p, seg)
		if fp.Distance < best.Distance {
			best = fp
		}
	}
	return best, nil
}

// Length returns the planar distance between two WGS84 points under the
// projector's transform. Street chains use it for pipe lengths.
func (pr *Projector) Length(a, b Point) float64 {
	return pr.transform.Forward(a).Distance(pr.transform.Forward(b))
}
