package persist

import (
	"encoding/json"
	"io"

	"github.com/L4rsG/SESMG/errors"
	"github.com/L4rsG/SESMG/geometry"
	"github.com/L4rsG/SESMG/network"
)

type geoFeature struct {
	Type       string         `json:"type"`
	Geometry   geoGeometry    `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geoGeometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

type geoCollection struct {
	Type     string       `json:"type"`
	Features []geoFeature `json:"features"`
}

// ExportGeoJSON writes the graph as a FeatureCollection: one Point
// feature per node carrying a "kind" property, one LineString per pipe.
// Coordinates follow the GeoJSON lon/lat order. The output feeds external
// map tooling; it is not read back.
func ExportGeoJSON(w io.Writer, g *network.Graph) error {
	if g == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "persist", "ExportGeoJSON", "graph is nil")
	}

	positions := make(map[network.NodeID]geometry.Point)
	var features []geoFeature

	for _, f := range g.Forks() {
		positions[f.ID] = f.Pos
		props := map[string]any{
			"id":   f.ID.String(),
			"kind": f.ID.Kind.String(),
		}
		if f.Street != "" {
			props["street"] = f.Street
			props["t"] = f.T
		}
		if f.Bus != "" {
			props["bus"] = f.Bus
		}
		features = append(features, pointFeature(f.Pos, props))
	}

	for _, c := range g.Consumers() {
		positions[c.ID] = c.Pos
		features = append(features, pointFeature(c.Pos, map[string]any{
			"id":     c.ID.String(),
			"kind":   c.ID.Kind.String(),
			"label":  c.Label,
			"demand": c.Demand,
			"street": c.Street,
		}))
	}

	for _, p := range g.Producers() {
		positions[p.ID] = p.Pos
		features = append(features, pointFeature(p.Pos, map[string]any{
			"id":    p.ID.String(),
			"kind":  p.ID.Kind.String(),
			"label": p.Label,
		}))
	}

	for _, p := range g.Pipes() {
		from, okFrom := positions[p.From]
		to, okTo := positions[p.To]
		if !okFrom || !okTo {
			return errors.WrapTopology(errors.ErrOrphanedPipe, "persist", "ExportGeoJSON", "resolve pipe endpoints")
		}
		features = append(features, geoFeature{
			Type: "Feature",
			Geometry: geoGeometry{
				Type:        "LineString",
				Coordinates: [][]float64{{from.Lon, from.Lat}, {to.Lon, to.Lat}},
			},
			Properties: map[string]any{
				"id":     p.ID,
				"from":   p.From.String(),
				"to":     p.To.String(),
				"length": p.Length,
				"street": p.Street,
			},
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(geoCollection{Type: "FeatureCollection", Features: features}); err != nil {
		return errors.WrapInvalid(err, "persist", "ExportGeoJSON", "encode feature collection")
	}
	return nil
}

func pointFeature(pos geometry.Point, props map[string]any) geoFeature {
	return geoFeature{
		Type: "Feature",
		Geometry: geoGeometry{
			Type:        "Point",
			Coordinates: []float64{pos.Lon, pos.Lat},
		},
		Properties: props,
	}
}
