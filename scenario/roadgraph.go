package scenario

import (
	"fmt"

	"github.com/mitroadmaps/gomapinfer/common"

	"github.com/L4rsG/SESMG/errors"
	"github.com/L4rsG/SESMG/geometry"
)

// StreetsFromRoadGraph loads a road network in the .graph format used by
// map-inference tooling and turns every undirected edge into one active
// street labeled "<prefix>-<n>". Graph coordinates are planar already, so
// scenarios built this way should run under the identity transform.
func StreetsFromRoadGraph(path, prefix string) ([]Street, error) {
	graph, err := common.ReadGraph(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Scenario", "StreetsFromRoadGraph", "read road graph")
	}
	return streetsFromGraph(graph, prefix), nil
}

// streetsFromGraph walks the edge list once. Road graphs store each
// bidirectional street as two directed edges; the node-ID pair dedupe
// keeps one street per carriageway. Self-loops carry no length and are
// skipped.
func streetsFromGraph(graph *common.Graph, prefix string) []Street {
	seen := make(map[[2]int]bool, len(graph.Edges))
	var streets []Street
	for _, edge := range graph.Edges {
		a, b := edge.Src.ID, edge.Dst.ID
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		key := [2]int{a, b}
		if seen[key] {
			continue
		}
		seen[key] = true

		streets = append(streets, Street{
			Label:  fmt.Sprintf("%s-%d", prefix, len(streets)+1),
			From:   pointFromPlanar(edge.Src.Point),
			To:     pointFromPlanar(edge.Dst.Point),
			Active: true,
		})
	}
	return streets
}

// pointFromPlanar maps a planar graph coordinate onto the lat/lon layout
// the identity transform inverts: X carries east, Y carries north.
func pointFromPlanar(p common.Point) geometry.Point {
	return geometry.Point{Lat: p.Y, Lon: p.X}
}
