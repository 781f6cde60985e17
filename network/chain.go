package network

import (
	"fmt"
	"sort"

	"github.com/L4rsG/SESMG/errors"
	"github.com/L4rsG/SESMG/geometry"
)

// ChainPoint is one node to thread onto a street: a fork with its position
// and its relative place along the street axis.
type ChainPoint struct {
	ID  NodeID
	Pos geometry.Point
	T   float64
}

// BuildChain threads the given points along a street and connects each
// adjacent pair with a pipe. Points are ordered by T with a stable sort,
// so points sharing a T keep their insertion order; duplicates of the same
// node collapse onto the first occurrence so no zero-length pipes appear.
// The length function measures pipe lengths in the projection plane.
//
// Returns the number of pipes created. An empty point slice is a topology
// error; a single distinct point creates no pipes, which happens only for
// degenerate streets whose endpoints coincide.
func (g *Graph) BuildChain(street string, points []ChainPoint, length func(a, b geometry.Point) float64) (int, error) {
	if len(points) == 0 {
		return 0, errors.WrapTopology(
			fmt.Errorf("%w: street %q", errors.ErrZeroLengthRun, street),
			"Graph", "BuildChain", "order street points")
	}

	ordered := make([]ChainPoint, len(points))
	copy(ordered, points)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].T < ordered[j].T
	})

	// Collapse repeated nodes. A fork can arrive twice when it is both a
	// street endpoint and a tagged foot point at t=0 or t=1.
	distinct := ordered[:0]
	seen := make(map[NodeID]bool, len(ordered))
	for _, p := range ordered {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		distinct = append(distinct, p)
	}

	created := 0
	for i := 1; i < len(distinct); i++ {
		prev, next := distinct[i-1], distinct[i]
		segLen := length(prev.Pos, next.Pos)
		if segLen == 0 {
			// Distinct nodes on identical coordinates would produce a
			// zero-length pipe; skip the pair instead.
			continue
		}
		g.AddPipe(prev.ID, next.ID, segLen, street)
		created++
	}

	return created, nil
}
