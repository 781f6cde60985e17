package cluster

import (
	"log/slog"

	"github.com/L4rsG/SESMG/errors"
	"github.com/L4rsG/SESMG/metric"
	"github.com/L4rsG/SESMG/network"
)

// Reducer merges assigned consumers in place. It holds no per-run state,
// so one Reducer serves any number of graphs.
type Reducer struct {
	logger  *slog.Logger
	metrics *metric.Metrics
}

// NewReducer creates a Reducer. Metrics may be nil when no registry is
// wired.
func NewReducer(logger *slog.Logger, metrics *metric.Metrics) *Reducer {
	return &Reducer{logger: logger, metrics: metrics}
}

// Stats summarizes one reduction.
type Stats struct {
	// Groups is the number of distinct cluster IDs found among the
	// graph's consumers.
	Groups int
	// Merged is the number of consumers removed by merging into their
	// group's aggregate.
	Merged int
	// PipesRedirected counts pipes whose endpoint moved to an aggregate.
	PipesRedirected int
	// PipesDropped counts pipes removed because both endpoints collapsed
	// onto the same node.
	PipesDropped int
	// Demand is the total consumer demand after the reduction. Merging
	// sums demands, so this equals the total before.
	Demand float64
}

// Reduce merges the graph's consumers according to the assignment. Each
// cluster collapses to a single aggregate consumer carrying the cluster
// ID as label, the first member's position and street attachment, and the
// summed demand of all members. Pipes that referenced a removed member
// are re-pointed to the aggregate; pipes whose endpoints collapse onto
// the same node are dropped. Producers and forks are never merged. The
// graph is renormalized and checked before Reduce returns.
func (r *Reducer) Reduce(g *network.Graph, asg Assignment) (*Stats, error) {
	if g == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Reducer", "Reduce", "graph is nil")
	}

	consumers := g.Consumers()

	type group struct {
		keptIdx int
		demand  float64
		members int
	}
	groups := make(map[string]*group)
	var order []string
	remap := make(map[network.NodeID]network.NodeID)

	kept := make([]network.Consumer, 0, len(consumers))
	stats := &Stats{}

	for _, c := range consumers {
		clusterID, assigned := asg[c.Label]
		if !assigned {
			kept = append(kept, c)
			stats.Demand += c.Demand
			continue
		}

		grp, seen := groups[clusterID]
		if !seen {
			// First member becomes the aggregate: it keeps its position,
			// street attachment, and connecting pipe, and takes the
			// cluster ID as its label.
			aggregate := c
			aggregate.Label = clusterID
			groups[clusterID] = &group{keptIdx: len(kept), demand: c.Demand, members: 1}
			order = append(order, clusterID)
			kept = append(kept, aggregate)
			stats.Demand += c.Demand
			continue
		}

		remap[c.ID] = kept[grp.keptIdx].ID
		grp.demand += c.Demand
		grp.members++
		stats.Merged++
		stats.Demand += c.Demand
	}

	for _, clusterID := range order {
		grp := groups[clusterID]
		kept[grp.keptIdx].Demand = grp.demand
		r.logger.Debug("reduced cluster",
			"cluster", clusterID,
			"members", grp.members,
			"demand", grp.demand,
			"representative", kept[grp.keptIdx].ID.String())
	}

	pipes := g.Pipes()
	reduced := make([]network.Pipe, 0, len(pipes))
	for _, p := range pipes {
		changed := false
		if survivor, ok := remap[p.From]; ok {
			p.From = survivor
			changed = true
		}
		if survivor, ok := remap[p.To]; ok {
			p.To = survivor
			changed = true
		}
		if p.From == p.To {
			stats.PipesDropped++
			continue
		}
		if changed {
			stats.PipesRedirected++
		}
		reduced = append(reduced, p)
	}

	stats.Groups = len(order)

	g.ReplaceConsumers(kept)
	g.ReplacePipes(reduced)

	if err := g.Normalize(); err != nil {
		return nil, errors.Wrap(err, "Reducer", "Reduce", "normalize reduced graph")
	}
	if err := g.Check(); err != nil {
		return nil, errors.Wrap(err, "Reducer", "Reduce", "check reduced graph")
	}

	if r.metrics != nil {
		r.metrics.RecordClusterReduction(stats.Groups, stats.Merged)
	}

	r.logger.Info("cluster reduction complete",
		"groups", stats.Groups,
		"merged", stats.Merged,
		"pipes_redirected", stats.PipesRedirected,
		"pipes_dropped", stats.PipesDropped)

	return stats, nil
}
