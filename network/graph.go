package network

import (
	"fmt"
	"sync"

	"github.com/L4rsG/SESMG/errors"
	"github.com/L4rsG/SESMG/geometry"
)

// Graph is the in-memory network under construction: the fork, consumer,
// producer, and pipe tables plus the indexes that keep node creation
// idempotent. All state lives on the instance; two builds never share
// anything.
//
// Graph is safe for concurrent use. Construction is single-writer in
// practice, but checkpoint writing reads the four tables from parallel
// goroutines.
type Graph struct {
	mu sync.RWMutex

	forks     []Fork
	consumers []Consumer
	producers []Producer
	pipes     []Pipe

	// forkByPos dedupes forks on exact coordinates, mirroring the
	// spreadsheet-value equality of the upstream model definitions. Two
	// foot points must be bit-identical to share a fork.
	forkByPos map[geometry.Point]NodeID
	forkIndex map[NodeID]int
}

// NewGraph creates an empty network graph.
func NewGraph() *Graph {
	g := &Graph{}
	g.reset()
	return g
}

func (g *Graph) reset() {
	g.forks = nil
	g.consumers = nil
	g.producers = nil
	g.pipes = nil
	g.forkByPos = make(map[geometry.Point]NodeID)
	g.forkIndex = make(map[NodeID]int)
}

// Clear drops all tables and indexes, returning the graph to its freshly
// constructed state.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
}

// AddFork creates a fork at pos or returns the identifier of the fork
// already sitting there. On reuse, attributes the existing fork lacks are
// filled in from the new request: the first street to claim a shared
// intersection keeps it, and a producer connecting to an existing foot
// point adds its bus label without disturbing the street tag.
func (g *Graph) AddFork(pos geometry.Point, street string, t float64, bus string) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id, ok := g.forkByPos[pos]; ok {
		fork := &g.forks[g.forkIndex[id]]
		if fork.Street == "" && street != "" {
			fork.Street = street
			fork.T = t
		}
		if fork.Bus == "" && bus != "" {
			fork.Bus = bus
		}
		return id
	}

	id := NodeID{Kind: KindFork, Num: len(g.forks)}
	g.forks = append(g.forks, Fork{ID: id, Pos: pos, Street: street, T: t, Bus: bus})
	g.forkByPos[pos] = id
	g.forkIndex[id] = len(g.forks) - 1
	return id
}

// AddConsumer appends a consumer row and returns its identifier.
func (g *Graph) AddConsumer(label string, pos geometry.Point, demand float64, street string) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := NodeID{Kind: KindConsumer, Num: len(g.consumers)}
	g.consumers = append(g.consumers, Consumer{
		ID:     id,
		Label:  label,
		Pos:    pos,
		Demand: demand,
		Street: street,
	})
	return id
}

// AddProducer appends a producer row and returns its identifier.
func (g *Graph) AddProducer(label string, pos geometry.Point) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := NodeID{Kind: KindProducer, Num: len(g.producers)}
	g.producers = append(g.producers, Producer{ID: id, Label: label, Pos: pos})
	return id
}

// AddPipe appends a pipe between two nodes and returns its identifier.
// Pipe identifiers count from 1 in construction order.
func (g *Graph) AddPipe(from, to NodeID, length float64, street string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := len(g.pipes) + 1
	g.pipes = append(g.pipes, Pipe{
		ID:     id,
		From:   from,
		To:     to,
		Length: length,
		Street: street,
	})
	return id
}

// ForkAt returns the fork identifier at an exact coordinate.
func (g *Graph) ForkAt(pos geometry.Point) (NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, ok := g.forkByPos[pos]
	return id, ok
}

// Fork returns the fork row for id.
func (g *Graph) Fork(id NodeID) (Fork, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	idx, ok := g.forkIndex[id]
	if !ok {
		return Fork{}, false
	}
	return g.forks[idx], true
}

// ForksOnStreet returns the forks whose street tag matches label, in
// insertion order.
func (g *Graph) ForksOnStreet(label string) []Fork {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []Fork
	for _, f := range g.forks {
		if f.Street == label {
			out = append(out, f)
		}
	}
	return out
}

// Forks returns a copy of the fork table in insertion order.
func (g *Graph) Forks() []Fork {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Fork, len(g.forks))
	copy(out, g.forks)
	return out
}

// Consumers returns a copy of the consumer table in insertion order.
func (g *Graph) Consumers() []Consumer {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Consumer, len(g.consumers))
	copy(out, g.consumers)
	return out
}

// Producers returns a copy of the producer table in insertion order.
func (g *Graph) Producers() []Producer {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Producer, len(g.producers))
	copy(out, g.producers)
	return out
}

// Pipes returns a copy of the pipe table in insertion order.
func (g *Graph) Pipes() []Pipe {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Pipe, len(g.pipes))
	copy(out, g.pipes)
	return out
}

// Stats summarizes table sizes for logs and metrics.
type Stats struct {
	Forks     int `json:"forks"`
	Consumers int `json:"consumers"`
	Producers int `json:"producers"`
	Pipes     int `json:"pipes"`
}

// Stats returns the current table sizes.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return Stats{
		Forks:     len(g.forks),
		Consumers: len(g.consumers),
		Producers: len(g.producers),
		Pipes:     len(g.pipes),
	}
}

// Normalize renumbers every table densely in insertion order and remaps
// pipe endpoints to the new identifiers. It is idempotent; loading a
// checkpoint or reducing clusters leaves gaps that this pass closes. A
// pipe referencing a node that no table holds is a topology error.
func (g *Graph) Normalize() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	remap := make(map[NodeID]NodeID, len(g.forks)+len(g.consumers)+len(g.producers))

	for i := range g.forks {
		old := g.forks[i].ID
		id := NodeID{Kind: KindFork, Num: i}
		g.forks[i].ID = id
		remap[old] = id
	}
	for i := range g.consumers {
		old := g.consumers[i].ID
		id := NodeID{Kind: KindConsumer, Num: i}
		g.consumers[i].ID = id
		remap[old] = id
	}
	for i := range g.producers {
		old := g.producers[i].ID
		id := NodeID{Kind: KindProducer, Num: i}
		g.producers[i].ID = id
		remap[old] = id
	}

	for i := range g.pipes {
		from, ok := remap[g.pipes[i].From]
		if !ok {
			return errors.WrapTopology(
				fmt.Errorf("%w: pipe %d references %s", errors.ErrOrphanedPipe,
					g.pipes[i].ID, g.pipes[i].From),
				"Graph", "Normalize", "remap pipe endpoints")
		}
		to, ok := remap[g.pipes[i].To]
		if !ok {
			return errors.WrapTopology(
				fmt.Errorf("%w: pipe %d references %s", errors.ErrOrphanedPipe,
					g.pipes[i].ID, g.pipes[i].To),
				"Graph", "Normalize", "remap pipe endpoints")
		}
		g.pipes[i].From = from
		g.pipes[i].To = to
		g.pipes[i].ID = i + 1
	}

	g.forkByPos = make(map[geometry.Point]NodeID, len(g.forks))
	g.forkIndex = make(map[NodeID]int, len(g.forks))
	for i, f := range g.forks {
		g.forkByPos[f.Pos] = f.ID
		g.forkIndex[f.ID] = i
	}

	return nil
}

// Check verifies structural consistency: every pipe endpoint must resolve
// to a node in one of the three tables, and every consumer and producer
// must have at least one incident pipe. The first violation is returned
// as a topology error naming the offender.
func (g *Graph) Check() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make(map[NodeID]bool, len(g.forks)+len(g.consumers)+len(g.producers))
	for _, f := range g.forks {
		nodes[f.ID] = true
	}
	for _, c := range g.consumers {
		nodes[c.ID] = true
	}
	for _, p := range g.producers {
		nodes[p.ID] = true
	}

	incident := make(map[NodeID]int, len(nodes))
	for _, pipe := range g.pipes {
		if !nodes[pipe.From] {
			return errors.WrapTopology(
				fmt.Errorf("%w: pipe %d references %s", errors.ErrOrphanedPipe, pipe.ID, pipe.From),
				"Graph", "Check", "verify pipe endpoints")
		}
		if !nodes[pipe.To] {
			return errors.WrapTopology(
				fmt.Errorf("%w: pipe %d references %s", errors.ErrOrphanedPipe, pipe.ID, pipe.To),
				"Graph", "Check", "verify pipe endpoints")
		}
		incident[pipe.From]++
		incident[pipe.To]++
	}

	for _, c := range g.consumers {
		if incident[c.ID] == 0 {
			return errors.WrapTopology(
				fmt.Errorf("%w: consumer %s (%s)", errors.ErrIsolatedNode, c.ID, c.Label),
				"Graph", "Check", "verify consumer connectivity")
		}
	}
	for _, p := range g.producers {
		if incident[p.ID] == 0 {
			return errors.WrapTopology(
				fmt.Errorf("%w: producer %s (%s)", errors.ErrIsolatedNode, p.ID, p.Label),
				"Graph", "Check", "verify producer connectivity")
		}
	}

	return nil
}

// ReplaceConsumers swaps the consumer table, keeping insertion order of
// the replacement slice. Cluster reduction uses it to install aggregated
// consumers; identifiers are re-issued by the following Normalize.
func (g *Graph) ReplaceConsumers(consumers []Consumer) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.consumers = make([]Consumer, len(consumers))
	copy(g.consumers, consumers)
}

// ReplacePipes swaps the pipe table, keeping insertion order of the
// replacement slice.
func (g *Graph) ReplacePipes(pipes []Pipe) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pipes = make([]Pipe, len(pipes))
	copy(g.pipes, pipes)
}

// ReplaceProducers swaps the producer table, keeping insertion order of
// the replacement slice.
func (g *Graph) ReplaceProducers(producers []Producer) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.producers = make([]Producer, len(producers))
	copy(g.producers, producers)
}

// ReplaceForks swaps the fork table and rebuilds the fork indexes.
func (g *Graph) ReplaceForks(forks []Fork) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.forks = make([]Fork, len(forks))
	copy(g.forks, forks)
	g.forkByPos = make(map[geometry.Point]NodeID, len(g.forks))
	g.forkIndex = make(map[NodeID]int, len(g.forks))
	for i, f := range g.forks {
		g.forkByPos[f.Pos] = f.ID
		g.forkIndex[f.ID] = i
	}
}
