// Package assembler builds a district-heating network graph from a
// scenario: it connects buildings and producers to streets, threads the
// street chains, and hands back a normalized, checked topology ready for
// checkpointing or cluster reduction.
package assembler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/L4rsG/SESMG/errors"
	"github.com/L4rsG/SESMG/geometry"
	"github.com/L4rsG/SESMG/metric"
	"github.com/L4rsG/SESMG/network"
	"github.com/L4rsG/SESMG/scenario"
)

// Assembler runs the ordered build steps against a fresh graph instance
// per call. It holds no build state itself, so one Assembler serves any
// number of sequential builds.
type Assembler struct {
	projector *geometry.Projector
	logger    *slog.Logger
	metrics   *metric.Metrics
}

// New creates an Assembler projecting through the given transform.
// Metrics may be nil when no registry is wired.
func New(transform geometry.Transform, logger *slog.Logger, metrics *metric.Metrics) *Assembler {
	return &Assembler{
		projector: geometry.NewProjector(transform),
		logger:    logger,
		metrics:   metrics,
	}
}

// Result is the outcome of one build. Graph is nil when the scenario
// contains no connected buildings; that is a valid outcome, not an error.
type Result struct {
	Graph   *network.Graph
	Stats   network.Stats
	Elapsed time.Duration
}

// Present reports whether the scenario produced a district-heating
// network at all.
func (r *Result) Present() bool {
	return r != nil && r.Graph != nil
}

// Build assembles the network for a scenario. The steps run in order:
// consumer connection points, intersection forks, producer connection
// points, street chains, then normalization and the consistency check.
// The first reference or geometry failure aborts the whole build; no
// partial graph escapes. Cancellation is honored between steps.
func (a *Assembler) Build(ctx context.Context, scen *scenario.Scenario) (*Result, error) {
	start := time.Now()
	status := "error"
	defer func() {
		if a.metrics != nil {
			a.metrics.RecordBuild(status)
			a.metrics.RecordStageDuration("total", time.Since(start))
		}
	}()

	if err := scen.Validate(); err != nil {
		a.recordError(err)
		return nil, err
	}

	a.logger.Info("starting network build",
		"streets", len(scen.Streets),
		"active_streets", len(scen.ActiveStreets()),
		"buildings", len(scen.Buildings),
		"buses", len(scen.Buses))

	g := network.NewGraph()

	if err := a.timedStep(ctx, "consumer_connections", func() error {
		return a.connectConsumers(g, scen)
	}); err != nil {
		a.recordError(err)
		return nil, err
	}

	// A scenario in which no building joins the network is a valid
	// outcome: there is no district-heating network to build.
	if g.Stats().Consumers == 0 {
		a.logger.Warn("no district-heating network present",
			"buildings", len(scen.Buildings))
		status = "empty"
		return &Result{Elapsed: time.Since(start)}, nil
	}

	if err := a.timedStep(ctx, "intersection_forks", func() error {
		a.createIntersectionForks(g, scen)
		return nil
	}); err != nil {
		a.recordError(err)
		return nil, err
	}

	if err := a.timedStep(ctx, "producer_connections", func() error {
		return a.connectProducers(g, scen)
	}); err != nil {
		a.recordError(err)
		return nil, err
	}

	if err := a.timedStep(ctx, "street_chains", func() error {
		return a.buildStreetChains(g, scen)
	}); err != nil {
		a.recordError(err)
		return nil, err
	}

	if err := a.timedStep(ctx, "finalize", func() error {
		if err := g.Normalize(); err != nil {
			return err
		}
		return g.Check()
	}); err != nil {
		a.recordError(err)
		return nil, err
	}

	stats := g.Stats()
	if a.metrics != nil {
		a.metrics.RecordNodes(network.KindFork.String(), stats.Forks)
		a.metrics.RecordNodes(network.KindConsumer.String(), stats.Consumers)
		a.metrics.RecordNodes(network.KindProducer.String(), stats.Producers)

		var total float64
		for _, p := range g.Pipes() {
			total += p.Length
		}
		a.metrics.RecordPipes(stats.Pipes, total)
	}

	elapsed := time.Since(start)
	a.logger.Info("network build complete",
		"forks", stats.Forks,
		"consumers", stats.Consumers,
		"producers", stats.Producers,
		"pipes", stats.Pipes,
		"elapsed", elapsed)

	status = "ok"
	return &Result{Graph: g, Stats: stats, Elapsed: elapsed}, nil
}

// timedStep checks for cancellation, runs one build step, and records its
// duration under the stage name.
func (a *Assembler) timedStep(ctx context.Context, stage string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "Assembler", "Build", fmt.Sprintf("enter stage %s", stage))
	}

	stepStart := time.Now()
	err := fn()
	if a.metrics != nil {
		a.metrics.RecordStageDuration(stage, time.Since(stepStart))
	}
	return err
}

// connectConsumers creates a consumer node, a foot-point fork, and the
// connecting pipe for every active building that requests participation.
func (a *Assembler) connectConsumers(g *network.Graph, scen *scenario.Scenario) error {
	segs := scen.ActiveSegments()

	for _, b := range scen.Buildings {
		if !b.Active || !b.Connection.Participates() {
			continue
		}

		switch b.Connection.Mode {
		case scenario.ConnPerpendicular:
			fp, err := a.projector.NearestFootPoint(b.Pos, segs)
			if err != nil {
				return errors.Wrap(err, "Assembler", "connectConsumers",
					fmt.Sprintf("project building %q", b.Label))
			}
			a.attachConsumer(g, b, fp.Pos, fp.Street, fp.T, fp.Distance)

		case scenario.ConnStreetEnd:
			st, ok := scen.Street(b.Connection.Street)
			if !ok {
				return errors.WrapReference(
					fmt.Errorf("%w: street %q requested by building %q",
						errors.ErrStreetNotFound, b.Connection.Street, b.Label),
					"Assembler", "connectConsumers", "resolve street-end connection")
			}
			if !st.Active {
				return errors.WrapReference(
					fmt.Errorf("%w: street %q requested by building %q",
						errors.ErrStreetInactive, st.Label, b.Label),
					"Assembler", "connectConsumers", "resolve street-end connection")
			}
			pos, err := st.Endpoint(b.Connection.End)
			if err != nil {
				return errors.WrapInvalid(err, "Assembler", "connectConsumers",
					fmt.Sprintf("resolve endpoint for building %q", b.Label))
			}
			t := 0.0
			if b.Connection.End == 2 {
				t = 1.0
			}
			a.attachConsumer(g, b, pos, st.Label, t, a.projector.Length(b.Pos, pos))
		}
	}

	return nil
}

func (a *Assembler) attachConsumer(g *network.Graph, b scenario.Building, forkPos geometry.Point, street string, t, length float64) {
	forkID := g.AddFork(forkPos, street, t, "")
	consumerID := g.AddConsumer(b.Label, b.Pos, b.Demand, street)
	g.AddPipe(consumerID, forkID, length, street)

	a.logger.Debug("connected building",
		"building", b.Label,
		"consumer", consumerID.String(),
		"fork", forkID.String(),
		"street", street,
		"t", t,
		"length", length)
}

// createIntersectionForks ensures every endpoint of every active street
// has a fork. Shared intersections converge to a single fork through the
// coordinate dedupe.
func (a *Assembler) createIntersectionForks(g *network.Graph, scen *scenario.Scenario) {
	for _, st := range scen.ActiveStreets() {
		g.AddFork(st.From, "", 0, "")
		g.AddFork(st.To, "", 0, "")
	}
}

// connectProducers creates a producer node, its foot-point fork tagged
// with the bus label, and the connecting pipe for every active dh-system
// bus.
func (a *Assembler) connectProducers(g *network.Graph, scen *scenario.Scenario) error {
	segs := scen.ActiveSegments()

	for _, bus := range scen.Producers() {
		fp, err := a.projector.NearestFootPoint(bus.Pos, segs)
		if err != nil {
			return errors.Wrap(err, "Assembler", "connectProducers",
				fmt.Sprintf("project bus %q", bus.Label))
		}

		forkID := g.AddFork(fp.Pos, fp.Street, fp.T, bus.Label)
		producerID := g.AddProducer(bus.Label, bus.Pos)
		g.AddPipe(producerID, forkID, fp.Distance, fp.Street)

		a.logger.Debug("connected producer",
			"bus", bus.Label,
			"producer", producerID.String(),
			"fork", forkID.String(),
			"street", fp.Street,
			"length", fp.Distance)
	}

	return nil
}

// buildStreetChains threads the forks of every active street into pipe
// runs: both endpoint forks plus every fork tagged with the street,
// ordered by their position along the axis.
func (a *Assembler) buildStreetChains(g *network.Graph, scen *scenario.Scenario) error {
	for _, st := range scen.ActiveStreets() {
		var points []network.ChainPoint

		if id, ok := g.ForkAt(st.From); ok {
			points = append(points, network.ChainPoint{ID: id, Pos: st.From, T: 0})
		}
		if id, ok := g.ForkAt(st.To); ok {
			points = append(points, network.ChainPoint{ID: id, Pos: st.To, T: 1})
		}
		for _, f := range g.ForksOnStreet(st.Label) {
			points = append(points, network.ChainPoint{ID: f.ID, Pos: f.Pos, T: f.T})
		}

		created, err := g.BuildChain(st.Label, points, a.projector.Length)
		if err != nil {
			return errors.Wrap(err, "Assembler", "buildStreetChains",
				fmt.Sprintf("chain street %q", st.Label))
		}
		if created == 0 {
			a.logger.Warn("street produced no pipes", "street", st.Label)
		}
	}

	return nil
}

func (a *Assembler) recordError(err error) {
	if a.metrics != nil {
		a.metrics.RecordError(errors.Classify(err).String())
	}
}
