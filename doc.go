// Package sesmg assembles an urban district-heating network model from
// spreadsheet-defined building and infrastructure data, producing a graph
// of pipes and junctions ready for an external network-flow optimizer.
//
// # Pipeline
//
// One scenario build runs as a single ordered pipeline:
//
//	┌──────────────┐
//	│   scenario   │  streets, buildings, producer buses
//	│ (CSV / road  │  from spreadsheets or an OSM road graph
//	│    graph)    │
//	└──────┬───────┘
//	       ↓
//	┌──────────────┐
//	│  assembler   │  project connections onto streets,
//	│              │  thread street chains, finalize
//	└──────┬───────┘
//	       ↓
//	┌──────────────┐
//	│   cluster    │  optional: merge co-located consumers
//	│  (optional)  │  to shrink the solver problem
//	└──────┬───────┘
//	       ↓
//	┌──────────────┐
//	│   persist    │  CSV checkpoint + GeoJSON hand-off
//	└──────────────┘
//
// The heart of the build is geometric: each building or producer wanting
// grid access is projected onto the nearest street segment (perpendicular
// foot point, endpoint fallback), the resulting points on every street
// are chained in parametric order into pipe runs, and coordinate-identical
// junctions collapse to single forks. The finished graph is normalized to
// dense identifiers and checked for orphaned pipes and isolated nodes
// before anything downstream sees it.
//
// # Packages
//
// Core:
//   - geometry: planar transforms and the foot-point projection search
//   - scenario: input tables and their CSV / road-graph ingestion
//   - network: the topology graph store and street chain builder
//   - assembler: the five-step build orchestration
//   - cluster: optional consumer aggregation by spatial assignment
//
// Infrastructure:
//   - persist: CSV checkpoints and GeoJSON export
//   - config: JSON build configuration with env overrides
//   - metric: Prometheus build metrics and optional scrape server
//   - errors: classified error handling (reference, geometry, topology)
//
// # Ownership and concurrency
//
// A network.Graph is exclusively owned by one build invocation; nothing
// is shared at module level, and a second concurrent build must use its
// own instance. Geometry and chain building are pure computations, so the
// whole pipeline is synchronous and deterministic: the same scenario
// always produces the same graph.
//
// # Failure model
//
// A connection request that names a missing or inactive street, or that
// cannot be projected at all, aborts the entire build; no partial graph
// is handed downstream. A scenario in which no building requests district
// heating is a valid outcome, not an error.
//
// # Binary
//
// Build and run the topology builder:
//
//	go build -o bin/sesmg-dh ./cmd/sesmg-dh
//	./bin/sesmg-dh --config configs/build.json
//
// With checkpoint reuse enabled in the config, a previously built graph
// is reloaded, re-checked, and reused instead of being rebuilt.
package sesmg
