// Package network holds the district-heating topology graph: typed node
// tables for forks, consumers, and producers, the pipe edges connecting
// them, and the street-chain construction that threads forks into pipe
// runs.
//
// # Identifiers
//
// Nodes are identified by NodeID, a (kind, row number) pair rendering as
// "forks-3" or "consumers-0" in checkpoints. The typed form means code
// never slices prefixes off identifier strings to learn what a node is;
// ParseNodeID exists only at the checkpoint boundary.
//
// # Graph state
//
// Graph is an explicit instance with no package-level state. Fork creation
// is idempotent on exact coordinates: asking twice for a fork at the same
// position yields the same identifier, which is how street intersections
// shared by several streets and foot points landing on existing forks
// converge to single nodes.
//
// # Normalization and checking
//
// Normalize renumbers all tables densely in insertion order and remaps
// pipe endpoints; it runs after assembly, after cluster reduction, and
// after checkpoint load. Check then enforces the structural invariants:
// pipe endpoints must resolve and no consumer or producer may be left
// without a pipe. Both report violations as topology errors naming the
// offending row.
package network
