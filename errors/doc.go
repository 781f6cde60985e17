// Package errors provides standardized error handling patterns for the SESMG
// district-heating topology builder.
//
// # Overview
//
// The errors package implements a four-class error classification system for
// batch network construction: Invalid (bad input or configuration), Reference
// (requests naming scenario entities that do not exist or are not active),
// Geometry (projection failures), and Topology (structural graph violations).
//
// Every class is fatal to the running build. There is no transient class and
// no retry machinery: a topology build is deterministic, so re-running it
// against the same scenario tables reproduces the same failure. The caller
// fixes the input and starts over.
//
// # Error Classification
//
// Errors are classified based on their type:
//
//   - Invalid: malformed CSV cells, unknown connection values, bad config
//   - Reference: a building or producer names a street that is missing or
//     switched off in the scenario
//   - Geometry: nothing to project onto (no active streets)
//   - Topology: pipes referencing unknown nodes, isolated consumers or
//     producers after assembly
//
// The classification system integrates with Go's standard error handling
// patterns, supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if !street.Active {
//	    return errors.ErrStreetInactive
//	}
//
// Wrap errors with context for debugging:
//
//	if err := graph.Check(); err != nil {
//	    return errors.Wrap(err, "Assembler", "Build", "consistency check")
//	}
//
// Check classification at the top of the pipeline:
//
//	if err := assembler.Build(ctx, scen); err != nil {
//	    switch errors.Classify(err) {
//	    case errors.ErrorReference:
//	        // a request names a missing entity; report the label and stop
//	    case errors.ErrorTopology:
//	        // the assembled graph is inconsistent; report the offender
//	    }
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// This format enables consistent log parsing and debugging across the
// builder. Four wrapper functions provide classification-aware wrapping:
//
//	errors.WrapInvalid(err, "Component", "Method", "action")
//	errors.WrapReference(err, "Component", "Method", "action")
//	errors.WrapGeometry(err, "Component", "Method", "action")
//	errors.WrapTopology(err, "Component", "Method", "action")
//
// The generic Wrap() function adds context without setting a class, leaving
// the original error's classification visible through the chain.
//
// # Standard Error Variables
//
// Pre-defined error variables cover the common conditions, organized by
// category:
//
//   - Scenario references: ErrStreetNotFound, ErrStreetInactive, ErrBuildingNotFound
//   - Input parsing: ErrUnknownConnection, ErrDuplicateLabel, ErrMissingColumn, ErrBadCoordinate
//   - Geometry: ErrNoActiveStreets
//   - Topology: ErrOrphanedPipe, ErrIsolatedNode, ErrUnknownKind, ErrZeroLengthRun
//   - Configuration: ErrInvalidConfig, ErrMissingConfig, ErrConfigNotFound
//   - Checkpoints: ErrCheckpointNotFound, ErrCheckpointCorrupt
//
// Use these variables instead of creating custom error messages so that
// callers can match on them:
//
//	// Good - uses standard variable
//	if _, ok := streets[label]; !ok {
//	    return fmt.Errorf("%w: %s", errors.ErrStreetNotFound, label)
//	}
//
// # Integration with errors.As/Is
//
// All error types support standard library error inspection:
//
//	var ce *errors.ClassifiedError
//	if errors.As(err, &ce) {
//	    log.Printf("Component: %s, Class: %s", ce.Component, ce.Class)
//	}
//
//	if errors.Is(err, errors.ErrStreetNotFound) {
//	    // Handle the dangling reference specifically
//	}
//
//	// Classification is preserved through error chains
//	wrapped := errors.Wrap(errors.ErrStreetNotFound, "Assembler", "Build", "lookup")
//	errors.IsReference(wrapped) // true
//
// # Thread Safety
//
// All classification and wrapping operations are thread-safe. Error
// variables are immutable and safe for concurrent access. The
// ClassifiedError type is safe to share across goroutines after creation.
//
// # Architecture Integration
//
// The errors package is the vocabulary shared by the builder packages:
//
//   - scenario: ingest wraps CSV and parse failures as Invalid
//   - geometry: the projector reports empty street sets as Geometry
//   - assembler: connection steps surface dangling labels as Reference
//   - network: Normalize and Check surface violations as Topology
//   - persist: checkpoint load failures are Invalid
package errors
