// Package errors provides standardized error handling patterns for SESMG
// district-heating components. It includes error classification, standard
// error variables, and helper functions for consistent error wrapping and
// classification across the build pipeline.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid ErrorClass = iota
	// ErrorReference represents requests that name scenario entities which
	// do not exist or are not active
	ErrorReference
	// ErrorGeometry represents projection failures, such as an empty street
	// set with nothing to project onto
	ErrorGeometry
	// ErrorTopology represents structural graph violations detected during
	// normalization or the consistency check
	ErrorTopology
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorInvalid:
		return "invalid"
	case ErrorReference:
		return "reference"
	case ErrorGeometry:
		return "geometry"
	case ErrorTopology:
		return "topology"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Scenario reference errors
	ErrStreetNotFound   = errors.New("street not found")
	ErrStreetInactive   = errors.New("street not active")
	ErrBuildingNotFound = errors.New("building not found")

	// Input and parsing errors
	ErrUnknownConnection = errors.New("unknown district heating connection value")
	ErrDuplicateLabel    = errors.New("duplicate label")
	ErrMissingColumn     = errors.New("missing required column")
	ErrBadCoordinate     = errors.New("coordinate is not a finite number")

	// Geometry errors
	ErrNoActiveStreets = errors.New("no active streets to project onto")

	// Topology errors
	ErrOrphanedPipe  = errors.New("pipe references unknown node")
	ErrIsolatedNode  = errors.New("node has no connected pipes")
	ErrUnknownKind   = errors.New("unknown node kind")
	ErrZeroLengthRun = errors.New("street chain has no distinct points")

	// Configuration errors
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrMissingConfig  = errors.New("missing required configuration")
	ErrConfigNotFound = errors.New("configuration not found")

	// Checkpoint and persistence errors
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	ErrCheckpointCorrupt  = errors.New("checkpoint data corrupted")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsReference checks if an error stems from a request naming a missing or
// inactive scenario entity
func IsReference(err error) bool {
	if err == nil {
		return false
	}

	// Check for classified error
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorReference
	}

	// Check for known reference errors
	return errors.Is(err, ErrStreetNotFound) ||
		errors.Is(err, ErrStreetInactive) ||
		errors.Is(err, ErrBuildingNotFound)
}

// IsGeometry checks if an error stems from the projection stage
func IsGeometry(err error) bool {
	if err == nil {
		return false
	}

	// Check for classified error
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorGeometry
	}

	return errors.Is(err, ErrNoActiveStreets)
}

// IsTopology checks if an error stems from a structural graph violation
func IsTopology(err error) bool {
	if err == nil {
		return false
	}

	// Check for classified error
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTopology
	}

	return errors.Is(err, ErrOrphanedPipe) ||
		errors.Is(err, ErrIsolatedNode) ||
		errors.Is(err, ErrZeroLengthRun)
}

// IsInvalid checks if an error is due to invalid input or configuration
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	// Check for classified error
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrUnknownConnection) ||
		errors.Is(err, ErrDuplicateLabel) ||
		errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrBadCoordinate) ||
		errors.Is(err, ErrUnknownKind) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig) ||
		errors.Is(err, ErrConfigNotFound) ||
		errors.Is(err, ErrCheckpointNotFound) ||
		errors.Is(err, ErrCheckpointCorrupt)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorInvalid // Default for nil
	}

	if IsReference(err) {
		return ErrorReference
	}
	if IsGeometry(err) {
		return ErrorGeometry
	}
	if IsTopology(err) {
		return ErrorTopology
	}

	// Default to invalid: every remaining failure mode in a batch build is
	// bad input or a bad environment, and none of them is retryable
	return ErrorInvalid
}

// newClassified creates a new classified error
// This is an internal helper - use the Wrap* family instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapInvalid wraps an error as invalid input with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// WrapReference wraps an error as a dangling scenario reference with context
func WrapReference(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorReference, wrappedErr, component, method, wrappedErr.Error())
}

// WrapGeometry wraps an error as a projection failure with context
func WrapGeometry(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorGeometry, wrappedErr, component, method, wrappedErr.Error())
}

// WrapTopology wraps an error as a structural graph violation with context
func WrapTopology(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTopology, wrappedErr, component, method, wrappedErr.Error())
}
