package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorInvalid, "invalid"},
		{ErrorReference, "reference"},
		{ErrorGeometry, "geometry"},
		{ErrorTopology, "topology"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsReference(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"street not found", ErrStreetNotFound, true},
		{"street inactive", ErrStreetInactive, true},
		{"building not found", ErrBuildingNotFound, true},
		{"wrapped street not found", fmt.Errorf("lookup: %w", ErrStreetNotFound), true},
		{"no active streets", ErrNoActiveStreets, false},
		{"orphaned pipe", ErrOrphanedPipe, false},
		{"classified reference", &ClassifiedError{Class: ErrorReference, Err: fmt.Errorf("test")}, true},
		{"classified topology", &ClassifiedError{Class: ErrorTopology, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsReference(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsGeometry(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"no active streets", ErrNoActiveStreets, true},
		{"street not found", ErrStreetNotFound, false},
		{"classified geometry", &ClassifiedError{Class: ErrorGeometry, Err: fmt.Errorf("test")}, true},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsGeometry(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsTopology(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"orphaned pipe", ErrOrphanedPipe, true},
		{"isolated node", ErrIsolatedNode, true},
		{"zero length run", ErrZeroLengthRun, true},
		{"street not found", ErrStreetNotFound, false},
		{"wrapped isolated node", fmt.Errorf("check: %w", ErrIsolatedNode), true},
		{"classified topology", &ClassifiedError{Class: ErrorTopology, Err: fmt.Errorf("test")}, true},
		{"classified reference", &ClassifiedError{Class: ErrorReference, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsTopology(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"unknown connection", ErrUnknownConnection, true},
		{"duplicate label", ErrDuplicateLabel, true},
		{"missing column", ErrMissingColumn, true},
		{"bad coordinate", ErrBadCoordinate, true},
		{"invalid config", ErrInvalidConfig, true},
		{"checkpoint not found", ErrCheckpointNotFound, true},
		{"street not found", ErrStreetNotFound, false},
		{"isolated node", ErrIsolatedNode, false},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, true},
		{"classified geometry", &ClassifiedError{Class: ErrorGeometry, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsInvalid(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"nil error", nil, ErrorInvalid},
		{"street not found", ErrStreetNotFound, ErrorReference},
		{"no active streets", ErrNoActiveStreets, ErrorGeometry},
		{"orphaned pipe", ErrOrphanedPipe, ErrorTopology},
		{"invalid config", ErrInvalidConfig, ErrorInvalid},
		{"unknown error", fmt.Errorf("unknown error"), ErrorInvalid},
		{"classified error", &ClassifiedError{Class: ErrorGeometry, Err: fmt.Errorf("test")}, ErrorGeometry},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := Classify(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestClassifiedError(t *testing.T) {
	baseErr := fmt.Errorf("base error")
	ce := newClassified(ErrorReference, baseErr, "testComponent", "testOperation", "custom message")

	if ce.Class != ErrorReference {
		t.Errorf("expected ErrorReference, got %v", ce.Class)
	}

	if ce.Component != "testComponent" {
		t.Errorf("expected testComponent, got %s", ce.Component)
	}

	if ce.Operation != "testOperation" {
		t.Errorf("expected testOperation, got %s", ce.Operation)
	}

	if ce.Error() != "custom message" {
		t.Errorf("expected 'custom message', got %s", ce.Error())
	}

	if !errors.Is(ce, baseErr) {
		t.Error("classified error should unwrap to base error")
	}
}

func TestClassifiedError_NoMessage(t *testing.T) {
	baseErr := fmt.Errorf("base error")
	ce := newClassified(ErrorTopology, baseErr, "testComponent", "testOperation", "")

	if ce.Error() != "base error" {
		t.Errorf("expected 'base error', got %s", ce.Error())
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		component string
		method    string
		action    string
		expected  string
	}{
		{
			"nil error",
			nil,
			"component",
			"method",
			"action",
			"",
		},
		{
			"basic wrap",
			fmt.Errorf("original error"),
			"Assembler",
			"connectConsumers",
			"project building",
			"Assembler.connectConsumers: project building failed: original error",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := Wrap(test.err, test.component, test.method, test.action)
			if test.expected == "" {
				if result != nil {
					t.Errorf("expected nil, got %v", result)
				}
			} else {
				if result == nil || result.Error() != test.expected {
					t.Errorf("expected '%s', got '%v'", test.expected, result)
				}
			}
		})
	}
}

func TestWrapClassified(t *testing.T) {
	baseErr := fmt.Errorf("original error")

	tests := []struct {
		name     string
		wrapFunc func(error, string, string, string) error
		class    ErrorClass
	}{
		{"WrapInvalid", WrapInvalid, ErrorInvalid},
		{"WrapReference", WrapReference, ErrorReference},
		{"WrapGeometry", WrapGeometry, ErrorGeometry},
		{"WrapTopology", WrapTopology, ErrorTopology},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.wrapFunc(baseErr, "component", "method", "action")

			var ce *ClassifiedError
			if !errors.As(result, &ce) {
				t.Error("result should be a ClassifiedError")
				return
			}

			if ce.Class != test.class {
				t.Errorf("expected %v, got %v", test.class, ce.Class)
			}

			if ce.Component != "component" {
				t.Errorf("expected 'component', got %s", ce.Component)
			}

			if ce.Operation != "method" {
				t.Errorf("expected 'method', got %s", ce.Operation)
			}

			if !strings.Contains(ce.Error(), "component.method: action failed") {
				t.Errorf("error should contain standard format, got: %s", ce.Error())
			}
		})
	}
}

func TestWrapClassified_NilError(t *testing.T) {
	wrappers := []func(error, string, string, string) error{
		WrapInvalid, WrapReference, WrapGeometry, WrapTopology,
	}
	for _, wrap := range wrappers {
		if err := wrap(nil, "component", "method", "action"); err != nil {
			t.Errorf("expected nil for nil input, got %v", err)
		}
	}
}

func TestStandardErrors(t *testing.T) {
	// Test that standard errors are defined
	standardErrors := []error{
		ErrStreetNotFound,
		ErrStreetInactive,
		ErrBuildingNotFound,
		ErrUnknownConnection,
		ErrDuplicateLabel,
		ErrMissingColumn,
		ErrBadCoordinate,
		ErrNoActiveStreets,
		ErrOrphanedPipe,
		ErrIsolatedNode,
		ErrUnknownKind,
		ErrZeroLengthRun,
		ErrInvalidConfig,
		ErrMissingConfig,
		ErrConfigNotFound,
		ErrCheckpointNotFound,
		ErrCheckpointCorrupt,
	}

	for i, err := range standardErrors {
		if err == nil {
			t.Errorf("standard error at index %d is nil", i)
		}
		if err.Error() == "" {
			t.Errorf("standard error at index %d has empty message", i)
		}
	}
}

// Benchmark error classification performance
func BenchmarkClassify(b *testing.B) {
	err := ErrStreetNotFound
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Classify(err)
	}
}

func BenchmarkWrap(b *testing.B) {
	err := fmt.Errorf("base error")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Wrap(err, "component", "method", "action")
	}
}
