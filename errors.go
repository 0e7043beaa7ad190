package algofftw

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by plan operations. Structured errors below
// unwrap to these, so callers can always test with errors.Is.
var (
	// ErrUnsupportedPrecision is returned when a buffer's element kind has
	// no engine precision. It is raised before the engine is touched.
	ErrUnsupportedPrecision = errors.New("algofftw: unsupported precision")

	// ErrPlanningFailed is returned when the engine refuses to produce a
	// plan, e.g. FlagWisdomOnly without matching wisdom.
	ErrPlanningFailed = errors.New("algofftw: planning failed")

	// ErrIncompatibleBuffer is returned when a buffer does not match the
	// shape, element kind or contiguity a plan requires.
	ErrIncompatibleBuffer = errors.New("algofftw: incompatible buffer")

	// ErrInvalidNormalization is returned for unknown normalization modes.
	ErrInvalidNormalization = errors.New("algofftw: invalid normalization")

	// ErrEngineUnavailable is returned when the engine cannot be loaded or
	// does not export a required entry point.
	ErrEngineUnavailable = errors.New("algofftw: engine unavailable")

	// ErrExecutionFailed is returned when the engine reports a failure while
	// executing a plan. The output buffer may hold partial results.
	ErrExecutionFailed = errors.New("algofftw: execution failed")

	// ErrPlanClosed is returned by operations on a closed or transferred plan.
	ErrPlanClosed = errors.New("algofftw: plan closed")

	// ErrNilBuffer is returned when a buffer has no backing data.
	ErrNilBuffer = errors.New("algofftw: nil buffer")

	// ErrInvalidShape is returned when a shape has non-positive extents or
	// does not cover the backing data exactly.
	ErrInvalidShape = errors.New("algofftw: invalid shape")

	// ErrInvalidStride is returned when a stride is < 1 or the strided view
	// does not fit the backing data.
	ErrInvalidStride = errors.New("algofftw: invalid stride")

	// ErrInvalidDirection is returned for direction values other than
	// Forward and Backward.
	ErrInvalidDirection = errors.New("algofftw: invalid direction")

	// ErrInvalidFlag is returned for unknown planner flags.
	ErrInvalidFlag = errors.New("algofftw: invalid flag")
)

// UnsupportedPrecisionError names the element kind that has no engine
// mapping.
type UnsupportedPrecisionError struct {
	Kind ElementKind
}

func (e *UnsupportedPrecisionError) Error() string {
	return fmt.Sprintf("algofftw: unsupported precision %s", e.Kind)
}

func (e *UnsupportedPrecisionError) Unwrap() error {
	return ErrUnsupportedPrecision
}

// Role identifies which of a plan's two buffers an error refers to.
type Role uint8

const (
	RoleInput Role = iota
	RoleOutput
)

func (r Role) String() string {
	if r == RoleInput {
		return "input"
	}

	return "output"
}

// Check identifies the compatibility rule a buffer violated.
type Check uint8

const (
	CheckShape Check = iota
	CheckContiguity
	CheckDtype
)

func (c Check) String() string {
	switch c {
	case CheckShape:
		return "shape"
	case CheckContiguity:
		return "contiguity"
	default:
		return "dtype"
	}
}

// IncompatibleBufferError reports which buffer failed which check.
type IncompatibleBufferError struct {
	Role  Role
	Check Check
	Want  string
	Got   string
}

func (e *IncompatibleBufferError) Error() string {
	return fmt.Sprintf("algofftw: incompatible %s array: %s mismatch (want %s, got %s)", e.Role, e.Check, e.Want, e.Got)
}

func (e *IncompatibleBufferError) Unwrap() error {
	return ErrIncompatibleBuffer
}
