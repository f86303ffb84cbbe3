package ndmorph

import (
	"errors"
	"fmt"
)

var (
	// ErrNoReturnRequested is returned by the distance-transform family when
	// neither distances nor indices are requested.
	ErrNoReturnRequested = errors.New("at least one of distances/indices must be requested")

	// ErrUnsupportedType is returned when a complex-valued array is handed to
	// any binary or distance operation.
	ErrUnsupportedType = errors.New("complex input is not supported")

	// ErrMissingWindow is returned by grayscale operations when none of size,
	// footprint or structure is specified.
	ErrMissingWindow = errors.New("size, footprint or structure must be specified")

	// ErrInvalidBorderMode is returned when a grayscale operation is handed a
	// border mode outside the defined set.
	ErrInvalidBorderMode = errors.New("invalid border mode")
)

// ErrDimensionMismatch indicates that two arrays that must agree in shape
// (or rank) do not.
type ErrDimensionMismatch struct {
	What     string
	Expected []int
	Actual   []int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("%s dimension mismatch: expected %v, got %v", e.What, e.Expected, e.Actual)
}

// ErrInvalidStructure indicates an unusable structuring element.
type ErrInvalidStructure struct {
	Reason string
}

func (e *ErrInvalidStructure) Error() string {
	return fmt.Sprintf("invalid structuring element: %s", e.Reason)
}

// ErrInvalidMetric indicates an unknown or unsupported distance metric.
type ErrInvalidMetric struct {
	Name string
}

func (e *ErrInvalidMetric) Error() string {
	return fmt.Sprintf("invalid distance metric: %q", e.Name)
}

// ErrInvalidOrigin indicates an origin that places the structuring element's
// reference center outside the element.
type ErrInvalidOrigin struct {
	Origin []int
	Dims   []int
}

func (e *ErrInvalidOrigin) Error() string {
	return fmt.Sprintf("origin %v is out of range for structure dimensions %v", e.Origin, e.Dims)
}

// ErrBufferTypeMismatch indicates a caller-supplied output buffer with the
// wrong element type.
type ErrBufferTypeMismatch struct {
	What     string
	Expected string
	Actual   string
}

func (e *ErrBufferTypeMismatch) Error() string {
	return fmt.Sprintf("%s buffer must be %s, got %s", e.What, e.Expected, e.Actual)
}
