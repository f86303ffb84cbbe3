package ndmorph

import (
	"github.com/hupe1980/ndmorph/ndarray"
)

type binaryOptions struct {
	structure     *ndarray.Array[bool]
	missStructure *ndarray.Array[bool]
	iterations    int
	mask          *ndarray.Array[bool]
	output        *ndarray.Array[bool]
	borderValue   bool
	origin        []int
	missOrigin    []int
	bruteForce    bool
}

// BinaryOption configures a binary morphology operation.
type BinaryOption func(*binaryOptions)

func newBinaryOptions(opts []BinaryOption) *binaryOptions {
	o := &binaryOptions{iterations: 1}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithStructure sets the structuring element. By default an element with
// square connectivity one is generated for the input's rank.
func WithStructure(s *ndarray.Array[bool]) BinaryOption {
	return func(o *binaryOptions) { o.structure = s }
}

// WithIterations repeats the operation the given number of times; values
// below one repeat until the result no longer changes.
func WithIterations(n int) BinaryOption {
	return func(o *binaryOptions) { o.iterations = n }
}

// WithMask restricts state changes to positions where the mask is true.
func WithMask(m *ndarray.Array[bool]) BinaryOption {
	return func(o *binaryOptions) { o.mask = m }
}

// WithOutput writes the result into the given buffer instead of allocating
// a fresh array. The buffer may share storage with the input.
func WithOutput(out *ndarray.Array[bool]) BinaryOption {
	return func(o *binaryOptions) { o.output = out }
}

// WithBorderValue sets the effective value outside the array borders.
func WithBorderValue(v bool) BinaryOption {
	return func(o *binaryOptions) { o.borderValue = v }
}

// WithOrigin shifts the structuring element's center. A single value is
// broadcast to every axis.
func WithOrigin(origin ...int) BinaryOption {
	return func(o *binaryOptions) { o.origin = origin }
}

// WithBruteForce forces the naive multi-iteration strategy instead of the
// coordinate-worklist propagation.
func WithBruteForce() BinaryOption {
	return func(o *binaryOptions) { o.bruteForce = true }
}

// WithMissStructure sets the second structuring element of the hit-or-miss
// transform, which must miss the foreground entirely. Defaults to the
// complement of the first element.
func WithMissStructure(s *ndarray.Array[bool]) BinaryOption {
	return func(o *binaryOptions) { o.missStructure = s }
}

// WithMissOrigin shifts the second structuring element of the hit-or-miss
// transform. Defaults to the first element's origin.
func WithMissOrigin(origin ...int) BinaryOption {
	return func(o *binaryOptions) { o.missOrigin = origin }
}

type greyOptions[T ndarray.Real] struct {
	size      []int
	footprint *ndarray.Array[bool]
	structure *ndarray.Array[T]
	output    *ndarray.Array[T]
	mode      BorderMode
	cval      float64
	origin    []int
}

// GreyOption configures a grayscale morphology operation.
type GreyOption[T ndarray.Real] func(*greyOptions[T])

func newGreyOptions[T ndarray.Real](opts []GreyOption[T]) *greyOptions[T] {
	o := &greyOptions[T]{mode: BorderReflect}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSize uses a full flat window of the given shape. A single value is
// broadcast to every axis.
func WithSize[T ndarray.Real](size ...int) GreyOption[T] {
	return func(o *greyOptions[T]) { o.size = size }
}

// WithFootprint restricts the window to the true cells of a flat
// structuring element.
func WithFootprint[T ndarray.Real](fp *ndarray.Array[bool]) GreyOption[T] {
	return func(o *greyOptions[T]) { o.footprint = fp }
}

// WithGreyStructure uses a non-flat structuring element whose values are
// subtracted (erosion) or added (dilation) to each window sample.
func WithGreyStructure[T ndarray.Real](s *ndarray.Array[T]) GreyOption[T] {
	return func(o *greyOptions[T]) { o.structure = s }
}

// WithGreyOutput writes the result into the given buffer. The buffer may
// share storage with the input.
func WithGreyOutput[T ndarray.Real](out *ndarray.Array[T]) GreyOption[T] {
	return func(o *greyOptions[T]) { o.output = out }
}

// WithMode selects the border handling mode. Default is BorderReflect.
func WithMode[T ndarray.Real](m BorderMode) GreyOption[T] {
	return func(o *greyOptions[T]) { o.mode = m }
}

// WithCval sets the fill value used by BorderConstant.
func WithCval[T ndarray.Real](v float64) GreyOption[T] {
	return func(o *greyOptions[T]) { o.cval = v }
}

// WithGreyOrigin shifts the window's center. A single value is broadcast to
// every axis.
func WithGreyOrigin[T ndarray.Real](origin ...int) GreyOption[T] {
	return func(o *greyOptions[T]) { o.origin = origin }
}

type distanceOptions struct {
	sampling        []float64
	returnDistances bool
	returnIndices   bool
	distBuf         any
	indBuf          any
	metricStructure *ndarray.Array[bool]
}

// DistanceOption configures a distance-transform operation.
type DistanceOption func(*distanceOptions)

func newDistanceOptions(opts []DistanceOption) *distanceOptions {
	o := &distanceOptions{returnDistances: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSampling scales each axis before Euclidean distances are derived. A
// single value is broadcast to every axis. Ignored by non-Euclidean
// metrics.
func WithSampling(sampling ...float64) DistanceOption {
	return func(o *distanceOptions) { o.sampling = sampling }
}

// WithReturnIndices also computes the feature transform: per voxel, the
// coordinates of the nearest background voxel, stacked along a leading axis
// of size rank.
func WithReturnIndices() DistanceOption {
	return func(o *distanceOptions) { o.returnIndices = true }
}

// WithoutDistances skips the distance output. At least one of distances and
// indices must remain requested.
func WithoutDistances() DistanceOption {
	return func(o *distanceOptions) { o.returnDistances = false }
}

// WithDistances writes distances into the given pre-allocated buffer. The
// required element type depends on the transform and metric: float64 for
// Euclidean, uint32 for brute-force taxicab/chessboard, int32 for chamfer.
func WithDistances(buf any) DistanceOption {
	return func(o *distanceOptions) { o.distBuf = buf }
}

// WithIndices writes the feature transform into the given pre-allocated
// int32 buffer of shape (rank,)+dims, and implies WithReturnIndices.
func WithIndices(buf any) DistanceOption {
	return func(o *distanceOptions) {
		o.indBuf = buf
		o.returnIndices = true
	}
}

// WithMetricStructure uses a custom local-distance structuring element for
// the chamfer transform. Every axis must have length exactly three.
func WithMetricStructure(s *ndarray.Array[bool]) DistanceOption {
	return func(o *distanceOptions) { o.metricStructure = s }
}
