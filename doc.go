// Package ndmorph provides N-dimensional mathematical morphology and
// distance transforms over dense in-memory arrays.
//
// Binary operations (erosion, dilation, opening, closing, hit-or-miss,
// propagation, hole filling) treat any non-zero element as foreground and
// are configured with functional options:
//
//	input, _ := ndarray.New[bool](64, 64)
//	// ... set foreground ...
//	eroded, err := ndmorph.BinaryErosion(input,
//		ndmorph.WithIterations(2),
//		ndmorph.WithBorderValue(false),
//	)
//
// Grayscale operations (erosion, dilation, opening, closing, gradient,
// Laplace, top-hats) slide a flat or weighted window over real-valued
// arrays with configurable border handling.
//
// Distance transforms map every foreground voxel to its distance to the
// nearest background voxel: DistanceTransformEDT is exact Euclidean,
// DistanceTransformCDT a fast integer chamfer approximation, and
// DistanceTransformBF the exhaustive reference for all three metrics. Each
// can also return the feature transform, the coordinates of the nearest
// background voxel itself.
package ndmorph
