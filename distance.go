package ndmorph

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hupe1980/ndmorph/internal/dt"
	"github.com/hupe1980/ndmorph/ndarray"
)

// Metric selects the distance rule of a transform.
type Metric int

const (
	// MetricEuclidean is the straight-line distance, optionally scaled per
	// axis with WithSampling.
	MetricEuclidean Metric = iota + 1

	// MetricTaxicab is the sum of absolute per-axis differences.
	MetricTaxicab

	// MetricChessboard is the maximum absolute per-axis difference.
	MetricChessboard
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "euclidean"
	case MetricTaxicab:
		return "taxicab"
	case MetricChessboard:
		return "chessboard"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// ParseMetric maps a metric name to its Metric value. Taxicab is also known
// as cityblock and manhattan.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(name) {
	case "euclidean":
		return MetricEuclidean, nil
	case "taxicab", "cityblock", "manhattan":
		return MetricTaxicab, nil
	case "chessboard":
		return MetricChessboard, nil
	default:
		return 0, &ErrInvalidMetric{Name: name}
	}
}

// BFResult holds the outputs of the brute-force distance transform. Exactly
// one of Distances and IntDistances is set when distances are requested:
// the Euclidean metric produces float64 distances, the integer metrics
// uint32. Indices is set when the feature transform is requested; its shape
// is the input's with a leading axis of size rank.
type BFResult struct {
	Distances    *ndarray.Array[float64]
	IntDistances *ndarray.Array[uint32]
	Indices      *ndarray.Array[int32]
}

// DistanceTransformBF computes per-voxel distances to the nearest background
// voxel by exhaustively scanning the foreground/background boundary. Exact
// for every metric but quadratic in the boundary size; intended as the
// reference the faster transforms are checked against.
func DistanceTransformBF[T ndarray.Scalar](input *ndarray.Array[T], metric Metric, opts ...DistanceOption) (*BFResult, error) {
	start := time.Now()
	res, err := distanceTransformBF(input, metric, newDistanceOptions(opts))
	observe("distance", "distance_transform_bf", input.Len(), start, err)
	return res, err
}

func distanceTransformBF[T ndarray.Scalar](input *ndarray.Array[T], metric Metric, o *distanceOptions) (*BFResult, error) {
	if !o.returnDistances && !o.returnIndices {
		return nil, ErrNoReturnRequested
	}
	switch metric {
	case MetricEuclidean, MetricTaxicab, MetricChessboard:
	default:
		return nil, &ErrInvalidMetric{Name: metric.String()}
	}

	fg, err := toBool(input)
	if err != nil {
		return nil, err
	}
	rank := fg.Rank()
	dims := fg.Dims()
	n := fg.Len()

	sampling, err := normalizeSampling(o.sampling, rank)
	if err != nil {
		return nil, err
	}

	res := &BFResult{}
	var dist []float64
	var idist []uint32
	if o.returnDistances {
		if metric == MetricEuclidean {
			res.Distances, err = typedBuffer[float64](o.distBuf, "distance", dims)
			if err != nil {
				return nil, err
			}
			dist = res.Distances.Data()
		} else {
			res.IntDistances, err = typedBuffer[uint32](o.distBuf, "distance", dims)
			if err != nil {
				return nil, err
			}
			idist = res.IntDistances.Data()
		}
	}
	var feat []int64
	if o.returnIndices {
		res.Indices, err = typedBuffer[int32](o.indBuf, "indices", indicesDims(rank, dims))
		if err != nil {
			return nil, err
		}
		feat = make([]int64, n)
	}

	boundary, err := backgroundBoundary(fg)
	if err != nil {
		return nil, err
	}

	dt.BruteForce(fg, boundary, dt.Metric(metric), sampling, dist, idist, feat)
	if feat != nil {
		dt.FeatureCoords(feat, dims, res.Indices.Data())
	}
	return res, nil
}

// backgroundBoundary lists the background voxels adjacent to foreground
// under full connectivity: the dilation of the foreground minus the
// foreground itself.
func backgroundBoundary(fg *ndarray.Array[bool]) ([]int, error) {
	full, err := GenerateBinaryStructure(fg.Rank(), fg.Rank())
	if err != nil {
		return nil, err
	}
	o := binaryOptions{structure: full, iterations: 1}
	dilated, err := binaryErosion(fg, &o, true)
	if err != nil {
		return nil, err
	}
	border := ndarray.Xor(fg, dilated)
	return dt.BoundaryList(border.Data()), nil
}

// DistanceTransformCDT computes the chamfer distance transform: an integer
// approximation built from two forward/backward sweep pairs over a local
// 3-per-axis neighborhood. metric must be MetricTaxicab or MetricChessboard
// unless a custom neighborhood is supplied with WithMetricStructure.
// Foreground voxels with no reachable background keep the distance -1.
//
// The distance array is returned first, the feature transform second; either
// is nil when not requested.
func DistanceTransformCDT[T ndarray.Scalar](input *ndarray.Array[T], metric Metric, opts ...DistanceOption) (*ndarray.Array[int32], *ndarray.Array[int32], error) {
	start := time.Now()
	d, ft, err := distanceTransformCDT(input, metric, newDistanceOptions(opts))
	observe("distance", "distance_transform_cdt", input.Len(), start, err)
	return d, ft, err
}

func distanceTransformCDT[T ndarray.Scalar](input *ndarray.Array[T], metric Metric, o *distanceOptions) (*ndarray.Array[int32], *ndarray.Array[int32], error) {
	if !o.returnDistances && !o.returnIndices {
		return nil, nil, ErrNoReturnRequested
	}

	fg, err := toBool(input)
	if err != nil {
		return nil, nil, err
	}
	rank := fg.Rank()
	dims := fg.Dims()
	n := fg.Len()

	structure := o.metricStructure
	if structure == nil {
		switch metric {
		case MetricTaxicab:
			structure, err = GenerateBinaryStructure(rank, 1)
		case MetricChessboard:
			structure, err = GenerateBinaryStructure(rank, rank)
		default:
			return nil, nil, &ErrInvalidMetric{Name: metric.String()}
		}
		if err != nil {
			return nil, nil, err
		}
	}
	if structure.Rank() != rank {
		return nil, nil, &ErrDimensionMismatch{What: "structure rank", Expected: []int{rank}, Actual: []int{structure.Rank()}}
	}
	for i := 0; i < rank; i++ {
		if structure.Dim(i) != 3 {
			return nil, nil, &ErrInvalidStructure{Reason: "chamfer neighborhood must be 3 cells per axis"}
		}
	}

	distArr, err := typedBuffer[int32](o.distBuf, "distance", dims)
	if err != nil {
		return nil, nil, err
	}
	var indArr *ndarray.Array[int32]
	var feat []int64
	if o.returnIndices {
		indArr, err = typedBuffer[int32](o.indBuf, "indices", indicesDims(rank, dims))
		if err != nil {
			return nil, nil, err
		}
		feat = make([]int64, n)
		for f := range feat {
			feat[f] = int64(f)
		}
	}

	dd := distArr.Data()
	for f, v := range fg.Data() {
		if v {
			dd[f] = dt.InfDistance
		} else {
			dd[f] = 0
		}
	}

	dt.Chamfer(distArr, structure, feat)
	if feat != nil {
		dt.FeatureCoords(feat, dims, indArr.Data())
	}
	if !o.returnDistances {
		distArr = nil
	}
	return distArr, indArr, nil
}

// DistanceTransformEDT computes the exact Euclidean distance transform via
// the feature transform: per voxel, the coordinates of the nearest
// background voxel, from which distances are derived with optional per-axis
// sampling. Foreground voxels with no reachable background get +Inf and
// themselves as feature.
//
// The distance array is returned first, the feature transform second; either
// is nil when not requested.
func DistanceTransformEDT[T ndarray.Scalar](input *ndarray.Array[T], opts ...DistanceOption) (*ndarray.Array[float64], *ndarray.Array[int32], error) {
	start := time.Now()
	d, ft, err := distanceTransformEDT(input, newDistanceOptions(opts))
	observe("distance", "distance_transform_edt", input.Len(), start, err)
	return d, ft, err
}

func distanceTransformEDT[T ndarray.Scalar](input *ndarray.Array[T], o *distanceOptions) (*ndarray.Array[float64], *ndarray.Array[int32], error) {
	if !o.returnDistances && !o.returnIndices {
		return nil, nil, ErrNoReturnRequested
	}

	fg, err := toBool(input)
	if err != nil {
		return nil, nil, err
	}
	rank := fg.Rank()
	dims := fg.Dims()
	n := fg.Len()

	sampling, err := normalizeSampling(o.sampling, rank)
	if err != nil {
		return nil, nil, err
	}

	var distArr *ndarray.Array[float64]
	if o.returnDistances {
		distArr, err = typedBuffer[float64](o.distBuf, "distance", dims)
		if err != nil {
			return nil, nil, err
		}
	}
	indArr, err := typedBuffer[int32](o.indBuf, "indices", indicesDims(rank, dims))
	if err != nil {
		return nil, nil, err
	}

	ft := indArr.Data()
	dt.EuclideanFeature(fg, sampling, ft)

	// Without any background voxel the transform leaves foreground
	// featureless; resolve the sentinel to +Inf with each voxel as its own
	// feature.
	unreachable := false
	for f, v := range fg.Data() {
		if v && ft[f] == -1 {
			unreachable = true
			break
		}
	}
	if unreachable {
		coords := make([]int, rank)
		for f := 0; f < n; f++ {
			if ft[f] == -1 {
				fg.CoordsAt(f, coords)
				for i := 0; i < rank; i++ {
					ft[i*n+f] = int32(coords[i])
				}
				if distArr != nil {
					distArr.Data()[f] = math.Inf(1)
				}
			}
		}
	}

	if distArr != nil {
		dd := distArr.Data()
		coords := make([]int, rank)
		for f := 0; f < n; f++ {
			if unreachable && math.IsInf(dd[f], 1) {
				continue
			}
			fg.CoordsAt(f, coords)
			d := 0.0
			for i := 0; i < rank; i++ {
				delta := float64(coords[i]) - float64(ft[i*n+f])
				if sampling != nil {
					delta *= sampling[i]
				}
				d += delta * delta
			}
			dd[f] = math.Sqrt(d)
		}
	}

	if !o.returnIndices {
		indArr = nil
	}
	return distArr, indArr, nil
}

// typedBuffer validates a caller-supplied output buffer (type and shape) or
// allocates one when none is given.
func typedBuffer[T ndarray.Scalar](buf any, what string, dims []int) (*ndarray.Array[T], error) {
	if buf == nil {
		return ndarray.New[T](dims...)
	}
	arr, ok := buf.(*ndarray.Array[T])
	if !ok {
		return nil, &ErrBufferTypeMismatch{
			What:     what,
			Expected: fmt.Sprintf("%T", (*ndarray.Array[T])(nil)),
			Actual:   fmt.Sprintf("%T", buf),
		}
	}
	if !arr.HasDims(dims) {
		return nil, &ErrDimensionMismatch{What: what, Expected: dims, Actual: arr.Dims()}
	}
	return arr, nil
}

func indicesDims(rank int, dims []int) []int {
	out := make([]int, 0, rank+1)
	out = append(out, rank)
	return append(out, dims...)
}

// normalizeSampling expands the sampling option to the input rank. A single
// value is broadcast; nil means unit spacing.
func normalizeSampling(sampling []float64, rank int) ([]float64, error) {
	switch len(sampling) {
	case 0:
		return nil, nil
	case 1:
		out := make([]float64, rank)
		for i := range out {
			out[i] = sampling[0]
		}
		return out, nil
	case rank:
		return append([]float64(nil), sampling...), nil
	default:
		return nil, &ErrDimensionMismatch{What: "sampling", Expected: []int{rank}, Actual: []int{len(sampling)}}
	}
}
