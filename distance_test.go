package ndmorph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ndmorph/ndarray"
	"github.com/hupe1980/ndmorph/testutil"
)

func edtInput(t *testing.T) *ndarray.Array[bool] {
	t.Helper()
	return boolGrid(t, []int{
		0, 1, 1, 1, 1,
		0, 0, 1, 1, 1,
		0, 1, 1, 1, 1,
		0, 1, 1, 1, 0,
		0, 1, 1, 0, 0,
	}, 5, 5)
}

func TestDistanceTransformEDT(t *testing.T) {
	t.Run("exact distances", func(t *testing.T) {
		dist, _, err := DistanceTransformEDT(edtInput(t))
		require.NoError(t, err)

		want := []float64{
			0, 1, 1.4142, 2.2361, 3,
			0, 0, 1, 2, 2,
			0, 1, 1.4142, 1.4142, 1,
			0, 1, 1.4142, 1, 0,
			0, 1, 1, 0, 0,
		}
		assert.InDeltaSlice(t, want, dist.Data(), 1e-4)
	})

	t.Run("sampling scales per axis", func(t *testing.T) {
		dist, _, err := DistanceTransformEDT(edtInput(t), WithSampling(2, 1))
		require.NoError(t, err)

		want := []float64{
			0, 1, 2, 2.8284, 3.6056,
			0, 0, 1, 2, 3,
			0, 1, 2, 2.2361, 2,
			0, 1, 2, 1, 0,
			0, 1, 1, 0, 0,
		}
		assert.InDeltaSlice(t, want, dist.Data(), 1e-4)
	})

	t.Run("features point at background voxels", func(t *testing.T) {
		input := edtInput(t)
		dist, ind, err := DistanceTransformEDT(input, WithReturnIndices())
		require.NoError(t, err)
		require.Equal(t, []int{2, 5, 5}, ind.Dims())

		n := input.Len()
		ft := ind.Data()
		coords := make([]int, 2)
		for f := 0; f < n; f++ {
			fr, fc := int(ft[f]), int(ft[n+f])
			assert.False(t, input.At(fr, fc), "feature of voxel %d is foreground", f)

			input.CoordsAt(f, coords)
			dr := float64(coords[0] - fr)
			dc := float64(coords[1] - fc)
			assert.InDelta(t, math.Sqrt(dr*dr+dc*dc), dist.Data()[f], 1e-9)
		}
	})

	t.Run("matches brute force on random input", func(t *testing.T) {
		rng := testutil.NewRNG(3)
		for i := 0; i < 3; i++ {
			input := rng.RandomBinaryArray(0.7, 11, 9)

			dist, _, err := DistanceTransformEDT(input)
			require.NoError(t, err)

			ref, err := DistanceTransformBF(input, MetricEuclidean)
			require.NoError(t, err)
			assert.InDeltaSlice(t, ref.Distances.Data(), dist.Data(), 1e-9)
		}
	})

	t.Run("all background is all zero", func(t *testing.T) {
		input, err := ndarray.New[bool](4, 4)
		require.NoError(t, err)

		dist, _, err := DistanceTransformEDT(input)
		require.NoError(t, err)
		for _, v := range dist.Data() {
			assert.Zero(t, v)
		}
	})

	t.Run("all foreground is unreachable", func(t *testing.T) {
		input, err := ndarray.New[bool](3, 3)
		require.NoError(t, err)
		input.Fill(true)

		dist, ind, err := DistanceTransformEDT(input, WithReturnIndices())
		require.NoError(t, err)
		for _, v := range dist.Data() {
			assert.True(t, math.IsInf(v, 1))
		}
		// Each voxel is its own feature.
		n := input.Len()
		ft := ind.Data()
		coords := make([]int, 2)
		for f := 0; f < n; f++ {
			input.CoordsAt(f, coords)
			assert.Equal(t, int32(coords[0]), ft[f])
			assert.Equal(t, int32(coords[1]), ft[n+f])
		}
	})

	t.Run("errors", func(t *testing.T) {
		input, err := ndarray.New[bool](3, 3)
		require.NoError(t, err)

		_, _, err = DistanceTransformEDT(input, WithoutDistances())
		assert.ErrorIs(t, err, ErrNoReturnRequested)

		wrong, err := ndarray.New[float32](3, 3)
		require.NoError(t, err)
		_, _, err = DistanceTransformEDT(input, WithDistances(wrong))
		var bufMismatch *ErrBufferTypeMismatch
		assert.ErrorAs(t, err, &bufMismatch)

		small, err := ndarray.New[float64](2, 2)
		require.NoError(t, err)
		_, _, err = DistanceTransformEDT(input, WithDistances(small))
		var dimMismatch *ErrDimensionMismatch
		assert.ErrorAs(t, err, &dimMismatch)

		_, _, err = DistanceTransformEDT(input, WithSampling(1, 2, 3))
		assert.ErrorAs(t, err, &dimMismatch)
	})
}

func TestDistanceTransformCDT(t *testing.T) {
	t.Run("matches brute force per metric", func(t *testing.T) {
		rng := testutil.NewRNG(5)
		for _, metric := range []Metric{MetricTaxicab, MetricChessboard} {
			for i := 0; i < 3; i++ {
				input := rng.RandomBinaryArray(0.7, 10, 12)

				dist, _, err := DistanceTransformCDT(input, metric)
				require.NoError(t, err)

				ref, err := DistanceTransformBF(input, metric)
				require.NoError(t, err)
				for f, v := range dist.Data() {
					assert.Equal(t, uint32(v), ref.IntDistances.Data()[f], "metric=%s voxel=%d", metric, f)
				}
			}
		}
	})

	t.Run("unreachable foreground keeps the sentinel", func(t *testing.T) {
		input, err := ndarray.New[bool](3, 3)
		require.NoError(t, err)
		input.Fill(true)

		dist, _, err := DistanceTransformCDT(input, MetricTaxicab)
		require.NoError(t, err)
		for _, v := range dist.Data() {
			assert.Equal(t, int32(-1), v)
		}
	})

	t.Run("custom metric structure", func(t *testing.T) {
		input := boolGrid(t, []int{
			0, 1, 1,
			1, 1, 1,
			1, 1, 1,
		}, 3, 3)

		full, err := GenerateBinaryStructure(2, 2)
		require.NoError(t, err)
		dist, _, err := DistanceTransformCDT(input, MetricTaxicab, WithMetricStructure(full))
		require.NoError(t, err)

		ref, err := DistanceTransformBF(input, MetricChessboard)
		require.NoError(t, err)
		for f, v := range dist.Data() {
			assert.Equal(t, uint32(v), ref.IntDistances.Data()[f])
		}
	})

	t.Run("brackets the euclidean distance", func(t *testing.T) {
		rng := testutil.NewRNG(5)
		input := rng.RandomBinaryArray(0.7, 9, 13)

		exact, _, err := DistanceTransformEDT(input)
		require.NoError(t, err)

		taxicab, _, err := DistanceTransformCDT(input, MetricTaxicab)
		require.NoError(t, err)
		chessboard, _, err := DistanceTransformCDT(input, MetricChessboard)
		require.NoError(t, err)

		// L-infinity <= L2 <= L1 pointwise for distances to the same
		// background set.
		for f, v := range exact.Data() {
			assert.GreaterOrEqual(t, float64(taxicab.Data()[f])+1e-9, v, "taxicab voxel=%d", f)
			assert.LessOrEqual(t, float64(chessboard.Data()[f])-1e-9, v, "chessboard voxel=%d", f)
		}
	})

	t.Run("rejects the euclidean metric", func(t *testing.T) {
		input, err := ndarray.New[bool](3, 3)
		require.NoError(t, err)
		_, _, err = DistanceTransformCDT(input, MetricEuclidean)
		var invalidMetric *ErrInvalidMetric
		assert.ErrorAs(t, err, &invalidMetric)
	})

	t.Run("rejects wide metric structures", func(t *testing.T) {
		input, err := ndarray.New[bool](5, 5)
		require.NoError(t, err)
		wide, err := ndarray.New[bool](5, 3)
		require.NoError(t, err)
		wide.Fill(true)
		_, _, err = DistanceTransformCDT(input, MetricTaxicab, WithMetricStructure(wide))
		var invalidStructure *ErrInvalidStructure
		assert.ErrorAs(t, err, &invalidStructure)
	})
}

func TestDistanceTransformBF(t *testing.T) {
	t.Run("taxicab distances", func(t *testing.T) {
		input := boolGrid(t, []int{
			0, 0, 0, 0,
			0, 1, 1, 0,
			0, 1, 1, 0,
			0, 0, 0, 0,
		}, 4, 4)

		res, err := DistanceTransformBF(input, MetricTaxicab)
		require.NoError(t, err)
		require.NotNil(t, res.IntDistances)
		assert.Nil(t, res.Distances)
		assert.Equal(t, []uint32{
			0, 0, 0, 0,
			0, 1, 1, 0,
			0, 1, 1, 0,
			0, 0, 0, 0,
		}, res.IntDistances.Data())
	})

	t.Run("ties go to the first boundary voxel in scan order", func(t *testing.T) {
		input := boolGrid(t, []int{
			0, 1, 0,
		}, 1, 3)

		res, err := DistanceTransformBF(input, MetricEuclidean, WithReturnIndices())
		require.NoError(t, err)
		// The center is equidistant from both sides; the left boundary
		// voxel comes first in row-major order.
		assert.Equal(t, int32(0), res.Indices.Data()[3+1]) // column plane, center voxel
	})

	t.Run("indices only", func(t *testing.T) {
		input := edtInput(t)
		res, err := DistanceTransformBF(input, MetricEuclidean, WithoutDistances(), WithReturnIndices())
		require.NoError(t, err)
		assert.Nil(t, res.Distances)
		assert.NotNil(t, res.Indices)
	})

	t.Run("integer metric rejects a float buffer", func(t *testing.T) {
		input, err := ndarray.New[bool](3, 3)
		require.NoError(t, err)
		buf, err := ndarray.New[float64](3, 3)
		require.NoError(t, err)
		_, err = DistanceTransformBF(input, MetricChessboard, WithDistances(buf))
		var bufMismatch *ErrBufferTypeMismatch
		assert.ErrorAs(t, err, &bufMismatch)
	})

	t.Run("rejects unknown metrics", func(t *testing.T) {
		input, err := ndarray.New[bool](3, 3)
		require.NoError(t, err)
		_, err = DistanceTransformBF(input, Metric(42))
		var invalidMetric *ErrInvalidMetric
		assert.ErrorAs(t, err, &invalidMetric)
	})
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		name string
		want Metric
	}{
		{name: "euclidean", want: MetricEuclidean},
		{name: "taxicab", want: MetricTaxicab},
		{name: "cityblock", want: MetricTaxicab},
		{name: "manhattan", want: MetricTaxicab},
		{name: "chessboard", want: MetricChessboard},
		{name: "Euclidean", want: MetricEuclidean},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMetric(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseMetric("hamming")
		var invalidMetric *ErrInvalidMetric
		assert.ErrorAs(t, err, &invalidMetric)
	})
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "euclidean", MetricEuclidean.String())
	assert.Equal(t, "taxicab", MetricTaxicab.String())
	assert.Equal(t, "chessboard", MetricChessboard.String())
}
