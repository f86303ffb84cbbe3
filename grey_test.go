package ndmorph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ndmorph/ndarray"
	"github.com/hupe1980/ndmorph/testutil"
)

func intGrid(t *testing.T, vals []int, dims ...int) *ndarray.Array[int] {
	t.Helper()
	a, err := ndarray.FromSlice(vals, dims...)
	require.NoError(t, err)
	return a
}

func TestGreyErosion(t *testing.T) {
	t.Run("flat window takes the local minimum", func(t *testing.T) {
		input := intGrid(t, []int{
			0, 0, 0, 0, 0, 0, 0,
			0, 3, 3, 3, 3, 3, 0,
			0, 3, 3, 1, 3, 3, 0,
			0, 3, 3, 3, 3, 3, 0,
			0, 3, 3, 3, 2, 3, 0,
			0, 3, 3, 3, 3, 3, 0,
			0, 0, 0, 0, 0, 0, 0,
		}, 7, 7)

		out, err := GreyErosion(input, WithSize[int](3, 3))
		require.NoError(t, err)
		assert.Equal(t, []int{
			0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0,
			0, 0, 1, 1, 1, 0, 0,
			0, 0, 1, 1, 1, 0, 0,
			0, 0, 3, 2, 2, 0, 0,
			0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0,
		}, out.Data())
	})

	t.Run("non-flat structure subtracts its weights", func(t *testing.T) {
		input := intGrid(t, []int{5, 5, 5, 5, 5}, 5)
		structure, err := ndarray.FromSlice([]int{1, 2, 1}, 3)
		require.NoError(t, err)

		out, err := GreyErosion(input, WithGreyStructure(structure))
		require.NoError(t, err)
		assert.Equal(t, []int{3, 3, 3, 3, 3}, out.Data())
	})

	t.Run("requires a window", func(t *testing.T) {
		input := intGrid(t, []int{1, 2, 3}, 3)
		_, err := GreyErosion[int](input)
		assert.ErrorIs(t, err, ErrMissingWindow)
	})
}

func TestGreyDilation(t *testing.T) {
	input := intGrid(t, []int{
		0, 0, 0, 0, 0, 0, 0,
		0, 3, 0, 0, 0, 0, 0,
		0, 0, 1, 1, 1, 0, 0,
		0, 0, 1, 1, 1, 0, 0,
		0, 0, 1, 1, 2, 0, 0,
		0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0,
	}, 7, 7)

	out, err := GreyDilation(input, WithSize[int](3, 3))
	require.NoError(t, err)
	assert.Equal(t, []int{
		3, 3, 3, 0, 0, 0, 0,
		3, 3, 3, 1, 1, 1, 0,
		3, 3, 3, 1, 1, 1, 0,
		0, 1, 1, 2, 2, 2, 0,
		0, 1, 1, 2, 2, 2, 0,
		0, 1, 1, 2, 2, 2, 0,
		0, 0, 0, 0, 0, 0, 0,
	}, out.Data())
}

func TestGreyBorderModes(t *testing.T) {
	input := intGrid(t, []int{1, 2, 3, 2, 1}, 5)

	tests := []struct {
		name string
		mode BorderMode
		cval float64
		want []int
	}{
		{name: "reflect", mode: BorderReflect, want: []int{1, 1, 2, 1, 1}},
		{name: "constant", mode: BorderConstant, cval: 0, want: []int{0, 1, 2, 1, 0}},
		{name: "nearest", mode: BorderNearest, want: []int{1, 1, 2, 1, 1}},
		{name: "mirror", mode: BorderMirror, want: []int{1, 1, 2, 1, 1}},
		{name: "wrap", mode: BorderWrap, want: []int{1, 1, 2, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := GreyErosion(input,
				WithSize[int](3),
				WithMode[int](tt.mode),
				WithCval[int](tt.cval),
			)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Data())
		})
	}

	t.Run("invalid mode", func(t *testing.T) {
		_, err := GreyErosion(input, WithSize[int](3), WithMode[int](BorderMode(99)))
		assert.ErrorIs(t, err, ErrInvalidBorderMode)
	})
}

func TestGreyOpeningAndClosing(t *testing.T) {
	rng := testutil.NewRNG(11)
	input := rng.RandomFloatArray(10, 8, 9)

	t.Run("opening never exceeds the input", func(t *testing.T) {
		out, err := GreyOpening(input, WithSize[float64](3, 3))
		require.NoError(t, err)
		for i, v := range out.Data() {
			assert.LessOrEqual(t, v, input.Data()[i])
		}
	})

	t.Run("closing never undercuts the input", func(t *testing.T) {
		out, err := GreyClosing(input, WithSize[float64](3, 3))
		require.NoError(t, err)
		for i, v := range out.Data() {
			assert.GreaterOrEqual(t, v, input.Data()[i])
		}
	})

	t.Run("both are idempotent", func(t *testing.T) {
		once, err := GreyOpening(input, WithSize[float64](3, 3))
		require.NoError(t, err)
		twice, err := GreyOpening(once, WithSize[float64](3, 3))
		require.NoError(t, err)
		assert.InDeltaSlice(t, once.Data(), twice.Data(), 1e-12)
	})
}

func TestMorphologicalGradient(t *testing.T) {
	t.Run("flat regions have zero gradient", func(t *testing.T) {
		input := intGrid(t, []int{
			5, 5, 5, 5,
			5, 5, 5, 5,
			5, 5, 5, 5,
		}, 3, 4)

		out, err := MorphologicalGradient(input, WithSize[int](3, 3))
		require.NoError(t, err)
		for _, v := range out.Data() {
			assert.Zero(t, v)
		}
	})

	t.Run("highlights a point", func(t *testing.T) {
		input := intGrid(t, []int{
			0, 0, 0, 0, 0,
			0, 0, 0, 0, 0,
			0, 0, 4, 0, 0,
			0, 0, 0, 0, 0,
			0, 0, 0, 0, 0,
		}, 5, 5)

		out, err := MorphologicalGradient(input, WithSize[int](3, 3))
		require.NoError(t, err)
		assert.Equal(t, []int{
			0, 0, 0, 0, 0,
			0, 4, 4, 4, 0,
			0, 4, 4, 4, 0,
			0, 4, 4, 4, 0,
			0, 0, 0, 0, 0,
		}, out.Data())
	})
}

func TestTophats(t *testing.T) {
	input := intGrid(t, []int{
		2, 2, 2, 2, 2,
		2, 2, 2, 2, 2,
		2, 2, 7, 2, 2,
		2, 2, 2, 2, 2,
		2, 2, 2, 2, 2,
	}, 5, 5)

	t.Run("white tophat isolates the bright peak", func(t *testing.T) {
		out, err := WhiteTophat(input, WithSize[int](3, 3))
		require.NoError(t, err)
		assert.Equal(t, []int{
			0, 0, 0, 0, 0,
			0, 0, 0, 0, 0,
			0, 0, 5, 0, 0,
			0, 0, 0, 0, 0,
			0, 0, 0, 0, 0,
		}, out.Data())
	})

	t.Run("black tophat isolates a dark pit", func(t *testing.T) {
		pit := intGrid(t, []int{
			2, 2, 2, 2, 2,
			2, 2, 2, 2, 2,
			2, 2, 0, 2, 2,
			2, 2, 2, 2, 2,
			2, 2, 2, 2, 2,
		}, 5, 5)

		out, err := BlackTophat(pit, WithSize[int](3, 3))
		require.NoError(t, err)
		assert.Equal(t, []int{
			0, 0, 0, 0, 0,
			0, 0, 0, 0, 0,
			0, 0, 2, 0, 0,
			0, 0, 0, 0, 0,
			0, 0, 0, 0, 0,
		}, out.Data())
	})
}

func TestMorphologicalLaplace(t *testing.T) {
	input := intGrid(t, []int{
		5, 5, 5, 5,
		5, 5, 5, 5,
	}, 2, 4)

	out, err := MorphologicalLaplace(input, WithSize[int](3, 3))
	require.NoError(t, err)
	for _, v := range out.Data() {
		assert.Zero(t, v)
	}
}
