package ndarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("allocates zeroed array", func(t *testing.T) {
		a, err := New[float64](2, 3, 4)
		require.NoError(t, err)
		assert.Equal(t, 3, a.Rank())
		assert.Equal(t, 24, a.Len())
		assert.Equal(t, []int{2, 3, 4}, a.Dims())
		for _, v := range a.Data() {
			assert.Zero(t, v)
		}
	})

	t.Run("rejects zero rank", func(t *testing.T) {
		_, err := New[bool]()
		assert.ErrorIs(t, err, ErrZeroRank)
	})

	t.Run("rejects non-positive dimension", func(t *testing.T) {
		_, err := New[bool](3, 0)
		assert.ErrorIs(t, err, ErrInvalidDim)
	})
}

func TestFromSlice(t *testing.T) {
	t.Run("wraps without copying", func(t *testing.T) {
		data := []int32{1, 2, 3, 4, 5, 6}
		a, err := FromSlice(data, 2, 3)
		require.NoError(t, err)
		data[0] = 42
		assert.Equal(t, int32(42), a.At(0, 0))
	})

	t.Run("rejects length mismatch", func(t *testing.T) {
		_, err := FromSlice([]int32{1, 2, 3}, 2, 3)
		assert.ErrorIs(t, err, ErrSizeMismatch)
	})
}

func TestIndexing(t *testing.T) {
	a, err := New[int](3, 4, 5)
	require.NoError(t, err)

	a.Set(7, 1, 2, 3)
	assert.Equal(t, 7, a.At(1, 2, 3))
	assert.Equal(t, 1*20+2*5+3, a.FlatIndex([]int{1, 2, 3}))

	coords := make([]int, 3)
	a.CoordsAt(a.FlatIndex([]int{2, 1, 4}), coords)
	assert.Equal(t, []int{2, 1, 4}, coords)
}

func TestNextIndex(t *testing.T) {
	dims := []int{2, 3}
	coords := make([]int, 2)

	var order [][]int
	for {
		order = append(order, append([]int(nil), coords...))
		if !NextIndex(coords, dims) {
			break
		}
	}
	assert.Equal(t, [][]int{
		{0, 0}, {0, 1}, {0, 2},
		{1, 0}, {1, 1}, {1, 2},
	}, order)
}

func TestClone(t *testing.T) {
	a, err := FromSlice([]bool{true, false, true, false}, 2, 2)
	require.NoError(t, err)

	b := a.Clone()
	b.Set(true, 0, 1)
	assert.False(t, a.At(0, 1))
	assert.True(t, b.At(0, 1))
}

func TestBooleanize(t *testing.T) {
	a, err := FromSlice([]float64{0, 1.5, -2, 0}, 2, 2)
	require.NoError(t, err)

	b := Booleanize(a)
	assert.Equal(t, []bool{false, true, true, false}, b.Data())
}

func TestBoolOps(t *testing.T) {
	a, err := FromSlice([]bool{true, true, false, false}, 4)
	require.NoError(t, err)
	b, err := FromSlice([]bool{true, false, true, false}, 4)
	require.NoError(t, err)

	assert.Equal(t, []bool{false, false, true, true}, Not(a).Data())
	assert.Equal(t, []bool{false, true, true, false}, Xor(a, b).Data())

	out, err := New[bool](4)
	require.NoError(t, err)
	AndInto(a, b, out)
	assert.Equal(t, []bool{true, false, false, false}, out.Data())

	NotInto(a, a)
	assert.Equal(t, []bool{false, false, true, true}, a.Data())
}

func TestDimComparisons(t *testing.T) {
	a, err := New[bool](2, 3)
	require.NoError(t, err)
	b, err := New[float64](2, 3)
	require.NoError(t, err)
	c, err := New[bool](3, 2)
	require.NoError(t, err)

	assert.True(t, SameDims(a, b))
	assert.False(t, SameDims(a, c))
	assert.True(t, a.HasDims([]int{2, 3}))
	assert.False(t, a.HasDims([]int{2, 3, 1}))
}

func TestIsComplex(t *testing.T) {
	type myComplex complex128
	type myFloat float64

	assert.False(t, IsComplex[float64]())
	assert.False(t, IsComplex[bool]())
	assert.False(t, IsComplex[myFloat]())
	assert.True(t, IsComplex[complex64]())
	assert.True(t, IsComplex[complex128]())
	assert.True(t, IsComplex[myComplex]())
}
