package ndmorph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ndmorph/ndarray"
)

func TestBasicCollector(t *testing.T) {
	c := &BasicCollector{}
	SetCollector(c)
	defer SetCollector(nil)

	input, err := ndarray.New[bool](4, 4)
	require.NoError(t, err)
	input.Fill(true)

	_, err = BinaryErosion(input)
	require.NoError(t, err)
	_, _, err = DistanceTransformEDT(input)
	require.NoError(t, err)

	assert.Equal(t, int64(1), c.MorphologyCount.Load())
	assert.Equal(t, int64(1), c.TransformCount.Load())
	assert.Zero(t, c.MorphologyErrors.Load())

	cinput, err := ndarray.New[complex64](2, 2)
	require.NoError(t, err)
	_, err = BinaryErosion(cinput)
	require.Error(t, err)
	assert.Equal(t, int64(1), c.MorphologyErrors.Load())
}
