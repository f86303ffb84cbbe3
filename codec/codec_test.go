package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ndmorph/ndarray"
)

func TestRoundTrip(t *testing.T) {
	compressions := []struct {
		name string
		c    Compression
	}{
		{name: "none", c: CompressionNone},
		{name: "lz4", c: CompressionLZ4},
		{name: "zstd", c: CompressionZSTD},
	}

	for _, tc := range compressions {
		t.Run("bool "+tc.name, func(t *testing.T) {
			a, err := ndarray.New[bool](16, 16)
			require.NoError(t, err)
			for i := range a.Data() {
				a.Data()[i] = i%3 == 0
			}

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, a, tc.c))

			b, err := Decode[bool](&buf)
			require.NoError(t, err)
			assert.Equal(t, a.Dims(), b.Dims())
			assert.Equal(t, a.Data(), b.Data())
		})

		t.Run("float64 "+tc.name, func(t *testing.T) {
			a, err := ndarray.FromSlice([]float64{0, 1.5, -2.25, 3e9, -0.5, 7}, 2, 3)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, a, tc.c))

			b, err := Decode[float64](&buf)
			require.NoError(t, err)
			assert.Equal(t, a.Data(), b.Data())
		})

		t.Run("int32 "+tc.name, func(t *testing.T) {
			a, err := ndarray.FromSlice([]int32{-1, 0, 1, 2, -7, 42}, 3, 2)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, a, tc.c))

			b, err := Decode[int32](&buf)
			require.NoError(t, err)
			assert.Equal(t, a.Data(), b.Data())
		})
	}
}

func TestRoundTripHighRank(t *testing.T) {
	a, err := ndarray.New[uint32](2, 3, 4, 5)
	require.NoError(t, err)
	for i := range a.Data() {
		a.Data()[i] = uint32(i * 7)
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, a, CompressionZSTD))

	b, err := Decode[uint32](&buf)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 5}, b.Dims())
	assert.Equal(t, a.Data(), b.Data())
}

func TestDecodeTypeMismatch(t *testing.T) {
	a, err := ndarray.New[float64](4, 4)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, a, CompressionNone))

	_, err = Decode[int32](&buf)
	assert.ErrorIs(t, err, ErrElementType)
}

func TestDecodeCorruption(t *testing.T) {
	a, err := ndarray.FromSlice([]int64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, a, CompressionNone))
	raw := buf.Bytes()

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), raw...)
		bad[0] ^= 0xFF
		_, err := Decode[int64](bytes.NewReader(bad))
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("flipped payload byte", func(t *testing.T) {
		bad := append([]byte(nil), raw...)
		bad[len(bad)-8] ^= 0xFF // inside the payload, before the checksum
		_, err := Decode[int64](bytes.NewReader(bad))
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("truncated stream", func(t *testing.T) {
		_, err := Decode[int64](bytes.NewReader(raw[:10]))
		assert.Error(t, err)
	})
}

func TestEncodeInvalidCompression(t *testing.T) {
	a, err := ndarray.New[bool](2, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = Encode(&buf, a, Compression(9))
	assert.ErrorIs(t, err, ErrInvalidCompression)
}
