// Package binmorph implements the binary morphology engine: the erosion
// kernel (dilation is inverted erosion over a reflected structure), and the
// multi-iteration drivers (brute-force ping-pong and coordinate-worklist
// propagation).
package binmorph

import (
	"github.com/hupe1980/ndmorph/ndarray"
)

// OffsetTable holds the neighbor offsets of a structuring element relative
// to its (origin-shifted) center, for a target array of known dimensions.
// Offsets are listed in the structure's row-major scan order; the order is
// stable for the lifetime of the table.
type OffsetTable struct {
	dims    []int
	strides []int
	offsets [][]int // coordinate offsets, one per "on" structure cell
	flat    []int   // row-major flat deltas matching offsets
	lo, hi  []int   // core region [lo, hi): every neighbor stays in bounds
}

// NewOffsetTable builds the offset table of structure, centered at
// dims/2 + origin, for a target array with the given dimensions. The caller
// guarantees rank agreement and an in-range origin.
func NewOffsetTable(structure *ndarray.Array[bool], origin []int, dims []int) *OffsetTable {
	rank := len(dims)
	strides := make([]int, rank)
	s := 1
	for i := rank - 1; i >= 0; i-- {
		strides[i] = s
		s *= dims[i]
	}

	center := make([]int, rank)
	for i := 0; i < rank; i++ {
		center[i] = structure.Dim(i)/2 + origin[i]
	}

	t := &OffsetTable{
		dims:    append([]int(nil), dims...),
		strides: strides,
		lo:      make([]int, rank),
		hi:      append([]int(nil), dims...),
	}

	coords := make([]int, rank)
	for _, on := range structure.Data() {
		if on {
			o := make([]int, rank)
			f := 0
			for i := 0; i < rank; i++ {
				o[i] = coords[i] - center[i]
				f += o[i] * strides[i]
			}
			t.offsets = append(t.offsets, o)
			t.flat = append(t.flat, f)
			for i := 0; i < rank; i++ {
				if lo := -o[i]; lo > t.lo[i] {
					t.lo[i] = lo
				}
				if hi := dims[i] - o[i]; hi < t.hi[i] {
					t.hi[i] = hi
				}
			}
		}
		ndarray.NextIndex(coords, structure.Dims())
	}
	return t
}

// Size returns the number of "on" offsets.
func (t *OffsetTable) Size() int { return len(t.offsets) }

// Offsets returns the coordinate offset vectors in table order. The slice
// is shared; callers must not modify it.
func (t *OffsetTable) Offsets() [][]int { return t.offsets }

func (t *OffsetTable) inCore(coords []int) bool {
	for i, c := range coords {
		if c < t.lo[i] || c >= t.hi[i] {
			return false
		}
	}
	return true
}

// inBounds reports whether coords+offset stays inside the array.
func (t *OffsetTable) inBounds(coords, offset []int) bool {
	for i, c := range coords {
		q := c + offset[i]
		if q < 0 || q >= t.dims[i] {
			return false
		}
	}
	return true
}
