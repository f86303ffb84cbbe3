package dt

import (
	"github.com/hupe1980/ndmorph/ndarray"
)

// InfDistance is the chamfer sentinel for "no background reachable".
const InfDistance int32 = -1

// chamferOffsets derives the causal neighbor set of a 3-per-axis metric
// structure: the "on" offsets that precede the center in row-major order
// (negative flat delta). The backward pass uses the negated set.
func chamferOffsets(metric *ndarray.Array[bool], dims []int) (offsets [][]int, flat []int) {
	rank := len(dims)
	strides := make([]int, rank)
	s := 1
	for i := rank - 1; i >= 0; i-- {
		strides[i] = s
		s *= dims[i]
	}

	coords := make([]int, rank)
	for _, on := range metric.Data() {
		if on {
			o := make([]int, rank)
			f := 0
			for i := 0; i < rank; i++ {
				o[i] = coords[i] - 1
				f += o[i] * strides[i]
			}
			if f < 0 {
				offsets = append(offsets, o)
				flat = append(flat, f)
			}
		}
		ndarray.NextIndex(coords, metric.Dims())
	}
	return offsets, flat
}

// Chamfer computes the two-pass chamfer distance transform in place over
// dist, which must be initialized to 0 at background voxels and InfDistance
// at foreground voxels. metric is a 3-per-axis boolean local-distance
// structure; every "on" step costs 1. feat, when non-nil, must be
// initialized to each voxel's own flat index and is propagated alongside
// every improvement.
//
// Two full forward+backward sweep pairs are run, which also converges for
// neighbor sets wider than the minimal 3-neighborhood. Both sweeps are
// inherently sequential along their traversal order.
func Chamfer(dist *ndarray.Array[int32], metric *ndarray.Array[bool], feat []int64) {
	dims := dist.Dims()
	rank := len(dims)
	fwd, fwdFlat := chamferOffsets(metric, dims)

	bwd := make([][]int, len(fwd))
	bwdFlat := make([]int, len(fwd))
	for j, o := range fwd {
		no := make([]int, rank)
		for i := range o {
			no[i] = -o[i]
		}
		bwd[j] = no
		bwdFlat[j] = -fwdFlat[j]
	}

	for pass := 0; pass < 2; pass++ {
		sweep(dist, feat, fwd, fwdFlat, true)
		sweep(dist, feat, bwd, bwdFlat, false)
	}
}

func sweep(dist *ndarray.Array[int32], feat []int64, offsets [][]int, flat []int, forward bool) {
	data := dist.Data()
	dims := dist.Dims()
	rank := len(dims)
	n := len(data)

	inBounds := func(coords, o []int) bool {
		for i, c := range coords {
			q := c + o[i]
			if q < 0 || q >= dims[i] {
				return false
			}
		}
		return true
	}

	coords := make([]int, rank)
	var f, step int
	if forward {
		f, step = 0, 1
	} else {
		f, step = n-1, -1
		dist.CoordsAt(f, coords)
	}

	for i := 0; i < n; i++ {
		for j, o := range offsets {
			if !inBounds(coords, o) {
				continue
			}
			d := data[f+flat[j]]
			if d == InfDistance {
				continue
			}
			nd := d + 1
			if cur := data[f]; cur == InfDistance || nd < cur {
				data[f] = nd
				if feat != nil {
					feat[f] = feat[f+flat[j]]
				}
			}
		}
		f += step
		if forward {
			ndarray.NextIndex(coords, dims)
		} else if f >= 0 {
			dist.CoordsAt(f, coords)
		}
	}
}
