package binmorph

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/ndmorph/ndarray"
)

// parallelThreshold is the voxel count above which a single pass is split
// across goroutines. Each chunk writes a disjoint output range.
const parallelThreshold = 1 << 16

// Kernel evaluates one erosion (or inverted erosion, i.e. dilation) pass.
type Kernel struct {
	Table  *OffsetTable
	Border bool // effective value outside the array
	Invert bool // true computes the dilation dual
}

// eval computes the kernel result for the voxel at flat index f with the
// given coordinates, reading the in slice.
//
// Erosion: true iff every neighbor (border value outside) is true.
// Inverted: true iff any neighbor is true.
func (k *Kernel) eval(in []bool, f int, coords []int) bool {
	t := k.Table
	if t.inCore(coords) {
		for _, d := range t.flat {
			if in[f+d] == k.Invert {
				return k.Invert
			}
		}
		return !k.Invert
	}
	for j, o := range t.offsets {
		v := k.Border
		if t.inBounds(coords, o) {
			v = in[f+t.flat[j]]
		}
		if v == k.Invert {
			return k.Invert
		}
	}
	return !k.Invert
}

// Apply runs one pass of the kernel over in, writing out. in and out must
// not share storage. Masked-off voxels copy the input value. When record is
// true the flat indices of all changed voxels are returned in row-major
// order; the changed count is returned either way.
func (k *Kernel) Apply(in, out, mask *ndarray.Array[bool], record bool) ([]uint64, int) {
	n := in.Len()
	if n >= parallelThreshold {
		return k.applyParallel(in, out, mask, record)
	}
	return k.applyRange(in, out, mask, record, 0, n)
}

func (k *Kernel) applyRange(in, out, mask *ndarray.Array[bool], record bool, start, end int) ([]uint64, int) {
	src := in.Data()
	dst := out.Data()
	var msk []bool
	if mask != nil {
		msk = mask.Data()
	}

	coords := in.CoordsAt(start, make([]int, in.Rank()))
	dims := k.Table.dims

	var changedList []uint64
	changed := 0
	for f := start; f < end; f++ {
		v := src[f]
		if msk == nil || msk[f] {
			v = k.eval(src, f, coords)
		}
		dst[f] = v
		if v != src[f] {
			changed++
			if record {
				changedList = append(changedList, uint64(f))
			}
		}
		ndarray.NextIndex(coords, dims)
	}
	return changedList, changed
}

func (k *Kernel) applyParallel(in, out, mask *ndarray.Array[bool], record bool) ([]uint64, int) {
	n := in.Len()
	workers := runtime.GOMAXPROCS(0)
	if workers > n/parallelThreshold+1 {
		workers = n/parallelThreshold + 1
	}
	chunk := (n + workers - 1) / workers

	lists := make([][]uint64, workers)
	counts := make([]int, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		w := w
		g.Go(func() error {
			lists[w], counts[w] = k.applyRange(in, out, mask, record, start, end)
			return nil
		})
	}
	_ = g.Wait() // chunks never fail

	changed := 0
	var changedList []uint64
	for w := 0; w < workers; w++ {
		changed += counts[w]
		if record {
			changedList = append(changedList, lists[w]...)
		}
	}
	return changedList, changed
}
