package binmorph

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/ndmorph/ndarray"
)

// Params carries a fully validated erosion request. The facade performs all
// input validation; the engine assumes shapes and the origin are consistent.
type Params struct {
	Structure  *ndarray.Array[bool]
	Origin     []int // length = rank, center stays inside the structure
	Border     bool
	Invert     bool // dilation dual (caller reflects the structure)
	Mask       *ndarray.Array[bool]
	Iterations int // < 1 repeats until a pass changes nothing
	BruteForce bool
	CenterOn   bool // structure center cell is "on"
}

// Erode runs a (possibly multi-iteration) binary erosion of in into out.
// in and out must be distinct arrays of identical shape.
func Erode(in, out *ndarray.Array[bool], p Params) {
	table := NewOffsetTable(p.Structure, p.Origin, in.Dims())
	k := &Kernel{Table: table, Border: p.Border, Invert: p.Invert}

	switch {
	case p.Iterations == 1:
		k.Apply(in, out, p.Mask, false)
	case p.CenterOn && !p.BruteForce:
		worklist, _ := k.Apply(in, out, p.Mask, true)
		propagate(out, p.Mask, table, worklist, p.Iterations, p.Invert)
	default:
		bruteForce(in, out, k, p.Mask, p.Iterations)
	}
}

// bruteForce re-runs the full kernel, ping-ponging between two buffers,
// until the iteration budget is spent or (budget < 1) a pass is a no-op.
func bruteForce(in, out *ndarray.Array[bool], k *Kernel, mask *ndarray.Array[bool], iterations int) {
	cur := in
	dst := out
	scratch := in.Clone() // second ping-pong buffer

	for it := 0; ; it++ {
		if iterations >= 1 && it >= iterations {
			break
		}
		_, changed := k.Apply(cur, dst, mask, false)
		if cur == in {
			cur, dst = dst, scratch
		} else {
			cur, dst = dst, cur
		}
		if iterations < 1 && changed == 0 {
			break
		}
	}
	if cur != out {
		copy(out.Data(), cur.Data())
	}
}

// propagate continues a multi-iteration erosion from the first pass's
// changed-voxel worklist. Valid only when the structure center is "on":
// then a voxel can change state in iteration i+1 only if one of its
// structural neighbors changed in iteration i, and the change itself is
// unconditional (erosion needs just one background neighbor to clear a
// voxel, dilation one foreground neighbor to set it). Inherently sequential
// across iterations.
func propagate(out *ndarray.Array[bool], mask *ndarray.Array[bool], t *OffsetTable, worklist []uint64, iterations int, invert bool) {
	data := out.Data()
	var msk []bool
	if mask != nil {
		msk = mask.Data()
	}

	// A change at voxel c reaches exactly the voxels q with c = q + o,
	// i.e. q = c - o: the negated offsets of the reflected structure.
	rank := len(t.dims)
	neg := make([][]int, len(t.offsets))
	negFlat := make([]int, len(t.offsets))
	for j, o := range t.offsets {
		no := make([]int, rank)
		for i := range o {
			no[i] = -o[i]
		}
		neg[j] = no
		negFlat[j] = -t.flat[j]
	}

	preValue := !invert // voxels still holding this value may flip
	coords := make([]int, rank)

	for it := 1; len(worklist) > 0 && (iterations < 1 || it < iterations); it++ {
		seen := roaring64.New()
		var next []uint64
		for _, c := range worklist {
			out.CoordsAt(int(c), coords)
			for j, o := range neg {
				if !t.inBounds(coords, o) {
					continue
				}
				q := int(c) + negFlat[j]
				if data[q] != preValue {
					continue
				}
				if msk != nil && !msk[q] {
					continue
				}
				if seen.CheckedAdd(uint64(q)) {
					next = append(next, uint64(q))
				}
			}
		}
		// Apply after collection so every flip lands in its own iteration.
		for _, q := range next {
			data[q] = invert
		}
		worklist = next
	}
}
