package ndmorph

import (
	"time"

	"github.com/hupe1980/ndmorph/internal/binmorph"
	"github.com/hupe1980/ndmorph/ndarray"
)

// BinaryErosion erodes the input with a structuring element: a voxel stays
// foreground only if every structural neighbor is foreground. Non-boolean
// input is booleanized first (non-zero means foreground).
func BinaryErosion[T ndarray.Scalar](input *ndarray.Array[T], opts ...BinaryOption) (*ndarray.Array[bool], error) {
	start := time.Now()
	out, err := binaryMorph(input, newBinaryOptions(opts), false)
	observe("morphology", "binary_erosion", input.Len(), start, err)
	return out, err
}

// BinaryDilation dilates the input with a structuring element: a voxel
// becomes foreground if any structural neighbor is foreground. Implemented
// as the erosion dual over the reflected element.
func BinaryDilation[T ndarray.Scalar](input *ndarray.Array[T], opts ...BinaryOption) (*ndarray.Array[bool], error) {
	start := time.Now()
	out, err := binaryMorph(input, newBinaryOptions(opts), true)
	observe("morphology", "binary_dilation", input.Len(), start, err)
	return out, err
}

// BinaryOpening erodes then dilates with the same structuring element,
// removing foreground regions smaller than the element while preserving the
// shape of the rest.
func BinaryOpening[T ndarray.Scalar](input *ndarray.Array[T], opts ...BinaryOption) (*ndarray.Array[bool], error) {
	start := time.Now()
	out, err := binaryCompose(input, newBinaryOptions(opts), false)
	observe("morphology", "binary_opening", input.Len(), start, err)
	return out, err
}

// BinaryClosing dilates then erodes with the same structuring element,
// filling background gaps smaller than the element.
func BinaryClosing[T ndarray.Scalar](input *ndarray.Array[T], opts ...BinaryOption) (*ndarray.Array[bool], error) {
	start := time.Now()
	out, err := binaryCompose(input, newBinaryOptions(opts), true)
	observe("morphology", "binary_closing", input.Len(), start, err)
	return out, err
}

// binaryCompose runs the two erosion/dilation stages of an opening
// (firstDilate false) or closing (firstDilate true). The user output buffer
// receives only the second stage.
func binaryCompose[T ndarray.Scalar](input *ndarray.Array[T], o *binaryOptions, firstDilate bool) (*ndarray.Array[bool], error) {
	boolIn, err := toBool(input)
	if err != nil {
		return nil, err
	}

	stage1 := *o
	stage1.output = nil
	tmp, err := binaryErosion(boolIn, &stage1, firstDilate)
	if err != nil {
		return nil, err
	}
	return binaryErosion(tmp, o, !firstDilate)
}

// BinaryHitOrMiss finds all positions where the first structuring element
// fits the foreground and the second misses it entirely. The second element
// defaults to the complement of the first. Border, mask and iteration
// options are ignored.
func BinaryHitOrMiss[T ndarray.Scalar](input *ndarray.Array[T], opts ...BinaryOption) (*ndarray.Array[bool], error) {
	start := time.Now()
	out, err := binaryHitOrMiss(input, newBinaryOptions(opts))
	observe("morphology", "binary_hit_or_miss", input.Len(), start, err)
	return out, err
}

func binaryHitOrMiss[T ndarray.Scalar](input *ndarray.Array[T], o *binaryOptions) (*ndarray.Array[bool], error) {
	boolIn, err := toBool(input)
	if err != nil {
		return nil, err
	}

	s1 := o.structure
	if s1 == nil {
		s1, err = GenerateBinaryStructure(boolIn.Rank(), 1)
		if err != nil {
			return nil, err
		}
	}
	s2 := o.missStructure
	if s2 == nil {
		s2 = ndarray.Not(s1)
	}
	origin2 := o.missOrigin
	if origin2 == nil {
		origin2 = o.origin
	}

	hit := binaryOptions{structure: s1, origin: o.origin, iterations: 1}
	tmp1, err := binaryErosion(boolIn, &hit, false)
	if err != nil {
		return nil, err
	}

	miss := binaryOptions{structure: s2, origin: origin2, iterations: 1, borderValue: true, output: o.output}
	tmp2, err := binaryErosion(ndarray.Not(boolIn), &miss, false)
	if err != nil {
		return nil, err
	}

	ndarray.AndInto(tmp1, tmp2, tmp2)
	return tmp2, nil
}

// BinaryPropagation grows the input inside the mask until no further change
// occurs. Equivalent to a dilation with an unlimited iteration budget.
func BinaryPropagation[T ndarray.Scalar](input *ndarray.Array[T], opts ...BinaryOption) (*ndarray.Array[bool], error) {
	start := time.Now()
	o := newBinaryOptions(opts)
	o.iterations = -1
	out, err := binaryMorph(input, o, true)
	observe("morphology", "binary_propagation", input.Len(), start, err)
	return out, err
}

// BinaryFillHoles fills background regions that are not connected to the
// array border: the border-connected background is flooded through the
// complement of the input, and everything left unreached is foreground.
func BinaryFillHoles[T ndarray.Scalar](input *ndarray.Array[T], opts ...BinaryOption) (*ndarray.Array[bool], error) {
	start := time.Now()
	out, err := binaryFillHoles(input, newBinaryOptions(opts))
	observe("morphology", "binary_fill_holes", input.Len(), start, err)
	return out, err
}

func binaryFillHoles[T ndarray.Scalar](input *ndarray.Array[T], o *binaryOptions) (*ndarray.Array[bool], error) {
	boolIn, err := toBool(input)
	if err != nil {
		return nil, err
	}

	seed, err := ndarray.New[bool](boolIn.Dims()...)
	if err != nil {
		return nil, err
	}
	flood := binaryOptions{
		structure:   o.structure,
		origin:      o.origin,
		mask:        ndarray.Not(boolIn),
		borderValue: true,
		iterations:  -1,
		output:      o.output,
	}
	outside, err := binaryErosion(seed, &flood, true)
	if err != nil {
		return nil, err
	}
	ndarray.NotInto(outside, outside)
	return outside, nil
}

// binaryMorph booleanizes the input and dispatches to the shared
// erosion/dilation core.
func binaryMorph[T ndarray.Scalar](input *ndarray.Array[T], o *binaryOptions, dilate bool) (*ndarray.Array[bool], error) {
	boolIn, err := toBool(input)
	if err != nil {
		return nil, err
	}
	return binaryErosion(boolIn, o, dilate)
}

func toBool[T ndarray.Scalar](input *ndarray.Array[T]) (*ndarray.Array[bool], error) {
	if ndarray.IsComplex[T]() {
		return nil, ErrUnsupportedType
	}
	return ndarray.Booleanize(input), nil
}

// binaryErosion validates the request and runs the engine. dilate selects
// the inverted kernel over the reflected structuring element.
func binaryErosion(input *ndarray.Array[bool], o *binaryOptions, dilate bool) (*ndarray.Array[bool], error) {
	rank := input.Rank()

	structure := o.structure
	if structure == nil {
		var err error
		structure, err = GenerateBinaryStructure(rank, 1)
		if err != nil {
			return nil, err
		}
	}
	if structure.Rank() != rank {
		return nil, &ErrDimensionMismatch{What: "structure rank", Expected: []int{rank}, Actual: []int{structure.Rank()}}
	}
	if !anyTrue(structure) {
		return nil, &ErrInvalidStructure{Reason: "structuring element has no active cells"}
	}

	origin, err := normalizeOrigin(o.origin, structure)
	if err != nil {
		return nil, err
	}

	if dilate {
		structure = reflectStructure(structure)
		for i := range origin {
			origin[i] = -origin[i]
			if structure.Dim(i)%2 == 0 {
				origin[i]--
			}
		}
	}

	if o.mask != nil && !ndarray.SameDims(o.mask, input) {
		return nil, &ErrDimensionMismatch{What: "mask", Expected: input.Dims(), Actual: o.mask.Dims()}
	}

	out := o.output
	if out != nil {
		if !ndarray.SameDims(out, input) {
			return nil, &ErrDimensionMismatch{What: "output", Expected: input.Dims(), Actual: out.Dims()}
		}
	} else {
		out, err = ndarray.New[bool](input.Dims()...)
		if err != nil {
			return nil, err
		}
	}

	binmorph.Erode(input, out, binmorph.Params{
		Structure:  structure,
		Origin:     origin,
		Border:     o.borderValue,
		Invert:     dilate,
		Mask:       o.mask,
		Iterations: o.iterations,
		BruteForce: o.bruteForce,
		CenterOn:   centerIsTrue(structure, origin),
	})
	return out, nil
}

// normalizeOrigin expands the origin option to the structure's rank. A
// single value is broadcast; the shifted center must stay inside the
// structure on every axis.
func normalizeOrigin(origin []int, structure *ndarray.Array[bool]) ([]int, error) {
	rank := structure.Rank()
	out := make([]int, rank)
	switch len(origin) {
	case 0:
	case 1:
		for i := range out {
			out[i] = origin[0]
		}
	case rank:
		copy(out, origin)
	default:
		return nil, &ErrInvalidOrigin{Origin: origin, Dims: structure.Dims()}
	}
	for i, o := range out {
		center := structure.Dim(i)/2 + o
		if center < 0 || center >= structure.Dim(i) {
			return nil, &ErrInvalidOrigin{Origin: origin, Dims: structure.Dims()}
		}
	}
	return out, nil
}

// reflectStructure mirrors the structuring element through its geometric
// center, which for a row-major buffer is a plain reversal.
func reflectStructure(s *ndarray.Array[bool]) *ndarray.Array[bool] {
	out := s.Clone()
	d := out.Data()
	for i, j := 0, len(d)-1; i < j; i, j = i+1, j-1 {
		d[i], d[j] = d[j], d[i]
	}
	return out
}

func centerIsTrue(structure *ndarray.Array[bool], origin []int) bool {
	center := make([]int, structure.Rank())
	for i := range center {
		center[i] = structure.Dim(i)/2 + origin[i]
	}
	return structure.At(center...)
}

func anyTrue(a *ndarray.Array[bool]) bool {
	for _, v := range a.Data() {
		if v {
			return true
		}
	}
	return false
}

// GenerateBinaryStructure builds the canonical structuring element for the
// given rank: a 3^rank cube where a cell is active iff its taxicab distance
// from the center is at most connectivity. Connectivity 1 yields the cross,
// connectivity rank the full cube.
func GenerateBinaryStructure(rank, connectivity int) (*ndarray.Array[bool], error) {
	if rank < 1 {
		return nil, &ErrInvalidStructure{Reason: "rank must be at least one"}
	}
	if connectivity < 1 {
		connectivity = 1
	}

	dims := make([]int, rank)
	for i := range dims {
		dims[i] = 3
	}
	out, err := ndarray.New[bool](dims...)
	if err != nil {
		return nil, err
	}

	data := out.Data()
	coords := make([]int, rank)
	for i := range data {
		d := 0
		for _, c := range coords {
			if c < 1 {
				d += 1 - c
			} else {
				d += c - 1
			}
		}
		data[i] = d <= connectivity
		ndarray.NextIndex(coords, dims)
	}
	return out, nil
}

// IterateStructure dilates a structuring element with itself the given
// number of times, producing the element whose single application equals
// that many applications of the original.
func IterateStructure(structure *ndarray.Array[bool], iterations int) (*ndarray.Array[bool], error) {
	out, _, err := iterateStructure(structure, iterations, nil)
	return out, err
}

// IterateStructureWithOrigin additionally scales the origin to match the
// grown element. A single origin value is broadcast to every axis.
func IterateStructureWithOrigin(structure *ndarray.Array[bool], iterations int, origin ...int) (*ndarray.Array[bool], []int, error) {
	norm, err := normalizeOrigin(origin, structure)
	if err != nil {
		return nil, nil, err
	}
	return iterateStructure(structure, iterations, norm)
}

func iterateStructure(structure *ndarray.Array[bool], iterations int, origin []int) (*ndarray.Array[bool], []int, error) {
	scaled := origin
	if origin != nil {
		scaled = make([]int, len(origin))
		for i, o := range origin {
			scaled[i] = iterations * o
		}
	}
	if iterations < 2 {
		return structure.Clone(), scaled, nil
	}

	rank := structure.Rank()
	ni := iterations - 1
	dims := make([]int, rank)
	for i := range dims {
		dims[i] = structure.Dim(i) + ni*(structure.Dim(i)-1)
	}
	seed, err := ndarray.New[bool](dims...)
	if err != nil {
		return nil, nil, err
	}

	// Plant the element into the grown grid, then dilate it with itself
	// the remaining number of times.
	coords := make([]int, rank)
	shifted := make([]int, rank)
	for _, on := range structure.Data() {
		if on {
			for i := range coords {
				shifted[i] = coords[i] + ni*(structure.Dim(i)/2)
			}
			seed.Set(true, shifted...)
		}
		ndarray.NextIndex(coords, structure.Dims())
	}

	o := binaryOptions{structure: structure, iterations: ni}
	out, err := binaryErosion(seed, &o, true)
	if err != nil {
		return nil, nil, err
	}
	return out, scaled, nil
}
