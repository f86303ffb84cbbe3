// Package minmax implements the N-dimensional sliding-window minimum/maximum
// filter backing the grayscale morphology operations: erosion is a windowed
// minimum of input−weights, dilation a windowed maximum of input+weights
// (the facade reflects the window for dilation).
package minmax

import (
	"github.com/hupe1980/ndmorph/ndarray"
)

// Mode selects how coordinates beyond the array edge are resolved.
type Mode int

const (
	Reflect Mode = iota // d c b a | a b c d | d c b a
	Constant            // fill with cval
	Nearest             // a a a a | a b c d | d d d d
	Mirror              // d c b | a b c d | c b a
	Wrap                // a b c d | a b c d | a b c d
)

// fold maps a possibly out-of-range index onto [0, d) for the given mode.
// Constant is handled by the caller.
func fold(q, d int, mode Mode) int {
	if q >= 0 && q < d {
		return q
	}
	switch mode {
	case Nearest:
		if q < 0 {
			return 0
		}
		return d - 1
	case Wrap:
		q %= d
		if q < 0 {
			q += d
		}
		return q
	case Mirror:
		if d == 1 {
			return 0
		}
		period := 2*d - 2
		q %= period
		if q < 0 {
			q += period
		}
		if q >= d {
			q = period - q
		}
		return q
	default: // Reflect
		period := 2 * d
		q %= period
		if q < 0 {
			q += period
		}
		if q >= d {
			q = period - 1 - q
		}
		return q
	}
}

// Apply runs the filter over in, writing out. offsets are the window's
// coordinate offsets relative to each output voxel; weights, when non-nil,
// parallels offsets and is subtracted (minimum) or added (maximum) to each
// window sample. cval is the out-of-bounds sample for Constant mode.
// in and out must be distinct arrays of identical shape.
func Apply[T ndarray.Real](in, out *ndarray.Array[T], offsets [][]int, weights []T, mode Mode, cval T, maximum bool) {
	src := in.Data()
	dst := out.Data()
	dims := in.Dims()
	rank := in.Rank()

	strides := make([]int, rank)
	s := 1
	for i := rank - 1; i >= 0; i-- {
		strides[i] = s
		s *= dims[i]
	}

	coords := make([]int, rank)
	for f := range dst {
		var best T
		for j, o := range offsets {
			var v T
			oob := false
			q := 0
			for i, c := range coords {
				qi := c + o[i]
				if qi < 0 || qi >= dims[i] {
					if mode == Constant {
						oob = true
						break
					}
					qi = fold(qi, dims[i], mode)
				}
				q += qi * strides[i]
			}
			if oob {
				v = cval
			} else {
				v = src[q]
			}
			if weights != nil {
				if maximum {
					v += weights[j]
				} else {
					v -= weights[j]
				}
			}
			if j == 0 || (maximum && v > best) || (!maximum && v < best) {
				best = v
			}
		}
		dst[f] = best
		ndarray.NextIndex(coords, dims)
	}
}
