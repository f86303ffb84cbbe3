package ndmorph

import (
	"fmt"
	"time"

	"github.com/hupe1980/ndmorph/internal/minmax"
	"github.com/hupe1980/ndmorph/ndarray"
)

// BorderMode selects how grayscale operations resolve window samples that
// fall outside the array.
type BorderMode int

const (
	// BorderReflect mirrors about the edge of the array: d c b a | a b c d.
	BorderReflect BorderMode = iota

	// BorderConstant fills out-of-bounds samples with the cval option.
	BorderConstant

	// BorderNearest repeats the closest edge sample.
	BorderNearest

	// BorderMirror mirrors about the center of the edge sample: d c b | a b c d.
	BorderMirror

	// BorderWrap tiles the array periodically.
	BorderWrap
)

func (m BorderMode) String() string {
	switch m {
	case BorderReflect:
		return "reflect"
	case BorderConstant:
		return "constant"
	case BorderNearest:
		return "nearest"
	case BorderMirror:
		return "mirror"
	case BorderWrap:
		return "wrap"
	default:
		return fmt.Sprintf("BorderMode(%d)", int(m))
	}
}

func (m BorderMode) engineMode() (minmax.Mode, error) {
	switch m {
	case BorderReflect:
		return minmax.Reflect, nil
	case BorderConstant:
		return minmax.Constant, nil
	case BorderNearest:
		return minmax.Nearest, nil
	case BorderMirror:
		return minmax.Mirror, nil
	case BorderWrap:
		return minmax.Wrap, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidBorderMode, int(m))
	}
}

// GreyErosion computes a windowed minimum: with a flat window the smallest
// sample, with a non-flat structuring element the minimum of sample minus
// element value. One of WithSize, WithFootprint or WithGreyStructure is
// required.
func GreyErosion[T ndarray.Real](input *ndarray.Array[T], opts ...GreyOption[T]) (*ndarray.Array[T], error) {
	start := time.Now()
	out, err := greyFilter(input, newGreyOptions(opts), true)
	observe("morphology", "grey_erosion", input.Len(), start, err)
	return out, err
}

// GreyDilation computes a windowed maximum over the reflected window: with a
// non-flat structuring element the maximum of sample plus element value.
func GreyDilation[T ndarray.Real](input *ndarray.Array[T], opts ...GreyOption[T]) (*ndarray.Array[T], error) {
	start := time.Now()
	out, err := greyFilter(input, newGreyOptions(opts), false)
	observe("morphology", "grey_dilation", input.Len(), start, err)
	return out, err
}

// GreyOpening erodes then dilates, flattening bright features smaller than
// the window.
func GreyOpening[T ndarray.Real](input *ndarray.Array[T], opts ...GreyOption[T]) (*ndarray.Array[T], error) {
	start := time.Now()
	o := newGreyOptions(opts)
	out, err := greyStage(input, o, true)
	if err == nil {
		out, err = greyFinal(out, o, false)
	}
	observe("morphology", "grey_opening", input.Len(), start, err)
	return out, err
}

// GreyClosing dilates then erodes, flattening dark features smaller than the
// window.
func GreyClosing[T ndarray.Real](input *ndarray.Array[T], opts ...GreyOption[T]) (*ndarray.Array[T], error) {
	start := time.Now()
	o := newGreyOptions(opts)
	out, err := greyStage(input, o, false)
	if err == nil {
		out, err = greyFinal(out, o, true)
	}
	observe("morphology", "grey_closing", input.Len(), start, err)
	return out, err
}

// MorphologicalGradient returns dilation minus erosion, highlighting local
// intensity transitions.
func MorphologicalGradient[T ndarray.Real](input *ndarray.Array[T], opts ...GreyOption[T]) (*ndarray.Array[T], error) {
	start := time.Now()
	o := newGreyOptions(opts)
	out, err := morphologicalGradient(input, o)
	observe("morphology", "morphological_gradient", input.Len(), start, err)
	return out, err
}

func morphologicalGradient[T ndarray.Real](input *ndarray.Array[T], o *greyOptions[T]) (*ndarray.Array[T], error) {
	dil, err := greyStage(input, o, false)
	if err != nil {
		return nil, err
	}
	ero, err := greyStage(input, o, true)
	if err != nil {
		return nil, err
	}
	return combineInto(o, dil, func(i int, out []T) {
		out[i] = dil.Data()[i] - ero.Data()[i]
	})
}

// MorphologicalLaplace returns dilation plus erosion minus twice the input.
func MorphologicalLaplace[T ndarray.Real](input *ndarray.Array[T], opts ...GreyOption[T]) (*ndarray.Array[T], error) {
	start := time.Now()
	o := newGreyOptions(opts)
	out, err := morphologicalLaplace(input, o)
	observe("morphology", "morphological_laplace", input.Len(), start, err)
	return out, err
}

func morphologicalLaplace[T ndarray.Real](input *ndarray.Array[T], o *greyOptions[T]) (*ndarray.Array[T], error) {
	dil, err := greyStage(input, o, false)
	if err != nil {
		return nil, err
	}
	ero, err := greyStage(input, o, true)
	if err != nil {
		return nil, err
	}
	src := input.Data()
	return combineInto(o, dil, func(i int, out []T) {
		out[i] = dil.Data()[i] + ero.Data()[i] - 2*src[i]
	})
}

// WhiteTophat returns input minus opening, isolating bright features
// smaller than the window.
func WhiteTophat[T ndarray.Real](input *ndarray.Array[T], opts ...GreyOption[T]) (*ndarray.Array[T], error) {
	start := time.Now()
	o := newGreyOptions(opts)
	out, err := whiteTophat(input, o)
	observe("morphology", "white_tophat", input.Len(), start, err)
	return out, err
}

func whiteTophat[T ndarray.Real](input *ndarray.Array[T], o *greyOptions[T]) (*ndarray.Array[T], error) {
	tmp, err := greyStage(input, o, true)
	if err != nil {
		return nil, err
	}
	tmp, err = greyStage(tmp, o, false)
	if err != nil {
		return nil, err
	}
	src := input.Data()
	return combineInto(o, tmp, func(i int, out []T) {
		out[i] = src[i] - tmp.Data()[i]
	})
}

// BlackTophat returns closing minus input, isolating dark features smaller
// than the window.
func BlackTophat[T ndarray.Real](input *ndarray.Array[T], opts ...GreyOption[T]) (*ndarray.Array[T], error) {
	start := time.Now()
	o := newGreyOptions(opts)
	out, err := blackTophat(input, o)
	observe("morphology", "black_tophat", input.Len(), start, err)
	return out, err
}

func blackTophat[T ndarray.Real](input *ndarray.Array[T], o *greyOptions[T]) (*ndarray.Array[T], error) {
	tmp, err := greyStage(input, o, false)
	if err != nil {
		return nil, err
	}
	tmp, err = greyStage(tmp, o, true)
	if err != nil {
		return nil, err
	}
	src := input.Data()
	return combineInto(o, tmp, func(i int, out []T) {
		out[i] = tmp.Data()[i] - src[i]
	})
}

// greyStage runs one erosion/dilation pass into a fresh buffer, ignoring
// the user's output option.
func greyStage[T ndarray.Real](input *ndarray.Array[T], o *greyOptions[T], minimum bool) (*ndarray.Array[T], error) {
	stage := *o
	stage.output = nil
	return greyFilter(input, &stage, minimum)
}

// greyFinal runs the last pass of a composition, honoring the user's output
// option.
func greyFinal[T ndarray.Real](input *ndarray.Array[T], o *greyOptions[T], minimum bool) (*ndarray.Array[T], error) {
	return greyFilter(input, o, minimum)
}

// combineInto evaluates fn element-wise into the user's output buffer (or a
// template-shaped scratch array when none is set).
func combineInto[T ndarray.Real](o *greyOptions[T], template *ndarray.Array[T], fn func(i int, out []T)) (*ndarray.Array[T], error) {
	out := o.output
	if out != nil {
		if !ndarray.SameDims(out, template) {
			return nil, &ErrDimensionMismatch{What: "output", Expected: template.Dims(), Actual: out.Dims()}
		}
	} else {
		var err error
		out, err = ndarray.New[T](template.Dims()...)
		if err != nil {
			return nil, err
		}
	}
	data := out.Data()
	for i := range data {
		fn(i, data)
	}
	return out, nil
}

// greyFilter validates a grayscale request, resolves the window and runs the
// min/max engine.
func greyFilter[T ndarray.Real](input *ndarray.Array[T], o *greyOptions[T], minimum bool) (*ndarray.Array[T], error) {
	mode, err := o.mode.engineMode()
	if err != nil {
		return nil, err
	}

	offsets, weights, err := resolveWindow(o, input.Rank(), !minimum)
	if err != nil {
		return nil, err
	}

	out := o.output
	if out != nil {
		if !ndarray.SameDims(out, input) {
			return nil, &ErrDimensionMismatch{What: "output", Expected: input.Dims(), Actual: out.Dims()}
		}
	} else {
		out, err = ndarray.New[T](input.Dims()...)
		if err != nil {
			return nil, err
		}
	}

	// The engine reads the input while writing; route shared storage
	// through a scratch buffer.
	target := out
	shared := len(input.Data()) > 0 && len(out.Data()) > 0 && &input.Data()[0] == &out.Data()[0]
	if shared {
		target, err = ndarray.New[T](input.Dims()...)
		if err != nil {
			return nil, err
		}
	}

	minmax.Apply(input, target, offsets, weights, mode, T(o.cval), !minimum)
	if shared {
		copy(out.Data(), target.Data())
	}
	return out, nil
}

// resolveWindow turns the size/footprint/structure options into offset
// vectors and, for non-flat elements, aligned weights. For dilation the
// window is reflected and the origin adjusted so that dilation stays the
// exact dual of erosion.
func resolveWindow[T ndarray.Real](o *greyOptions[T], rank int, dilate bool) ([][]int, []T, error) {
	footprint := o.footprint
	structure := o.structure

	if structure != nil {
		if footprint == nil {
			var err error
			footprint, err = ndarray.New[bool](structure.Dims()...)
			if err != nil {
				return nil, nil, err
			}
			footprint.Fill(true)
		} else if !ndarray.SameDims(footprint, structure) {
			return nil, nil, &ErrDimensionMismatch{What: "footprint", Expected: structure.Dims(), Actual: footprint.Dims()}
		}
	}
	if footprint == nil {
		if len(o.size) == 0 {
			return nil, nil, ErrMissingWindow
		}
		dims := make([]int, rank)
		switch len(o.size) {
		case 1:
			for i := range dims {
				dims[i] = o.size[0]
			}
		case rank:
			copy(dims, o.size)
		default:
			return nil, nil, &ErrInvalidStructure{
				Reason: fmt.Sprintf("size has %d entries for rank %d", len(o.size), rank),
			}
		}
		var err error
		footprint, err = ndarray.New[bool](dims...)
		if err != nil {
			return nil, nil, err
		}
		footprint.Fill(true)
	}

	if footprint.Rank() != rank {
		return nil, nil, &ErrDimensionMismatch{What: "footprint rank", Expected: []int{rank}, Actual: []int{footprint.Rank()}}
	}
	if !anyTrue(footprint) {
		return nil, nil, &ErrInvalidStructure{Reason: "structuring element has no active cells"}
	}

	origin, err := normalizeOrigin(o.origin, footprint)
	if err != nil {
		return nil, nil, err
	}

	if dilate {
		footprint = reflectStructure(footprint)
		if structure != nil {
			structure = reflectGrey(structure)
		}
		for i := range origin {
			origin[i] = -origin[i]
			if footprint.Dim(i)%2 == 0 {
				origin[i]--
			}
		}
	}

	center := make([]int, rank)
	for i := range center {
		center[i] = footprint.Dim(i)/2 + origin[i]
	}

	var offsets [][]int
	var weights []T
	coords := make([]int, rank)
	svals := []T(nil)
	if structure != nil {
		svals = structure.Data()
	}
	for f, on := range footprint.Data() {
		if on {
			off := make([]int, rank)
			for i := range off {
				off[i] = coords[i] - center[i]
			}
			offsets = append(offsets, off)
			if svals != nil {
				weights = append(weights, svals[f])
			}
		}
		ndarray.NextIndex(coords, footprint.Dims())
	}
	return offsets, weights, nil
}

func reflectGrey[T ndarray.Real](s *ndarray.Array[T]) *ndarray.Array[T] {
	out := s.Clone()
	d := out.Data()
	for i, j := 0, len(d)-1; i < j; i, j = i+1, j-1 {
		d[i], d[j] = d[j], d[i]
	}
	return out
}
