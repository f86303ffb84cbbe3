// Package ndarray provides a dense N-dimensional array container used by all
// morphology and distance-transform operations.
//
// Arrays are rectangular, row-major and fully resident in memory. The zero
// value is not usable; construct arrays with New or FromSlice.
package ndarray

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrZeroRank is returned when an array is constructed without dimensions.
	ErrZeroRank = errors.New("array must have at least one dimension")

	// ErrInvalidDim is returned when a dimension is not positive.
	ErrInvalidDim = errors.New("array dimensions must be positive")

	// ErrSizeMismatch is returned when a backing slice does not match the
	// product of the requested dimensions.
	ErrSizeMismatch = errors.New("data length does not match dimensions")
)

// Scalar is the set of element types an Array can hold.
//
// Complex types are representable so that callers can hand any array to the
// public API and get a typed error back, mirroring how the operations reject
// complex input at runtime rather than silently coercing it.
type Scalar interface {
	~bool |
		~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint |
		~float32 | ~float64 |
		~complex64 | ~complex128
}

// Real is the subset of Scalar valid for grayscale operations.
type Real interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint |
		~float32 | ~float64
}

// Array is a dense N-dimensional rectangular buffer in row-major layout.
type Array[T Scalar] struct {
	dims    []int
	strides []int
	data    []T
}

// New allocates a zeroed array with the given dimensions.
func New[T Scalar](dims ...int) (*Array[T], error) {
	n, strides, err := checkDims(dims)
	if err != nil {
		return nil, err
	}
	return &Array[T]{
		dims:    append([]int(nil), dims...),
		strides: strides,
		data:    make([]T, n),
	}, nil
}

// FromSlice wraps data (without copying) as an array with the given
// dimensions. The slice length must equal the product of the dimensions.
func FromSlice[T Scalar](data []T, dims ...int) (*Array[T], error) {
	n, strides, err := checkDims(dims)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: have %d elements, dims require %d", ErrSizeMismatch, len(data), n)
	}
	return &Array[T]{
		dims:    append([]int(nil), dims...),
		strides: strides,
		data:    data,
	}, nil
}

func checkDims(dims []int) (int, []int, error) {
	if len(dims) == 0 {
		return 0, nil, ErrZeroRank
	}
	n := 1
	for _, d := range dims {
		if d < 1 {
			return 0, nil, fmt.Errorf("%w: got %v", ErrInvalidDim, dims)
		}
		n *= d
	}
	strides := make([]int, len(dims))
	s := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = s
		s *= dims[i]
	}
	return n, strides, nil
}

// Rank returns the number of dimensions.
func (a *Array[T]) Rank() int { return len(a.dims) }

// Len returns the total number of elements.
func (a *Array[T]) Len() int { return len(a.data) }

// Dims returns a copy of the dimension vector.
func (a *Array[T]) Dims() []int { return append([]int(nil), a.dims...) }

// Dim returns the size of axis i.
func (a *Array[T]) Dim(i int) int { return a.dims[i] }

// Data returns the backing slice in row-major order. Mutations are visible
// to the array.
func (a *Array[T]) Data() []T { return a.data }

// At returns the element at the given coordinates.
func (a *Array[T]) At(coords ...int) T { return a.data[a.FlatIndex(coords)] }

// Set stores v at the given coordinates.
func (a *Array[T]) Set(v T, coords ...int) { a.data[a.FlatIndex(coords)] = v }

// FlatIndex converts a coordinate vector to a row-major flat index.
func (a *Array[T]) FlatIndex(coords []int) int {
	idx := 0
	for i, c := range coords {
		idx += c * a.strides[i]
	}
	return idx
}

// CoordsAt writes the coordinate vector of flat index idx into out, which
// must have length Rank, and returns out.
func (a *Array[T]) CoordsAt(idx int, out []int) []int {
	for i := range a.dims {
		out[i] = idx / a.strides[i]
		idx %= a.strides[i]
	}
	return out
}

// Stride returns the flat-index stride of axis i.
func (a *Array[T]) Stride(i int) int { return a.strides[i] }

// Clone returns a deep copy.
func (a *Array[T]) Clone() *Array[T] {
	return &Array[T]{
		dims:    append([]int(nil), a.dims...),
		strides: append([]int(nil), a.strides...),
		data:    append([]T(nil), a.data...),
	}
}

// Fill sets every element to v.
func (a *Array[T]) Fill(v T) {
	for i := range a.data {
		a.data[i] = v
	}
}

// SameDims reports whether a and b have identical dimension vectors.
func SameDims[T, U Scalar](a *Array[T], b *Array[U]) bool {
	if a.Rank() != b.Rank() {
		return false
	}
	for i, d := range a.dims {
		if b.dims[i] != d {
			return false
		}
	}
	return true
}

// HasDims reports whether a's dimension vector equals dims.
func (a *Array[T]) HasDims(dims []int) bool {
	if len(a.dims) != len(dims) {
		return false
	}
	for i, d := range a.dims {
		if dims[i] != d {
			return false
		}
	}
	return true
}

// NextIndex advances coords to the next position in row-major order over an
// array with the given dims. It returns false once the last position has
// been passed. Start iteration from the all-zero coordinate.
func NextIndex(coords, dims []int) bool {
	for i := len(dims) - 1; i >= 0; i-- {
		coords[i]++
		if coords[i] < dims[i] {
			return true
		}
		coords[i] = 0
	}
	return false
}

// Booleanize converts any array to a boolean mask: true wherever the element
// differs from the zero value of its type.
func Booleanize[T Scalar](a *Array[T]) *Array[bool] {
	var zero T
	out := &Array[bool]{
		dims:    append([]int(nil), a.dims...),
		strides: append([]int(nil), a.strides...),
		data:    make([]bool, len(a.data)),
	}
	for i, v := range a.data {
		out.data[i] = v != zero
	}
	return out
}

// IsComplex reports whether T is a complex element type, including defined
// types whose underlying type is complex.
func IsComplex[T Scalar]() bool {
	var zero T
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}

// Not returns the element-wise logical complement of a boolean array.
func Not(a *Array[bool]) *Array[bool] {
	out := a.Clone()
	for i, v := range out.data {
		out.data[i] = !v
	}
	return out
}

// NotInto writes the element-wise complement of a into out. The two may
// alias. Shapes must match.
func NotInto(a, out *Array[bool]) {
	for i, v := range a.data {
		out.data[i] = !v
	}
}

// Xor returns the element-wise exclusive or of two boolean arrays of
// identical shape.
func Xor(a, b *Array[bool]) *Array[bool] {
	out := a.Clone()
	for i := range out.data {
		out.data[i] = a.data[i] != b.data[i]
	}
	return out
}

// AndInto writes the element-wise conjunction of a and b into out. Any of
// the three may alias. Shapes must match.
func AndInto(a, b, out *Array[bool]) {
	for i := range out.data {
		out.data[i] = a.data[i] && b.data[i]
	}
}
