package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"github.com/hupe1980/ndmorph/ndarray"
)

// elemTypeOf tags the element type of T in the stream header. The reflect
// kind is stable across releases and distinguishes every Scalar member.
func elemTypeOf[T ndarray.Scalar]() uint8 {
	var zero T
	return uint8(reflect.TypeOf(zero).Kind())
}

// elemWidth is the on-wire byte width per element for a kind. Integers are
// widened to eight bytes so that ~int and ~uint arrays round-trip across
// platforms.
func elemWidth(k reflect.Kind) int {
	switch k {
	case reflect.Bool:
		return 1
	case reflect.Float32:
		return 4
	case reflect.Complex64:
		return 8
	case reflect.Complex128:
		return 16
	default:
		return 8
	}
}

func encodeElems[T ndarray.Scalar](data []T) []byte {
	var zero T
	k := reflect.TypeOf(zero).Kind()
	w := elemWidth(k)

	out := make([]byte, len(data)*w)
	rv := reflect.ValueOf(data)
	for i := range data {
		v := rv.Index(i)
		b := out[i*w:]
		switch k {
		case reflect.Bool:
			if v.Bool() {
				b[0] = 1
			}
		case reflect.Float32:
			binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v.Float())))
		case reflect.Float64:
			binary.LittleEndian.PutUint64(b, math.Float64bits(v.Float()))
		case reflect.Complex64:
			c := v.Complex()
			binary.LittleEndian.PutUint32(b, math.Float32bits(float32(real(c))))
			binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(imag(c))))
		case reflect.Complex128:
			c := v.Complex()
			binary.LittleEndian.PutUint64(b, math.Float64bits(real(c)))
			binary.LittleEndian.PutUint64(b[8:], math.Float64bits(imag(c)))
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
			binary.LittleEndian.PutUint64(b, v.Uint())
		default:
			binary.LittleEndian.PutUint64(b, uint64(v.Int()))
		}
	}
	return out
}

func decodeElems[T ndarray.Scalar](payload []byte, n int) ([]T, error) {
	var zero T
	k := reflect.TypeOf(zero).Kind()
	w := elemWidth(k)

	if len(payload) != n*w {
		return nil, fmt.Errorf("%w: payload holds %d bytes, dims require %d", ErrCorruptStream, len(payload), n*w)
	}

	out := make([]T, n)
	rv := reflect.ValueOf(out)
	for i := 0; i < n; i++ {
		v := rv.Index(i)
		b := payload[i*w:]
		switch k {
		case reflect.Bool:
			v.SetBool(b[0] != 0)
		case reflect.Float32:
			v.SetFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(b))))
		case reflect.Float64:
			v.SetFloat(math.Float64frombits(binary.LittleEndian.Uint64(b)))
		case reflect.Complex64:
			re := math.Float32frombits(binary.LittleEndian.Uint32(b))
			im := math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
			v.SetComplex(complex(float64(re), float64(im)))
		case reflect.Complex128:
			re := math.Float64frombits(binary.LittleEndian.Uint64(b))
			im := math.Float64frombits(binary.LittleEndian.Uint64(b[8:]))
			v.SetComplex(complex(re, im))
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
			v.SetUint(binary.LittleEndian.Uint64(b))
		default:
			v.SetInt(int64(binary.LittleEndian.Uint64(b)))
		}
	}
	return out, nil
}
