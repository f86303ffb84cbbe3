package dt

import (
	"github.com/hupe1980/ndmorph/ndarray"
)

// site is one candidate feature on the partial Voronoi lower envelope of a
// line.
type site struct {
	coords []int32 // full feature coordinates
	xd     float64 // sampling-scaled coordinate along the processed axis
	r      float64 // squared scaled distance to the line over the other axes
}

// EuclideanFeature computes the exact Euclidean feature transform of fg:
// for every voxel, the coordinates of its nearest background voxel under
// the (optionally sampling-scaled) Euclidean metric. ft must have length
// rank*n and is filled in planes: ft[i*n+p] holds coordinate i of voxel p's
// feature. Voxels with no reachable background (an input without any
// background) are left with ft[0*n+p] == -1.
//
// The transform merges one dimension at a time: after axis d has been
// processed, each voxel's feature is exact within the subspace spanned by
// axes 0..d. Per-line envelope sweeps use strict comparison, so equidistant
// candidates resolve to the lowest coordinate along the processed axis — a
// deterministic rule that need not match the brute-force scan-order
// tie-break.
func EuclideanFeature(fg *ndarray.Array[bool], sampling []float64, ft []int32) {
	rank := fg.Rank()
	n := fg.Len()
	dims := fg.Dims()

	s := sampling
	if s == nil {
		s = make([]float64, rank)
		for i := range s {
			s[i] = 1
		}
	}

	// Background voxels are their own feature; everything else starts
	// featureless.
	coords := make([]int, rank)
	for f, v := range fg.Data() {
		if v {
			ft[f] = -1
		} else {
			for i := 0; i < rank; i++ {
				ft[i*n+f] = int32(coords[i])
			}
		}
		ndarray.NextIndex(coords, dims)
	}

	lineDims := make([]int, rank)
	for d := 0; d < rank; d++ {
		copy(lineDims, dims)
		lineDims[d] = 1
		stride := fg.Stride(d)
		count := dims[d]

		base := make([]int, rank)
		for {
			voronoiLine(ft, n, fg.FlatIndex(base), stride, count, d, base, s)
			if !ndarray.NextIndex(base, lineDims) {
				break
			}
		}
	}
}

// voronoiLine reassigns every voxel on one line along axis d the nearest
// candidate feature, where the candidates are the current features of the
// line's own voxels.
func voronoiLine(ft []int32, n, base, stride, count, d int, x []int, s []float64) {
	rank := len(x)

	// Build the lower envelope. Candidates arrive ordered by their
	// coordinate along axis d (each voxel's feature lies in its own
	// hyperplane), which the envelope construction requires.
	env := make([]site, 0, count)
	backing := make([]int32, 0, count*rank)
	for j := 0; j < count; j++ {
		f := base + j*stride
		if ft[f] < 0 {
			continue
		}
		backing = backing[:len(backing)+rank]
		c := backing[len(backing)-rank:]
		r := 0.0
		for i := 0; i < rank; i++ {
			c[i] = ft[i*n+f]
			if i != d {
				delta := s[i] * float64(int(c[i])-x[i])
				r += delta * delta
			}
		}
		w := site{coords: c, xd: s[d] * float64(c[d]), r: r}
		for len(env) >= 2 && dominated(env[len(env)-2], env[len(env)-1], w) {
			env = env[:len(env)-1]
		}
		env = append(env, w)
	}
	if len(env) == 0 {
		return
	}

	// Sweep the line, advancing along the envelope while the next site is
	// strictly closer.
	l := 0
	for j := 0; j < count; j++ {
		pd := s[d] * float64(j)
		for l < len(env)-1 && lineDist(env[l+1], pd) < lineDist(env[l], pd) {
			l++
		}
		f := base + j*stride
		for i := 0; i < rank; i++ {
			ft[i*n+f] = env[l].coords[i]
		}
	}
}

// dominated reports whether site v is nowhere on the line strictly closer
// than both u and w (Maurer's RemoveFT criterion).
func dominated(u, v, w site) bool {
	a := v.xd - u.xd
	b := w.xd - v.xd
	c := a + b
	return c*v.r-b*u.r-a*w.r-a*b*c >= 0
}

func lineDist(st site, pd float64) float64 {
	delta := st.xd - pd
	return delta*delta + st.r
}
