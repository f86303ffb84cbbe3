package dt

// FeatureCoords expands flat feature indices into per-axis coordinate
// planes: out[i*n+p] = coordinate i of feat[p]. out must have length
// rank*n.
func FeatureCoords(feat []int64, dims []int, out []int32) {
	rank := len(dims)
	n := len(feat)

	strides := make([]int64, rank)
	s := int64(1)
	for i := rank - 1; i >= 0; i-- {
		strides[i] = s
		s *= int64(dims[i])
	}

	for p, f := range feat {
		for i := 0; i < rank; i++ {
			out[i*n+p] = int32(f / strides[i])
			f %= strides[i]
		}
	}
}

// BoundaryList returns the row-major flat indices of the "on" voxels of a
// boolean boundary mask.
func BoundaryList(border []bool) []int {
	var list []int
	for f, v := range border {
		if v {
			list = append(list, f)
		}
	}
	return list
}
