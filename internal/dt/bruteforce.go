// Package dt implements the distance-transform kernels: the brute-force
// multi-metric transform, the two-pass chamfer transform, and the exact
// Euclidean feature transform.
package dt

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/ndmorph/ndarray"
)

// Metric selects the local distance rule of a transform.
type Metric int

const (
	Euclidean Metric = iota + 1
	Taxicab
	Chessboard
)

// bfParallelThreshold is the voxel count above which the brute-force outer
// scan is chunked across goroutines.
const bfParallelThreshold = 1 << 12

// BruteForce computes per-voxel distances to the nearest boundary voxel by
// exhaustive scan. boundary holds the flat indices of the background voxels
// adjacent to foreground, in row-major order; ties go to the first boundary
// voxel in that order. Background voxels get distance 0 and themselves as
// feature.
//
// Outputs are optional: dist (Euclidean, with optional per-axis sampling),
// idist (taxicab/chessboard) and feat (flat feature indices) are filled only
// when non-nil. If the boundary is empty (no background anywhere),
// foreground voxels get +Inf / MaxUint32 and themselves as feature.
func BruteForce(fg *ndarray.Array[bool], boundary []int, m Metric, sampling []float64, dist []float64, idist []uint32, feat []int64) {
	rank := fg.Rank()
	n := fg.Len()

	bcoords := make([][]int, len(boundary))
	for i, b := range boundary {
		bcoords[i] = fg.CoordsAt(b, make([]int, rank))
	}

	scan := func(start, end int) {
		coords := fg.CoordsAt(start, make([]int, rank))
		data := fg.Data()
		dims := fg.Dims()
		for f := start; f < end; f++ {
			if !data[f] {
				if dist != nil {
					dist[f] = 0
				}
				if idist != nil {
					idist[f] = 0
				}
				if feat != nil {
					feat[f] = int64(f)
				}
				ndarray.NextIndex(coords, dims)
				continue
			}

			bestF := math.Inf(1)
			bestI := uint32(math.MaxUint32)
			best := int64(f)
			for i, bc := range bcoords {
				switch m {
				case Euclidean:
					d := 0.0
					for j, c := range coords {
						delta := float64(c - bc[j])
						if sampling != nil {
							delta *= sampling[j]
						}
						d += delta * delta
					}
					if d < bestF {
						bestF = d
						best = int64(boundary[i])
					}
				case Taxicab:
					d := uint32(0)
					for j, c := range coords {
						d += uint32(abs(c - bc[j]))
					}
					if d < bestI {
						bestI = d
						best = int64(boundary[i])
					}
				case Chessboard:
					d := uint32(0)
					for j, c := range coords {
						if a := uint32(abs(c - bc[j])); a > d {
							d = a
						}
					}
					if d < bestI {
						bestI = d
						best = int64(boundary[i])
					}
				}
			}
			if dist != nil {
				dist[f] = math.Sqrt(bestF)
			}
			if idist != nil {
				idist[f] = bestI
			}
			if feat != nil {
				feat[f] = best
			}
			ndarray.NextIndex(coords, dims)
		}
	}

	if n < bfParallelThreshold {
		scan(0, n)
		return
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, n)
		if start >= end {
			break
		}
		g.Go(func() error {
			scan(start, end)
			return nil
		})
	}
	_ = g.Wait() // chunks never fail
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
