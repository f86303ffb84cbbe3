// Package testutil provides testing utilities for ndmorph.
//
// This package is intended for use in tests and benchmarks only. It provides
// seeded random array generation so that randomized equivalence tests stay
// reproducible.
package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/ndmorph/ndarray"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0,1).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// RandomBinaryArray returns an array of the given dimensions where each
// voxel is foreground with probability p.
func (r *RNG) RandomBinaryArray(p float64, dims ...int) *ndarray.Array[bool] {
	out, err := ndarray.New[bool](dims...)
	if err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	data := out.Data()
	for i := range data {
		data[i] = r.rand.Float64() < p
	}
	return out
}

// RandomFloatArray returns an array of the given dimensions with uniform
// values in [0, scale).
func (r *RNG) RandomFloatArray(scale float64, dims ...int) *ndarray.Array[float64] {
	out, err := ndarray.New[float64](dims...)
	if err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	data := out.Data()
	for i := range data {
		data[i] = r.rand.Float64() * scale
	}
	return out
}
