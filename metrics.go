package ndmorph

import (
	"sync/atomic"
	"time"
)

// Collector defines an interface for collecting operational metrics.
// Implement it to integrate with monitoring systems like Prometheus.
type Collector interface {
	// RecordMorphology is called after each binary or grayscale morphology
	// operation. voxels is the input size, err is nil on success.
	RecordMorphology(op string, voxels int, duration time.Duration, err error)

	// RecordDistanceTransform is called after each distance-transform
	// operation.
	RecordDistanceTransform(transform string, voxels int, duration time.Duration, err error)
}

// NoopCollector is a no-op implementation of Collector.
type NoopCollector struct{}

func (NoopCollector) RecordMorphology(string, int, time.Duration, error)        {}
func (NoopCollector) RecordDistanceTransform(string, int, time.Duration, error) {}

// BasicCollector provides simple in-memory metrics collection, useful for
// debugging without external dependencies.
type BasicCollector struct {
	MorphologyCount      atomic.Int64
	MorphologyErrors     atomic.Int64
	MorphologyTotalNanos atomic.Int64
	TransformCount       atomic.Int64
	TransformErrors      atomic.Int64
	TransformTotalNanos  atomic.Int64
}

// RecordMorphology implements Collector.
func (b *BasicCollector) RecordMorphology(_ string, _ int, duration time.Duration, err error) {
	b.MorphologyCount.Add(1)
	b.MorphologyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MorphologyErrors.Add(1)
	}
}

// RecordDistanceTransform implements Collector.
func (b *BasicCollector) RecordDistanceTransform(_ string, _ int, duration time.Duration, err error) {
	b.TransformCount.Add(1)
	b.TransformTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TransformErrors.Add(1)
	}
}

var collector atomic.Pointer[Collector]

func init() {
	var c Collector = NoopCollector{}
	collector.Store(&c)
}

// SetCollector installs the package-level metrics collector. Passing nil
// restores the noop collector.
func SetCollector(c Collector) {
	if c == nil {
		c = NoopCollector{}
	}
	collector.Store(&c)
}

// observe reports one finished operation to the logger and collector.
func observe(kind, op string, voxels int, start time.Time, err error) {
	d := time.Since(start)
	if kind == "distance" {
		(*collector.Load()).RecordDistanceTransform(op, voxels, d, err)
	} else {
		(*collector.Load()).RecordMorphology(op, voxels, d, err)
	}
	logger().LogOperation(op, voxels, d, err)
}
