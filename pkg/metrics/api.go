package metrics

import (
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
)

// Init sets up the collection of metrics. Only the first call matters: registering
// metrics before Init collects them with the default settings.
func Init(opts ...Option) {
	initOnce.Do(func() {
		global = newCollector(opts...)
	})
}

// Flush exports the current data of all registered views
func Flush() {
	Init()
	global.flush()
}

// Ensure registers a metrics description under some location, and returns the
// description retained for this location: only the first registration is kept.
//
// Ensure panics if m is not a pointer to a struct, or if the location was registered
// with another type.
func Ensure[T any](location string, m *T) *T {
	Init()
	return global.ensure(location, m).(*T)
}

// Tags are the tag values recorded with a measurement
type Tags map[string]string

func (t Tags) mutators() []tag.Mutator {
	mutators := make([]tag.Mutator, 0, len(t))
	for k, v := range t {
		mutators = append(mutators, tag.Upsert(tag.MustNewKey(k), v))
	}
	return mutators
}

// Count records one occurrence
func Count(counter *stats.Int64Measure, tags Tags) {
	record(tags, counter.M(1))
}

// Record records a value
func Record(measure *stats.Int64Measure, value int64, tags Tags) {
	record(tags, measure.M(value))
}

// Elapsed records the milliseconds elapsed since start
func Elapsed(start time.Time, measure *stats.Float64Measure, tags Tags) {
	record(tags, measure.M(float64(time.Since(start).Nanoseconds())/1e6))
}

func record(tags Tags, ms ...stats.Measurement) {
	Init()
	_ = stats.RecordWithTags(global.contexter(), tags.mutators(), ms...)
}

// Enable is embedded by types that may collect metrics
type Enable struct {
	enabled bool
}

// MetricsEnabled tells whether metrics are collected
func (e Enable) MetricsEnabled() bool {
	return e.enabled
}

// EnableMetrics toggles the collection of metrics
func (e *Enable) EnableMetrics(enabled bool) {
	e.enabled = enabled
}
