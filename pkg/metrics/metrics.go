// Package metrics registers opencensus measures and views described by struct tags.
//
// A metrics description is a struct whose fields are measures, tagged with a metric name,
// or nested descriptions, tagged with a group:
//
//	type M struct {
//	  Commits metrics.CommitMetrics `group:"commits"`
//	}
//
//	m := metrics.Ensure("core", &M{})
package metrics

import (
	"context"
	"path"
	"reflect"
	"sync"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

var (
	global   *collector
	initOnce sync.Once
)

// collector holds the measures and views registered for a process
type collector struct {
	basePath  string
	contexter func() context.Context
	exporter  FlushExporter
	period    time.Duration

	mx       sync.Mutex
	modules  map[string]interface{}
	measures []stats.Measure
	views    []*view.View
}

func newCollector(opts ...Option) *collector {
	c := &collector{
		basePath:  "strata",
		contexter: context.Background,
		modules:   make(map[string]interface{}),
	}
	for _, apply := range opts {
		apply(c)
	}

	if c.exporter != nil {
		view.RegisterExporter(c.exporter)
		if c.period >= time.Second {
			view.SetReportingPeriod(c.period)
		}
	}
	return c
}

func (c *collector) ensure(location string, m interface{}) interface{} {
	c.mx.Lock()
	defer c.mx.Unlock()

	location = path.Join(c.basePath, location)
	if existing, ok := c.modules[location]; ok {
		if reflect.TypeOf(existing) != reflect.TypeOf(m) {
			panic("metrics module " + location + " is already registered with another type")
		}
		return existing
	}

	bindMeasures(location, c.bind, m)
	c.modules[location] = m
	return m
}

var (
	int64MeasureType   = reflect.TypeOf((*stats.Int64Measure)(nil))
	float64MeasureType = reflect.TypeOf((*stats.Float64Measure)(nil))
)

// bind creates a measure and registers its views
func (c *collector) bind(t reflect.Type, spec measureSpec) interface{} {
	unit, _ := unitAggregation(spec.unit)

	var (
		measure stats.Measure
		bound   interface{}
	)
	switch t {
	case int64MeasureType:
		m := stats.Int64(spec.name, spec.description, unit)
		measure, bound = m, m
	case float64MeasureType:
		m := stats.Float64(spec.name, spec.description, unit)
		measure, bound = m, m
	default:
		return nil
	}

	c.measures = append(c.measures, measure)
	for _, v := range viewsOf(measure, spec) {
		c.views = append(c.views, v)
		_ = view.Register(v)
	}
	return bound
}

// flush exports the current data of every registered view
func (c *collector) flush() {
	if c.exporter == nil {
		return
	}

	c.mx.Lock()
	views := append([]*view.View(nil), c.views...)
	c.mx.Unlock()

	for _, v := range views {
		rows, err := view.RetrieveData(v.Name)
		if err != nil {
			continue
		}
		now := time.Now()
		c.exporter.Flush(&view.Data{View: v, Start: now, End: now, Rows: rows})
	}
}

// FlushExporter is a view exporter that may also be flushed on demand,
// concurrently with the background exports of opencensus.
type FlushExporter interface {
	view.Exporter
	Flush(*view.Data)
}

type lockedExporter struct {
	view.Exporter
	mx sync.Mutex
}

func (e *lockedExporter) ExportView(data *view.Data) {
	e.mx.Lock()
	defer e.mx.Unlock()
	e.Exporter.ExportView(data)
}

func (e *lockedExporter) Flush(data *view.Data) {
	e.ExportView(data)
}
