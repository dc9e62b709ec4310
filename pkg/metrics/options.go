package metrics

import (
	"context"
	"time"

	"go.opencensus.io/stats/view"
)

// Option configures the collection of metrics
type Option func(*collector)

// WithBasePath sets the path under which all modules are registered (default: "strata")
func WithBasePath(location string) Option {
	return func(c *collector) {
		c.basePath = location
	}
}

// WithContexter sets the function that yields the context of recorded measurements
func WithContexter(contexter func() context.Context) Option {
	return func(c *collector) {
		if contexter != nil {
			c.contexter = contexter
		}
	}
}

// WithExporter sets the exporter of view data. Without an exporter, data remains
// available through view.RetrieveData.
func WithExporter(exporter view.Exporter) Option {
	return func(c *collector) {
		if exporter == nil {
			return
		}
		if f, ok := exporter.(FlushExporter); ok {
			c.exporter = f
			return
		}
		c.exporter = &lockedExporter{Exporter: exporter}
	}
}

// WithReportingPeriod sets the period of background exports. Periods under one second are ignored.
func WithReportingPeriod(d time.Duration) Option {
	return func(c *collector) {
		c.period = d
	}
}
