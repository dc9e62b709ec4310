// Package log provides an opencensus exporter which writes view data to a zap logger.
package log

import (
	"sync"

	"go.opencensus.io/stats/view"
	"go.uber.org/zap"
)

var _ view.Exporter = &Exporter{}

// Exporter logs view data. The last exported rows of each view are retained.
type Exporter struct {
	l    *zap.Logger
	mx   sync.Mutex
	last map[string]*view.Data
}

// NewExporter builds a new logging exporter. A nil logger is replaced by a no-op logger.
func NewExporter(l *zap.Logger) *Exporter {
	if l == nil {
		l = zap.NewNop()
	}
	return &Exporter{
		l:    l,
		last: make(map[string]*view.Data),
	}
}

// ExportView logs the view data
func (e *Exporter) ExportView(viewData *view.Data) {
	if viewData == nil || viewData.View == nil {
		return
	}
	e.mx.Lock()
	e.last[viewData.View.Name] = viewData
	e.mx.Unlock()

	e.l.Debug("metrics",
		zap.String("view", viewData.View.Name),
		zap.Int("rows", len(viewData.Rows)),
		zap.Time("end", viewData.End),
	)
}

// Last returns the last exported data for a view, or nil
func (e *Exporter) Last(name string) *view.Data {
	e.mx.Lock()
	defer e.mx.Unlock()
	return e.last[name]
}
