package metrics

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

const (
	unitCount  = "count"
	unitEvents = "events"
	unitMillis = "milliseconds"
)

// commits are in-memory operations: buckets in milliseconds stay small
var (
	millisBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000}
	eventsBuckets = []float64{1, 2, 5, 10, 20, 50, 100, 500, 1000}
)

// unitAggregation yields the opencensus unit and the default aggregation for a unit tag
func unitAggregation(unit string) (string, *view.Aggregation) {
	switch unit {
	case unitMillis:
		return stats.UnitMilliseconds, view.Distribution(millisBuckets...)
	case unitEvents:
		return stats.UnitDimensionless, view.Distribution(eventsBuckets...)
	default:
		return stats.UnitDimensionless, view.Count()
	}
}

func extraAggregation(name string) *view.Aggregation {
	switch name {
	case unitCount:
		return view.Count()
	case "sum":
		return view.Sum()
	case "lastvalue":
		return view.LastValue()
	default:
		return nil
	}
}

// viewsOf builds the default view of a measure, named after the measure, then one view
// per extra aggregation, named after the measure and the aggregation.
func viewsOf(measure stats.Measure, spec measureSpec) []*view.View {
	keys := make([]tag.Key, 0, len(spec.tagKeys))
	for _, k := range spec.tagKeys {
		keys = append(keys, tag.MustNewKey(k))
	}

	_, dflt := unitAggregation(spec.unit)
	views := []*view.View{{
		Name:        spec.name,
		Description: qualify(spec.description, dflt),
		Measure:     measure,
		Aggregation: dflt,
		TagKeys:     keys,
	}}

	for _, extra := range spec.extraViews {
		agg := extraAggregation(extra)
		if agg == nil {
			continue
		}
		views = append(views, &view.View{
			Name:        qualify(spec.name, agg),
			Description: qualify(spec.description, agg),
			Measure:     measure,
			Aggregation: agg,
			TagKeys:     keys,
		})
	}
	return views
}

func qualify(s string, agg *view.Aggregation) string {
	switch agg.Type {
	case view.AggTypeCount:
		return s + " [count]"
	case view.AggTypeSum:
		return s + " [cumulated]"
	case view.AggTypeDistribution:
		return s + " [distribution]"
	case view.AggTypeLastValue:
		return s + " [last]"
	default:
		return s
	}
}
