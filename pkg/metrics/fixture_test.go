package metrics

import "go.opencensus.io/stats"

type exampleMetrics struct {
	Telemetry struct {
		Ignored   []CommitMetrics     `group:"ignored" description:""`
		TestCount *stats.Int64Measure `metric:"testCount" description:"number of tests"`
	} `group:"telemetry" description:""`
	Commits CommitMetrics `group:"commits"`
	Sync    SyncMetrics   `group:"sync"`
}

func (e *exampleMetrics) IncTest() {
	Count(e.Telemetry.TestCount, Tags{"kind": "test"})
}
