package metrics

import (
	"time"

	"go.opencensus.io/stats"
)

// Outcomes reported by CommitMetrics
const (
	OutcomeChanged  = "changed"
	OutcomeNoChange = "nochange"
	OutcomeFailed   = "failed"
	OutcomeDenied   = "denied"
)

// CommitMetrics reports about commits against models
type CommitMetrics struct {
	Commits *stats.Int64Measure   `metric:"commits" description:"number of commits" tags:"model,outcome"`
	Timing  *stats.Float64Measure `metric:"timing" unit:"milliseconds" description:"duration of a commit, check and apply" tags:"model"`
	Events  *stats.Int64Measure   `metric:"events" unit:"events" description:"atomic events produced by a commit" extraviews:"sum" tags:"model"`
}

// Committed records the outcome of a commit
func (c *CommitMetrics) Committed(start time.Time, modelAddr, outcome string, events int) {
	Count(c.Commits, Tags{"model": modelAddr, "outcome": outcome})
	Elapsed(start, c.Timing, Tags{"model": modelAddr})
	if events > 0 {
		Record(c.Events, int64(events), Tags{"model": modelAddr})
	}
}

// SyncMetrics reports about the reconciliation of local changes against remote events
type SyncMetrics struct {
	Remote   *stats.Int64Measure `metric:"remoteEvents" description:"remote events replicated locally" extraviews:"sum" tags:"model"`
	Resolved *stats.Int64Measure `metric:"localChanges" description:"local changes resolved by a reconciliation" tags:"model,outcome"`
	Rewrites *stats.Int64Measure `metric:"rewrites" description:"local commands rebased on remote events" extraviews:"sum" tags:"model"`
	Pending  *stats.Int64Measure `metric:"pending" description:"local changes waiting for confirmation" extraviews:"lastvalue" tags:"model"`
}

// Replicated records the number of remote events applied locally
func (s *SyncMetrics) Replicated(modelAddr string, n int) {
	Record(s.Remote, int64(n), Tags{"model": modelAddr})
}

// Resolve records the outcome of a local change
func (s *SyncMetrics) Resolve(modelAddr, outcome string) {
	Count(s.Resolved, Tags{"model": modelAddr, "outcome": outcome})
}

// Rewrite records a rebased local command
func (s *SyncMetrics) Rewrite(modelAddr string) {
	Count(s.Rewrites, Tags{"model": modelAddr})
}

// Queue records the number of pending local changes
func (s *SyncMetrics) Queue(modelAddr string, n int) {
	Record(s.Pending, int64(n), Tags{"model": modelAddr})
}
