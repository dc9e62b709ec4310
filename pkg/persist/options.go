package persist

import (
	"github.com/oneconcern/strata/pkg/dlogger"
	"github.com/oneconcern/strata/pkg/serialize"
	"go.uber.org/zap"
)

// Option for a LogStore
type Option func(*LogStore)

// Logger for the log store
func Logger(l *zap.Logger) Option {
	return func(s *LogStore) {
		if l != nil {
			s.l = l
		}
	}
}

// WithFormat sets the format of persisted events. The default is JSON.
func WithFormat(format serialize.Format) Option {
	return func(s *LogStore) {
		s.format = format
	}
}

func defaultLogStore() *LogStore {
	return &LogStore{
		l:      dlogger.MustGetLogger(dlogger.LogLevelInfo, dlogger.Component("persist")),
		format: serialize.JSON,
	}
}

// SnapshotOption for a SnapshotStore
type SnapshotOption func(*SnapshotStore)

// SnapshotLogger sets the logger of a snapshot store
func SnapshotLogger(l *zap.Logger) SnapshotOption {
	return func(s *SnapshotStore) {
		if l != nil {
			s.l = l
		}
	}
}

// WithSnapshotFormat sets the format of snapshot files. The default is YAML.
func WithSnapshotFormat(format serialize.Format) SnapshotOption {
	return func(s *SnapshotStore) {
		s.format = format
	}
}

// WithSnapshotCache sets how many decoded snapshots are kept in memory. Zero disables the cache.
func WithSnapshotCache(size int) SnapshotOption {
	return func(s *SnapshotStore) {
		if size >= 0 {
			s.cacheSize = size
		}
	}
}
