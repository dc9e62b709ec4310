// Copyright © 2018 One Concern

package cmd

import (
	"path/filepath"

	"github.com/oneconcern/strata/pkg/core"
	"github.com/oneconcern/strata/pkg/dlogger"
	"github.com/oneconcern/strata/pkg/kv"
	"github.com/oneconcern/strata/pkg/metrics"
	logexporter "github.com/oneconcern/strata/pkg/metrics/exporters/log"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/persist"
	"go.uber.org/zap"
)

// session holds a repository restored from its persisted change log.
// Every commit during the session is persisted.
type session struct {
	l     *zap.Logger
	store kv.Store
	logs  *persist.LogStore
	repo  *core.Repository

	metrics bool
}

func openSession(c *CLIConfig) (*session, error) {
	l, err := dlogger.GetLogger(c.LogLevel, dlogger.Console(true))
	if err != nil {
		return nil, err
	}

	store, err := kv.Open(kv.Backend(c.Backend),
		kv.WithPath(filepath.Join(c.DataDir, "log", c.Backend)),
		kv.WithCacheSize(c.cacheSize()),
		kv.WithSync(true),
		kv.Logger(l),
	)
	if err != nil {
		return nil, err
	}

	if c.Metrics {
		metrics.Init(metrics.WithExporter(logexporter.NewExporter(l)))
	}

	logs := persist.NewLogStore(store, persist.Logger(l))
	repo, err := core.NewRepository(c.repository(),
		core.Logger(l),
		core.WithExecutorOptions(
			core.WithCommitHook(logs),
			core.WithMetrics(c.Metrics),
		),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if _, err = logs.Restore(repo); err != nil {
		_ = store.Close()
		return nil, err
	}

	return &session{l: l, store: store, logs: logs, repo: repo, metrics: c.Metrics}, nil
}

func (s *session) snapshots() *persist.SnapshotStore {
	return persist.NewDirSnapshotStore(filepath.Join(config.DataDir, "snapshots"), persist.SnapshotLogger(s.l))
}

func (s *session) modelAddress(id model.ID) model.Address {
	return model.ModelAddress(s.repo.ID(), id)
}

func (s *session) Close() error {
	if s.metrics {
		metrics.Flush()
	}
	_ = s.l.Sync()
	return s.store.Close()
}

// withSession runs an action against the restored repository and closes it
func withSession(action func(*session) error) error {
	s, err := openSession(config)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return action(s)
}
