/*
 * Copyright © 2019 One Concern
 *
 */

package persist

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/oneconcern/strata/pkg/core"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/kv"
	kvstatus "github.com/oneconcern/strata/pkg/kv/status"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/persist/status"
	"github.com/oneconcern/strata/pkg/serialize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	logPrefix    = "log"
	headPrefix   = "head"
	modelsPrefix = "models"

	maxParallel = 8
)

var _ core.CommitHook = &LogStore{}

// LogStore persists committed events in a key-value store
type LogStore struct {
	store  kv.Store
	format serialize.Format
	l      *zap.Logger

	// repositories being restored: their events are not persisted again
	mx        sync.Mutex
	restoring map[model.ID]int
}

// NewLogStore builds a change log persisted in a key-value store.
//
// The LogStore does not own the key-value store: closing it is left to the caller.
func NewLogStore(store kv.Store, opts ...Option) *LogStore {
	s := defaultLogStore()
	s.store = store
	for _, apply := range opts {
		apply(s)
	}
	return s
}

func logKey(addr model.Address, rev int64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", logPrefix, addr, rev))
}

func logModelPrefix(addr model.Address) []byte {
	return []byte(logPrefix + addr.String() + "/")
}

func headKey(addr model.Address) []byte {
	return []byte(headPrefix + addr.String())
}

func modelKey(addr model.Address) []byte {
	return []byte(modelsPrefix + addr.String())
}

// OnCommit writes a committed event to the log of its model
func (s *LogStore) OnCommit(modelAddr model.Address, e event.Event) error {
	if s.isRestoring(modelAddr.Repository) {
		return nil
	}

	data, err := serialize.MarshalEvent(s.format, e)
	if err != nil {
		return err
	}
	if err = s.store.SetIfNotExists(modelKey(modelAddr), []byte(strconv.FormatInt(e.Revision(), 10))); err != nil {
		return err
	}
	if err = s.store.SetAll(
		kv.Pair{Key: logKey(modelAddr, e.Revision()), Value: data},
		kv.Pair{Key: headKey(modelAddr), Value: []byte(strconv.FormatInt(e.Revision(), 10))},
	); err != nil {
		return err
	}

	s.l.Debug("persisted event", zap.Stringer("model", modelAddr), zap.Int64("revision", e.Revision()))
	return nil
}

// Head returns the last persisted revision of a model.
//
// It returns model.RevisionNotSet when nothing was persisted for this model.
func (s *LogStore) Head(addr model.Address) (int64, error) {
	if addr.Kind() != model.KindModel {
		return model.RevisionNotSet, status.ErrInvalidModel.WrapMessage(addr.String())
	}
	data, err := s.store.Get(headKey(addr))
	if err != nil {
		if errors.Is(err, kvstatus.ErrNotFound) {
			return model.RevisionNotSet, nil
		}
		return model.RevisionNotSet, err
	}
	rev, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return model.RevisionNotSet, status.ErrCorruptLog.Wrap(err)
	}
	return rev, nil
}

// Models lists the addresses of all models with a persisted log, in ascending order
func (s *LogStore) Models() ([]model.Address, error) {
	it := s.store.Prefix([]byte(modelsPrefix + "/"))
	defer func() { _ = it.Close() }()

	var addrs []model.Address
	for it.Next() {
		key, _, err := it.Item()
		if err != nil {
			return nil, err
		}
		addr, err := model.ParseAddress(strings.TrimPrefix(string(key), modelsPrefix))
		if err != nil {
			return nil, status.ErrCorruptLog.Wrap(err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// Events returns the persisted events of a model with a revision strictly greater than since,
// in revision order
func (s *LogStore) Events(addr model.Address, since int64) ([]event.Event, error) {
	if addr.Kind() != model.KindModel {
		return nil, status.ErrInvalidModel.WrapMessage(addr.String())
	}
	it := s.store.Prefix(logModelPrefix(addr))
	defer func() { _ = it.Close() }()

	var events []event.Event
	for it.Next() {
		key, value, err := it.Item()
		if err != nil {
			return nil, err
		}
		e, err := serialize.UnmarshalEvent(s.format, value)
		if err != nil {
			return nil, status.ErrCorruptLog.WrapWithLog(s.l, err, zap.ByteString("key", key))
		}
		if e.Revision() <= since {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func (s *LogStore) mute(id model.ID) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.restoring == nil {
		s.restoring = make(map[model.ID]int)
	}
	s.restoring[id]++
}

func (s *LogStore) unmute(id model.ID) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.restoring[id]--; s.restoring[id] <= 0 {
		delete(s.restoring, id)
	}
}

func (s *LogStore) isRestoring(id model.ID) bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.restoring[id] > 0
}

// Restore rebuilds the models of a repository by replaying their persisted logs.
//
// The repository is expected to be fresh. Events of this repository are not persisted again
// while restoring, even when this LogStore is a commit hook of the repository. Commits to
// other repositories are persisted as usual. It returns the number of
// events replayed.
func (s *LogStore) Restore(repo *core.Repository) (int, error) {
	s.mute(repo.ID())
	defer s.unmute(repo.ID())

	all, err := s.Models()
	if err != nil {
		return 0, err
	}
	addrs := make([]model.Address, 0, len(all))
	for _, addr := range all {
		if addr.Repository == repo.ID() {
			addrs = append(addrs, addr)
		}
	}

	// decode logs concurrently, replay them in order
	logs := make([][]event.Event, len(addrs))
	group := new(errgroup.Group)
	group.SetLimit(maxParallel)
	for i, addr := range addrs {
		i, addr := i, addr
		group.Go(func() error {
			events, err := s.Events(addr, model.RevisionNotSet)
			logs[i] = events
			return err
		})
	}
	if err = group.Wait(); err != nil {
		return 0, err
	}

	var replayed int
	for i, addr := range addrs {
		if _, err = repo.ReplayAll(logs[i]); err != nil {
			return replayed, status.ErrRestore.WrapWithLog(s.l, err, zap.Stringer("model", addr))
		}
		replayed += len(logs[i])
	}

	s.l.Info("restored repository", zap.Stringer("repository", repo.Address()), zap.Int("events", replayed))
	return replayed, nil
}
