/*
 * Copyright © 2019 One Concern
 *
 */

package persist

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/oneconcern/strata/pkg/dlogger"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/persist/status"
	"github.com/oneconcern/strata/pkg/serialize"
	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const (
	stagingDir = ".stage"

	defaultCacheSize = 64
)

// SnapshotStore keeps model snapshots as files, one per model revision:
//
//	<repository>/<model>/r<revision>.yaml
type SnapshotStore struct {
	fs        afero.Fs
	format    serialize.Format
	cacheSize int
	cache     *lru.Cache // decoded snapshots, keyed by file name
	l         *zap.Logger
}

// NewSnapshotStore builds a snapshot store on a file system.
//
// When fs is nil, snapshots are kept under .strata/snapshots in the current directory.
func NewSnapshotStore(fs afero.Fs, opts ...SnapshotOption) *SnapshotStore {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), path.Join(".strata", "snapshots"))
	}
	s := &SnapshotStore{
		fs:        fs,
		format:    serialize.YAML,
		cacheSize: defaultCacheSize,
		l:         dlogger.MustGetLogger(dlogger.LogLevelInfo, dlogger.Component("persist")),
	}
	for _, apply := range opts {
		apply(s)
	}
	if s.cacheSize > 0 {
		s.cache, _ = lru.New(s.cacheSize)
	}
	return s
}

// NewDirSnapshotStore builds a snapshot store rooted in a local directory
func NewDirSnapshotStore(dir string, opts ...SnapshotOption) *SnapshotStore {
	return NewSnapshotStore(afero.NewBasePathFs(afero.NewOsFs(), dir), opts...)
}

func (s *SnapshotStore) modelDir(addr model.Address) string {
	return path.Join(string(addr.Repository), string(addr.Model))
}

func (s *SnapshotStore) fileName(rev int64) string {
	return fmt.Sprintf("r%d.%s", rev, s.format)
}

func (s *SnapshotStore) parseFileName(name string) (int64, bool) {
	suffix := "." + string(s.format)
	if !strings.HasPrefix(name, "r") || !strings.HasSuffix(name, suffix) {
		return 0, false
	}
	rev, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, "r"), suffix), 10, 64)
	if err != nil || rev < 0 {
		return 0, false
	}
	return rev, true
}

// Save writes the snapshot of a model at its current revision and returns this revision.
//
// The file is written in a staging area then renamed into place, so readers never see
// a partial snapshot.
func (s *SnapshotStore) Save(m model.ReadableModel) (int64, error) {
	snapshot := model.CopyModel(m)
	data, err := serialize.MarshalModel(s.format, snapshot)
	if err != nil {
		return model.RevisionNotSet, err
	}

	dir := s.modelDir(snapshot.Address())
	if err = s.fs.MkdirAll(dir, 0700); err != nil {
		return model.RevisionNotSet, err
	}
	if err = s.fs.MkdirAll(stagingDir, 0700); err != nil {
		return model.RevisionNotSet, err
	}

	staged := path.Join(stagingDir, ksuid.New().String())
	if err = afero.WriteFile(s.fs, staged, data, 0600); err != nil {
		return model.RevisionNotSet, err
	}
	target := path.Join(dir, s.fileName(snapshot.Revision()))
	if err = s.fs.Rename(staged, target); err != nil {
		_ = s.fs.Remove(staged)
		return model.RevisionNotSet, err
	}

	if s.cache != nil {
		s.cache.Add(target, snapshot)
	}
	s.l.Debug("saved snapshot", zap.Stringer("model", snapshot.Address()), zap.Int64("revision", snapshot.Revision()))
	return snapshot.Revision(), nil
}

// Load reads the snapshot of a model at some revision
func (s *SnapshotStore) Load(addr model.Address, rev int64) (*model.ModelState, error) {
	if addr.Kind() != model.KindModel {
		return nil, status.ErrInvalidModel.WrapMessage(addr.String())
	}
	name := path.Join(s.modelDir(addr), s.fileName(rev))
	if s.cache != nil {
		if cached, ok := s.cache.Get(name); ok {
			return model.CopyModel(cached.(*model.ModelState)), nil
		}
	}

	data, err := afero.ReadFile(s.fs, name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, status.ErrSnapshotNotFound.WrapMessage(fmt.Sprintf("%v at revision %d", addr, rev))
		}
		return nil, err
	}

	m, err := serialize.UnmarshalModel(s.format, data)
	if err != nil {
		return nil, status.ErrCorruptSnapshot.WrapWithLog(s.l, err, zap.String("file", name))
	}
	if m.Address() != addr || m.Revision() != rev {
		return nil, status.ErrCorruptSnapshot.WrapMessage(fmt.Sprintf("%s holds %v at revision %d", name, m.Address(), m.Revision()))
	}
	if s.cache != nil {
		s.cache.Add(name, model.CopyModel(m))
	}
	return m, nil
}

// Revisions lists the revisions of the stored snapshots of a model, in ascending order
func (s *SnapshotStore) Revisions(addr model.Address) ([]int64, error) {
	if addr.Kind() != model.KindModel {
		return nil, status.ErrInvalidModel.WrapMessage(addr.String())
	}
	dir := s.modelDir(addr)
	exists, err := afero.DirExists(s.fs, dir)
	if err != nil || !exists {
		return nil, err
	}
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}

	revs := make([]int64, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		if rev, ok := s.parseFileName(info.Name()); ok {
			revs = append(revs, rev)
		}
	}
	slices.Sort(revs)
	return revs, nil
}

// Latest reads the most recent stored snapshot of a model
func (s *SnapshotStore) Latest(addr model.Address) (*model.ModelState, error) {
	revs, err := s.Revisions(addr)
	if err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, status.ErrSnapshotNotFound.WrapMessage(addr.String())
	}
	return s.Load(addr, revs[len(revs)-1])
}

// Remove deletes all stored snapshots of a model
func (s *SnapshotStore) Remove(addr model.Address) error {
	if addr.Kind() != model.KindModel {
		return status.ErrInvalidModel.WrapMessage(addr.String())
	}
	if s.cache != nil {
		s.cache.Purge()
	}
	return s.fs.RemoveAll(s.modelDir(addr))
}
