package persist_test

import (
	"testing"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/core"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/kv"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/persist"
	"github.com/oneconcern/strata/pkg/persist/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	phonebookAddr = model.ModelAddress("repo1", "phonebook")
	scratchAddr   = model.ModelAddress("repo1", "scratch")
	johnAddr      = phonebookAddr.Child("john")
	phoneAddr     = johnAddr.Child("phone")
)

func openStore(t testing.TB, backend kv.Backend) kv.Store {
	store, err := kv.Open(backend, kv.WithInMemory(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func persistedRepository(t testing.TB, logs *persist.LogStore) *core.Repository {
	repo, err := core.NewRepository("repo1",
		core.Logger(zap.NewNop()),
		core.WithExecutorOptions(core.WithCommitHook(logs)),
	)
	require.NoError(t, err)
	return repo
}

// populate commits:
//
//	phonebook r0..r3: model, john, john/phone, phone = "555-1234"
//	phonebook r4: transaction adding peter and changing john/phone
//	scratch r0..r1: created then removed
func populate(t testing.TB, repo *core.Repository) *core.Model {
	m, err := repo.CreateModel("alice", "phonebook")
	require.NoError(t, err)
	john, err := m.CreateObject("alice", "john")
	require.NoError(t, err)
	_, err = john.CreateField("alice", "phone")
	require.NoError(t, err)
	_, err = john.SetValue("alice", "phone", model.String("555-1234"))
	require.NoError(t, err)

	tx, err := command.NewTransaction(phonebookAddr,
		command.Must(command.AddObject(phonebookAddr, "peter", false)),
		command.Must(command.ChangeValue(phoneAddr, 3, model.String("555-0000"))),
	)
	require.NoError(t, err)
	require.Equal(t, int64(4), repo.ExecuteCommand("bob", tx))

	_, err = repo.CreateModel("alice", "scratch")
	require.NoError(t, err)
	removed, err := repo.RemoveModel("alice", "scratch")
	require.NoError(t, err)
	require.True(t, removed)
	return m
}

func TestLogStore(t *testing.T) {
	for _, backend := range []kv.Backend{kv.Badger, kv.Pebble} {
		backend := backend
		t.Run(string(backend), func(t *testing.T) {
			logs := persist.NewLogStore(openStore(t, backend), persist.Logger(zap.NewNop()))
			repo := persistedRepository(t, logs)
			m := populate(t, repo)

			models, err := logs.Models()
			require.NoError(t, err)
			assert.Equal(t, []model.Address{phonebookAddr, scratchAddr}, models)

			head, err := logs.Head(phonebookAddr)
			require.NoError(t, err)
			assert.Equal(t, int64(4), head)

			head, err = logs.Head(scratchAddr)
			require.NoError(t, err)
			assert.Equal(t, int64(1), head)

			head, err = logs.Head(model.ModelAddress("repo1", "unknown"))
			require.NoError(t, err)
			assert.Equal(t, model.RevisionNotSet, head)

			events, err := logs.Events(phonebookAddr, model.RevisionNotSet)
			require.NoError(t, err)
			require.Len(t, events, 5)
			for i, e := range events {
				assert.Equal(t, int64(i), e.Revision())
			}
			assert.Equal(t, model.ID("bob"), events[4].Actor())

			events, err = logs.Events(phonebookAddr, 2)
			require.NoError(t, err)
			require.Len(t, events, 2)
			assert.Equal(t, int64(3), events[0].Revision())
			assert.True(t, event.SameChange(m.ChangeLog().Event(3), events[0]))

			_, err = logs.Events(johnAddr, model.RevisionNotSet)
			assert.True(t, errors.Is(err, status.ErrInvalidModel))
			_, err = logs.Head(model.RepositoryAddress("repo1"))
			assert.True(t, errors.Is(err, status.ErrInvalidModel))
		})
	}
}

func TestRestore(t *testing.T) {
	for _, backend := range []kv.Backend{kv.Badger, kv.Pebble} {
		backend := backend
		t.Run(string(backend), func(t *testing.T) {
			store := openStore(t, backend)
			logs := persist.NewLogStore(store, persist.Logger(zap.NewNop()))
			original := populate(t, persistedRepository(t, logs))

			restored := persistedRepository(t, logs)
			replayed, err := logs.Restore(restored)
			require.NoError(t, err)
			assert.Equal(t, 7, replayed)

			m := restored.GetModel("phonebook")
			require.NotNil(t, m)
			assert.True(t, model.TreeEquals(original, m))
			assert.False(t, restored.HasModel("scratch"))
			require.NotNil(t, restored.ChangeLog("scratch"))
			assert.Equal(t, int64(1), restored.ChangeLog("scratch").Revision())

			// restoring does not write the log again, new commits do
			head, err := logs.Head(phonebookAddr)
			require.NoError(t, err)
			assert.Equal(t, int64(4), head)

			_, err = m.CreateObject("alice", "mary")
			require.NoError(t, err)
			head, err = logs.Head(phonebookAddr)
			require.NoError(t, err)
			assert.Equal(t, int64(5), head)

			// a repository with another id restores nothing
			other, err := core.NewRepository("repo2", core.Logger(zap.NewNop()))
			require.NoError(t, err)
			replayed, err = logs.Restore(other)
			require.NoError(t, err)
			assert.Zero(t, replayed)
			assert.Empty(t, other.ModelIDs())
		})
	}
}

func TestRestoreKeepsPersistingOtherRepositories(t *testing.T) {
	logs := persist.NewLogStore(openStore(t, kv.Pebble), persist.Logger(zap.NewNop()))
	populate(t, persistedRepository(t, logs))

	other, err := core.NewRepository("repo2",
		core.Logger(zap.NewNop()),
		core.WithExecutorOptions(core.WithCommitHook(logs)),
	)
	require.NoError(t, err)
	contactsAddr := model.ModelAddress("repo2", "contacts")

	// commits to repo2 happen while repo1 is being restored
	restored := persistedRepository(t, logs)
	var committed []int64
	restored.Subscribe(phonebookAddr, event.ListenerFunc(func(e event.Event) {
		if e.Revision() != 0 || len(committed) > 0 {
			return
		}
		m, err := other.CreateModel("alice", "contacts")
		require.NoError(t, err)
		committed = append(committed, m.Revision())
		rev := other.ExecuteCommand("alice", command.Must(command.AddObject(contactsAddr, "mary", false)))
		committed = append(committed, rev)
	}))

	replayed, err := logs.Restore(restored)
	require.NoError(t, err)
	assert.Equal(t, 7, replayed)
	require.Equal(t, []int64{0, 1}, committed)

	head, err := logs.Head(contactsAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(1), head)
	events, err := logs.Events(contactsAddr, model.RevisionNotSet)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	head, err = logs.Head(phonebookAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(4), head)
}

func TestRestoreDiverged(t *testing.T) {
	logs := persist.NewLogStore(openStore(t, kv.Badger), persist.Logger(zap.NewNop()))
	populate(t, persistedRepository(t, logs))

	repo, err := core.NewRepository("repo1", core.Logger(zap.NewNop()))
	require.NoError(t, err)
	m, err := repo.CreateModel("alice", "phonebook")
	require.NoError(t, err)
	_, err = m.CreateObject("alice", "mary")
	require.NoError(t, err)

	_, err = logs.Restore(repo)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrRestore))
}

func TestCorruptLog(t *testing.T) {
	store := openStore(t, kv.Pebble)
	logs := persist.NewLogStore(store, persist.Logger(zap.NewNop()))
	populate(t, persistedRepository(t, logs))

	require.NoError(t, store.Set([]byte("log/repo1/phonebook/00000000000000000002"), []byte("{not json")))
	_, err := logs.Events(phonebookAddr, model.RevisionNotSet)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrCorruptLog))

	require.NoError(t, store.Set([]byte("head/repo1/phonebook"), []byte("four")))
	_, err = logs.Head(phonebookAddr)
	assert.True(t, errors.Is(err, status.ErrCorruptLog))
}

func TestSnapshotStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	snapshots := persist.NewSnapshotStore(fs, persist.SnapshotLogger(zap.NewNop()))

	repo, err := core.NewRepository("repo1", core.Logger(zap.NewNop()))
	require.NoError(t, err)
	m := populate(t, repo)
	atFour := m.Snapshot()

	rev, err := snapshots.Save(m)
	require.NoError(t, err)
	assert.Equal(t, int64(4), rev)

	exists, err := afero.Exists(fs, "repo1/phonebook/r4.yaml")
	require.NoError(t, err)
	assert.True(t, exists)
	staged, err := afero.IsEmpty(fs, ".stage")
	require.NoError(t, err)
	assert.True(t, staged)

	_, err = m.CreateObject("alice", "mary")
	require.NoError(t, err)
	rev, err = snapshots.Save(m)
	require.NoError(t, err)
	assert.Equal(t, int64(5), rev)

	revs, err := snapshots.Revisions(phonebookAddr)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, revs)

	loaded, err := snapshots.Load(phonebookAddr, 4)
	require.NoError(t, err)
	assert.True(t, model.TreeEquals(atFour, loaded))

	latest, err := snapshots.Latest(phonebookAddr)
	require.NoError(t, err)
	assert.True(t, model.TreeEquals(m, latest))

	_, err = snapshots.Load(phonebookAddr, 3)
	assert.True(t, errors.Is(err, status.ErrSnapshotNotFound))
	_, err = snapshots.Latest(scratchAddr)
	assert.True(t, errors.Is(err, status.ErrSnapshotNotFound))
	_, err = snapshots.Load(johnAddr, 4)
	assert.True(t, errors.Is(err, status.ErrInvalidModel))

	require.NoError(t, afero.WriteFile(fs, "repo1/phonebook/r6.yaml", []byte("revision: [oops"), 0600))
	_, err = snapshots.Load(phonebookAddr, 6)
	assert.True(t, errors.Is(err, status.ErrCorruptSnapshot))

	require.NoError(t, afero.WriteFile(fs, "repo1/phonebook/r7.yml", []byte("ignored"), 0600))
	require.NoError(t, afero.WriteFile(fs, "repo1/phonebook/notes.txt", []byte("ignored"), 0600))
	revs, err = snapshots.Revisions(phonebookAddr)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5, 6}, revs)

	require.NoError(t, snapshots.Remove(phonebookAddr))
	revs, err = snapshots.Revisions(phonebookAddr)
	require.NoError(t, err)
	assert.Empty(t, revs)
}

func TestSnapshotCache(t *testing.T) {
	repo, err := core.NewRepository("repo1", core.Logger(zap.NewNop()))
	require.NoError(t, err)
	m := populate(t, repo)

	for _, size := range []int{0, 2} {
		fs := afero.NewMemMapFs()
		snapshots := persist.NewSnapshotStore(fs, persist.SnapshotLogger(zap.NewNop()), persist.WithSnapshotCache(size))
		_, err = snapshots.Save(m)
		require.NoError(t, err)
		require.NoError(t, fs.Remove("repo1/phonebook/r4.yaml"))

		loaded, err := snapshots.Load(phonebookAddr, 4)
		if size == 0 {
			assert.True(t, errors.Is(err, status.ErrSnapshotNotFound))
			continue
		}
		require.NoError(t, err)
		assert.True(t, model.TreeEquals(m, loaded))

		// callers get their own copy
		delete(loaded.Objects, "john")
		again, err := snapshots.Load(phonebookAddr, 4)
		require.NoError(t, err)
		assert.True(t, again.HasObject("john"))
	}
}
