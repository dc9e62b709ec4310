package sync

import (
	"context"
	"testing"
	"time"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/core"
	corestatus "github.com/oneconcern/strata/pkg/core/status"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/sync/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestRebaseOnUnrelatedChange(t *testing.T) {
	defer goleak.VerifyNone(t)
	r := newReplicas(t)

	pending, err := r.sync.StageLocal(must(command.ChangeValue(phoneAddr, 5, model.String("555-9999"))))
	require.NoError(t, err)
	assert.Equal(t, int64(6), pending.OptimisticRevision())
	assert.Equal(t, model.String("555-9999"), r.sync.View().Object("john").Field("phone").Value())
	assert.Equal(t, model.String("555-0000"), r.local.GetObject("john").Field("phone").Value(), "staging leaves the local model untouched")

	require.Equal(t, int64(6), r.remote.ExecuteCommand("remote", must(command.AddField(peterAddr, "x", false))))

	results, err := r.sync.Synchronize(context.Background(), r.store)
	require.NoError(t, err)
	require.Len(t, results, 1)

	rebased := results[0].Command
	require.NotNil(t, rebased)
	assert.Equal(t, int64(6), rebased.Revision())
	assert.Equal(t, int64(7), results[0].Revision)

	rev, err := pending.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), rev)

	assert.Equal(t, int64(7), r.local.Revision())
	assert.Equal(t, int64(7), r.remote.Revision())
	assert.Equal(t, int64(7), r.sync.Checkpoint())
	assert.Empty(t, r.sync.Pending())
	assert.True(t, model.TreeEquals(r.remote, r.local))
	assert.True(t, event.SameChanges(r.remote.ChangeLog().Since(-1), r.local.ChangeLog().Since(-1)))
}

func TestDoomedOnRemoteRemoval(t *testing.T) {
	r := newReplicas(t)

	var failures, successes int
	callback := core.CallbackFuncs{
		Success: func(int64) { successes++ },
		Failure: func() { failures++ },
	}

	removeField, err := r.sync.StageLocal(must(command.RemoveField(johnAddr, "phone", 5)), WithCallback(callback))
	require.NoError(t, err)
	safeAdd, err := r.sync.StageLocal(must(command.AddField(johnAddr, "alias", false)), WithCallback(callback))
	require.NoError(t, err)
	unrelated, err := r.sync.StageLocal(must(command.AddField(peterAddr, "nick", false)), WithCallback(callback), WithActor("bob"))
	require.NoError(t, err)
	require.Len(t, r.sync.Pending(), 3)

	removed, err := r.remote.RemoveObject("remote", "john")
	require.NoError(t, err)
	require.True(t, removed)

	results, err := r.sync.Reconcile(r.remote.ChangeLog().Since(5))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, command.Failed, removeField.Result())
	assert.True(t, errors.Is(removeField.Err(), status.ErrConflict))
	assert.Nil(t, results[0].Command, "doomed changes are not resubmitted")

	assert.Equal(t, command.Failed, safeAdd.Result())
	assert.True(t, errors.Is(safeAdd.Err(), status.ErrConflict))
	assert.NotNil(t, results[1].Command)

	assert.Equal(t, int64(7), unrelated.Result())
	assert.NoError(t, unrelated.Err())
	assert.Equal(t, model.ID("bob"), r.local.ChangeLog().Event(7).Actor())

	assert.Equal(t, 2, failures)
	assert.Equal(t, 1, successes)
	assert.False(t, r.local.HasObject("john"))
}

func TestForcedCommandsAreKept(t *testing.T) {
	r := newReplicas(t)

	forced, err := r.sync.StageLocal(must(command.ChangeValue(phoneAddr, command.RevForced, model.String("local"))))
	require.NoError(t, err)
	stale, err := r.sync.StageLocal(must(command.NewTransaction(phonebookAddr,
		must(command.AddField(peterAddr, "nick", false)),
		must(command.ChangeValue(phoneAddr, 6, model.String("stale"))),
	)))
	require.NoError(t, err)
	assert.Equal(t, int64(7), stale.OptimisticRevision())

	_, err = r.remote.GetObject("john").SetValue("remote", "phone", model.String("remote"))
	require.NoError(t, err)

	results, err := r.sync.Synchronize(context.Background(), r.store)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Same(t, forced.Command(), results[0].Command)
	assert.Equal(t, int64(7), forced.Result())
	assert.Equal(t, command.Failed, stale.Result(), "a transaction fails as a whole")
	assert.False(t, r.local.GetObject("peter").HasField("nick"))

	assert.Equal(t, model.String("local"), r.remote.GetObject("john").Field("phone").Value())
	assert.True(t, model.TreeEquals(r.remote, r.local))
}

func TestTransactionsAreRebased(t *testing.T) {
	r := newReplicas(t)

	tx := must(command.NewTransaction(phonebookAddr,
		must(command.RemoveObject(phonebookAddr, "peter", 4)),
		must(command.AddObject(phonebookAddr, "mary", false)),
	))
	pending, err := r.sync.StageLocal(tx)
	require.NoError(t, err)

	_, err = r.remote.GetObject("john").CreateField("remote", "email")
	require.NoError(t, err)
	_, err = r.remote.GetObject("john").SetValue("remote", "email", model.String("j@x"))
	require.NoError(t, err)

	results, err := r.sync.Synchronize(context.Background(), r.store)
	require.NoError(t, err)
	require.Len(t, results, 1)

	rebased, ok := results[0].Command.(*command.Transaction)
	require.True(t, ok)
	assert.Equal(t, int64(6), rebased.At(0).Revision())
	assert.Equal(t, tx.At(1), rebased.At(1))
	assert.Equal(t, int64(8), pending.Result())
	assert.True(t, model.TreeEquals(r.remote, r.local))
}

func TestConvergence(t *testing.T) {
	defer goleak.VerifyNone(t)
	r := newReplicas(t)
	mary := phonebookAddr.Child("mary")

	local := []command.Command{
		must(command.AddObject(phonebookAddr, "mary", false)),
		must(command.AddField(mary, "email", false)),
		must(command.AddValue(mary.Child("email"), command.RevSafe, model.String("m@x"))),
		must(command.ChangeValue(phoneAddr, 5, model.String("555-1111"))),
		must(command.RemoveObject(phonebookAddr, "peter", 4)),
	}
	remote := []command.Command{
		must(command.AddField(peterAddr, "nick", false)),
		must(command.AddObject(phonebookAddr, "paul", false)),
		must(command.AddObject(phonebookAddr, "mary", true)),
	}

	var changes []*LocalChange
	for i := 0; i < len(local) || i < len(remote); i++ {
		if i < len(local) {
			c, err := r.sync.StageLocal(local[i])
			require.NoError(t, err, local[i].String())
			changes = append(changes, c)
		}
		if i < len(remote) {
			require.Greater(t, r.remote.ExecuteCommand("remote", remote[i]), int64(0), remote[i].String())
		}
	}

	_, err := r.sync.Synchronize(context.Background(), r.store)
	require.NoError(t, err)

	outcomes := make([]int64, 0, len(changes))
	for _, c := range changes {
		select {
		case <-c.Done():
		case <-time.After(time.Second):
			t.Fatal("a local change was not resolved")
		}
		outcomes = append(outcomes, c.Result())
	}

	// mary was added remotely: adding it again fails, but its fields can still be added
	assert.Equal(t, []int64{command.Failed, 9, 10, 11, command.Failed}, outcomes)

	assert.True(t, model.TreeEquals(r.remote, r.local))
	assert.True(t, event.SameChanges(r.remote.ChangeLog().Since(5), r.local.ChangeLog().Since(5)))

	// nothing left to exchange
	results, err := r.sync.Synchronize(context.Background(), r.store)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStageLocalPreconditions(t *testing.T) {
	r := newReplicas(t)

	_, err := r.sync.StageLocal(must(command.AddObject(phonebookAddr, "john", false)))
	assert.True(t, errors.Is(err, status.ErrPrecondition))

	_, err = r.sync.StageLocal(must(command.AddModel(model.RepositoryAddress("repo1"), "other", true)))
	assert.True(t, errors.Is(err, status.ErrPrecondition))

	_, err = r.sync.StageLocal(must(command.AddObject(model.ModelAddress("repo1", "other"), "o", true)))
	assert.True(t, errors.Is(err, corestatus.ErrWrongModel))

	removed, err := r.sync.StageLocal(must(command.RemoveObject(phonebookAddr, "peter", command.RevSafe)))
	require.NoError(t, err)
	assert.Equal(t, int64(6), removed.OptimisticRevision())

	_, err = r.sync.StageLocal(must(command.RemoveObject(phonebookAddr, "peter", command.RevSafe)))
	assert.True(t, errors.Is(err, status.ErrPrecondition), "the optimistic view holds pending changes")

	noop, err := r.sync.StageLocal(must(command.RemoveObject(phonebookAddr, "peter", command.RevForced)))
	require.NoError(t, err)
	assert.Equal(t, command.NoChange, noop.OptimisticRevision())

	select {
	case <-removed.Done():
		t.Fatal("a local change is resolved by reconciliation only")
	default:
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = removed.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	results, err := r.sync.Reconcile(nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(6), removed.Result())
	assert.Equal(t, command.NoChange, noop.Result())
	assert.NoError(t, noop.Err())
}

func TestDivergedReplicas(t *testing.T) {
	r := newReplicas(t)
	pending, err := r.sync.StageLocal(must(command.AddField(peterAddr, "nick", false)))
	require.NoError(t, err)

	r.remote.ExecuteCommand("remote", must(command.AddField(peterAddr, "a", false)))
	r.remote.ExecuteCommand("remote", must(command.AddField(peterAddr, "b", false)))
	gap := r.remote.ChangeLog().Since(6)

	_, err = r.sync.Reconcile(gap)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrDiverged))
	assert.Equal(t, command.Failed, pending.Result())
	assert.True(t, errors.Is(pending.Err(), status.ErrDiverged))
	assert.Empty(t, r.sync.Pending())
	assert.Equal(t, int64(5), r.local.Revision())
}

func TestSynchronizeBehindRemote(t *testing.T) {
	r := newReplicas(t)

	other, err := core.NewRepository("repo1")
	require.NoError(t, err)
	_, err = other.CreateModel("remote", "phonebook")
	require.NoError(t, err)

	_, err = r.sync.Synchronize(context.Background(), core.NewStore(other))
	assert.True(t, errors.Is(err, status.ErrDiverged))
}

// racingRemote commits a concurrent change right before the first command pushed to it
type racingRemote struct {
	*core.Store
	race func()
}

func (r *racingRemote) ExecuteCommand(ctx context.Context, actor model.ID, cmd command.Command) (int64, error) {
	if r.race != nil {
		r.race()
		r.race = nil
	}
	return r.Store.ExecuteCommand(ctx, actor, cmd)
}

func TestSynchronizeRacingRemote(t *testing.T) {
	defer goleak.VerifyNone(t)
	r := newReplicas(t)
	ctx := context.Background()

	first, err := r.sync.StageLocal(must(command.AddField(peterAddr, "a", false)))
	require.NoError(t, err)
	second, err := r.sync.StageLocal(must(command.AddField(peterAddr, "b", false)))
	require.NoError(t, err)

	remote := &racingRemote{Store: r.store, race: func() {
		require.Equal(t, int64(6), r.remote.ExecuteCommand("remote", must(command.AddField(johnAddr, "concurrent", false))))
	}}

	results, err := r.sync.Synchronize(ctx, remote)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrDiverged))
	require.Len(t, results, 2)

	for _, c := range []*LocalChange{first, second} {
		select {
		case <-c.Done():
		default:
			t.Fatal("unconfirmed changes are resolved when the push fails")
		}
		assert.Equal(t, command.Failed, c.Result())
		assert.True(t, errors.Is(c.Err(), status.ErrDiverged))
	}
	assert.True(t, errors.Is(r.sync.Diverged(), status.ErrDiverged))

	// replicas stay diverged
	_, err = r.sync.Synchronize(ctx, r.store)
	assert.True(t, errors.Is(err, status.ErrDiverged))
	_, err = r.sync.Synchronize(ctx, r.store)
	assert.True(t, errors.Is(err, status.ErrDiverged))
	_, err = r.sync.Reconcile(nil)
	assert.True(t, errors.Is(err, status.ErrDiverged))
	_, err = r.sync.StageLocal(must(command.AddField(peterAddr, "c", false)))
	assert.True(t, errors.Is(err, status.ErrDiverged))
}

func TestReplicatedHistoryMustMatch(t *testing.T) {
	r := newReplicas(t)

	results, err := r.sync.Reconcile(r.remote.ChangeLog().Since(model.RevisionNotSet))
	require.NoError(t, err, "known events matching the local change log are skipped")
	assert.Empty(t, results)
	assert.NoError(t, r.sync.Diverged())

	require.Equal(t, int64(6), r.remote.ExecuteCommand("remote", must(command.AddField(peterAddr, "a", false))))
	require.Equal(t, int64(6), r.local.ExecuteCommand("local", must(command.AddField(peterAddr, "b", false))))

	s := New(r.local, Logger(zap.NewNop()))
	require.Equal(t, int64(6), s.Checkpoint())

	_, err = s.Reconcile(r.remote.ChangeLog().Since(4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrDiverged))
	assert.True(t, errors.Is(s.Diverged(), status.ErrDiverged))
	assert.False(t, r.local.GetObject("peter").HasField("a"))
}
