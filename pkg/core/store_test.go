package core

import (
	"context"
	"testing"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/core/status"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	r, m := phonebook(t)
	store := NewStore(r)
	ctx := context.Background()

	rev, err := store.ExecuteCommand(ctx, testActor, must(command.RemoveObject(phonebookAddr, "peter", 4)))
	require.NoError(t, err)
	assert.Equal(t, int64(5), rev)

	current, err := store.ModelRevision(ctx, phonebookAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(5), current)

	snapshot, err := store.ModelSnapshot(ctx, phonebookAddr)
	require.NoError(t, err)
	assert.True(t, model.TreeEquals(m, snapshot))

	// the snapshot is detached
	_, err = m.CreateObject(testActor, "mary")
	require.NoError(t, err)
	assert.False(t, snapshot.HasObject("mary"))

	events, err := store.Events(ctx, phonebookAddr, 4)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(5), events[0].Revision())
	assert.Equal(t, int64(6), events[1].Revision())

	t.Run("unknown models", func(t *testing.T) {
		unknown := model.ModelAddress("repo1", "unknown")
		_, err := store.ModelSnapshot(ctx, unknown)
		assert.True(t, errors.Is(err, status.ErrNotFound))
		_, err = store.ModelRevision(ctx, unknown)
		assert.True(t, errors.Is(err, status.ErrNotFound))
		_, err = store.Events(ctx, model.ModelAddress("repo2", "phonebook"), 0)
		assert.True(t, errors.Is(err, status.ErrNotFound))
	})

	t.Run("removed models keep their events", func(t *testing.T) {
		_, err := r.RemoveModel(testActor, "phonebook")
		require.NoError(t, err)
		_, err = store.ModelRevision(ctx, phonebookAddr)
		assert.True(t, errors.Is(err, status.ErrNotFound))
		events, err := store.Events(ctx, phonebookAddr, 6)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		rev, err := store.ExecuteCommand(cancelled, testActor, must(command.AddModel(repoAddr, "m2", false)))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, command.Failed, rev)
		assert.False(t, r.HasModel("m2"))
	})
}
