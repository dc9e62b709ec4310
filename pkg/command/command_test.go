package command

import (
	"testing"

	"github.com/oneconcern/strata/pkg/command/status"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/model"
	mstatus "github.com/oneconcern/strata/pkg/model/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	repoAddr   = model.MustParseAddress("/repo1")
	modelAddr  = model.MustParseAddress("/repo1/phonebook")
	objectAddr = model.MustParseAddress("/repo1/phonebook/john")
	fieldAddr  = model.MustParseAddress("/repo1/phonebook/john/phone")
)

func TestAtomicCommands(t *testing.T) {
	t.Parallel()

	addModel := Must(AddModel(repoAddr, "phonebook", false))
	assert.Equal(t, Add, addModel.ChangeType())
	assert.Equal(t, RevSafe, addModel.Revision())
	assert.Equal(t, modelAddr, addModel.ChangedEntity())
	assert.Equal(t, repoAddr, addModel.Target())
	assert.False(t, addModel.IsForced())

	removeObject := Must(RemoveObject(modelAddr, "john", 4))
	assert.Equal(t, Remove, removeObject.ChangeType())
	assert.Equal(t, int64(4), removeObject.Revision())
	assert.Equal(t, objectAddr, removeObject.ChangedEntity())
	assert.Equal(t, "REMOVE /repo1/phonebook/john (r4)", removeObject.String())

	addField := Must(AddField(objectAddr, "phone", true))
	assert.True(t, addField.IsForced())
	assert.Equal(t, fieldAddr, addField.ChangedEntity())

	setValue := Must(AddValue(fieldAddr, RevForced, model.String("555-1234")))
	assert.Equal(t, fieldAddr, setValue.Target())
	assert.Equal(t, fieldAddr, setValue.ChangedEntity())
	assert.Equal(t, model.String("555-1234"), setValue.Value())
	assert.Equal(t, "ADD /repo1/phonebook/john/phone (forced) = 555-1234", setValue.String())

	cleared := Must(RemoveValue(fieldAddr, 2))
	assert.Nil(t, cleared.Value())
}

func TestCommandValidation(t *testing.T) {
	t.Parallel()

	for _, toPin := range []struct {
		name string
		fn   func() error
		want error
	}{
		{
			name: "object command on repository",
			fn:   func() error { _, err := AddObject(repoAddr, "john", false); return err },
			want: status.ErrInvalidTarget,
		},
		{
			name: "field command on object",
			fn:   func() error { _, err := ChangeValue(objectAddr, 1, model.Integer(1)); return err },
			want: status.ErrInvalidTarget,
		},
		{
			name: "invalid revision",
			fn:   func() error { _, err := RemoveField(objectAddr, "phone", -7); return err },
			want: status.ErrInvalidRevision,
		},
		{
			name: "missing value",
			fn:   func() error { _, err := AddValue(fieldAddr, RevSafe, nil); return err },
			want: status.ErrMissingValue,
		},
		{
			name: "invalid ID",
			fn:   func() error { _, err := AddModel(repoAddr, "a b", false); return err },
			want: mstatus.ErrInvalidID,
		},
	} {
		fixture := toPin
		t.Run(fixture.name, func(t *testing.T) {
			t.Parallel()

			err := fixture.fn()
			require.Error(t, err)
			assert.True(t, errors.Is(err, fixture.want), "got %v", err)
		})
	}
}

func TestWithRevision(t *testing.T) {
	t.Parallel()

	original := Must(ChangeValue(fieldAddr, 3, model.Long(42)))
	rewritten := original.WithRevision(5)

	assert.Equal(t, int64(3), original.Revision())
	assert.Equal(t, int64(5), rewritten.Revision())
	assert.Equal(t, original.ChangedEntity(), rewritten.ChangedEntity())
	assert.Equal(t, model.Long(42), rewritten.(*FieldCommand).Value())
}

func TestTransaction(t *testing.T) {
	t.Parallel()

	t.Run("flattens nested transactions", func(t *testing.T) {
		inner := Must(NewTransaction(objectAddr,
			Must(AddField(objectAddr, "phone", false)),
			Must(AddValue(fieldAddr, RevSafe, model.String("555"))),
		))
		tx, err := NewTransaction(modelAddr, Must(AddObject(modelAddr, "john", false)), inner)
		require.NoError(t, err)

		require.Equal(t, 3, tx.Len())
		assert.Equal(t, TransactionChange, tx.ChangeType())
		assert.Equal(t, modelAddr, tx.Target())
		assert.IsType(t, &ModelCommand{}, tx.At(0))
		assert.IsType(t, &FieldCommand{}, tx.At(2))
		assert.False(t, tx.IsForced())
		assert.Len(t, Atomics(tx), 3)
	})

	t.Run("rejects empty transactions", func(t *testing.T) {
		_, err := NewTransaction(modelAddr)
		assert.True(t, errors.Is(err, status.ErrEmptyTransaction))
	})

	t.Run("rejects out of scope commands", func(t *testing.T) {
		_, err := NewTransaction(objectAddr, Must(RemoveObject(modelAddr, "john", RevSafe)))
		assert.True(t, errors.Is(err, status.ErrOutOfScope))

		_, err = NewTransaction(modelAddr, Must(AddModel(repoAddr, "other", true)))
		assert.True(t, errors.Is(err, status.ErrOutOfScope))

		other := model.MustParseAddress("/repo1/other/john/phone")
		_, err = NewTransaction(modelAddr, Must(RemoveValue(other, RevSafe)))
		assert.True(t, errors.Is(err, status.ErrOutOfScope))
	})

	t.Run("rejects repository targets", func(t *testing.T) {
		_, err := NewTransaction(repoAddr, Must(AddModel(repoAddr, "phonebook", false)))
		assert.True(t, errors.Is(err, status.ErrInvalidTarget))
	})
}

func TestParseChangeType(t *testing.T) {
	t.Parallel()

	for _, ct := range []ChangeType{Add, Remove, Change, TransactionChange} {
		parsed, ok := ParseChangeType(ct.String())
		require.True(t, ok)
		assert.Equal(t, ct, parsed)
	}
	_, ok := ParseChangeType("UPSERT")
	assert.False(t, ok)
}
