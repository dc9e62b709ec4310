package change

import (
	"testing"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderOrder(t *testing.T) {
	t.Parallel()

	c := NewChangedModel(phonebook())
	mary := c.CreateObject("mary")
	mary.CreateField("email")
	mary.SetValue("email", model.String("m@x"))
	john := c.MutableObject("john")
	john.SetValue("phone", model.String("1"))
	john.RemoveField("alias")
	john.CreateField("nick")
	c.RemoveObject("peter")

	require.Equal(t, 7, c.CountCommandsNeeded(100))

	b := NewTransactionBuilder(modelAddr)
	require.NoError(t, b.ApplyChanges(c))
	tx, err := b.Build()
	require.NoError(t, err)

	var got []string
	for _, cmd := range tx.Commands() {
		got = append(got, cmd.String())
	}
	assert.Equal(t, []string{
		"REMOVE /repo1/phonebook/peter (r3)",
		"ADD /repo1/phonebook/mary (safe)",
		"ADD /repo1/phonebook/mary/email (safe)",
		"ADD /repo1/phonebook/mary/email (safe) = m@x",
		"REMOVE /repo1/phonebook/john/alias (r1)",
		"ADD /repo1/phonebook/john/nick (safe)",
		"CHANGE /repo1/phonebook/john/phone (r2) = 1",
	}, got)
}

func TestBuilderReproducesDiff(t *testing.T) {
	t.Parallel()

	base := phonebook()
	for _, toPin := range []struct {
		name  string
		stage func(*ChangedModel)
	}{
		{
			name: "replace an object",
			stage: func(c *ChangedModel) {
				c.RemoveObject("john")
				c.CreateObject("john").CreateField("phone")
				c.MutableObject("john").SetValue("phone", model.String("0"))
			},
		},
		{
			name: "clear and set values",
			stage: func(c *ChangedModel) {
				john := c.MutableObject("john")
				john.SetValue("phone", nil)
				john.SetValue("alias", model.NewStringSet("j", "jo"))
			},
		},
		{
			name: "replace a field",
			stage: func(c *ChangedModel) {
				john := c.MutableObject("john")
				john.RemoveField("phone")
				john.CreateField("phone")
			},
		},
		{
			name: "empty the model",
			stage: func(c *ChangedModel) {
				c.RemoveObject("john")
				c.RemoveObject("peter")
			},
		},
	} {
		fixture := toPin
		t.Run(fixture.name, func(t *testing.T) {
			t.Parallel()

			staged := NewChangedModel(base)
			fixture.stage(staged)

			b := NewTransactionBuilder(modelAddr)
			require.NoError(t, b.ApplyChanges(staged))
			require.Equal(t, staged.CountCommandsNeeded(100), b.Len())
			tx, err := b.Build()
			require.NoError(t, err)

			replayed := NewChangedModel(base)
			require.Equal(t, command.OutcomeChanged, replayed.ExecuteCommand(tx))
			assert.True(t, model.TreeEquals(staged, replayed))
		})
	}
}

func TestBuilderWithoutChanges(t *testing.T) {
	t.Parallel()

	b := NewTransactionBuilder(modelAddr)
	require.NoError(t, b.ApplyChanges(NewChangedModel(phonebook())))
	assert.True(t, b.IsEmpty())
	_, err := b.Build()
	assert.Error(t, err)
}
