package change

import (
	"testing"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	modelAddr = model.ModelAddress("repo1", "phonebook")
	johnAddr  = modelAddr.Child("john")
	peterAddr = modelAddr.Child("peter")
	phoneAddr = johnAddr.Child("phone")
	aliasAddr = johnAddr.Child("alias")
)

// phonebook at revision 3: john (phone set at 2, empty alias at 1) and an empty peter at 3
func phonebook() *model.ModelState {
	m := model.NewModelState(modelAddr, 3)
	john := model.NewObjectState(johnAddr, 2)
	john.Fields["phone"] = &model.FieldState{Addr: phoneAddr, Rev: 2, Val: model.String("555-1234")}
	john.Fields["alias"] = &model.FieldState{Addr: aliasAddr, Rev: 1}
	m.Objects["john"] = john
	m.Objects["peter"] = model.NewObjectState(peterAddr, 3)
	return m
}

func TestCheckRules(t *testing.T) {
	t.Parallel()

	base := phonebook()
	for _, toPin := range []struct {
		name string
		cmd  command.Atomic
		want command.Outcome
	}{
		{"add new object", command.Must(command.AddObject(modelAddr, "mary", false)), command.OutcomeChanged},
		{"add existing object", command.Must(command.AddObject(modelAddr, "john", false)), command.OutcomeFailed},
		{"force add existing object", command.Must(command.AddObject(modelAddr, "john", true)), command.OutcomeNoChange},
		{"remove object at its revision", command.Must(command.RemoveObject(modelAddr, "peter", 3)), command.OutcomeChanged},
		{"remove object observed later", command.Must(command.RemoveObject(modelAddr, "john", 3)), command.OutcomeChanged},
		{"remove stale object", command.Must(command.RemoveObject(modelAddr, "peter", 2)), command.OutcomeFailed},
		{"remove missing object", command.Must(command.RemoveObject(modelAddr, "mary", command.RevSafe)), command.OutcomeFailed},
		{"force remove missing object", command.Must(command.RemoveObject(modelAddr, "mary", command.RevForced)), command.OutcomeNoChange},
		{"object command elsewhere", command.Must(command.AddObject(model.ModelAddress("repo1", "other"), "mary", false)), command.OutcomeFailed},
		{"add field", command.Must(command.AddField(johnAddr, "email", false)), command.OutcomeChanged},
		{"add field to missing object", command.Must(command.AddField(modelAddr.Child("mary"), "email", true)), command.OutcomeFailed},
		{"add existing field", command.Must(command.AddField(johnAddr, "phone", false)), command.OutcomeFailed},
		{"remove stale field", command.Must(command.RemoveField(johnAddr, "phone", 1)), command.OutcomeFailed},
		{"remove field", command.Must(command.RemoveField(johnAddr, "alias", 1)), command.OutcomeChanged},
		{"set empty field", command.Must(command.AddValue(aliasAddr, command.RevSafe, model.String("jo"))), command.OutcomeChanged},
		{"add value to set field", command.Must(command.AddValue(phoneAddr, command.RevSafe, model.String("1"))), command.OutcomeFailed},
		{"force same value", command.Must(command.AddValue(phoneAddr, command.RevForced, model.String("555-1234"))), command.OutcomeNoChange},
		{"force other value", command.Must(command.AddValue(phoneAddr, command.RevForced, model.String("1"))), command.OutcomeChanged},
		{"change value", command.Must(command.ChangeValue(phoneAddr, 2, model.String("1"))), command.OutcomeChanged},
		{"change to same value", command.Must(command.ChangeValue(phoneAddr, 2, model.String("555-1234"))), command.OutcomeNoChange},
		{"change stale value", command.Must(command.ChangeValue(phoneAddr, 1, model.String("1"))), command.OutcomeFailed},
		{"change empty field", command.Must(command.ChangeValue(aliasAddr, command.RevSafe, model.String("1"))), command.OutcomeFailed},
		{"force change empty field", command.Must(command.ChangeValue(aliasAddr, command.RevForced, model.String("1"))), command.OutcomeChanged},
		{"remove value", command.Must(command.RemoveValue(phoneAddr, command.RevSafe)), command.OutcomeChanged},
		{"remove empty value", command.Must(command.RemoveValue(aliasAddr, command.RevSafe)), command.OutcomeFailed},
		{"force remove empty value", command.Must(command.RemoveValue(aliasAddr, command.RevForced)), command.OutcomeNoChange},
		{"value of missing field", command.Must(command.RemoveValue(johnAddr.Child("email"), command.RevForced)), command.OutcomeFailed},
		{"repository command", command.Must(command.AddModel(modelAddr.Parent(), "other", true)), command.OutcomeFailed},
	} {
		fixture := toPin
		t.Run(fixture.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, fixture.want, Check(base, fixture.cmd), fixture.cmd.String())
		})
	}
}

func TestChangedModelReadsAsIfApplied(t *testing.T) {
	t.Parallel()

	base := phonebook()
	c := NewChangedModel(base)

	require.True(t, c.RemoveObject("peter"))
	mary := c.CreateObject("mary")
	mary.CreateField("email")
	require.True(t, mary.SetValue("email", model.String("mary@example.com")))
	john := c.MutableObject("john")
	require.NotNil(t, john)
	require.True(t, john.SetValue("alias", model.String("jo")))
	require.True(t, john.RemoveField("phone"))

	assert.True(t, c.HasChanges())
	assert.False(t, c.HasObject("peter"))
	assert.Nil(t, c.Object("peter"))
	assert.Equal(t, []model.ID{"john", "mary"}, c.ObjectIDs())
	assert.Equal(t, []model.ID{"alias"}, c.Object("john").FieldIDs())
	assert.Equal(t, model.String("jo"), c.Object("john").Field("alias").Value())
	assert.Equal(t, int64(1), c.Object("john").Field("alias").Revision(), "staged fields report their base revision")
	assert.Equal(t, model.RevisionNotSet, c.Object("mary").Revision())
	assert.Equal(t, int64(3), c.Revision())

	// the base is untouched
	assert.True(t, base.HasObject("peter"))
	assert.True(t, base.Object("john").HasField("phone"))
	assert.True(t, base.Object("john").Field("alias").IsEmpty())
}

func TestStageThenUnstage(t *testing.T) {
	t.Parallel()

	c := NewChangedModel(phonebook())
	assert.Equal(t, command.OutcomeChanged, c.ExecuteCommand(command.Must(command.AddObject(modelAddr, "o2", false))))
	assert.Equal(t, command.OutcomeChanged, c.ExecuteCommand(command.Must(command.RemoveObject(modelAddr, "o2", command.RevSafe))))

	assert.Equal(t, 0, c.CountCommandsNeeded(10))
	assert.False(t, c.HasChanges())

	john := c.MutableObject("john")
	john.SetValue("phone", model.String("1"))
	assert.True(t, c.HasChanges())
	john.SetValue("phone", model.String("555-1234"))
	assert.False(t, c.HasChanges(), "a value set back to the base value is no change")
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	base := phonebook()
	c := NewChangedModel(base)
	c.RemoveObject("john")
	c.CreateObject("mary").CreateField("email")
	c.MutableObject("peter").CreateField("nick")

	c.Discard()
	assert.False(t, c.HasChanges())
	assert.True(t, model.StateEquals(base, c))

	c.Discard()
	assert.True(t, model.StateEquals(base, c))
}

func TestExecuteTransaction(t *testing.T) {
	t.Parallel()

	t.Run("all or nothing", func(t *testing.T) {
		c := NewChangedModel(phonebook())
		tx := command.Must(command.NewTransaction(modelAddr,
			command.Must(command.RemoveObject(modelAddr, "peter", 3)),
			command.Must(command.AddObject(modelAddr, "john", false)),
		))
		assert.Equal(t, command.OutcomeFailed, c.ExecuteCommand(tx))
		assert.False(t, c.HasChanges())
		assert.True(t, c.HasObject("peter"))
	})

	t.Run("later commands see earlier ones", func(t *testing.T) {
		c := NewChangedModel(phonebook())
		mary := modelAddr.Child("mary")
		tx := command.Must(command.NewTransaction(modelAddr,
			command.Must(command.AddObject(modelAddr, "mary", false)),
			command.Must(command.AddField(mary, "email", false)),
			command.Must(command.AddValue(mary.Child("email"), command.RevSafe, model.String("m@x"))),
		))
		require.Equal(t, command.OutcomeChanged, c.ExecuteCommand(tx))
		assert.Equal(t, model.String("m@x"), c.Object("mary").Field("email").Value())
		assert.Equal(t, 3, c.CountCommandsNeeded(10))
		assert.Equal(t, 2, c.CountCommandsNeeded(2))
	})

	t.Run("no change", func(t *testing.T) {
		c := NewChangedModel(phonebook())
		tx := command.Must(command.NewTransaction(modelAddr,
			command.Must(command.AddObject(modelAddr, "john", true)),
			command.Must(command.RemoveValue(aliasAddr, command.RevForced)),
		))
		assert.Equal(t, command.OutcomeNoChange, c.ExecuteCommand(tx))
	})
}

func TestReAddedObject(t *testing.T) {
	t.Parallel()

	c := NewChangedModel(phonebook())
	require.True(t, c.RemoveObject("john"))
	fresh := c.CreateObject("john")
	assert.True(t, fresh.IsNew())
	assert.True(t, fresh.IsEmpty())
	assert.True(t, c.HasObject("john"))
	assert.Equal(t, 2, c.CountCommandsNeeded(10), "remove then add")

	require.True(t, c.RemoveObject("john"))
	assert.False(t, c.HasObject("john"), "the base object stays removed")
}
