package change

import (
	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/model"
)

// revisionHolds tells if an entity observed at revision expected is still at this revision
func revisionHolds(expected, actual int64) bool {
	if !command.IsConcrete(expected) {
		return true
	}
	return actual <= expected
}

// Check tells the outcome of an atomic command against some model state, without applying it.
//
// Repository commands are not checked against a model and always fail here.
func Check(m model.ReadableModel, cmd command.Atomic) command.Outcome {
	switch c := cmd.(type) {
	case *command.ModelCommand:
		return checkModelCommand(m, c)
	case *command.ObjectCommand:
		return checkObjectCommand(m, c)
	case *command.FieldCommand:
		return checkFieldCommand(m, c)
	default:
		return command.OutcomeFailed
	}
}

func checkModelCommand(m model.ReadableModel, c *command.ModelCommand) command.Outcome {
	if c.Target() != m.Address() {
		return command.OutcomeFailed
	}
	if o := m.Object(c.ObjectID()); o != nil {
		return CheckMembership(true, o.Revision(), c)
	}
	return CheckMembership(false, model.RevisionNotSet, c)
}

func checkObjectCommand(m model.ReadableModel, c *command.ObjectCommand) command.Outcome {
	if c.Target().ModelAddress() != m.Address() {
		return command.OutcomeFailed
	}
	o := m.Object(c.Target().Object)
	if o == nil {
		return command.OutcomeFailed
	}
	if f := o.Field(c.FieldID()); f != nil {
		return CheckMembership(true, f.Revision(), c)
	}
	return CheckMembership(false, model.RevisionNotSet, c)
}

// CheckMembership applies the rules shared by all commands adding or removing a child
// of an entity, given whether the child is present and its revision.
func CheckMembership(present bool, rev int64, cmd command.Command) command.Outcome {
	switch cmd.ChangeType() {
	case command.Add:
		if !present {
			return command.OutcomeChanged
		}
		if cmd.IsForced() {
			return command.OutcomeNoChange
		}
		return command.OutcomeFailed
	case command.Remove:
		if !present {
			if cmd.IsForced() {
				return command.OutcomeNoChange
			}
			return command.OutcomeFailed
		}
		if !revisionHolds(cmd.Revision(), rev) {
			return command.OutcomeFailed
		}
		return command.OutcomeChanged
	default:
		return command.OutcomeFailed
	}
}

func checkFieldCommand(m model.ReadableModel, c *command.FieldCommand) command.Outcome {
	addr := c.Target()
	if addr.ModelAddress() != m.Address() {
		return command.OutcomeFailed
	}
	o := m.Object(addr.Object)
	if o == nil {
		return command.OutcomeFailed
	}
	f := o.Field(addr.Field)
	if f == nil {
		return command.OutcomeFailed
	}
	return CheckValue(f, c)
}

// CheckValue applies the rules of value commands to an existing field
func CheckValue(f model.ReadableField, c *command.FieldCommand) command.Outcome {
	current := f.Value()
	if !c.IsForced() && !revisionHolds(c.Revision(), f.Revision()) {
		return command.OutcomeFailed
	}

	switch c.ChangeType() {
	case command.Add:
		if current == nil {
			return command.OutcomeChanged
		}
		if !c.IsForced() {
			return command.OutcomeFailed
		}
		if current.Equal(c.Value()) {
			return command.OutcomeNoChange
		}
		return command.OutcomeChanged
	case command.Change:
		if current == nil && !c.IsForced() {
			return command.OutcomeFailed
		}
		if model.ValuesEqual(current, c.Value()) {
			return command.OutcomeNoChange
		}
		return command.OutcomeChanged
	case command.Remove:
		if current == nil {
			if c.IsForced() {
				return command.OutcomeNoChange
			}
			return command.OutcomeFailed
		}
		return command.OutcomeChanged
	default:
		return command.OutcomeFailed
	}
}
