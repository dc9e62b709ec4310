package change

import (
	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/model"
)

// TransactionBuilder accumulates commands into a transaction
type TransactionBuilder struct {
	target   model.Address
	commands []command.Command
}

// NewTransactionBuilder builds a transaction builder for some model or object
func NewTransactionBuilder(target model.Address) *TransactionBuilder {
	return &TransactionBuilder{target: target}
}

// Add a command
func (b *TransactionBuilder) Add(cmd command.Command) *TransactionBuilder {
	b.commands = append(b.commands, cmd)
	return b
}

// Len is the number of commands accumulated so far
func (b *TransactionBuilder) Len() int { return len(b.commands) }

// IsEmpty tells if no command was accumulated
func (b *TransactionBuilder) IsEmpty() bool { return len(b.commands) == 0 }

// Build the transaction
func (b *TransactionBuilder) Build() (*command.Transaction, error) {
	return command.NewTransaction(b.target, b.commands...)
}

// ApplyChanges adds the commands which reproduce the diff of a ChangedModel.
//
// Removed objects come first, then added objects with their fields and values, then the
// field changes of the surviving objects. Within each group, commands follow the order
// in which the changes were staged. Commands about base entities expect the revision
// of the base.
func (b *TransactionBuilder) ApplyChanges(c *ChangedModel) error {
	modelAddr := c.Address()

	for pair := c.removed.Oldest(); pair != nil; pair = pair.Next() {
		cmd, err := command.RemoveObject(modelAddr, pair.Key, expected(c.base.Object(pair.Key).Revision()))
		if err != nil {
			return err
		}
		b.Add(cmd)
	}

	for pair := c.added.Oldest(); pair != nil; pair = pair.Next() {
		cmd, err := command.AddObject(modelAddr, pair.Key, false)
		if err != nil {
			return err
		}
		b.Add(cmd)
		if err := b.applyObjectChanges(pair.Value); err != nil {
			return err
		}
	}

	for pair := c.changed.Oldest(); pair != nil; pair = pair.Next() {
		if err := b.applyObjectChanges(pair.Value); err != nil {
			return err
		}
	}
	return nil
}

func (b *TransactionBuilder) applyObjectChanges(o *ChangedObject) error {
	for pair := o.removed.Oldest(); pair != nil; pair = pair.Next() {
		cmd, err := command.RemoveField(o.addr, pair.Key, expected(o.base.Field(pair.Key).Revision()))
		if err != nil {
			return err
		}
		b.Add(cmd)
	}

	for pair := o.added.Oldest(); pair != nil; pair = pair.Next() {
		cmd, err := command.AddField(o.addr, pair.Key, false)
		if err != nil {
			return err
		}
		b.Add(cmd)
		if pair.Value.value == nil {
			continue
		}
		set, err := command.AddValue(pair.Value.addr, command.RevSafe, pair.Value.value)
		if err != nil {
			return err
		}
		b.Add(set)
	}

	for pair := o.changed.Oldest(); pair != nil; pair = pair.Next() {
		cmd, err := valueCommand(pair.Value)
		if err != nil {
			return err
		}
		b.Add(cmd)
	}
	return nil
}

func valueCommand(f *ChangedField) (*command.FieldCommand, error) {
	rev := expected(f.base.Revision())
	switch {
	case f.value == nil:
		return command.RemoveValue(f.addr, rev)
	case f.base.Value() == nil:
		return command.AddValue(f.addr, rev, f.value)
	default:
		return command.ChangeValue(f.addr, rev, f.value)
	}
}

func expected(rev int64) int64 {
	if rev < 0 {
		return command.RevSafe
	}
	return rev
}
