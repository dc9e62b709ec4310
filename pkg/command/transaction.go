package command

import (
	"strings"

	"github.com/oneconcern/strata/pkg/command/status"
	"github.com/oneconcern/strata/pkg/model"
)

var _ Command = &Transaction{}

// Transaction is an ordered list of atomic commands executed all together or not at all.
//
// A transaction targets a model or an object: every command must change an entity
// located under this target.
type Transaction struct {
	target   model.Address
	commands []Atomic
}

// NewTransaction builds a transaction. Nested transactions are flattened.
func NewTransaction(target model.Address, commands ...Command) (*Transaction, error) {
	if k := target.Kind(); k != model.KindModel && k != model.KindObject {
		return nil, errInvalidTarget(model.KindModel, target)
	}

	flat := make([]Atomic, 0, len(commands))
	for _, cmd := range commands {
		flat = append(flat, Atomics(cmd)...)
	}
	if len(flat) == 0 {
		return nil, status.ErrEmptyTransaction
	}

	for _, cmd := range flat {
		if !inScope(target, cmd) {
			return nil, status.ErrOutOfScope.WrapMessage(cmd.String() + " in " + target.String())
		}
	}

	return &Transaction{target: target, commands: flat}, nil
}

func inScope(target model.Address, cmd Atomic) bool {
	if _, isRepo := cmd.(*RepositoryCommand); isRepo {
		return false
	}
	return target.Contains(cmd.Target())
}

// Target of the transaction, a model or an object
func (t *Transaction) Target() model.Address { return t.target }

// ChangedEntity of a transaction is its target
func (t *Transaction) ChangedEntity() model.Address { return t.target }

// ChangeType is always TransactionChange
func (t *Transaction) ChangeType() ChangeType { return TransactionChange }

// Revision is not used for transactions: each command carries its own
func (t *Transaction) Revision() int64 { return RevSafe }

// IsForced tells if all commands are forced
func (t *Transaction) IsForced() bool {
	for _, cmd := range t.commands {
		if !cmd.IsForced() {
			return false
		}
	}
	return true
}

// Len is the number of commands
func (t *Transaction) Len() int { return len(t.commands) }

// At returns the i-th command
func (t *Transaction) At(i int) Atomic { return t.commands[i] }

// Commands returns a copy of the commands
func (t *Transaction) Commands() []Atomic {
	cp := make([]Atomic, len(t.commands))
	copy(cp, t.commands)
	return cp
}

func (t *Transaction) String() string {
	var b strings.Builder
	b.WriteString("TRANSACTION ")
	b.WriteString(t.target.String())
	b.WriteString(" [")
	for i, cmd := range t.commands {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(cmd.String())
	}
	b.WriteString("]")
	return b.String()
}
