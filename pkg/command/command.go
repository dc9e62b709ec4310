// Package command defines the change requests understood by the store.
//
// A command targets an entity (its container) and adds, removes or changes one of
// its children. Commands carry an expected revision which is either a concrete
// revision, RevSafe or RevForced:
//
//   - a concrete revision E requires the changed entity to exist with a revision <= E,
//     that is, the entity did not change since the issuer observed it at revision E
//   - RevSafe requires the changed entity to be in the right state (present or absent)
//     but does not check its revision
//   - RevForced ignores both revision and state: adding an existing entity or removing an
//     absent one are legal no-ops
//
// A Transaction groups atomic commands which are committed all together or not at all.
package command

import (
	"fmt"

	"github.com/oneconcern/strata/pkg/model"
)

// Expected revision sentinels
const (
	// RevForced ignores the revision and state of the changed entity
	RevForced int64 = -1

	// RevSafe requires the changed entity to be in the right state, without checking its revision
	RevSafe int64 = -2
)

// Results of executing a command. Any non-negative result is the new model revision.
const (
	// Failed indicates that a precondition did not hold: nothing changed
	Failed int64 = -1

	// NoChange indicates a legal command which did not change anything
	NoChange int64 = -2
)

// ChangeType tells what a command or event does to the changed entity
type ChangeType int

// Change types
const (
	Add ChangeType = iota + 1
	Remove
	Change
	TransactionChange
)

func (t ChangeType) String() string {
	switch t {
	case Add:
		return "ADD"
	case Remove:
		return "REMOVE"
	case Change:
		return "CHANGE"
	case TransactionChange:
		return "TRANSACTION"
	default:
		return "INVALID"
	}
}

// ParseChangeType parses the string form of a ChangeType
func ParseChangeType(s string) (ChangeType, bool) {
	for t := Add; t <= TransactionChange; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Outcome of applying a command to some staged state
type Outcome int

// Outcomes
const (
	OutcomeFailed Outcome = iota
	OutcomeNoChange
	OutcomeChanged
)

func (o Outcome) String() string {
	switch o {
	case OutcomeChanged:
		return "changed"
	case OutcomeNoChange:
		return "no change"
	default:
		return "failed"
	}
}

// Command is a requested, not yet applied change
type Command interface {
	// Target is the address of the entity the command is sent to
	Target() model.Address
	// ChangedEntity is the address of the entity added, removed or changed
	ChangedEntity() model.Address
	ChangeType() ChangeType
	// Revision is the expected revision: a concrete revision, RevSafe or RevForced
	Revision() int64
	IsForced() bool
	String() string
}

// Atomic is implemented by all non-transaction commands
type Atomic interface {
	Command
	// WithRevision returns a copy of this command expecting another revision
	WithRevision(int64) Atomic
	atomic()
}

func checkRevision(rev int64) error {
	if rev < 0 && rev != RevForced && rev != RevSafe {
		return ErrInvalidRevisionf(rev)
	}
	return nil
}

func addRevision(forced bool) int64 {
	if forced {
		return RevForced
	}
	return RevSafe
}

func revisionString(rev int64) string {
	switch rev {
	case RevForced:
		return "forced"
	case RevSafe:
		return "safe"
	default:
		return fmt.Sprintf("r%d", rev)
	}
}

// Must panics if err is not nil. It is a convenience wrapper around command constructors.
func Must[T Command](c T, err error) T {
	if err != nil {
		panic(err)
	}
	return c
}

// IsConcrete tells if an expected revision is an actual revision rather than a sentinel
func IsConcrete(rev int64) bool {
	return rev >= 0
}

// Atomics flattens a command into its atomic parts
func Atomics(c Command) []Atomic {
	switch cmd := c.(type) {
	case *Transaction:
		return cmd.Commands()
	case Atomic:
		return []Atomic{cmd}
	default:
		return nil
	}
}
