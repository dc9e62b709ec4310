// Package event defines the facts recorded when commands are committed, and a registry
// of listeners notified about them.
package event

import (
	"fmt"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/model"
)

// Event records a change which was successfully applied
type Event interface {
	// Actor who caused this event
	Actor() model.ID
	// Target is the address the originating command was sent to
	Target() model.Address
	// ChangedEntity is the address of the entity added, removed or changed
	ChangedEntity() model.Address
	ChangeType() command.ChangeType
	// Revision of the model after the change
	Revision() int64
	OldModelRevision() int64
	OldObjectRevision() int64
	OldFieldRevision() int64
	// InTransaction tells if this event is part of a TransactionEvent
	InTransaction() bool
	String() string
}

// Atomic is implemented by events which are not transactions
type Atomic interface {
	Event
	// OldEntityRevision is the revision the changed entity had before the change
	OldEntityRevision() int64
	// OldParentRevision is the revision the parent of the changed entity had before the change
	OldParentRevision() int64
	atomic()
}

var (
	_ Atomic = &RepositoryEvent{}
	_ Atomic = &ModelEvent{}
	_ Atomic = &ObjectEvent{}
	_ Atomic = &FieldEvent{}
	_ Event  = &TransactionEvent{}
)

// Meta holds the data shared by every event.
//
// Revisions of entities which did not exist before the change are model.RevisionNotSet.
type Meta struct {
	ActorID      model.ID
	TargetAddr   model.Address
	EntityAddr   model.Address
	Type         command.ChangeType
	Rev          int64
	OldModelRev  int64
	OldObjectRev int64
	OldFieldRev  int64
	InTx         bool
}

func (m Meta) Actor() model.ID                { return m.ActorID }
func (m Meta) Target() model.Address          { return m.TargetAddr }
func (m Meta) ChangedEntity() model.Address   { return m.EntityAddr }
func (m Meta) ChangeType() command.ChangeType { return m.Type }
func (m Meta) Revision() int64                { return m.Rev }
func (m Meta) OldModelRevision() int64        { return m.OldModelRev }
func (m Meta) OldObjectRevision() int64       { return m.OldObjectRev }
func (m Meta) OldFieldRevision() int64        { return m.OldFieldRev }
func (m Meta) InTransaction() bool            { return m.InTx }

func (m Meta) String() string {
	return fmt.Sprintf("%s %s by %s @r%d", m.Type, m.EntityAddr, m.ActorID, m.Rev)
}

// RepositoryEvent records the addition or removal of a model
type RepositoryEvent struct{ Meta }

func (e *RepositoryEvent) OldEntityRevision() int64 { return e.OldModelRev }

// OldParentRevision is always RevisionNotSet: repositories have no revision
func (e *RepositoryEvent) OldParentRevision() int64 { return model.RevisionNotSet }
func (*RepositoryEvent) atomic()                    {}

// ModelEvent records the addition or removal of an object
type ModelEvent struct{ Meta }

func (e *ModelEvent) OldEntityRevision() int64 { return e.OldObjectRev }
func (e *ModelEvent) OldParentRevision() int64 { return e.OldModelRev }
func (*ModelEvent) atomic()                    {}

// ObjectEvent records the addition or removal of a field
type ObjectEvent struct{ Meta }

func (e *ObjectEvent) OldEntityRevision() int64 { return e.OldFieldRev }
func (e *ObjectEvent) OldParentRevision() int64 { return e.OldObjectRev }
func (*ObjectEvent) atomic()                    {}

// FieldEvent records a change of value
type FieldEvent struct {
	Meta
	OldValue model.Value
	NewValue model.Value
}

func (e *FieldEvent) OldEntityRevision() int64 { return e.OldFieldRev }
func (e *FieldEvent) OldParentRevision() int64 { return e.OldObjectRev }
func (*FieldEvent) atomic()                    {}

func (e *FieldEvent) String() string {
	s := e.Meta.String()
	if e.NewValue != nil {
		s += " = " + e.NewValue.String()
	}
	return s
}

// TransactionEvent aggregates the events produced by one committed transaction
type TransactionEvent struct {
	ActorID      model.ID
	TargetAddr   model.Address
	Rev          int64
	OldModelRev  int64
	OldObjectRev int64
	events       []Atomic
}

// NewTransactionEvent builds a transaction event. The atomic events are flagged as
// being part of a transaction.
func NewTransactionEvent(actor model.ID, target model.Address, rev, oldModelRev, oldObjectRev int64, events []Atomic) *TransactionEvent {
	flagged := make([]Atomic, 0, len(events))
	for _, e := range events {
		flagged = append(flagged, inTransaction(e))
	}
	return &TransactionEvent{
		ActorID:      actor,
		TargetAddr:   target,
		Rev:          rev,
		OldModelRev:  oldModelRev,
		OldObjectRev: oldObjectRev,
		events:       flagged,
	}
}

func inTransaction(e Atomic) Atomic {
	switch ev := e.(type) {
	case *RepositoryEvent:
		cp := *ev
		cp.InTx = true
		return &cp
	case *ModelEvent:
		cp := *ev
		cp.InTx = true
		return &cp
	case *ObjectEvent:
		cp := *ev
		cp.InTx = true
		return &cp
	case *FieldEvent:
		cp := *ev
		cp.InTx = true
		return &cp
	default:
		panic(fmt.Sprintf("dev error: unknown event type %T", e))
	}
}

func (t *TransactionEvent) Actor() model.ID                { return t.ActorID }
func (t *TransactionEvent) Target() model.Address          { return t.TargetAddr }
func (t *TransactionEvent) ChangedEntity() model.Address   { return t.TargetAddr }
func (t *TransactionEvent) ChangeType() command.ChangeType { return command.TransactionChange }
func (t *TransactionEvent) Revision() int64                { return t.Rev }
func (t *TransactionEvent) OldModelRevision() int64        { return t.OldModelRev }
func (t *TransactionEvent) OldObjectRevision() int64       { return t.OldObjectRev }
func (t *TransactionEvent) OldFieldRevision() int64        { return model.RevisionNotSet }
func (t *TransactionEvent) InTransaction() bool            { return false }

// Len is the number of atomic events
func (t *TransactionEvent) Len() int { return len(t.events) }

// At returns the i-th atomic event
func (t *TransactionEvent) At(i int) Atomic { return t.events[i] }

// Events returns a copy of the atomic events, in commit order
func (t *TransactionEvent) Events() []Atomic {
	cp := make([]Atomic, len(t.events))
	copy(cp, t.events)
	return cp
}

func (t *TransactionEvent) String() string {
	return fmt.Sprintf("TRANSACTION %s by %s @r%d (%d events)", t.TargetAddr, t.ActorID, t.Rev, len(t.events))
}

// Atomics flattens an event into its atomic parts
func Atomics(e Event) []Atomic {
	switch ev := e.(type) {
	case *TransactionEvent:
		return ev.Events()
	case Atomic:
		return []Atomic{ev}
	default:
		return nil
	}
}
