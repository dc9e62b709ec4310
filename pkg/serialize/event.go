package serialize

import (
	"fmt"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/serialize/status"
)

// EventDoc is the document form of an event or a transaction event
type EventDoc struct {
	Type              string     `json:"type" yaml:"type"`
	Actor             string     `json:"actor" yaml:"actor"`
	Target            string     `json:"target" yaml:"target"`
	Entity            string     `json:"entity,omitempty" yaml:"entity,omitempty"`
	Revision          int64      `json:"revision" yaml:"revision"`
	OldModelRevision  int64      `json:"oldModelRevision" yaml:"oldModelRevision"`
	OldObjectRevision int64      `json:"oldObjectRevision" yaml:"oldObjectRevision"`
	OldFieldRevision  int64      `json:"oldFieldRevision" yaml:"oldFieldRevision"`
	OldValue          *ValueDoc  `json:"oldValue,omitempty" yaml:"oldValue,omitempty"`
	NewValue          *ValueDoc  `json:"newValue,omitempty" yaml:"newValue,omitempty"`
	Events            []EventDoc `json:"events,omitempty" yaml:"events,omitempty"`
}

// FromEvent builds the document of an event
func FromEvent(e event.Event) EventDoc {
	d := EventDoc{
		Type:              e.ChangeType().String(),
		Actor:             string(e.Actor()),
		Target:            e.Target().String(),
		Revision:          e.Revision(),
		OldModelRevision:  e.OldModelRevision(),
		OldObjectRevision: e.OldObjectRevision(),
		OldFieldRevision:  e.OldFieldRevision(),
	}
	if tx, ok := e.(*event.TransactionEvent); ok {
		for _, atomic := range tx.Events() {
			d.Events = append(d.Events, FromEvent(atomic))
		}
		return d
	}
	d.Entity = e.ChangedEntity().String()
	if fe, ok := e.(*event.FieldEvent); ok {
		d.OldValue = FromValue(fe.OldValue)
		d.NewValue = FromValue(fe.NewValue)
	}
	return d
}

// Event decoded from this document
func (d EventDoc) Event() (event.Event, error) {
	changeType, ok := command.ParseChangeType(d.Type)
	if !ok {
		return nil, status.ErrInvalidEvent.WrapMessage(fmt.Sprintf("unknown type %q", d.Type))
	}
	target, err := model.ParseAddress(d.Target)
	if err != nil {
		return nil, status.ErrInvalidEvent.Wrap(err)
	}
	actor := model.ID(d.Actor)

	if changeType != command.TransactionChange {
		return d.atomic(actor, target, changeType)
	}

	events := make([]event.Atomic, 0, len(d.Events))
	for _, ed := range d.Events {
		if ed.Type == command.TransactionChange.String() {
			return nil, status.ErrInvalidEvent.WrapMessage("nested transaction event")
		}
		e, err := ed.Event()
		if err != nil {
			return nil, err
		}
		events = append(events, e.(event.Atomic))
	}
	if len(events) == 0 {
		return nil, status.ErrInvalidEvent.WrapMessage("empty transaction event")
	}
	return event.NewTransactionEvent(actor, target, d.Revision, d.OldModelRevision, d.OldObjectRevision, events), nil
}

func (d EventDoc) atomic(actor model.ID, target model.Address, changeType command.ChangeType) (event.Event, error) {
	entity, err := model.ParseAddress(d.Entity)
	if err != nil {
		return nil, status.ErrInvalidEvent.Wrap(err)
	}
	if !target.Contains(entity) {
		return nil, status.ErrInvalidEvent.WrapMessage(fmt.Sprintf("%v is not located under %v", entity, target))
	}

	meta := event.Meta{
		ActorID:      actor,
		TargetAddr:   target,
		EntityAddr:   entity,
		Type:         changeType,
		Rev:          d.Revision,
		OldModelRev:  d.OldModelRevision,
		OldObjectRev: d.OldObjectRevision,
		OldFieldRev:  d.OldFieldRevision,
	}
	switch target.Kind() {
	case model.KindRepository:
		return &event.RepositoryEvent{Meta: meta}, nil
	case model.KindModel:
		return &event.ModelEvent{Meta: meta}, nil
	case model.KindObject:
		return &event.ObjectEvent{Meta: meta}, nil
	case model.KindField:
		oldValue, err := d.OldValue.Value()
		if err != nil {
			return nil, err
		}
		newValue, err := d.NewValue.Value()
		if err != nil {
			return nil, err
		}
		return &event.FieldEvent{Meta: meta, OldValue: oldValue, NewValue: newValue}, nil
	default:
		return nil, status.ErrInvalidEvent.WrapMessage(fmt.Sprintf("invalid target %q", d.Target))
	}
}

// MarshalEvent encodes an event
func MarshalEvent(format Format, e event.Event) ([]byte, error) {
	return Marshal(format, FromEvent(e))
}

// UnmarshalEvent decodes an event
func UnmarshalEvent(format Format, data []byte) (event.Event, error) {
	var d EventDoc
	if err := Unmarshal(format, data, &d); err != nil {
		return nil, status.ErrInvalidEvent.Wrap(err)
	}
	return d.Event()
}
