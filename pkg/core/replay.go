/*
 * Copyright © 2019 One Concern
 *
 */

package core

import (
	"fmt"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/core/status"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/model"
)

// ReplayCommand builds the forced command which reproduces an event on a replica
func ReplayCommand(e event.Event) (command.Command, error) {
	if tx, ok := e.(*event.TransactionEvent); ok {
		commands := make([]command.Command, 0, tx.Len())
		for _, ev := range tx.Events() {
			cmd, err := replayAtomic(ev)
			if err != nil {
				return nil, err
			}
			commands = append(commands, cmd)
		}
		return command.NewTransaction(tx.Target(), commands...)
	}

	atomic, ok := e.(event.Atomic)
	if !ok {
		return nil, status.ErrReplay.WrapMessage(fmt.Sprintf("unsupported event %T", e))
	}
	return replayAtomic(atomic)
}

func replayAtomic(e event.Atomic) (command.Command, error) {
	target, entity := e.Target(), e.ChangedEntity()
	add := e.ChangeType() == command.Add

	switch ev := e.(type) {
	case *event.RepositoryEvent:
		if add {
			return command.AddModel(target, entity.Model, true)
		}
		return command.RemoveModel(target, entity.Model, command.RevForced)
	case *event.ModelEvent:
		if add {
			return command.AddObject(target, entity.Object, true)
		}
		return command.RemoveObject(target, entity.Object, command.RevForced)
	case *event.ObjectEvent:
		if add {
			return command.AddField(target, entity.Field, true)
		}
		return command.RemoveField(target, entity.Field, command.RevForced)
	case *event.FieldEvent:
		if ev.NewValue == nil {
			return command.RemoveValue(entity, command.RevForced)
		}
		return command.ChangeValue(entity, command.RevForced, ev.NewValue)
	default:
		return nil, status.ErrReplay.WrapMessage(fmt.Sprintf("unsupported event %T", e))
	}
}

// Replay applies an event which happened on another replica of a model.
//
// The event is applied as the equivalent forced command, on behalf of the original actor.
// Replaying must produce the same revision and the same event as the original change,
// otherwise the replicas have diverged and an error is returned.
func (r *Repository) Replay(e event.Event) (int64, error) {
	cmd, err := ReplayCommand(e)
	if err != nil {
		return command.Failed, err
	}

	result := r.ExecuteCommand(e.Actor(), cmd)
	if result != e.Revision() {
		return result, status.ErrReplay.WrapMessage(fmt.Sprintf("%v yields revision %d", e, result))
	}

	addr := e.ChangedEntity().ModelAddress()
	if log := r.ChangeLog(addr.Model); log == nil || !event.SameChange(log.Event(result), e) {
		return result, status.ErrReplay.WrapMessage(fmt.Sprintf("%v yields another event", e))
	}
	return result, nil
}

// Replay applies an event which happened on another replica of this model
func (m *Model) Replay(e event.Event) (int64, error) {
	if e.ChangedEntity().ModelAddress() != m.addr {
		return command.Failed, status.ErrWrongModel.WrapMessage(e.String())
	}
	return m.repo.Replay(e)
}

// ReplayAll replays a sequence of events, stopping at the first error
func (r *Repository) ReplayAll(events []event.Event) (int64, error) {
	last := int64(command.NoChange)
	for _, e := range events {
		rev, err := r.Replay(e)
		if err != nil {
			return rev, err
		}
		last = rev
	}
	return last, nil
}

// ModelAt returns the model addressed, or nil
func (r *Repository) ModelAt(addr model.Address) *Model {
	if addr.Repository != r.addr.Repository || addr.Model.IsZero() {
		return nil
	}
	return r.GetModel(addr.Model)
}
