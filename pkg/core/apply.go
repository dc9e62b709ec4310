/*
 * Copyright © 2019 One Concern
 *
 */

package core

import (
	"fmt"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/model"
)

func devError(format string, args ...interface{}) {
	panic("dev error: " + fmt.Sprintf(format, args...))
}

// priorRevisions holds the revisions entities had before a commit, so that every event
// of a transaction reports the state before the transaction. Entities created by the
// commit have no prior revision.
type priorRevisions map[model.Address]int64

func (p priorRevisions) of(addr model.Address, current int64) int64 {
	if rev, ok := p[addr]; ok {
		return rev
	}
	p[addr] = current
	return current
}

func (p priorRevisions) created(addr model.Address) {
	if _, ok := p[addr]; !ok {
		p[addr] = model.RevisionNotSet
	}
}

// applyCommand applies a checked command to the model and returns the corresponding event.
//
// Every touched entity takes the new revision. A failure here means that the check
// phase missed something: this is not recoverable.
func applyCommand(m *Model, actor model.ID, cmd command.Atomic, oldRev, newRev int64, prior priorRevisions) event.Atomic {
	meta := event.Meta{
		ActorID:      actor,
		TargetAddr:   cmd.Target(),
		EntityAddr:   cmd.ChangedEntity(),
		Type:         cmd.ChangeType(),
		Rev:          newRev,
		OldModelRev:  oldRev,
		OldObjectRev: model.RevisionNotSet,
		OldFieldRev:  model.RevisionNotSet,
	}

	switch c := cmd.(type) {
	case *command.RepositoryCommand:
		return applyRepositoryCommand(m, c, meta)
	case *command.ModelCommand:
		return applyModelCommand(m, c, meta, prior)
	case *command.ObjectCommand:
		return applyObjectCommand(m, c, meta, prior)
	case *command.FieldCommand:
		return applyFieldCommand(m, c, meta, prior)
	default:
		devError("unsupported command %T", cmd)
		return nil
	}
}

func applyRepositoryCommand(m *Model, c *command.RepositoryCommand, meta event.Meta) event.Atomic {
	switch c.ChangeType() {
	case command.Add:
		if !m.removed {
			devError("model %v already exists", m.addr)
		}
		m.removed = false
	case command.Remove:
		if m.removed {
			devError("model %v is already removed", m.addr)
		}
		m.removed = true
	}
	m.objects = make(map[model.ID]*Object)
	return &event.RepositoryEvent{Meta: meta}
}

func applyModelCommand(m *Model, c *command.ModelCommand, meta event.Meta, prior priorRevisions) event.Atomic {
	id := c.ObjectID()
	existing, exists := m.objects[id]

	switch c.ChangeType() {
	case command.Add:
		if exists {
			devError("object %v already exists", meta.EntityAddr)
		}
		prior.created(meta.EntityAddr)
		m.objects[id] = newObject(m, id, meta.Rev)
	case command.Remove:
		if !exists {
			devError("object %v does not exist", meta.EntityAddr)
		}
		meta.OldObjectRev = prior.of(meta.EntityAddr, existing.rev)
		delete(m.objects, id)
	}
	return &event.ModelEvent{Meta: meta}
}

func applyObjectCommand(m *Model, c *command.ObjectCommand, meta event.Meta, prior priorRevisions) event.Atomic {
	o, ok := m.objects[c.Target().Object]
	if !ok {
		devError("object %v does not exist", c.Target())
	}
	id := c.FieldID()
	existing, exists := o.fields[id]
	meta.OldObjectRev = prior.of(o.addr, o.rev)

	switch c.ChangeType() {
	case command.Add:
		if exists {
			devError("field %v already exists", meta.EntityAddr)
		}
		prior.created(meta.EntityAddr)
		o.fields[id] = &Field{object: o, addr: meta.EntityAddr, rev: meta.Rev}
	case command.Remove:
		if !exists {
			devError("field %v does not exist", meta.EntityAddr)
		}
		meta.OldFieldRev = prior.of(meta.EntityAddr, existing.rev)
		delete(o.fields, id)
	}
	o.rev = meta.Rev
	return &event.ObjectEvent{Meta: meta}
}

func applyFieldCommand(m *Model, c *command.FieldCommand, meta event.Meta, prior priorRevisions) event.Atomic {
	addr := c.Target()
	o, ok := m.objects[addr.Object]
	if !ok {
		devError("object of %v does not exist", addr)
	}
	f, ok := o.fields[addr.Field]
	if !ok {
		devError("field %v does not exist", addr)
	}

	oldValue := f.value
	newValue := c.Value()
	switch {
	case oldValue == nil:
		meta.Type = command.Add
	case newValue == nil:
		meta.Type = command.Remove
	default:
		meta.Type = command.Change
	}
	meta.OldObjectRev = prior.of(o.addr, o.rev)
	meta.OldFieldRev = prior.of(f.addr, f.rev)

	f.value = newValue
	f.rev = meta.Rev
	o.rev = meta.Rev
	return &event.FieldEvent{Meta: meta, OldValue: oldValue, NewValue: newValue}
}
