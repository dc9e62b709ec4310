/*
 * Copyright © 2019 One Concern
 *
 */

package core

import (
	"sync"

	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/model"
)

var _ model.ReadableModel = &Model{}

// Model is a live model, holding objects.
//
// A model guards its whole content (objects and fields) with a single read-write lock.
// Commits against a model are serialized: only one commit is in flight at a time.
// Different models commit concurrently.
//
// A removed model is kept by its repository as a tombstone, which retains its
// revision and change log.
type Model struct {
	repo *Repository
	addr model.Address

	// commit serializes commits, from the check phase until listeners are notified
	commit sync.Mutex

	mx      sync.RWMutex
	rev     int64
	removed bool
	objects map[model.ID]*Object

	// hookErr is the first commit hook failure: no commit is accepted past it
	hookErr error

	log *ChangeLog
}

func newModel(r *Repository, id model.ID) *Model {
	return &Model{
		repo:    r,
		addr:    r.addr.Child(id),
		rev:     model.RevisionNotSet,
		removed: true,
		objects: make(map[model.ID]*Object),
		log:     NewChangeLog(),
	}
}

// ID of the model
func (m *Model) ID() model.ID { return m.addr.Model }

// Address of the model
func (m *Model) Address() model.Address { return m.addr }

// Repository this model belongs to
func (m *Model) Repository() *Repository { return m.repo }

// ChangeLog of this model
func (m *Model) ChangeLog() *ChangeLog { return m.log }

// Revision of the model
func (m *Model) Revision() int64 {
	m.mx.RLock()
	defer m.mx.RUnlock()
	return m.rev
}

// IsRemoved tells if this model is a tombstone
func (m *Model) IsRemoved() bool {
	m.mx.RLock()
	defer m.mx.RUnlock()
	return m.removed
}

// HookErr returns the commit hook failure which stopped this model from accepting commits, if any
func (m *Model) HookErr() error {
	m.mx.RLock()
	defer m.mx.RUnlock()
	return m.hookErr
}

// HasObject tells if an object exists
func (m *Model) HasObject(id model.ID) bool {
	m.mx.RLock()
	defer m.mx.RUnlock()
	_, ok := m.objects[id]
	return ok
}

// Object by ID, nil if it does not exist
func (m *Model) Object(id model.ID) model.ReadableObject {
	if o := m.GetObject(id); o != nil {
		return o
	}
	return nil
}

// GetObject returns the live object, or nil if it does not exist
func (m *Model) GetObject(id model.ID) *Object {
	m.mx.RLock()
	defer m.mx.RUnlock()
	return m.objects[id]
}

// ObjectIDs in ascending order
func (m *Model) ObjectIDs() []model.ID {
	m.mx.RLock()
	defer m.mx.RUnlock()
	return model.SortedIDs(m.objects)
}

// IsEmpty tells if the model has no object
func (m *Model) IsEmpty() bool {
	m.mx.RLock()
	defer m.mx.RUnlock()
	return len(m.objects) == 0
}

// Snapshot detaches a copy of the current state of the model
func (m *Model) Snapshot() *model.ModelState {
	m.mx.RLock()
	defer m.mx.RUnlock()
	return model.CopyModel(modelView{m})
}

// CreateObject returns the object with this ID, creating it if it does not exist
func (m *Model) CreateObject(actor model.ID, id model.ID) (*Object, error) {
	cmd, err := command.AddObject(m.addr, id, true)
	if err != nil {
		return nil, err
	}
	m.ExecuteCommand(actor, cmd)
	return m.GetObject(id), nil
}

// RemoveObject removes an object and its fields. It tells if the object existed.
func (m *Model) RemoveObject(actor model.ID, id model.ID) (bool, error) {
	cmd, err := command.RemoveObject(m.addr, id, command.RevForced)
	if err != nil {
		return false, err
	}
	return m.ExecuteCommand(actor, cmd) >= 0, nil
}

// Subscribe a listener to the events of this model and its content
func (m *Model) Subscribe(listener event.Listener) *event.Subscription {
	return m.repo.registry.Subscribe(m.addr, listener)
}

// ExecuteCommand commits a command or a transaction against this model.
//
// It returns the new revision of the model, command.NoChange or command.Failed.
func (m *Model) ExecuteCommand(actor model.ID, cmd command.Command, opts ...CommitOption) int64 {
	return m.repo.executor.Commit(m, actor, cmd, opts...)
}

// modelView reads a model without locking
type modelView struct{ m *Model }

func (v modelView) ID() model.ID           { return v.m.addr.Model }
func (v modelView) Address() model.Address { return v.m.addr }
func (v modelView) Revision() int64        { return v.m.rev }
func (v modelView) HasObject(id model.ID) bool {
	_, ok := v.m.objects[id]
	return ok
}

func (v modelView) Object(id model.ID) model.ReadableObject {
	o, ok := v.m.objects[id]
	if !ok {
		return nil
	}
	return objectView{o}
}

func (v modelView) ObjectIDs() []model.ID { return model.SortedIDs(v.m.objects) }
func (v modelView) IsEmpty() bool         { return len(v.m.objects) == 0 }

func addFieldCommand(objectAddr model.Address, id model.ID) (command.Command, error) {
	return command.AddField(objectAddr, id, true)
}

func removeFieldCommand(objectAddr model.Address, id model.ID) (command.Command, error) {
	return command.RemoveField(objectAddr, id, command.RevForced)
}

func setValueCommand(fieldAddr model.Address, value model.Value) (command.Command, error) {
	if value == nil {
		return command.RemoveValue(fieldAddr, command.RevForced)
	}
	return command.ChangeValue(fieldAddr, command.RevForced, value)
}
