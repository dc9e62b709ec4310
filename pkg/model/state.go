/*
 * Copyright © 2019 One Concern
 *
 */

package model

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FieldState is a detached, plain-data field
type FieldState struct {
	Addr Address
	Rev  int64
	Val  Value
}

// ObjectState is a detached, plain-data object
type ObjectState struct {
	Addr   Address
	Rev    int64
	Fields map[ID]*FieldState
}

// ModelState is a detached, plain-data model.
//
// Model states are used as immutable snapshots: callers must not modify a state
// after handing it over.
type ModelState struct {
	Addr    Address
	Rev     int64
	Objects map[ID]*ObjectState
}

var (
	_ ReadableField  = &FieldState{}
	_ ReadableObject = &ObjectState{}
	_ ReadableModel  = &ModelState{}
)

// NewModelState builds an empty model state
func NewModelState(addr Address, rev int64) *ModelState {
	return &ModelState{Addr: addr, Rev: rev, Objects: make(map[ID]*ObjectState)}
}

// NewObjectState builds an empty object state
func NewObjectState(addr Address, rev int64) *ObjectState {
	return &ObjectState{Addr: addr, Rev: rev, Fields: make(map[ID]*FieldState)}
}

// ID of the field
func (f *FieldState) ID() ID { return f.Addr.Field }

// Address of the field
func (f *FieldState) Address() Address { return f.Addr }

// Revision of the field
func (f *FieldState) Revision() int64 { return f.Rev }

// Value of the field
func (f *FieldState) Value() Value { return f.Val }

// IsEmpty tells if the field holds no value
func (f *FieldState) IsEmpty() bool { return f.Val == nil }

// ID of the object
func (o *ObjectState) ID() ID { return o.Addr.Object }

// Address of the object
func (o *ObjectState) Address() Address { return o.Addr }

// Revision of the object
func (o *ObjectState) Revision() int64 { return o.Rev }

// HasField tells if a field exists
func (o *ObjectState) HasField(id ID) bool { _, ok := o.Fields[id]; return ok }

// Field by ID
func (o *ObjectState) Field(id ID) ReadableField {
	f, ok := o.Fields[id]
	if !ok {
		return nil
	}
	return f
}

// FieldIDs sorted
func (o *ObjectState) FieldIDs() []ID { return sortedKeys(o.Fields) }

// IsEmpty tells if the object has no field
func (o *ObjectState) IsEmpty() bool { return len(o.Fields) == 0 }

// ID of the model
func (m *ModelState) ID() ID { return m.Addr.Model }

// Address of the model
func (m *ModelState) Address() Address { return m.Addr }

// Revision of the model
func (m *ModelState) Revision() int64 { return m.Rev }

// HasObject tells if an object exists
func (m *ModelState) HasObject(id ID) bool { _, ok := m.Objects[id]; return ok }

// Object by ID
func (m *ModelState) Object(id ID) ReadableObject {
	o, ok := m.Objects[id]
	if !ok {
		return nil
	}
	return o
}

// ObjectIDs sorted
func (m *ModelState) ObjectIDs() []ID { return sortedKeys(m.Objects) }

// IsEmpty tells if the model has no object
func (m *ModelState) IsEmpty() bool { return len(m.Objects) == 0 }

// CopyField detaches a readable field into a plain state
func CopyField(f ReadableField) *FieldState {
	return &FieldState{Addr: f.Address(), Rev: f.Revision(), Val: f.Value()}
}

// CopyObject detaches a readable object into a plain state
func CopyObject(o ReadableObject) *ObjectState {
	state := NewObjectState(o.Address(), o.Revision())
	for _, id := range o.FieldIDs() {
		state.Fields[id] = CopyField(o.Field(id))
	}
	return state
}

// CopyModel detaches a readable model into a plain state
func CopyModel(m ReadableModel) *ModelState {
	state := NewModelState(m.Address(), m.Revision())
	for _, id := range m.ObjectIDs() {
		state.Objects[id] = CopyObject(m.Object(id))
	}
	return state
}

func sortedKeys[V any](m map[ID]V) []ID {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// SortedIDs returns the keys of a map keyed by ID in ascending order
func SortedIDs[V any](m map[ID]V) []ID {
	return sortedKeys(m)
}
