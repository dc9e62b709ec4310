package core

import (
	"github.com/oneconcern/strata/pkg/model"
)

var _ model.ReadableObject = &Object{}

// Object is a live object, holding fields
type Object struct {
	model  *Model
	addr   model.Address
	rev    int64
	fields map[model.ID]*Field
}

func newObject(m *Model, id model.ID, rev int64) *Object {
	return &Object{
		model:  m,
		addr:   m.addr.Child(id),
		rev:    rev,
		fields: make(map[model.ID]*Field),
	}
}

// ID of the object
func (o *Object) ID() model.ID { return o.addr.Object }

// Address of the object
func (o *Object) Address() model.Address { return o.addr }

// Model this object belongs to
func (o *Object) Model() *Model { return o.model }

// Revision of the object
func (o *Object) Revision() int64 {
	o.model.mx.RLock()
	defer o.model.mx.RUnlock()
	return o.rev
}

// HasField tells if a field exists
func (o *Object) HasField(id model.ID) bool {
	o.model.mx.RLock()
	defer o.model.mx.RUnlock()
	_, ok := o.fields[id]
	return ok
}

// Field by ID, nil if it does not exist
func (o *Object) Field(id model.ID) model.ReadableField {
	if f := o.GetField(id); f != nil {
		return f
	}
	return nil
}

// GetField returns the live field, or nil if it does not exist
func (o *Object) GetField(id model.ID) *Field {
	o.model.mx.RLock()
	defer o.model.mx.RUnlock()
	return o.fields[id]
}

// FieldIDs in ascending order
func (o *Object) FieldIDs() []model.ID {
	o.model.mx.RLock()
	defer o.model.mx.RUnlock()
	return model.SortedIDs(o.fields)
}

// IsEmpty tells if the object has no field
func (o *Object) IsEmpty() bool {
	o.model.mx.RLock()
	defer o.model.mx.RUnlock()
	return len(o.fields) == 0
}

// CreateField returns the field with this ID, creating it if it does not exist
func (o *Object) CreateField(actor model.ID, id model.ID) (*Field, error) {
	cmd, err := addFieldCommand(o.addr, id)
	if err != nil {
		return nil, err
	}
	o.model.ExecuteCommand(actor, cmd)
	return o.GetField(id), nil
}

// RemoveField removes a field. It tells if the field existed.
func (o *Object) RemoveField(actor model.ID, id model.ID) (bool, error) {
	cmd, err := removeFieldCommand(o.addr, id)
	if err != nil {
		return false, err
	}
	return o.model.ExecuteCommand(actor, cmd) >= 0, nil
}

// SetValue sets the value of an existing field, or clears it with a nil value.
// It returns the result of the underlying forced command.
func (o *Object) SetValue(actor model.ID, id model.ID, value model.Value) (int64, error) {
	cmd, err := setValueCommand(o.addr.Child(id), value)
	if err != nil {
		return 0, err
	}
	return o.model.ExecuteCommand(actor, cmd), nil
}

// objectView reads an object without locking
type objectView struct{ o *Object }

func (v objectView) ID() model.ID           { return v.o.addr.Object }
func (v objectView) Address() model.Address { return v.o.addr }
func (v objectView) Revision() int64        { return v.o.rev }
func (v objectView) HasField(id model.ID) bool {
	_, ok := v.o.fields[id]
	return ok
}

func (v objectView) Field(id model.ID) model.ReadableField {
	f, ok := v.o.fields[id]
	if !ok {
		return nil
	}
	return fieldView{f}
}

func (v objectView) FieldIDs() []model.ID { return model.SortedIDs(v.o.fields) }
func (v objectView) IsEmpty() bool        { return len(v.o.fields) == 0 }
