package core

import (
	"github.com/oneconcern/strata/pkg/model"
)

var _ model.ReadableField = &Field{}

// Field is a live field, holding an optional value
type Field struct {
	object *Object
	addr   model.Address
	rev    int64
	value  model.Value
}

// ID of the field
func (f *Field) ID() model.ID { return f.addr.Field }

// Address of the field
func (f *Field) Address() model.Address { return f.addr }

// Revision of the field
func (f *Field) Revision() int64 {
	mx := &f.object.model.mx
	mx.RLock()
	defer mx.RUnlock()
	return f.rev
}

// Value of the field, nil when empty
func (f *Field) Value() model.Value {
	mx := &f.object.model.mx
	mx.RLock()
	defer mx.RUnlock()
	return f.value
}

// IsEmpty tells if the field holds no value
func (f *Field) IsEmpty() bool {
	return f.Value() == nil
}

// fieldView reads a field without locking
type fieldView struct{ f *Field }

func (v fieldView) ID() model.ID           { return v.f.addr.Field }
func (v fieldView) Address() model.Address { return v.f.addr }
func (v fieldView) Revision() int64        { return v.f.rev }
func (v fieldView) Value() model.Value     { return v.f.value }
func (v fieldView) IsEmpty() bool          { return v.f.value == nil }
