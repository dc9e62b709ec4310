package change

import (
	"github.com/oneconcern/strata/pkg/model"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/exp/slices"
)

var _ model.ReadableObject = &ChangedObject{}

// ChangedObject is an object as seen through a diff.
//
// A new object has no base and holds all its fields as added fields. An object which
// exists in the base records the fields added and removed, and the fields whose value changed.
// A base field which is removed then added again appears both as removed and as added.
type ChangedObject struct {
	addr    model.Address
	base    model.ReadableObject
	added   *orderedmap.OrderedMap[model.ID, *ChangedField]
	removed *orderedmap.OrderedMap[model.ID, struct{}]
	changed *orderedmap.OrderedMap[model.ID, *ChangedField]
}

func newObject(addr model.Address) *ChangedObject {
	return &ChangedObject{
		addr:    addr,
		added:   orderedmap.New[model.ID, *ChangedField](),
		removed: orderedmap.New[model.ID, struct{}](),
		changed: orderedmap.New[model.ID, *ChangedField](),
	}
}

func overObject(base model.ReadableObject) *ChangedObject {
	o := newObject(base.Address())
	o.base = base
	return o
}

// ID of the object
func (o *ChangedObject) ID() model.ID { return o.addr.Object }

// Address of the object
func (o *ChangedObject) Address() model.Address { return o.addr }

// Revision of the base object, or RevisionNotSet for a new object
func (o *ChangedObject) Revision() int64 {
	if o.base == nil {
		return model.RevisionNotSet
	}
	return o.base.Revision()
}

// IsNew tells if this object does not exist in the base
func (o *ChangedObject) IsNew() bool { return o.base == nil }

// Base object, nil for a new object
func (o *ChangedObject) Base() model.ReadableObject { return o.base }

func (o *ChangedObject) inBase(id model.ID) bool {
	if o.base == nil {
		return false
	}
	if _, removed := o.removed.Get(id); removed {
		return false
	}
	return o.base.HasField(id)
}

// HasField tells if a field exists once the changes are applied
func (o *ChangedObject) HasField(id model.ID) bool {
	if _, ok := o.added.Get(id); ok {
		return true
	}
	return o.inBase(id)
}

// Field as staged, nil if it does not exist once the changes are applied
func (o *ChangedObject) Field(id model.ID) model.ReadableField {
	if f, ok := o.added.Get(id); ok {
		return f
	}
	if f, ok := o.changed.Get(id); ok {
		return f
	}
	if o.inBase(id) {
		return o.base.Field(id)
	}
	return nil
}

// FieldIDs once the changes are applied, in ascending order
func (o *ChangedObject) FieldIDs() []model.ID {
	ids := make([]model.ID, 0, o.added.Len())
	if o.base != nil {
		for _, id := range o.base.FieldIDs() {
			if o.inBase(id) {
				ids = append(ids, id)
			}
		}
	}
	for pair := o.added.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// IsEmpty tells if the object has no field once the changes are applied
func (o *ChangedObject) IsEmpty() bool {
	if o.added.Len() > 0 {
		return false
	}
	if o.base == nil {
		return true
	}
	for _, id := range o.base.FieldIDs() {
		if o.inBase(id) {
			return false
		}
	}
	return true
}

// HasChanges tells if this object differs from its base
func (o *ChangedObject) HasChanges() bool {
	return o.base == nil || o.added.Len() > 0 || o.removed.Len() > 0 || o.changed.Len() > 0
}

// CreateField stages a new field, if it does not exist already
func (o *ChangedObject) CreateField(id model.ID) model.ReadableField {
	if f := o.Field(id); f != nil {
		return f
	}
	f := newField(o.addr.Child(id))
	o.added.Set(id, f)
	return f
}

// RemoveField stages the removal of a field. It tells if the field existed.
func (o *ChangedObject) RemoveField(id model.ID) bool {
	if _, ok := o.added.Delete(id); ok {
		return true
	}
	if !o.inBase(id) {
		return false
	}
	o.changed.Delete(id)
	o.removed.Set(id, struct{}{})
	return true
}

// SetValue stages the value of an existing field. A nil value clears the field.
// It tells if the field exists.
func (o *ChangedObject) SetValue(id model.ID, value model.Value) bool {
	if f, ok := o.added.Get(id); ok {
		f.value = value
		return true
	}
	if !o.inBase(id) {
		return false
	}
	f, ok := o.changed.Get(id)
	if !ok {
		f = overField(o.base.Field(id))
	}
	f.value = value
	if f.isChanged() {
		o.changed.Set(id, f)
	} else {
		o.changed.Delete(id)
	}
	return true
}

// countCommands needed to reproduce this object diff, stopping at max
func (o *ChangedObject) countCommands(max int) int {
	n := o.removed.Len()
	for pair := o.added.Oldest(); pair != nil && n < max; pair = pair.Next() {
		n++
		if pair.Value.value != nil {
			n++
		}
	}
	n += o.changed.Len()
	if n > max {
		return max
	}
	return n
}
