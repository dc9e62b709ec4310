package change

import "github.com/oneconcern/strata/pkg/model"

var _ model.ReadableField = &ChangedField{}

// ChangedField is a field as seen through a diff: either a new field, or the new value of a base field
type ChangedField struct {
	addr  model.Address
	base  model.ReadableField
	value model.Value
}

func newField(addr model.Address) *ChangedField {
	return &ChangedField{addr: addr}
}

func overField(base model.ReadableField) *ChangedField {
	return &ChangedField{addr: base.Address(), base: base, value: base.Value()}
}

// ID of the field
func (f *ChangedField) ID() model.ID { return f.addr.Field }

// Address of the field
func (f *ChangedField) Address() model.Address { return f.addr }

// Revision of the base field, or RevisionNotSet for a new field
func (f *ChangedField) Revision() int64 {
	if f.base == nil {
		return model.RevisionNotSet
	}
	return f.base.Revision()
}

// Value as staged
func (f *ChangedField) Value() model.Value { return f.value }

// IsEmpty tells if no value is staged
func (f *ChangedField) IsEmpty() bool { return f.value == nil }

// IsNew tells if this field does not exist in the base
func (f *ChangedField) IsNew() bool { return f.base == nil }

// Base field, nil for a new field
func (f *ChangedField) Base() model.ReadableField { return f.base }

func (f *ChangedField) isChanged() bool {
	return f.base != nil && !model.ValuesEqual(f.base.Value(), f.value)
}
