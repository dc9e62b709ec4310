package model

import "github.com/oneconcern/strata/pkg/model/status"

// SafeModel returns a model which must exist, or ErrMissingPiece
func SafeModel(r ReadableRepository, id ID) (ReadableModel, error) {
	if m := r.Model(id); m != nil {
		return m, nil
	}
	return nil, status.ErrMissingPiece.WrapMessage(r.Address().Child(id).String())
}

// SafeObject returns an object which must exist, or ErrMissingPiece
func SafeObject(m ReadableModel, id ID) (ReadableObject, error) {
	if o := m.Object(id); o != nil {
		return o, nil
	}
	return nil, status.ErrMissingPiece.WrapMessage(m.Address().Child(id).String())
}

// SafeField returns a field which must exist, or ErrMissingPiece
func SafeField(o ReadableObject, id ID) (ReadableField, error) {
	if f := o.Field(id); f != nil {
		return f, nil
	}
	return nil, status.ErrMissingPiece.WrapMessage(o.Address().Child(id).String())
}

// SafeValue returns the value of a field which must exist and hold a value, or ErrMissingPiece
func SafeValue(o ReadableObject, id ID) (Value, error) {
	f, err := SafeField(o, id)
	if err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return nil, status.ErrMissingPiece.WrapMessage("value of " + f.Address().String())
	}
	return f.Value(), nil
}
