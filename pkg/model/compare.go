package model

import "golang.org/x/exp/slices"

// StateEquals compares two models on IDs, addresses, revisions and values
func StateEquals(a, b ReadableModel) bool {
	return modelEquals(a, b, true)
}

// TreeEquals compares two models on IDs and values, ignoring revisions
func TreeEquals(a, b ReadableModel) bool {
	return modelEquals(a, b, false)
}

// ObjectStateEquals compares two objects on IDs, revisions and values
func ObjectStateEquals(a, b ReadableObject) bool {
	return objectEquals(a, b, true)
}

// ObjectTreeEquals compares two objects on IDs and values, ignoring revisions
func ObjectTreeEquals(a, b ReadableObject) bool {
	return objectEquals(a, b, false)
}

func modelEquals(a, b ReadableModel, withRevisions bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Address() != b.Address() {
		return false
	}
	if withRevisions && a.Revision() != b.Revision() {
		return false
	}
	ids := a.ObjectIDs()
	if !slices.Equal(ids, b.ObjectIDs()) {
		return false
	}
	for _, id := range ids {
		if !objectEquals(a.Object(id), b.Object(id), withRevisions) {
			return false
		}
	}
	return true
}

func objectEquals(a, b ReadableObject, withRevisions bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Address() != b.Address() {
		return false
	}
	if withRevisions && a.Revision() != b.Revision() {
		return false
	}
	ids := a.FieldIDs()
	if !slices.Equal(ids, b.FieldIDs()) {
		return false
	}
	for _, id := range ids {
		fa, fb := a.Field(id), b.Field(id)
		if withRevisions && fa.Revision() != fb.Revision() {
			return false
		}
		if !ValuesEqual(fa.Value(), fb.Value()) {
			return false
		}
	}
	return true
}
