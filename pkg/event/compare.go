package event

import "github.com/oneconcern/strata/pkg/model"

// SameChange tells if two events record the same change, regardless of the actor who
// caused them.
func SameChange(a, b Event) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Target() != b.Target() ||
		a.ChangedEntity() != b.ChangedEntity() ||
		a.ChangeType() != b.ChangeType() ||
		a.Revision() != b.Revision() ||
		a.OldModelRevision() != b.OldModelRevision() ||
		a.OldObjectRevision() != b.OldObjectRevision() ||
		a.OldFieldRevision() != b.OldFieldRevision() {
		return false
	}

	switch ea := a.(type) {
	case *TransactionEvent:
		eb, ok := b.(*TransactionEvent)
		if !ok || ea.Len() != eb.Len() {
			return false
		}
		for i := 0; i < ea.Len(); i++ {
			if !SameChange(ea.At(i), eb.At(i)) {
				return false
			}
		}
		return true
	case *FieldEvent:
		eb, ok := b.(*FieldEvent)
		return ok && model.ValuesEqual(ea.OldValue, eb.OldValue) && model.ValuesEqual(ea.NewValue, eb.NewValue)
	case *RepositoryEvent:
		_, ok := b.(*RepositoryEvent)
		return ok
	case *ModelEvent:
		_, ok := b.(*ModelEvent)
		return ok
	case *ObjectEvent:
		_, ok := b.(*ObjectEvent)
		return ok
	default:
		return false
	}
}

// SameChanges compares two event sequences with SameChange
func SameChanges(a, b []Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameChange(a[i], b[i]) {
			return false
		}
	}
	return true
}
