package model

// RevisionNotSet is the revision of an entity which does not have one yet,
// e.g. the previous revision of an added entity.
const RevisionNotSet int64 = -1

// ReadableField is a read-only view on a field
type ReadableField interface {
	ID() ID
	Address() Address
	Revision() int64
	// Value held by the field, nil when the field is empty
	Value() Value
	IsEmpty() bool
}

// ReadableObject is a read-only view on an object
type ReadableObject interface {
	ID() ID
	Address() Address
	Revision() int64
	HasField(ID) bool
	// Field returns nil when no field with this ID exists
	Field(ID) ReadableField
	// FieldIDs in ascending order
	FieldIDs() []ID
	IsEmpty() bool
}

// ReadableModel is a read-only view on a model
type ReadableModel interface {
	ID() ID
	Address() Address
	Revision() int64
	HasObject(ID) bool
	// Object returns nil when no object with this ID exists
	Object(ID) ReadableObject
	// ObjectIDs in ascending order
	ObjectIDs() []ID
	IsEmpty() bool
}

// ReadableRepository is a read-only view on a repository
type ReadableRepository interface {
	ID() ID
	Address() Address
	HasModel(ID) bool
	// Model returns nil when no model with this ID exists
	Model(ID) ReadableModel
	// ModelIDs in ascending order
	ModelIDs() []ID
}
