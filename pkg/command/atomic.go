package command

import (
	"fmt"

	"github.com/oneconcern/strata/pkg/command/status"
	"github.com/oneconcern/strata/pkg/model"
)

var (
	_ Atomic = &RepositoryCommand{}
	_ Atomic = &ModelCommand{}
	_ Atomic = &ObjectCommand{}
	_ Atomic = &FieldCommand{}
)

type header struct {
	target     model.Address
	changeType ChangeType
	rev        int64
}

func (h header) Target() model.Address  { return h.target }
func (h header) ChangeType() ChangeType { return h.changeType }
func (h header) Revision() int64        { return h.rev }
func (h header) IsForced() bool         { return h.rev == RevForced }

func (h header) describe(entity model.Address) string {
	return fmt.Sprintf("%s %s (%s)", h.changeType, entity, revisionString(h.rev))
}

// RepositoryCommand adds or removes a model in a repository
type RepositoryCommand struct {
	header
	model model.ID
}

// AddModel builds a command creating a model
func AddModel(repository model.Address, id model.ID, forced bool) (*RepositoryCommand, error) {
	if repository.Kind() != model.KindRepository {
		return nil, errInvalidTarget(model.KindRepository, repository)
	}
	if _, err := model.NewID(string(id)); err != nil {
		return nil, err
	}
	return &RepositoryCommand{header: header{target: repository, changeType: Add, rev: addRevision(forced)}, model: id}, nil
}

// RemoveModel builds a command removing a model, expecting some revision for this model
func RemoveModel(repository model.Address, id model.ID, rev int64) (*RepositoryCommand, error) {
	if repository.Kind() != model.KindRepository {
		return nil, errInvalidTarget(model.KindRepository, repository)
	}
	if _, err := model.NewID(string(id)); err != nil {
		return nil, err
	}
	if err := checkRevision(rev); err != nil {
		return nil, err
	}
	return &RepositoryCommand{header: header{target: repository, changeType: Remove, rev: rev}, model: id}, nil
}

// ModelID is the ID of the added or removed model
func (c *RepositoryCommand) ModelID() model.ID { return c.model }

// ChangedEntity is the address of the added or removed model
func (c *RepositoryCommand) ChangedEntity() model.Address { return c.target.Child(c.model) }

// WithRevision yields a copy of this command
func (c *RepositoryCommand) WithRevision(rev int64) Atomic {
	cp := *c
	cp.rev = rev
	return &cp
}

func (c *RepositoryCommand) String() string { return c.describe(c.ChangedEntity()) }

func (*RepositoryCommand) atomic() {}

// ModelCommand adds or removes an object in a model
type ModelCommand struct {
	header
	object model.ID
}

// AddObject builds a command creating an object
func AddObject(modelAddr model.Address, id model.ID, forced bool) (*ModelCommand, error) {
	if modelAddr.Kind() != model.KindModel {
		return nil, errInvalidTarget(model.KindModel, modelAddr)
	}
	if _, err := model.NewID(string(id)); err != nil {
		return nil, err
	}
	return &ModelCommand{header: header{target: modelAddr, changeType: Add, rev: addRevision(forced)}, object: id}, nil
}

// RemoveObject builds a command removing an object, expecting some revision for this object
func RemoveObject(modelAddr model.Address, id model.ID, rev int64) (*ModelCommand, error) {
	if modelAddr.Kind() != model.KindModel {
		return nil, errInvalidTarget(model.KindModel, modelAddr)
	}
	if _, err := model.NewID(string(id)); err != nil {
		return nil, err
	}
	if err := checkRevision(rev); err != nil {
		return nil, err
	}
	return &ModelCommand{header: header{target: modelAddr, changeType: Remove, rev: rev}, object: id}, nil
}

// ObjectID is the ID of the added or removed object
func (c *ModelCommand) ObjectID() model.ID { return c.object }

// ChangedEntity is the address of the added or removed object
func (c *ModelCommand) ChangedEntity() model.Address { return c.target.Child(c.object) }

// WithRevision yields a copy of this command
func (c *ModelCommand) WithRevision(rev int64) Atomic {
	cp := *c
	cp.rev = rev
	return &cp
}

func (c *ModelCommand) String() string { return c.describe(c.ChangedEntity()) }

func (*ModelCommand) atomic() {}

// ObjectCommand adds or removes a field in an object
type ObjectCommand struct {
	header
	field model.ID
}

// AddField builds a command creating a field
func AddField(objectAddr model.Address, id model.ID, forced bool) (*ObjectCommand, error) {
	if objectAddr.Kind() != model.KindObject {
		return nil, errInvalidTarget(model.KindObject, objectAddr)
	}
	if _, err := model.NewID(string(id)); err != nil {
		return nil, err
	}
	return &ObjectCommand{header: header{target: objectAddr, changeType: Add, rev: addRevision(forced)}, field: id}, nil
}

// RemoveField builds a command removing a field, expecting some revision for this field
func RemoveField(objectAddr model.Address, id model.ID, rev int64) (*ObjectCommand, error) {
	if objectAddr.Kind() != model.KindObject {
		return nil, errInvalidTarget(model.KindObject, objectAddr)
	}
	if _, err := model.NewID(string(id)); err != nil {
		return nil, err
	}
	if err := checkRevision(rev); err != nil {
		return nil, err
	}
	return &ObjectCommand{header: header{target: objectAddr, changeType: Remove, rev: rev}, field: id}, nil
}

// FieldID is the ID of the added or removed field
func (c *ObjectCommand) FieldID() model.ID { return c.field }

// ChangedEntity is the address of the added or removed field
func (c *ObjectCommand) ChangedEntity() model.Address { return c.target.Child(c.field) }

// WithRevision yields a copy of this command
func (c *ObjectCommand) WithRevision(rev int64) Atomic {
	cp := *c
	cp.rev = rev
	return &cp
}

func (c *ObjectCommand) String() string { return c.describe(c.ChangedEntity()) }

func (*ObjectCommand) atomic() {}

// FieldCommand sets, changes or clears the value of a field.
//
// Unlike other commands, a field command is sent to the changed entity itself.
type FieldCommand struct {
	header
	value model.Value
}

func newFieldCommand(fieldAddr model.Address, changeType ChangeType, rev int64, value model.Value) (*FieldCommand, error) {
	if fieldAddr.Kind() != model.KindField {
		return nil, errInvalidTarget(model.KindField, fieldAddr)
	}
	if err := checkRevision(rev); err != nil {
		return nil, err
	}
	if changeType != Remove && value == nil {
		return nil, status.ErrMissingValue.WrapMessage(fieldAddr.String())
	}
	return &FieldCommand{header: header{target: fieldAddr, changeType: changeType, rev: rev}, value: value}, nil
}

// AddValue builds a command setting the value of an empty field
func AddValue(fieldAddr model.Address, rev int64, value model.Value) (*FieldCommand, error) {
	return newFieldCommand(fieldAddr, Add, rev, value)
}

// ChangeValue builds a command replacing the value of a field
func ChangeValue(fieldAddr model.Address, rev int64, value model.Value) (*FieldCommand, error) {
	return newFieldCommand(fieldAddr, Change, rev, value)
}

// RemoveValue builds a command clearing the value of a field
func RemoveValue(fieldAddr model.Address, rev int64) (*FieldCommand, error) {
	return newFieldCommand(fieldAddr, Remove, rev, nil)
}

// Value is the new value, nil for a REMOVE
func (c *FieldCommand) Value() model.Value { return c.value }

// ChangedEntity is the field itself
func (c *FieldCommand) ChangedEntity() model.Address { return c.target }

// WithRevision yields a copy of this command
func (c *FieldCommand) WithRevision(rev int64) Atomic {
	cp := *c
	cp.rev = rev
	return &cp
}

func (c *FieldCommand) String() string {
	if c.value == nil {
		return c.describe(c.target)
	}
	return c.describe(c.target) + " = " + c.value.String()
}

func (*FieldCommand) atomic() {}
