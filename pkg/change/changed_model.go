package change

import (
	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/model"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/exp/slices"
)

var _ model.ReadableModel = &ChangedModel{}

// ChangedModel stages changes over a read-only base model.
//
// The base must not change while the ChangedModel is in use. A ChangedModel is not safe
// for concurrent use.
type ChangedModel struct {
	base    model.ReadableModel
	added   *orderedmap.OrderedMap[model.ID, *ChangedObject]
	removed *orderedmap.OrderedMap[model.ID, struct{}]
	changed *orderedmap.OrderedMap[model.ID, *ChangedObject]
}

// NewChangedModel builds an empty diff over some base model
func NewChangedModel(base model.ReadableModel) *ChangedModel {
	c := &ChangedModel{base: base}
	c.Discard()
	return c
}

// Base model
func (c *ChangedModel) Base() model.ReadableModel { return c.base }

// ID of the model
func (c *ChangedModel) ID() model.ID { return c.base.ID() }

// Address of the model
func (c *ChangedModel) Address() model.Address { return c.base.Address() }

// Revision of the base model
func (c *ChangedModel) Revision() int64 { return c.base.Revision() }

func (c *ChangedModel) inBase(id model.ID) bool {
	if _, removed := c.removed.Get(id); removed {
		return false
	}
	return c.base.HasObject(id)
}

// HasObject tells if an object exists once the changes are applied
func (c *ChangedModel) HasObject(id model.ID) bool {
	if _, ok := c.added.Get(id); ok {
		return true
	}
	return c.inBase(id)
}

// Object as staged, nil if it does not exist once the changes are applied
func (c *ChangedModel) Object(id model.ID) model.ReadableObject {
	if o := c.object(id); o != nil {
		return o
	}
	if c.inBase(id) {
		return c.base.Object(id)
	}
	return nil
}

func (c *ChangedModel) object(id model.ID) *ChangedObject {
	if o, ok := c.added.Get(id); ok {
		return o
	}
	if o, ok := c.changed.Get(id); ok {
		return o
	}
	return nil
}

// ObjectIDs once the changes are applied, in ascending order
func (c *ChangedModel) ObjectIDs() []model.ID {
	ids := make([]model.ID, 0, c.added.Len())
	for _, id := range c.base.ObjectIDs() {
		if c.inBase(id) {
			ids = append(ids, id)
		}
	}
	for pair := c.added.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// IsEmpty tells if the model has no object once the changes are applied
func (c *ChangedModel) IsEmpty() bool {
	if c.added.Len() > 0 {
		return false
	}
	for _, id := range c.base.ObjectIDs() {
		if c.inBase(id) {
			return false
		}
	}
	return true
}

// CreateObject stages a new object, if it does not exist already
func (c *ChangedModel) CreateObject(id model.ID) *ChangedObject {
	if o := c.MutableObject(id); o != nil {
		return o
	}
	o := newObject(c.Address().Child(id))
	c.added.Set(id, o)
	return o
}

// MutableObject returns the diff of an existing object, to stage changes on its fields.
// It returns nil when the object does not exist.
func (c *ChangedModel) MutableObject(id model.ID) *ChangedObject {
	if o := c.object(id); o != nil {
		return o
	}
	if !c.inBase(id) {
		return nil
	}
	o := overObject(c.base.Object(id))
	c.changed.Set(id, o)
	return o
}

// RemoveObject stages the removal of an object and its fields. It tells if the object existed.
func (c *ChangedModel) RemoveObject(id model.ID) bool {
	if _, ok := c.added.Delete(id); ok {
		return true
	}
	if !c.inBase(id) {
		return false
	}
	c.changed.Delete(id)
	c.removed.Set(id, struct{}{})
	return true
}

// HasChanges tells if the staged state differs from the base
func (c *ChangedModel) HasChanges() bool {
	if c.added.Len() > 0 || c.removed.Len() > 0 {
		return true
	}
	for pair := c.changed.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.HasChanges() {
			return true
		}
	}
	return false
}

// Discard all staged changes. The ChangedModel shows the base again.
func (c *ChangedModel) Discard() {
	c.added = orderedmap.New[model.ID, *ChangedObject]()
	c.removed = orderedmap.New[model.ID, struct{}]()
	c.changed = orderedmap.New[model.ID, *ChangedObject]()
}

// Reset is an alias for Discard
func (c *ChangedModel) Reset() { c.Discard() }

// CountCommandsNeeded tells how many atomic commands a transaction built from the
// staged changes would hold. Counting stops at max.
func (c *ChangedModel) CountCommandsNeeded(max int) int {
	n := c.removed.Len()
	for pair := c.added.Oldest(); pair != nil && n < max; pair = pair.Next() {
		n++
		n += pair.Value.countCommands(max - n)
	}
	for pair := c.changed.Oldest(); pair != nil && n < max; pair = pair.Next() {
		n += pair.Value.countCommands(max - n)
	}
	if n > max {
		return max
	}
	return n
}

// ExecuteCommand stages a command. Transactions are staged all together or not at all.
//
// A failed command leaves the staged state unchanged.
func (c *ChangedModel) ExecuteCommand(cmd command.Command) command.Outcome {
	tx, isTx := cmd.(*command.Transaction)
	if !isTx {
		atomic, ok := cmd.(command.Atomic)
		if !ok {
			return command.OutcomeFailed
		}
		return c.execute(atomic)
	}

	// dry run over a nested diff, so that a failure leaves this one untouched
	nested := NewChangedModel(c)
	outcome := command.OutcomeNoChange
	for _, atomic := range tx.Commands() {
		switch nested.execute(atomic) {
		case command.OutcomeFailed:
			return command.OutcomeFailed
		case command.OutcomeChanged:
			outcome = command.OutcomeChanged
		}
	}

	for _, atomic := range tx.Commands() {
		c.execute(atomic)
	}
	return outcome
}

func (c *ChangedModel) execute(cmd command.Atomic) command.Outcome {
	outcome := Check(c, cmd)
	if outcome != command.OutcomeChanged {
		return outcome
	}

	switch cc := cmd.(type) {
	case *command.ModelCommand:
		if cc.ChangeType() == command.Add {
			c.CreateObject(cc.ObjectID())
		} else {
			c.RemoveObject(cc.ObjectID())
		}
	case *command.ObjectCommand:
		o := c.MutableObject(cc.Target().Object)
		if cc.ChangeType() == command.Add {
			o.CreateField(cc.FieldID())
		} else {
			o.RemoveField(cc.FieldID())
		}
	case *command.FieldCommand:
		addr := cc.Target()
		c.MutableObject(addr.Object).SetValue(addr.Field, cc.Value())
	}
	return outcome
}
