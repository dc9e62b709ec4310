/*
 * Copyright © 2019 One Concern
 *
 */

package model

import (
	"strings"

	"github.com/oneconcern/strata/pkg/model/status"
)

// AddressKind tells which kind of entity an address points to
type AddressKind int

// Address kinds, from the coarsest to the finest
const (
	KindNone AddressKind = iota
	KindRepository
	KindModel
	KindObject
	KindField
)

func (k AddressKind) String() string {
	switch k {
	case KindRepository:
		return "repository"
	case KindModel:
		return "model"
	case KindObject:
		return "object"
	case KindField:
		return "field"
	default:
		return "none"
	}
}

// Address locates an entity in the containment tree.
//
// A level may only be set when all coarser levels are set. Use NewAddress to
// build validated addresses from arbitrary input.
type Address struct {
	Repository ID
	Model      ID
	Object     ID
	Field      ID
}

// NewAddress builds a validated address
func NewAddress(repository, model, object, field ID) (Address, error) {
	a := Address{Repository: repository, Model: model, Object: object, Field: field}
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	return a, nil
}

// RepositoryAddress builds the address of a repository
func RepositoryAddress(repository ID) Address {
	return Address{Repository: repository}
}

// ModelAddress builds the address of a model
func ModelAddress(repository, model ID) Address {
	return Address{Repository: repository, Model: model}
}

// ObjectAddress builds the address of an object
func ObjectAddress(repository, model, object ID) Address {
	return Address{Repository: repository, Model: model, Object: object}
}

// FieldAddress builds the address of a field
func FieldAddress(repository, model, object, field ID) Address {
	return Address{Repository: repository, Model: model, Object: object, Field: field}
}

// Validate checks that no level is skipped
func (a Address) Validate() error {
	levels := [...]ID{a.Repository, a.Model, a.Object, a.Field}
	seenEmpty := false
	for _, id := range levels {
		if id.IsZero() {
			seenEmpty = true
			continue
		}
		if seenEmpty {
			return status.ErrInvalidAddress.WrapMessage(a.String())
		}
		if _, err := NewID(string(id)); err != nil {
			return status.ErrInvalidAddress.Wrap(err)
		}
	}
	return nil
}

// Kind of the addressed entity
func (a Address) Kind() AddressKind {
	switch {
	case !a.Field.IsZero():
		return KindField
	case !a.Object.IsZero():
		return KindObject
	case !a.Model.IsZero():
		return KindModel
	case !a.Repository.IsZero():
		return KindRepository
	default:
		return KindNone
	}
}

// IsZero tells if the address is empty
func (a Address) IsZero() bool {
	return a == Address{}
}

// ID of the addressed entity
func (a Address) ID() ID {
	switch a.Kind() {
	case KindField:
		return a.Field
	case KindObject:
		return a.Object
	case KindModel:
		return a.Model
	default:
		return a.Repository
	}
}

// Parent address. The parent of a repository address is the zero address.
func (a Address) Parent() Address {
	switch a.Kind() {
	case KindField:
		a.Field = ""
	case KindObject:
		a.Object = ""
	case KindModel:
		a.Model = ""
	default:
		return Address{}
	}
	return a
}

// Child address, one level down. Children of a field address are not defined and yield a zero address.
func (a Address) Child(id ID) Address {
	switch a.Kind() {
	case KindNone:
		a.Repository = id
	case KindRepository:
		a.Model = id
	case KindModel:
		a.Object = id
	case KindObject:
		a.Field = id
	default:
		return Address{}
	}
	return a
}

// Contains tells if other is the same as a or located underneath it
func (a Address) Contains(other Address) bool {
	if a.IsZero() {
		return true
	}
	levels := [...][2]ID{
		{a.Repository, other.Repository},
		{a.Model, other.Model},
		{a.Object, other.Object},
		{a.Field, other.Field},
	}
	for _, pair := range levels {
		if pair[0].IsZero() {
			return true
		}
		if pair[0] != pair[1] {
			return false
		}
	}
	return true
}

// IsParentOf tells if a is the direct parent of other
func (a Address) IsParentOf(other Address) bool {
	return !other.IsZero() && other.Parent() == a
}

// ModelAddress truncates this address at the model level
func (a Address) ModelAddress() Address {
	return Address{Repository: a.Repository, Model: a.Model}
}

// ObjectAddress truncates this address at the object level
func (a Address) ObjectAddress() Address {
	return Address{Repository: a.Repository, Model: a.Model, Object: a.Object}
}

// String renders the address as /repository/model/object/field
func (a Address) String() string {
	var b strings.Builder
	for _, id := range [...]ID{a.Repository, a.Model, a.Object, a.Field} {
		if id.IsZero() {
			break
		}
		b.WriteByte('/')
		b.WriteString(string(id))
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// ParseAddress parses the string form of an address
func ParseAddress(s string) (Address, error) {
	if !strings.HasPrefix(s, "/") {
		return Address{}, status.ErrInvalidAddress.WrapMessage(s)
	}
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return Address{}, nil
	}
	parts := strings.Split(s, "/")
	if len(parts) > 4 {
		return Address{}, status.ErrInvalidAddress.WrapMessage(s)
	}
	ids := make([]ID, 4)
	for i, part := range parts {
		id, err := NewID(part)
		if err != nil {
			return Address{}, status.ErrInvalidAddress.Wrap(err)
		}
		ids[i] = id
	}
	return NewAddress(ids[0], ids[1], ids[2], ids[3])
}

// MustParseAddress parses an address or panics
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}
