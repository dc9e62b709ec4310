/*
 * Copyright © 2019 One Concern
 *
 */

package model

import (
	"strings"
	"unicode"

	"github.com/oneconcern/strata/pkg/model/status"
	"github.com/segmentio/ksuid"
)

// MaxIDLength is the maximum length in bytes of an ID
const MaxIDLength = 100

// ID identifies a repository, model, object or field inside its parent.
//
// IDs are comparable and may be used as map keys. An ID is also a Value, so that
// fields may hold references to other entities.
type ID string

// NewID validates a string as an ID
func NewID(s string) (ID, error) {
	if s == "" || len(s) > MaxIDLength {
		return "", status.ErrInvalidID.WrapMessage(s)
	}
	if strings.ContainsRune(s, '/') || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "", status.ErrInvalidID.WrapMessage(s)
	}
	return ID(s), nil
}

// MustID validates a string as an ID or panics
func MustID(s string) ID {
	id, err := NewID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero tells if this ID is unset
func (id ID) IsZero() bool {
	return id == ""
}

func (id ID) String() string {
	return string(id)
}

// IDProvider issues random unique IDs.
//
// Uniqueness is probabilistic (ksuid: 128 bits of randomness plus a timestamp),
// callers remain responsible for not reusing IDs on purpose.
type IDProvider struct {
	prefix string
}

// IDProviderOption configures an IDProvider
type IDProviderOption func(*IDProvider)

// IDPrefix sets a prefix for all generated IDs
func IDPrefix(prefix string) IDProviderOption {
	return func(p *IDProvider) {
		p.prefix = prefix
	}
}

// NewIDProvider builds an ID provider
func NewIDProvider(opts ...IDProviderOption) *IDProvider {
	p := &IDProvider{}
	for _, apply := range opts {
		apply(p)
	}
	return p
}

// Next yields a new random ID
func (p *IDProvider) Next() (ID, error) {
	k, err := ksuid.NewRandom()
	if err != nil {
		return "", status.ErrIDGeneration.Wrap(err)
	}
	return NewID(p.prefix + k.String())
}

// MustNext yields a new random ID or panics
func (p *IDProvider) MustNext() ID {
	id, err := p.Next()
	if err != nil {
		panic(err)
	}
	return id
}

// FromString builds a valid ID from a string, as NewID
func (p *IDProvider) FromString(s string) (ID, error) {
	return NewID(s)
}
