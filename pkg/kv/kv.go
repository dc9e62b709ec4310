// Copyright © 2018 One Concern

// Package kv provides a minimal key-value store abstraction over badger and pebble.
package kv

import (
	"github.com/oneconcern/strata/pkg/kv/status"
)

type (
	// Store is a key-value store. Keys and values returned by a store are owned by the caller.
	Store interface {
		// Get the value for a key. It fails with status.ErrNotFound when the key does not exist.
		Get([]byte) ([]byte, error)
		// Exists returns true if a key exists
		Exists([]byte) (bool, error)
		// Set a key with some value
		Set([]byte, []byte) error
		// SetIfNotExists sets a key only if it does not exist yet
		SetIfNotExists([]byte, []byte) error
		// Delete a key. Deleting a missing key is not an error.
		Delete([]byte) error
		// SetAll sets several keys at once: either all pairs are written or none is
		SetAll(...Pair) error
		// Prefix returns an iterator over the keys starting with a prefix, in ascending order
		Prefix([]byte) Iterator
		// Size reports about the size in bytes of the store
		Size() uint64
		// Close the store
		Close() error
	}

	// Pair is a key with its value
	Pair struct {
		Key   []byte
		Value []byte
	}

	// Iterator over key-value pairs
	Iterator interface {
		Next() bool
		Item() ([]byte, []byte, error)
		Close() error
	}
)

// Backend of a store
type Backend string

// Supported backends
const (
	Badger Backend = "badger"
	Pebble Backend = "pebble"
)

// Open a store
func Open(backend Backend, opts ...Option) (Store, error) {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}

	switch backend {
	case Badger, "":
		return openBadger(o)
	case Pebble:
		return openPebble(o)
	default:
		return nil, status.ErrUnknownBackend.WrapMessage(string(backend))
	}
}

// prefixEnd returns the smallest key greater than all keys with this prefix, or nil
// when there is none
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
