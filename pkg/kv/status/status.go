// Copyright © 2018 One Concern

// Package status declares errors returned by key-value stores.
package status

import (
	"github.com/oneconcern/strata/pkg/errors"
)

var (
	// ErrNotFound indicates a key which is not in the store
	ErrNotFound = errors.New("key not found")

	// ErrUnknownBackend indicates a backend which is not supported
	ErrUnknownBackend = errors.New("unknown key-value backend")

	// ErrOpen indicates a store which could not be opened
	ErrOpen = errors.New("cannot open key-value store")
)
