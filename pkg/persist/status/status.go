// Copyright © 2018 One Concern

// Package status declares errors returned by the persistence layer.
package status

import (
	"github.com/oneconcern/strata/pkg/errors"
)

var (
	// ErrCorruptLog indicates a persisted event which cannot be decoded
	ErrCorruptLog = errors.New("persisted change log is corrupt")

	// ErrRestore indicates a persisted change log which cannot be replayed
	ErrRestore = errors.New("cannot restore repository from its change log")

	// ErrSnapshotNotFound indicates a model snapshot which is not stored
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrCorruptSnapshot indicates a stored snapshot which cannot be decoded
	ErrCorruptSnapshot = errors.New("stored snapshot is corrupt")

	// ErrInvalidModel indicates an address which does not designate a model
	ErrInvalidModel = errors.New("address does not designate a model")
)
