// Package status declares errors reported by the synchronizer.
package status

import (
	"github.com/oneconcern/strata/pkg/errors"
)

var (
	// ErrPrecondition indicates a local command which cannot succeed against the local changes already queued
	ErrPrecondition = errors.New("local command cannot be applied")

	// ErrConflict indicates a local change which conflicts with remote changes
	ErrConflict = errors.New("local change conflicts with remote changes")

	// ErrDiverged indicates local and remote replicas which no longer share the same history
	ErrDiverged = errors.New("replicas have diverged")
)
