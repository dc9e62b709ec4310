// Copyright © 2018 One Concern

// Package status exports errors produced by the core package.
package status

import (
	"github.com/oneconcern/strata/pkg/errors"
)

var (
	// ErrNotFound indicates a model was not found
	ErrNotFound = errors.New("not found")

	// ErrReplay indicates that replaying an event did not produce the same revision as the original change
	ErrReplay = errors.New("replayed event does not match the replica")

	// ErrWrongModel indicates a command or event addressing another model
	ErrWrongModel = errors.New("command or event addresses another model")

	// ErrCommitHook indicates that a commit hook failed after a successful commit
	ErrCommitHook = errors.New("commit hook failed")
)
