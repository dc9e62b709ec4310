// Package status declares error constants returned when building commands.
package status

import (
	"github.com/oneconcern/strata/pkg/errors"
)

var (
	// ErrInvalidTarget indicates a command target of the wrong kind (e.g. an object command sent to a model address)
	ErrInvalidTarget = errors.New("invalid command target")

	// ErrInvalidRevision indicates an expected revision which is neither a sentinel nor a non-negative number
	ErrInvalidRevision = errors.New("invalid expected revision")

	// ErrMissingValue indicates a value command without a value
	ErrMissingValue = errors.New("value is required")

	// ErrEmptyTransaction indicates a transaction without commands
	ErrEmptyTransaction = errors.New("transaction must contain at least one command")

	// ErrOutOfScope indicates a transaction command which is not located under the transaction target
	ErrOutOfScope = errors.New("command is out of the transaction scope")
)
