// Package status declares error constants returned by the model package.
package status

import (
	"github.com/oneconcern/strata/pkg/errors"
)

var (
	// ErrInvalidID indicates an identifier which is empty, too long or contains forbidden characters
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidAddress indicates an address which skips a level (e.g. an object without a model)
	ErrInvalidAddress = errors.New("invalid address")

	// ErrMissingPiece indicates that an entity or value asserted to exist could not be found
	ErrMissingPiece = errors.New("missing piece")

	// ErrIDGeneration indicates that the random id generator failed
	ErrIDGeneration = errors.New("failed to generate id")
)
