// Package status declares errors returned when decoding documents.
package status

import (
	"github.com/oneconcern/strata/pkg/errors"
)

var (
	// ErrUnknownFormat indicates a serialization format which is not supported
	ErrUnknownFormat = errors.New("unknown serialization format")

	// ErrUnknownKind indicates a value document with an unknown kind
	ErrUnknownKind = errors.New("unknown value kind")

	// ErrInvalidValue indicates a value document which does not hold a value of its kind
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidCommand indicates a command document which does not describe a command
	ErrInvalidCommand = errors.New("invalid command document")

	// ErrInvalidEvent indicates an event document which does not describe an event
	ErrInvalidEvent = errors.New("invalid event document")

	// ErrInvalidSnapshot indicates a snapshot document which does not describe a model
	ErrInvalidSnapshot = errors.New("invalid snapshot document")
)
