package sync

import (
	"github.com/oneconcern/strata/pkg/core"
	"github.com/oneconcern/strata/pkg/model"
	"go.uber.org/zap"
)

// DefaultActor is the actor of local changes when none is specified
const DefaultActor model.ID = "local"

// Option is a functor to build a synchronizer with some options
type Option func(*Synchronizer)

// Logger injects a logger
func Logger(l *zap.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.l = l
		}
	}
}

// Actor sets the default actor of local changes
func Actor(actor model.ID) Option {
	return func(s *Synchronizer) {
		if !actor.IsZero() {
			s.actor = actor
		}
	}
}

// WithMetrics toggles metrics collection about reconciliations
func WithMetrics(enabled bool) Option {
	return func(s *Synchronizer) {
		s.EnableMetrics(enabled)
	}
}

type changeOptions struct {
	actor    model.ID
	callback core.Callback
}

// ChangeOption is a functor to tune a single local change
type ChangeOption func(*changeOptions)

// WithCallback notifies a callback when the local change is resolved
func WithCallback(cb core.Callback) ChangeOption {
	return func(o *changeOptions) {
		o.callback = cb
	}
}

// WithActor stages a local change on behalf of some actor
func WithActor(actor model.ID) ChangeOption {
	return func(o *changeOptions) {
		if !actor.IsZero() {
			o.actor = actor
		}
	}
}
