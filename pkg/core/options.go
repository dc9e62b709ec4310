package core

import (
	"github.com/oneconcern/strata/pkg/command"
	"github.com/oneconcern/strata/pkg/event"
	"github.com/oneconcern/strata/pkg/model"
)

// ExecutorOption is a functor to build an executor with some options
type ExecutorOption func(*Executor)

// WithAuthorizer sets the access control consulted before checking commands.
// The default allows all actors.
func WithAuthorizer(a Authorizer) ExecutorOption {
	return func(e *Executor) {
		if a != nil {
			e.auth = a
		}
	}
}

// WithCommitHook adds a hook called with every committed event, in commit order
func WithCommitHook(h CommitHook) ExecutorOption {
	return func(e *Executor) {
		if h != nil {
			e.hooks = append(e.hooks, h)
		}
	}
}

// WithMetrics toggles metrics collection about commits
func WithMetrics(enabled bool) ExecutorOption {
	return func(e *Executor) {
		e.EnableMetrics(enabled)
	}
}

// CommitHook is called after each successful commit, before listeners are notified.
//
// Hooks are called while the commit lock of the model is held: they must not commit
// against the same model.
type CommitHook interface {
	OnCommit(modelAddr model.Address, e event.Event) error
}

// CommitHookFunc adapts a function to a CommitHook
type CommitHookFunc func(model.Address, event.Event) error

// OnCommit calls f
func (f CommitHookFunc) OnCommit(modelAddr model.Address, e event.Event) error { return f(modelAddr, e) }

// Callback is notified about the result of a commit, exactly once.
//
// OnSuccess receives the new revision, or command.NoChange for a legal no-op.
type Callback interface {
	OnSuccess(revision int64)
	OnFailure()
}

// CallbackFuncs adapts a pair of functions to a Callback. Nil functions are skipped.
type CallbackFuncs struct {
	Success func(int64)
	Failure func()
}

// OnSuccess calls Success
func (c CallbackFuncs) OnSuccess(revision int64) {
	if c.Success != nil {
		c.Success(revision)
	}
}

// OnFailure calls Failure
func (c CallbackFuncs) OnFailure() {
	if c.Failure != nil {
		c.Failure()
	}
}

type commitOptions struct {
	callback Callback
}

// CommitOption is a functor to tune a single commit
type CommitOption func(*commitOptions)

// WithCallback notifies a callback about the result of the commit, after listeners
func WithCallback(cb Callback) CommitOption {
	return func(o *commitOptions) {
		o.callback = cb
	}
}

func commitSettings(opts []CommitOption) commitOptions {
	var o commitOptions
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

func (o commitOptions) notify(result int64) {
	if o.callback == nil {
		return
	}
	if result == command.Failed {
		o.callback.OnFailure()
		return
	}
	o.callback.OnSuccess(result)
}
